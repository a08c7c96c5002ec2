package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/mailer"
	"propdesk.backend/pkg/logger"
)

// NotificationUsecase renders and sends transactional email.
// The transition helpers never fail: delivery errors are logged and dropped.
type NotificationUsecase struct {
	sender       EmailSender
	renderer     *mailer.Renderer
	adminEmail   string
	dashboardURL string
	metrics      MetricsRecorder
}

// NewNotificationUsecase creates a new notification usecase
func NewNotificationUsecase(sender EmailSender, renderer *mailer.Renderer, adminEmail, dashboardURL string, metrics MetricsRecorder) *NotificationUsecase {
	if renderer == nil {
		renderer = mailer.NewRenderer()
	}
	return &NotificationUsecase{
		sender:       sender,
		renderer:     renderer,
		adminEmail:   adminEmail,
		dashboardURL: dashboardURL,
		metrics:      metricsOrNoop(metrics),
	}
}

// Templates lists the template kinds Send accepts.
func (u *NotificationUsecase) Templates() []string {
	return u.renderer.Kinds()
}

// Send renders template kind with data and delivers it to recipient.
func (u *NotificationUsecase) Send(ctx context.Context, kind, recipient string, data interface{}) error {
	if !u.renderer.Has(kind) {
		return domainerrors.BadRequest(fmt.Sprintf("unknown email template %q", kind))
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return domainerrors.BadRequest("recipient is required")
	}

	subject, html, err := u.renderer.Render(kind, data)
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", kind, err)
	}

	err = u.sender.Send(ctx, mailer.Message{
		To:      []string{recipient},
		Subject: subject,
		HTML:    html,
	})
	u.metrics.EmailSent(kind, err)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	return nil
}

func (u *NotificationUsecase) notify(ctx context.Context, kind, recipient string, data interface{}) {
	if recipient == "" {
		return
	}
	if err := u.Send(ctx, kind, recipient, data); err != nil {
		logger.Error(ctx, "Email notification failed",
			zap.String("template", kind),
			zap.String("to", recipient),
			zap.Error(err),
		)
	}
}

// OrderPending tells the customer and operator that a crypto payment is in flight.
func (u *NotificationUsecase) OrderPending(ctx context.Context, p *entities.Purchase) {
	data := u.orderData(p)
	u.notify(ctx, mailer.TemplateOrderPending, p.Email, data)
	u.notify(ctx, mailer.TemplateOrderPendingAdmin, u.adminEmail, data)
}

// OrderCompleted confirms a reconciled purchase to the customer and alerts the operator.
func (u *NotificationUsecase) OrderCompleted(ctx context.Context, p *entities.Purchase, account *entities.TradingAccount, newUser bool) {
	data := u.orderData(p)
	data.NewUser = newUser
	if account != nil {
		data.AccountID = account.ID.String()
	}
	u.notify(ctx, mailer.TemplateOrderCompletedAdmin, u.adminEmail, data)
	u.notify(ctx, mailer.TemplateOrderCompleted, p.Email, data)
}

// CredentialsIssued sends the login bundle of an activated account.
func (u *NotificationUsecase) CredentialsIssued(ctx context.Context, user *entities.User, account *entities.TradingAccount) {
	if account.Credentials == nil {
		return
	}
	u.notify(ctx, mailer.TemplateCredentialsIssued, user.Email, mailer.CredentialsData{
		FirstName:    firstNameOf(user),
		AccountSize:  account.AccountSize,
		Platform:     account.Platform,
		Server:       account.Credentials.Server,
		Login:        account.Credentials.Login,
		Password:     account.Credentials.Password,
		DashboardURL: u.dashboardURL,
	})
}

// KYCStatusChanged tells the user about a review decision.
func (u *NotificationUsecase) KYCStatusChanged(ctx context.Context, user *entities.User, sub *entities.KYCSubmission) {
	u.notify(ctx, mailer.TemplateKYCStatus, user.Email, mailer.StatusData{
		FirstName: firstNameOf(user),
		Status:    string(sub.Status),
		Notes:     sub.ReviewerNotes,
	})
}

// WithdrawalStatusChanged tells the user about a payout decision.
func (u *NotificationUsecase) WithdrawalStatusChanged(ctx context.Context, user *entities.User, w *entities.Withdrawal) {
	u.notify(ctx, mailer.TemplateWithdrawalStatus, user.Email, mailer.StatusData{
		FirstName: firstNameOf(user),
		Status:    string(w.Status),
		Notes:     w.AdminNotes,
		Amount:    w.Amount,
	})
}

func (u *NotificationUsecase) orderData(p *entities.Purchase) mailer.OrderData {
	return mailer.OrderData{
		OrderID:       p.ID.String(),
		PurchaseID:    p.ID.String(),
		ReceiptID:     p.ReceiptID.String,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		PlanID:        p.PlanID,
		AccountSize:   p.AccountSize,
		AccountType:   p.AccountType,
		AccountPrice:  p.AccountPrice,
		Platform:      p.Platform,
		CryptoAsset:   p.CryptoAsset.String,
		CryptoAmount:  p.CryptoAmount.String,
		CryptoAddress: p.CryptoAddress.String,
		Phrase:        p.VerificationPhrase.String,
		DashboardURL:  u.dashboardURL,
	}
}

func firstNameOf(user *entities.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	if f := strings.Fields(user.Name); len(f) > 0 {
		return f[0]
	}
	return "there"
}
