package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/domain/repositories"
	"propdesk.backend/internal/infrastructure/events"
	"propdesk.backend/pkg/logger"
	"propdesk.backend/pkg/utils"
)

// Webhook outcome labels beyond the ledger outcomes.
const WebhookOutcomeRejected = "rejected"

var (
	errUserConflict    = errors.New("user created concurrently")
	errReceiptConflict = errors.New("receipt recorded concurrently")
)

// ReconcileNotifier is told about reconciled purchases after commit.
type ReconcileNotifier interface {
	OrderCompleted(ctx context.Context, p *entities.Purchase, account *entities.TradingAccount, newUser bool)
}

// WebhookUsecase reconciles payment processor deliveries into users,
// purchases and pending trading accounts.
type WebhookUsecase struct {
	secret    string
	users     repositories.UserRepository
	purchases repositories.PurchaseRepository
	accounts  repositories.TradingAccountRepository
	ledger    repositories.WebhookEventRepository
	uow       repositories.UnitOfWork
	catalog   *PlanCatalog
	notifier  ReconcileNotifier
	events    EventPublisher
	metrics   MetricsRecorder

	now func() time.Time
}

// NewWebhookUsecase creates a new webhook usecase
func NewWebhookUsecase(
	secret string,
	users repositories.UserRepository,
	purchases repositories.PurchaseRepository,
	accounts repositories.TradingAccountRepository,
	ledger repositories.WebhookEventRepository,
	uow repositories.UnitOfWork,
	catalog *PlanCatalog,
	notifier ReconcileNotifier,
	publisher EventPublisher,
	metrics MetricsRecorder,
) *WebhookUsecase {
	return &WebhookUsecase{
		secret:    secret,
		users:     users,
		purchases: purchases,
		accounts:  accounts,
		ledger:    ledger,
		uow:       uow,
		catalog:   catalog,
		notifier:  notifier,
		events:    publisherOrNoop(publisher),
		metrics:   metricsOrNoop(metrics),
		now:       time.Now,
	}
}

// reconciliation is what one committed transaction produced.
type reconciliation struct {
	user     *entities.User
	newUser  bool
	purchase *entities.Purchase
	account  *entities.TradingAccount
}

// HandleEvent authenticates, filters and reconciles one delivery.
// Redelivery of a reconciled receipt is a successful no-op.
func (u *WebhookUsecase) HandleEvent(ctx context.Context, raw []byte, signature string) (*entities.WebhookResult, error) {
	if err := VerifySignature(u.secret, raw, signature); err != nil {
		u.metrics.WebhookEvent(WebhookOutcomeRejected)
		logger.Warn(ctx, "Webhook signature rejected")
		return nil, err
	}

	env, data, err := decodeEnvelope(raw)
	if err != nil {
		u.metrics.WebhookEvent(WebhookOutcomeRejected)
		return nil, err
	}

	eventType := env.eventType()
	if !reconciledEventTypes[eventType] {
		u.metrics.WebhookEvent(string(entities.WebhookOutcomeIgnored))
		logger.Info(ctx, "Ignoring webhook event", zap.String("eventType", eventType))
		return &entities.WebhookResult{Outcome: entities.WebhookOutcomeIgnored}, nil
	}

	fields := extractSaleFields(data)
	if fields.Email == "" {
		u.metrics.WebhookEvent(WebhookOutcomeRejected)
		return nil, domainerrors.ErrMissingEmail
	}
	if fields.ReceiptID == "" {
		fields.ReceiptID = syntheticReceiptID(data)
	}
	if len(fields.Email) > maxIdentifierLen || len(fields.ReceiptID) > maxIdentifierLen {
		u.metrics.WebhookEvent(WebhookOutcomeRejected)
		return nil, fmt.Errorf("%w: email or receipt id longer than %d bytes", domainerrors.ErrMalformedPayload, maxIdentifierLen)
	}

	ctx = logger.WithFields(ctx, zap.String("receiptId", fields.ReceiptID), zap.String("eventType", eventType))

	existing, err := u.purchases.GetByReceiptID(ctx, fields.ReceiptID)
	switch {
	case err == nil:
		return u.duplicate(ctx, eventType, raw, existing)
	case !errors.Is(err, domainerrors.ErrNotFound):
		return nil, fmt.Errorf("failed to check receipt: %w", err)
	}

	plan := u.resolvePlan(fields)

	var rec *reconciliation
	for attempt := 0; attempt < 2; attempt++ {
		rec, err = u.reconcile(ctx, eventType, raw, fields, plan)
		if !errors.Is(err, errUserConflict) {
			break
		}
		logger.Warn(ctx, "User created concurrently, retrying reconciliation")
	}
	if errors.Is(err, errReceiptConflict) {
		existing, getErr := u.purchases.GetByReceiptID(ctx, fields.ReceiptID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load concurrently recorded receipt: %w", getErr)
		}
		return u.duplicate(ctx, eventType, raw, existing)
	}
	if err != nil {
		logger.Error(ctx, "Webhook reconciliation failed", zap.Error(err))
		return nil, err
	}

	u.metrics.WebhookEvent(string(entities.WebhookOutcomeProcessed))
	logger.Info(ctx, "Webhook reconciled",
		zap.String("purchaseId", rec.purchase.ID.String()),
		zap.String("accountId", rec.account.ID.String()),
		zap.String("userId", rec.user.ID.String()),
		zap.Bool("newUser", rec.newUser),
	)

	if u.notifier != nil {
		u.notifier.OrderCompleted(ctx, rec.purchase, rec.account, rec.newUser)
	}
	if err := u.events.Publish(ctx, events.PurchaseCompleted, map[string]interface{}{
		"purchase": rec.purchase,
		"account":  rec.account,
		"newUser":  rec.newUser,
	}); err != nil {
		logger.Warn(ctx, "Failed to publish purchase event", zap.Error(err))
	}

	purchaseID := rec.purchase.ID
	return &entities.WebhookResult{
		Outcome:    entities.WebhookOutcomeProcessed,
		ReceiptID:  fields.ReceiptID,
		PurchaseID: &purchaseID,
	}, nil
}

func (u *WebhookUsecase) duplicate(ctx context.Context, eventType string, raw []byte, existing *entities.Purchase) (*entities.WebhookResult, error) {
	purchaseID := existing.ID
	receiptID := existing.ReceiptID.String
	if err := u.ledger.Create(ctx, &entities.WebhookEvent{
		ReceiptID:  receiptID,
		EventType:  eventType,
		Outcome:    entities.WebhookOutcomeDuplicate,
		PurchaseID: &purchaseID,
		Payload:    string(raw),
		ReceivedAt: u.now(),
	}); err != nil {
		logger.Warn(ctx, "Failed to record duplicate delivery", zap.Error(err))
	}

	u.metrics.WebhookEvent(string(entities.WebhookOutcomeDuplicate))
	logger.Info(ctx, "Duplicate webhook delivery", zap.String("purchaseId", purchaseID.String()))
	return &entities.WebhookResult{
		Outcome:    entities.WebhookOutcomeDuplicate,
		ReceiptID:  receiptID,
		PurchaseID: &purchaseID,
	}, nil
}

// resolvePlan maps the plan id through the catalog, falling back to what the
// payload says about the product.
func (u *WebhookUsecase) resolvePlan(f saleFields) entities.Plan {
	if plan, ok := u.catalog.Lookup(f.PlanID); ok {
		return plan
	}
	plan := entities.Plan{
		ID:          f.PlanID,
		AccountSize: f.ProductName,
		Price:       f.Price,
		Type:        notAvailable,
	}
	if plan.ID == "" {
		plan.ID = notAvailable
	}
	if plan.AccountSize == "" {
		plan.AccountSize = notAvailable
	}
	return plan
}

func (u *WebhookUsecase) reconcile(ctx context.Context, eventType string, raw []byte, f saleFields, plan entities.Plan) (*reconciliation, error) {
	rec := &reconciliation{}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		if rec.user, rec.newUser, err = u.resolveUser(txCtx, f); err != nil {
			return err
		}
		if rec.purchase, err = u.recordPurchase(txCtx, rec.user, f, plan); err != nil {
			return err
		}

		// The account follows the tier recorded on the purchase, which for a
		// linked checkout order is the one the customer chose, not the payload's.
		tier := planOf(rec.purchase)
		purchaseID := rec.purchase.ID
		rec.account = &entities.TradingAccount{
			ID:          utils.GenerateUUIDv7(),
			UserID:      rec.user.ID,
			PurchaseID:  &purchaseID,
			AccountSize: tier.AccountSize,
			AccountType: tier.Type,
			Platform:    rec.purchase.Platform,
			Status:      entities.AccountStatusPending,
			Balance:     tier.NominalSize(),
			PlanID:      tier.ID,
			ReceiptID:   f.ReceiptID,
		}
		if err := u.accounts.Create(txCtx, rec.account); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return fmt.Errorf("%w: %v", errReceiptConflict, err)
			}
			return fmt.Errorf("failed to create trading account: %w", err)
		}

		if err := u.ledger.Create(txCtx, &entities.WebhookEvent{
			ReceiptID:  f.ReceiptID,
			EventType:  eventType,
			Outcome:    entities.WebhookOutcomeProcessed,
			PurchaseID: &purchaseID,
			Payload:    string(raw),
			ReceivedAt: u.now(),
		}); err != nil {
			return fmt.Errorf("failed to record webhook event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *WebhookUsecase) resolveUser(ctx context.Context, f saleFields) (*entities.User, bool, error) {
	user, err := u.users.GetByEmail(ctx, f.Email)
	if err == nil {
		if user.FirstName == "" && user.LastName == "" && f.Name != "" {
			user.FirstName, user.LastName = f.FirstName, f.LastName
			if user.Name == "" {
				user.Name = f.Name
			}
			if err := u.users.Update(ctx, user); err != nil {
				return nil, false, fmt.Errorf("failed to update user: %w", err)
			}
		}
		return user, false, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &entities.User{
		ID:                     utils.GenerateUUIDv7(),
		Email:                  f.Email,
		Name:                   f.Name,
		FirstName:              f.FirstName,
		LastName:               f.LastName,
		Country:                countryOf(f.Billing),
		KYCStatus:              entities.KYCStatusPending,
		RequiresPasswordChange: true,
	}
	if user.Name == "" {
		user.Name = f.FirstName
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, false, fmt.Errorf("%w: %v", errUserConflict, err)
		}
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	return user, true, nil
}

// recordPurchase completes the checkout order the processor echoed back, or
// records a new completed card purchase.
func (u *WebhookUsecase) recordPurchase(ctx context.Context, user *entities.User, f saleFields, plan entities.Plan) (*entities.Purchase, error) {
	now := u.now()
	userID := user.ID

	if linked := u.linkedOrder(ctx, f.OrderID); linked != nil {
		linked.Complete(f.ReceiptID, now)
		linked.UserID = &userID
		linked.PaymentMethod = entities.PaymentMethodCard
		if linked.Platform == "" || linked.Platform == notAvailable {
			linked.Platform = f.Platform
		}
		if err := u.purchases.CompletePending(ctx, linked); err != nil {
			if errors.Is(err, domainerrors.ErrInvalidTransition) {
				return nil, fmt.Errorf("%w: order %s already completed", errReceiptConflict, linked.ID)
			}
			return nil, purchaseWriteError(err)
		}
		return linked, nil
	}

	price := plan.Price
	if price.IsZero() && f.HasPrice {
		price = f.Price
	}
	purchase := &entities.Purchase{
		ID:             utils.GenerateUUIDv7(),
		UserID:         &userID,
		Email:          f.Email,
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		AccountSize:    plan.AccountSize,
		AccountType:    plan.Type,
		AccountPrice:   price,
		Platform:       f.Platform,
		PlanID:         plan.ID,
		PaymentMethod:  entities.PaymentMethodCard,
		ReceiptID:      null.StringFrom(f.ReceiptID),
		BillingAddress: f.Billing,
		Status:         entities.PurchaseStatusCompleted,
		Source:         entities.PurchaseSourceWebhook,
		CompletedAt:    &now,
	}
	if err := u.purchases.Create(ctx, purchase); err != nil {
		return nil, purchaseWriteError(err)
	}
	return purchase, nil
}

// linkedOrder returns the pending checkout order named by the delivery, if any.
func (u *WebhookUsecase) linkedOrder(ctx context.Context, orderID string) *entities.Purchase {
	if orderID == "" {
		return nil
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil
	}
	p, err := u.purchases.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "Failed to load linked order", zap.String("orderId", orderID), zap.Error(err))
		}
		return nil
	}
	if p.Status != entities.PurchaseStatusPending || p.Source != entities.PurchaseSourceCheckoutForm {
		return nil
	}
	return p
}

// planOf rebuilds the tier snapshot stored on a purchase.
func planOf(p *entities.Purchase) entities.Plan {
	return entities.Plan{
		ID:          p.PlanID,
		AccountSize: p.AccountSize,
		Price:       p.AccountPrice,
		Type:        p.AccountType,
	}
}

func purchaseWriteError(err error) error {
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		return fmt.Errorf("%w: %v", errReceiptConflict, err)
	}
	return fmt.Errorf("failed to record purchase: %w", err)
}

func countryOf(b entities.BillingAddress) string {
	if b.Country == notAvailable {
		return ""
	}
	return b.Country
}
