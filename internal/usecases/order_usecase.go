package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/domain/repositories"
	"propdesk.backend/internal/infrastructure/events"
	"propdesk.backend/pkg/logger"
	"propdesk.backend/pkg/utils"
)

const cryptoAmountDecimals = 8

// OrderNotifier is told about newly submitted crypto orders.
type OrderNotifier interface {
	OrderPending(ctx context.Context, p *entities.Purchase)
}

// OrderUsecase handles crypto quotes and order submission.
type OrderUsecase struct {
	prices     PriceQuoter
	challenges ChallengeStore
	purchases  repositories.PurchaseRepository
	catalog    *PlanCatalog
	notifier   OrderNotifier
	events     EventPublisher
	wallets    map[entities.Asset]string
	quoteTTL   time.Duration

	now       func() time.Time
	newPhrase func() (string, error)
}

// NewOrderUsecase creates a new order usecase
func NewOrderUsecase(
	prices PriceQuoter,
	challenges ChallengeStore,
	purchases repositories.PurchaseRepository,
	catalog *PlanCatalog,
	notifier OrderNotifier,
	publisher EventPublisher,
	wallets map[string]string,
	quoteTTL time.Duration,
) *OrderUsecase {
	byAsset := make(map[entities.Asset]string, len(wallets))
	for k, v := range wallets {
		if asset, err := entities.ParseAsset(k); err == nil && strings.TrimSpace(v) != "" {
			byAsset[asset] = strings.TrimSpace(v)
		}
	}
	if quoteTTL <= 0 {
		quoteTTL = 30 * time.Minute
	}
	return &OrderUsecase{
		prices:     prices,
		challenges: challenges,
		purchases:  purchases,
		catalog:    catalog,
		notifier:   notifier,
		events:     publisherOrNoop(publisher),
		wallets:    byAsset,
		quoteTTL:   quoteTTL,
		now:        time.Now,
		newPhrase:  func() (string, error) { return GeneratePhrase(PhraseWords) },
	}
}

// Quote converts a USD price into a crypto amount and issues a verification phrase.
func (u *OrderUsecase) Quote(ctx context.Context, input *entities.CryptoQuoteInput) (*entities.CryptoQuote, error) {
	if !input.USDAmount.IsPositive() {
		return nil, domainerrors.BadRequest("usdAmount must be positive")
	}
	asset, err := entities.ParseAsset(input.Asset)
	if err != nil {
		return nil, err
	}
	address, ok := u.wallets[asset]
	if !ok {
		return nil, fmt.Errorf("no receiving wallet configured for %s: %w", asset, domainerrors.ErrUnsupportedAsset)
	}

	amount := input.USDAmount
	if !asset.IsStable() {
		prices := u.prices.GetPrices(ctx)
		price := decimal.NewFromFloat(prices.Price(asset))
		if !price.IsPositive() {
			return nil, fmt.Errorf("no price available for %s", asset)
		}
		amount = input.USDAmount.DivRound(price, cryptoAmountDecimals)
	}

	phrase, err := u.newPhrase()
	if err != nil {
		return nil, err
	}

	quote := entities.CryptoQuote{
		QuoteID:      utils.GenerateUUIDv7().String(),
		Asset:        asset,
		USDAmount:    input.USDAmount,
		CryptoAmount: amount,
		Address:      address,
		Phrase:       phrase,
		ExpiresAt:    u.now().Add(u.quoteTTL),
	}
	if err := u.challenges.Put(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to store quote: %w", err)
	}
	return &quote, nil
}

// SubmitCryptoOrder records a pending crypto purchase once the customer
// retypes the phrase of a live quote.
func (u *OrderUsecase) SubmitCryptoOrder(ctx context.Context, userID *uuid.UUID, input *entities.SubmitCryptoOrderInput) (*entities.OrderResult, error) {
	quote, err := u.challenges.Get(ctx, input.QuoteID)
	if err != nil {
		return nil, err
	}
	if !PhraseMatches(quote.Phrase, input.Phrase) {
		return nil, domainerrors.ErrPhraseMismatch
	}

	draft, err := u.resolveDraft(input.Order, false)
	if err != nil {
		return nil, err
	}
	if draft.AccountPrice.IsZero() {
		draft.AccountPrice = quote.USDAmount
	}
	if !draft.AccountPrice.Equal(quote.USDAmount) {
		return nil, domainerrors.BadRequest("quote amount does not match the order price")
	}

	now := u.now()
	purchase := newPendingPurchase(draft, userID)
	purchase.PaymentMethod = entities.PaymentMethodCrypto
	purchase.Source = entities.PurchaseSourceCryptoManual
	purchase.CryptoAsset = null.StringFrom(string(quote.Asset))
	purchase.CryptoAmount = null.StringFrom(quote.CryptoAmount.StringFixed(cryptoAmountDecimals))
	purchase.CryptoAddress = null.StringFrom(quote.Address)
	purchase.VerificationPhrase = null.StringFrom(quote.Phrase)
	purchase.PaymentSentAt = &now

	// Claim the quote before writing so a resubmission cannot record a
	// second order against it.
	if _, err := u.challenges.Take(ctx, quote.QuoteID); err != nil {
		if errors.Is(err, domainerrors.ErrQuoteExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to claim quote: %w", err)
	}
	if err := u.purchases.Create(ctx, purchase); err != nil {
		if putErr := u.challenges.Put(ctx, quote); putErr != nil {
			logger.Warn(ctx, "Failed to restore quote", zap.String("quoteId", quote.QuoteID), zap.Error(putErr))
		}
		return nil, fmt.Errorf("failed to record crypto order: %w", err)
	}

	logger.Info(ctx, "Crypto order submitted",
		zap.String("orderId", purchase.ID.String()),
		zap.String("asset", string(quote.Asset)),
		zap.String("amount", purchase.CryptoAmount.String),
	)

	if u.notifier != nil {
		u.notifier.OrderPending(ctx, purchase)
	}
	if err := u.events.Publish(ctx, events.OrderPending, purchase); err != nil {
		logger.Warn(ctx, "Failed to publish order event", zap.String("orderId", purchase.ID.String()), zap.Error(err))
	}

	return &entities.OrderResult{Success: true, OrderID: purchase.ID.String()}, nil
}

// SubmitCheckoutOrder records a pending card purchase for a catalog plan.
// The reconciler completes it when the processor echoes its id back.
func (u *OrderUsecase) SubmitCheckoutOrder(ctx context.Context, userID *uuid.UUID, input *entities.OrderDraft) (*entities.OrderResult, error) {
	draft, err := u.resolveDraft(*input, true)
	if err != nil {
		return nil, err
	}

	purchase := newPendingPurchase(draft, userID)
	purchase.PaymentMethod = entities.PaymentMethodCard
	purchase.Source = entities.PurchaseSourceCheckoutForm

	if err := u.purchases.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to record checkout order: %w", err)
	}

	logger.Info(ctx, "Checkout order submitted",
		zap.String("orderId", purchase.ID.String()),
		zap.String("planId", purchase.PlanID),
	)
	return &entities.OrderResult{Success: true, OrderID: purchase.ID.String()}, nil
}

// resolveDraft fills tier fields from the catalog. Catalog values win over
// what the client sent.
func (u *OrderUsecase) resolveDraft(draft entities.OrderDraft, requirePlan bool) (entities.OrderDraft, error) {
	draft.Email = strings.ToLower(strings.TrimSpace(draft.Email))
	if draft.Email == "" {
		return draft, domainerrors.ErrMissingEmail
	}

	plan, ok := u.catalog.Lookup(draft.PlanID)
	switch {
	case ok:
		draft.PlanID = plan.ID
		draft.AccountSize = plan.AccountSize
		draft.AccountType = plan.Type
		draft.AccountPrice = plan.Price
	case requirePlan:
		return draft, fmt.Errorf("plan %q: %w", draft.PlanID, domainerrors.ErrUnknownPlan)
	default:
		if strings.TrimSpace(draft.AccountSize) == "" {
			return draft, domainerrors.BadRequest("accountSize is required")
		}
	}
	if draft.AccountPrice.IsNegative() {
		return draft, domainerrors.BadRequest("accountPrice must not be negative")
	}
	return draft, nil
}

func newPendingPurchase(draft entities.OrderDraft, userID *uuid.UUID) *entities.Purchase {
	return &entities.Purchase{
		ID:             utils.GenerateUUIDv7(),
		UserID:         userID,
		Email:          draft.Email,
		FirstName:      strings.TrimSpace(draft.FirstName),
		LastName:       strings.TrimSpace(draft.LastName),
		AccountSize:    draft.AccountSize,
		AccountType:    draft.AccountType,
		AccountPrice:   draft.AccountPrice,
		Platform:       draft.Platform,
		PlanID:         draft.PlanID,
		BillingAddress: draft.BillingAddress,
		Status:         entities.PurchaseStatusPending,
	}
}
