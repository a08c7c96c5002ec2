package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"propdesk.backend/internal/domain/entities"
	domainRepos "propdesk.backend/internal/domain/repositories"
	"propdesk.backend/internal/infrastructure/mailer"
	"propdesk.backend/internal/infrastructure/repositories"
	"propdesk.backend/internal/infrastructure/repositories/repotest"
	"propdesk.backend/pkg/utils"
)

// MockPriceSource replays scripted upstream responses.
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) FetchPrices(ctx context.Context) (entities.PriceSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.PriceSnapshot), args.Error(1)
}

// MockNotifier records every transition notification.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderPending(ctx context.Context, p *entities.Purchase) {
	m.Called(ctx, p)
}

func (m *MockNotifier) OrderCompleted(ctx context.Context, p *entities.Purchase, account *entities.TradingAccount, newUser bool) {
	m.Called(ctx, p, account, newUser)
}

func (m *MockNotifier) CredentialsIssued(ctx context.Context, user *entities.User, account *entities.TradingAccount) {
	m.Called(ctx, user, account)
}

func (m *MockNotifier) KYCStatusChanged(ctx context.Context, user *entities.User, sub *entities.KYCSubmission) {
	m.Called(ctx, user, sub)
}

func (m *MockNotifier) WithdrawalStatusChanged(ctx context.Context, user *entities.User, w *entities.Withdrawal) {
	m.Called(ctx, user, w)
}

// fakeSender captures outgoing mail.
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}

type publishedEvent struct {
	Type string
	Data interface{}
}

// fakePublisher captures domain events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Data: data})
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeMetrics counts recorded labels.
type fakeMetrics struct {
	mu     sync.Mutex
	prices map[string]int
	hooks  map[string]int
	emails map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{prices: map[string]int{}, hooks: map[string]int{}, emails: map[string]int{}}
}

func (m *fakeMetrics) PriceFetch(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[result]++
}

func (m *fakeMetrics) WebhookEvent(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[outcome]++
}

func (m *fakeMetrics) EmailSent(template string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.emails[template+"/"+result]++
}

func (m *fakeMetrics) price(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prices[result]
}

func (m *fakeMetrics) hook(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hooks[outcome]
}

var errUpstream = errors.New("upstream exploded")

// store bundles real repositories over a private sqlite database.
type store struct {
	db          *gorm.DB
	users       *repositories.UserRepository
	purchases   *repositories.PurchaseRepository
	accounts    *repositories.TradingAccountRepository
	kyc         *repositories.KYCRepository
	withdrawals *repositories.WithdrawalRepository
	ledger      *repositories.WebhookEventRepository
	uow         domainRepos.UnitOfWork
}

func newStore(t *testing.T) *store {
	t.Helper()
	db := repotest.NewDB(t)
	return &store{
		db:          db,
		users:       repositories.NewUserRepository(db),
		purchases:   repositories.NewPurchaseRepository(db),
		accounts:    repositories.NewTradingAccountRepository(db, repotest.NewSealer(t)),
		kyc:         repositories.NewKYCRepository(db),
		withdrawals: repositories.NewWithdrawalRepository(db),
		ledger:      repositories.NewWebhookEventRepository(db),
		uow:         repositories.NewUnitOfWork(db),
	}
}

func splitWords(s string) []string { return strings.Fields(s) }

func joinWords(w []string) string { return strings.Join(w, " ") }

func upper(s string) string { return strings.ToUpper(s) }

func pageOne() utils.PaginationParams { return utils.PaginationParams{Page: 1, Limit: 50} }
