package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/internal/infrastructure/cache"
	"propdesk.backend/internal/infrastructure/mailer"
	"propdesk.backend/internal/infrastructure/repositories"
	"propdesk.backend/internal/infrastructure/repositories/repotest"
	"propdesk.backend/internal/interfaces/http/handlers"
	"propdesk.backend/internal/interfaces/http/middleware"
	"propdesk.backend/internal/usecases"
	"propdesk.backend/pkg/jwt"
	"propdesk.backend/pkg/utils"
)

const webhookSecret = "whsec_test"

type staticPrices struct{}

func (staticPrices) GetPrices(context.Context) entities.PriceQuote {
	return entities.PriceQuote{PriceSnapshot: entities.PriceSnapshot{
		BTC: 95000, ETH: 3500, USDT: 1, USDC: 1, Source: entities.PriceSourceUpstream,
	}}
}

type captureSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *captureSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *captureSender) subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.Subject)
	}
	return out
}

type testApp struct {
	router   *gin.Engine
	jwt      *jwt.JWTService
	users    *repositories.UserRepository
	accounts *repositories.TradingAccountRepository
	mail     *captureSender
}

// newTestApp wires real usecases over an in-memory database behind the
// production route layout.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repotest.NewDB(t)
	users := repositories.NewUserRepository(db)
	purchases := repositories.NewPurchaseRepository(db)
	accounts := repositories.NewTradingAccountRepository(db, repotest.NewSealer(t))
	kyc := repositories.NewKYCRepository(db)
	withdrawals := repositories.NewWithdrawalRepository(db)
	ledger := repositories.NewWebhookEventRepository(db)
	uow := repositories.NewUnitOfWork(db)

	catalog, err := usecases.NewPlanCatalog(nil)
	require.NoError(t, err)

	mail := &captureSender{}
	notifications := usecases.NewNotificationUsecase(mail, nil, "ops@propdesk.test", "https://app.propdesk.test", nil)
	userUC := usecases.NewUserUsecase(users, accounts)
	accountUC := usecases.NewAccountUsecase(accounts, purchases, users, notifications)
	kycUC := usecases.NewKYCUsecase(kyc, users, uow, notifications)
	withdrawalUC := usecases.NewWithdrawalUsecase(withdrawals, accounts, users, uow, notifications)
	orderUC := usecases.NewOrderUsecase(staticPrices{}, cache.NewMemoryChallengeStore(), purchases, catalog, notifications, nil,
		map[string]string{"BTC": "bc1qdesk", "ETH": "0xdesk", "USDT": "0xdesk", "USDC": "0xdesk"}, 30*time.Minute)
	webhookUC := usecases.NewWebhookUsecase(webhookSecret, users, purchases, accounts, ledger, uow, catalog, notifications, nil, nil)

	jwtService := jwt.NewJWTService("test-secret", time.Hour, "")
	webhookHandler := handlers.NewWebhookHandler(webhookUC)
	priceHandler := handlers.NewPriceHandler(staticPrices{})
	orderHandler := handlers.NewOrderHandler(orderUC, userUC)
	profileHandler := handlers.NewProfileHandler(userUC, accountUC, kycUC, withdrawalUC)
	adminHandler := handlers.NewAdminHandler(userUC, accountUC, kycUC, withdrawalUC, notifications)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/webhooks/whop", webhookHandler.HandleWhop)
	v1.GET("/prices", priceHandler.GetPrices)

	orders := v1.Group("/orders", middleware.OptionalAuth(jwtService))
	orders.POST("/crypto/quote", orderHandler.CreateQuote)
	orders.POST("/crypto", orderHandler.SubmitCryptoOrder)
	orders.POST("/checkout", orderHandler.SubmitCheckoutOrder)

	auth := middleware.AuthMiddleware(jwtService)
	resolve := middleware.ResolveUser(userUC)
	v1.POST("/me", auth, profileHandler.EnsureProfile)
	me := v1.Group("/me", auth, resolve)
	me.GET("", profileHandler.GetMe)
	me.GET("/accounts", profileHandler.ListAccounts)
	me.GET("/purchases", profileHandler.ListPurchases)
	me.GET("/kyc", profileHandler.GetKYC)
	me.PUT("/kyc", profileHandler.SubmitKYC)
	me.GET("/withdrawals", profileHandler.ListWithdrawals)
	me.POST("/withdrawals", profileHandler.RequestWithdrawal)

	admin := v1.Group("/admin", auth, resolve, middleware.RequireAdmin())
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/admin", adminHandler.SetAdmin)
	admin.GET("/purchases", adminHandler.ListPurchases)
	admin.GET("/accounts", adminHandler.ListAccounts)
	admin.PUT("/accounts/:id/credentials", adminHandler.AttachCredentials)
	admin.PUT("/accounts/:id/status", adminHandler.UpdateAccountStatus)
	admin.GET("/kyc", adminHandler.ListKYC)
	admin.PUT("/kyc/:userId/review", adminHandler.ReviewKYC)
	admin.GET("/withdrawals", adminHandler.ListWithdrawals)
	admin.PUT("/withdrawals/:id", adminHandler.UpdateWithdrawal)
	admin.GET("/emails", adminHandler.ListEmailTemplates)
	admin.POST("/emails/:template", adminHandler.SendEmail)

	return &testApp{router: r, jwt: jwtService, users: users, accounts: accounts, mail: mail}
}

func (a *testApp) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := a.jwt.GenerateToken("idp|"+email, email, "Ada Lovelace")
	require.NoError(t, err)
	return tok
}

// signUp creates a profile for email and returns its bearer token.
func (a *testApp) signUp(t *testing.T, email string, admin bool) (string, *entities.User) {
	t.Helper()
	tok := a.token(t, email)
	w := a.do(t, http.MethodPost, "/api/v1/me", tok, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user, err := a.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	if admin {
		require.NoError(t, a.users.SetAdmin(context.Background(), user.ID, true))
		user.IsAdmin = true
	}
	return tok, user
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case []byte:
			buf.Write(b)
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func pageOne() utils.PaginationParams { return utils.PaginationParams{Page: 1, Limit: 50} }
