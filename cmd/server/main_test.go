package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"propdesk.backend/internal/config"
	"propdesk.backend/internal/infrastructure/repositories/repotest"
	"propdesk.backend/internal/interfaces/http/handlers"
	"propdesk.backend/internal/usecases"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               "18080",
			Env:                "development",
			CORSAllowedOrigins: []string{"http://localhost:3000"},
		},
		JWT:     config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour},
		Webhook: config.WebhookConfig{Secret: "whsec_test"},
		Email: config.EmailConfig{
			AdminEmail:   "ops@propdesk.test",
			DashboardURL: "http://localhost:3000/dashboard",
		},
		Prices: config.PriceConfig{APIURL: "http://127.0.0.1:0", HTTPTimeout: time.Second},
		Crypto: config.CryptoConfig{
			Wallets:  map[string]string{"BTC": "bc1qdesk", "ETH": "0xdesk"},
			QuoteTTL: 30 * time.Minute,
		},
		Security: config.SecurityConfig{
			CredentialsEncryptionKey: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		},
	}
}

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv, origLoadCfg, origInitLog := loadDotenv, loadCfg, initLog
	origInitRedis, origOpenDB, origMigrate, origRunServer := initRedis, openDB, migrateDB, runServer
	t.Cleanup(func() {
		loadDotenv, loadCfg, initLog = origLoadDotenv, origLoadCfg, origInitLog
		initRedis, openDB, migrateDB, runServer = origInitRedis, origOpenDB, origMigrate, origRunServer
	})
	loadDotenv = func(...string) error { return errors.New("no .env") }
	initLog = func(string) {}
}

func serve(h http.Handler, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBuildApplication_HealthMetricsAndCORS(t *testing.T) {
	app, err := buildApplication(testConfig(), repotest.NewDB(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	w := serve(app.handler, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"propdesk-backend","version":"1.0.0"}`, w.Body.String())

	w = serve(app.handler, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "propdesk_http_request_duration_seconds")

	w = serve(app.handler, http.MethodOptions, "/api/v1/orders/checkout", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Less(t, w.Code, http.StatusMultipleChoices)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(app.handler, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildApplication_RegistersRouteTable(t *testing.T) {
	app, err := buildApplication(testConfig(), repotest.NewDB(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	expects := []struct{ method, path string }{
		{"POST", "/api/v1/webhooks/whop"},
		{"GET", "/api/v1/prices"},
		{"POST", "/api/v1/orders/crypto/quote"},
		{"POST", "/api/v1/orders/crypto"},
		{"POST", "/api/v1/orders/checkout"},
		{"POST", "/api/v1/me"},
		{"GET", "/api/v1/me"},
		{"GET", "/api/v1/me/accounts"},
		{"GET", "/api/v1/me/purchases"},
		{"GET", "/api/v1/me/kyc"},
		{"PUT", "/api/v1/me/kyc"},
		{"GET", "/api/v1/me/withdrawals"},
		{"POST", "/api/v1/me/withdrawals"},
		{"GET", "/api/v1/admin/users"},
		{"PUT", "/api/v1/admin/users/:id/admin"},
		{"GET", "/api/v1/admin/purchases"},
		{"GET", "/api/v1/admin/accounts"},
		{"PUT", "/api/v1/admin/accounts/:id/credentials"},
		{"PUT", "/api/v1/admin/accounts/:id/status"},
		{"GET", "/api/v1/admin/kyc"},
		{"PUT", "/api/v1/admin/kyc/:userId/review"},
		{"GET", "/api/v1/admin/withdrawals"},
		{"PUT", "/api/v1/admin/withdrawals/:id"},
		{"POST", "/api/v1/admin/emails/:template"},
	}

	registered := map[string]bool{}
	for _, r := range app.engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, exp := range expects {
		assert.True(t, registered[exp.method+" "+exp.path], "route %s %s not registered", exp.method, exp.path)
	}
}

func TestBuildApplication_WebhookEndToEnd(t *testing.T) {
	app, err := buildApplication(testConfig(), repotest.NewDB(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	body := `{"action":"payment.succeeded","data":{"receipt_id":"rcpt_e2e","plan_id":"` + usecases.DefaultPlanID +
		`","user":{"email":"e2e@example.com","name":"End To End"},"metadata":{"platform":"MT5"},"final_amount":"$247.00"}}`
	w := serve(app.handler, http.MethodPost, "/api/v1/webhooks/whop", body, map[string]string{
		handlers.SignatureHeader: usecases.SignPayload("whsec_test", []byte(body)),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"purchaseId"`)

	w = serve(app.handler, http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, w.Body.String(), `propdesk_webhook_events_total{outcome="processed"} 1`)
}

func TestBuildApplication_ConfigErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Security.CredentialsEncryptionKey = "short"
	_, err := buildApplication(cfg, repotest.NewDB(t))
	require.Error(t, err)

	cfg = testConfig()
	cfg.Plans.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = buildApplication(cfg, repotest.NewDB(t))
	require.Error(t, err)

	origPublisher := newPublisher
	t.Cleanup(func() { newPublisher = origPublisher })
	newPublisher = func(string, string) (eventPublisher, error) { return nil, errors.New("broker down") }
	_, err = buildApplication(testConfig(), repotest.NewDB(t))
	require.ErrorContains(t, err, "broker down")
}

func TestBuildApplication_LoadsPlanCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plans:\n  - id: plan_50k\n    account_size: \"$50,000\"\n    price: \"397\"\n    type: Two-Step\n"), 0o600))

	cfg := testConfig()
	cfg.Plans.CatalogFile = path
	app, err := buildApplication(cfg, repotest.NewDB(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	w := serve(app.handler, http.MethodPost, "/api/v1/orders/checkout",
		`{"planId":"plan_50k","platform":"MT5","email":"fifty@example.com","firstName":"Ada","lastName":"Lovelace",`+
			`"billingAddress":{"line1":"1 Main St","city":"London","country":"GB"}}`,
		map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRunMainProcess(t *testing.T) {
	t.Run("database failure", func(t *testing.T) {
		withMainHooks(t)
		loadCfg = testConfig
		openDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("connection refused") }

		err := runMainProcess()
		require.ErrorContains(t, err, "failed to connect to database")
	})

	t.Run("redis failure", func(t *testing.T) {
		withMainHooks(t)
		loadCfg = func() *config.Config {
			cfg := testConfig()
			cfg.Redis.URL = "redis://127.0.0.1:0"
			return cfg
		}
		initRedis = func(string, string) error { return errors.New("dial failed") }

		err := runMainProcess()
		require.ErrorContains(t, err, "failed to initialize redis")
	})

	t.Run("production config rejected", func(t *testing.T) {
		withMainHooks(t)
		loadCfg = func() *config.Config {
			cfg := testConfig()
			cfg.Server.Env = "production"
			cfg.Webhook.Secret = ""
			return cfg
		}
		require.ErrorContains(t, runMainProcess(), "invalid configuration")
	})

	t.Run("boots and serves until stopped", func(t *testing.T) {
		withMainHooks(t)
		loadCfg = testConfig
		db := repotest.NewDB(t)
		openDB = func(config.DatabaseConfig) (*gorm.DB, error) { return db, nil }
		migrateDB = func(*gorm.DB) error { return nil }

		var served *http.Server
		runServer = func(_ context.Context, srv *http.Server) error {
			served = srv
			w := serve(srv.Handler, http.MethodGet, "/health", "", nil)
			if w.Code != http.StatusOK {
				return errors.New("health check failed")
			}
			return http.ErrServerClosed
		}

		require.NoError(t, runMainProcess())
		require.NotNil(t, served)
		assert.Equal(t, ":18080", served.Addr)
	})
}
