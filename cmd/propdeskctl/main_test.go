package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"propdesk.backend/internal/config"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/repositories"
	"propdesk.backend/internal/infrastructure/repositories/repotest"
	"propdesk.backend/internal/usecases"
	"propdesk.backend/pkg/crypto"
	"propdesk.backend/pkg/jwt"
)

type fakeAdminRuntime struct {
	users   map[string]*entities.User
	setErr  error
	updates []bool
}

func (f *fakeAdminRuntime) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, domainerrors.ErrNotFound
}

func (f *fakeAdminRuntime) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) (*entities.User, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	f.updates = append(f.updates, isAdmin)
	for _, u := range f.users {
		if u.ID == id {
			u.IsAdmin = isAdmin
			return u, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func testDeps(cfg *config.Config, runtime adminRuntime, closer io.Closer) (cliDeps, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return cliDeps{
		loadEnv: func() error { return errors.New("no .env") },
		loadCfg: func() *config.Config { return cfg },
		prepare: func(*config.Config) (adminRuntime, io.Closer, error) { return runtime, closer, nil },
		in:      strings.NewReader(""),
		out:     out,
	}, out
}

func baseConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Env: "development"},
		JWT:     config.JWTConfig{Secret: "dev-secret", Issuer: "propdesk-dev", AccessExpiry: time.Hour},
		Webhook: config.WebhookConfig{Secret: "whsec_env"},
	}
}

func execute(deps cliDeps, args ...string) error {
	root := newRootCmd(deps)
	root.SetArgs(args)
	return root.Execute()
}

// outputValue returns the value of a KEY=value line.
func outputValue(t *testing.T, out, key string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, key+"="); ok {
			return v
		}
	}
	t.Fatalf("%s not found in output:\n%s", key, out)
	return ""
}

func TestKeygen(t *testing.T) {
	deps, out := testDeps(baseConfig(), nil, nil)
	require.NoError(t, execute(deps, "keygen"))

	key := outputValue(t, out.String(), "CREDENTIALS_ENCRYPTION_KEY")
	assert.Len(t, key, 64)
	_, err := crypto.NewSealer(key)
	require.NoError(t, err)

	secret := outputValue(t, out.String(), "WHOP_WEBHOOK_SECRET")
	assert.True(t, strings.HasPrefix(secret, "whsec_"))
	assert.Len(t, secret, len("whsec_")+48)

	deps, _ = testDeps(baseConfig(), nil, nil)
	assert.Error(t, execute(deps, "keygen", "--secret-bytes", "8"))
}

func TestKeygen_RandomFailure(t *testing.T) {
	orig := randomHex
	t.Cleanup(func() { randomHex = orig })
	randomHex = func(int) (string, error) { return "", errors.New("entropy exhausted") }

	deps, _ := testDeps(baseConfig(), nil, nil)
	assert.ErrorContains(t, execute(deps, "keygen"), "entropy exhausted")
}

func TestSignWebhook(t *testing.T) {
	payload := []byte(`{"action":"payment.succeeded","data":{"receipt_id":"rcpt_1"}}`)

	t.Run("stdin with explicit secret", func(t *testing.T) {
		deps, out := testDeps(baseConfig(), nil, nil)
		deps.in = bytes.NewReader(payload)
		require.NoError(t, execute(deps, "sign-webhook", "--secret", "whsec_flag"))

		sig := strings.TrimSpace(out.String())
		assert.NoError(t, usecases.VerifySignature("whsec_flag", payload, sig))
	})

	t.Run("file with env secret as header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "payload.json")
		require.NoError(t, os.WriteFile(path, payload, 0o600))

		deps, out := testDeps(baseConfig(), nil, nil)
		require.NoError(t, execute(deps, "sign-webhook", "--header", path))

		line := strings.TrimSpace(out.String())
		assert.Equal(t, "whop-signature: "+usecases.SignPayload("whsec_env", payload), line)
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Webhook.Secret = ""
		deps, _ := testDeps(cfg, nil, nil)
		deps.in = bytes.NewReader(payload)
		assert.ErrorContains(t, execute(deps, "sign-webhook"), "WHOP_WEBHOOK_SECRET")
	})

	t.Run("empty payload", func(t *testing.T) {
		deps, _ := testDeps(baseConfig(), nil, nil)
		assert.ErrorContains(t, execute(deps, "sign-webhook"), "payload is empty")
	})

	t.Run("missing file", func(t *testing.T) {
		deps, _ := testDeps(baseConfig(), nil, nil)
		assert.ErrorContains(t, execute(deps, "sign-webhook", filepath.Join(t.TempDir(), "nope.json")), "failed to read payload")
	})
}

func TestDevToken(t *testing.T) {
	deps, out := testDeps(baseConfig(), nil, nil)
	require.NoError(t, execute(deps, "dev-token", "--email", "dev@example.com", "--name", "Dev", "--subject", "sub-1"))

	token := outputValue(t, out.String(), "TOKEN")
	claims, err := jwt.NewJWTService("dev-secret", time.Hour, "propdesk-dev").ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "Dev", claims.Name)
	assert.Equal(t, "sub-1", claims.Subject)
	assert.Equal(t, "sub-1", outputValue(t, out.String(), "sub"))

	deps, _ = testDeps(baseConfig(), nil, nil)
	assert.ErrorContains(t, execute(deps, "dev-token"), "--email is required")

	prod := baseConfig()
	prod.Server.Env = "production"
	deps, _ = testDeps(prod, nil, nil)
	assert.ErrorContains(t, execute(deps, "dev-token", "--email", "dev@example.com"), "production")
}

func TestGrantAdmin(t *testing.T) {
	newRuntime := func() *fakeAdminRuntime {
		return &fakeAdminRuntime{users: map[string]*entities.User{
			"ops@example.com": {ID: uuid.New(), Email: "ops@example.com"},
		}}
	}

	t.Run("grants and closes the connection", func(t *testing.T) {
		rt := newRuntime()
		closer := &closeRecorder{}
		deps, out := testDeps(baseConfig(), rt, closer)

		require.NoError(t, execute(deps, "grant-admin", "--email", " ops@example.com "))
		assert.Equal(t, []bool{true}, rt.updates)
		assert.Equal(t, "true", outputValue(t, out.String(), "is_admin"))
		assert.True(t, closer.closed)
	})

	t.Run("revokes", func(t *testing.T) {
		rt := newRuntime()
		rt.users["ops@example.com"].IsAdmin = true
		deps, out := testDeps(baseConfig(), rt, nil)

		require.NoError(t, execute(deps, "grant-admin", "--email", "ops@example.com", "--revoke"))
		assert.Equal(t, "false", outputValue(t, out.String(), "is_admin"))
	})

	t.Run("unknown profile", func(t *testing.T) {
		deps, _ := testDeps(baseConfig(), newRuntime(), nil)
		err := execute(deps, "grant-admin", "--email", "ghost@example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	t.Run("update failure", func(t *testing.T) {
		rt := newRuntime()
		rt.setErr = errors.New("db down")
		deps, _ := testDeps(baseConfig(), rt, nil)
		assert.ErrorContains(t, execute(deps, "grant-admin", "--email", "ops@example.com"), "db down")
	})

	t.Run("prepare failure", func(t *testing.T) {
		deps, _ := testDeps(baseConfig(), nil, nil)
		deps.prepare = func(*config.Config) (adminRuntime, io.Closer, error) {
			return nil, nil, errors.New("failed to connect db")
		}
		assert.ErrorContains(t, execute(deps, "grant-admin", "--email", "ops@example.com"), "failed to connect db")
	})

	t.Run("email required", func(t *testing.T) {
		deps, _ := testDeps(baseConfig(), newRuntime(), nil)
		assert.ErrorContains(t, execute(deps, "grant-admin"), "--email is required")
	})
}

func TestPrepareAdminRuntime_DatabaseError(t *testing.T) {
	orig := openAdminDB
	t.Cleanup(func() { openAdminDB = orig })
	openAdminDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("refused") }

	_, _, err := prepareAdminRuntime(baseConfig())
	assert.ErrorContains(t, err, "failed to connect db")
}

func TestGrantAdmin_AgainstDatabase(t *testing.T) {
	db := repotest.NewDB(t)
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), &entities.User{Email: "ops@example.com", Name: "Ops"}))

	orig, origSQL := openAdminDB, openAdminSQLDB
	t.Cleanup(func() { openAdminDB, openAdminSQLDB = orig, origSQL })
	openAdminDB = func(config.DatabaseConfig) (*gorm.DB, error) { return db, nil }
	openAdminSQLDB = func(*gorm.DB) (io.Closer, error) { return nopCloser{}, nil }

	cfg := baseConfig()
	cfg.Security.CredentialsEncryptionKey = strings.Repeat("ab", 32)
	deps, out := testDeps(cfg, nil, nil)
	deps.prepare = prepareAdminRuntime

	require.NoError(t, execute(deps, "grant-admin", "--email", "OPS@example.com"))
	assert.Equal(t, "true", outputValue(t, out.String(), "is_admin"))

	stored, err := repositories.NewUserRepository(db).GetByEmail(context.Background(), "ops@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
}
