package models

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestTableNames(t *testing.T) {
	if got := (KYCSubmission{}).TableName(); got != "kyc_submissions" {
		t.Fatalf("unexpected KYCSubmission table name: %s", got)
	}
}

func TestAutoMigrate(t *testing.T) {
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	for _, m := range All() {
		require.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	require.True(t, db.Migrator().HasColumn(&Purchase{}, "billing_postal_code"))
	require.True(t, db.Migrator().HasIndex(&Purchase{}, "idx_purchases_receipt_id"))
	require.True(t, db.Migrator().HasColumn(&Withdrawal{}, "bank_iban"))
	require.True(t, db.Migrator().HasIndex(&TradingAccount{}, "idx_trading_accounts_receipt_id"))
	require.True(t, db.Migrator().HasIndex(&Withdrawal{}, "idx_withdrawals_user_pending"))
}

func TestPayloadColumnsAreUnbounded(t *testing.T) {
	cases := map[interface{}][]string{
		&Purchase{}:       {"FirstName", "LastName", "AccountSize", "AccountType", "Platform", "PlanID"},
		&TradingAccount{}: {"AccountSize", "AccountType", "Platform", "PlanID"},
		&User{}:           {"Name", "FirstName", "LastName", "Country"},
		&BillingAddress{}: {"Line1", "Line2", "City", "State", "PostalCode", "Country"},
	}
	for model, fields := range cases {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		for _, name := range fields {
			f := s.LookUpField(name)
			require.NotNil(t, f, "%s.%s", s.Name, name)
			require.Equal(t, "text", f.TagSettings["TYPE"], "%s.%s", s.Name, name)
		}
	}
}

func TestPendingWithdrawalIndexIsPartial(t *testing.T) {
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Withdrawal{}))

	user := uuid.New()
	insert := func(status string) error {
		return db.Create(&Withdrawal{ID: uuid.New(), UserID: user, Method: "crypto", Status: status}).Error
	}
	require.NoError(t, insert("approved"))
	require.NoError(t, insert("approved"))
	require.NoError(t, insert("pending"))
	require.Error(t, insert("pending"))
}
