package usecases_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"propdesk.backend/internal/config"
	"propdesk.backend/internal/usecases"
)

func TestPlanCatalog_BuiltInPlan(t *testing.T) {
	c, err := usecases.NewPlanCatalog(nil)
	require.NoError(t, err)

	plan, ok := c.Lookup(usecases.DefaultPlanID)
	require.True(t, ok)
	require.Equal(t, "$25,000", plan.AccountSize)
	require.True(t, decimal.NewFromInt(247).Equal(plan.Price))
	require.Equal(t, "Two-Step", plan.Type)
	require.True(t, decimal.NewFromInt(25000).Equal(plan.NominalSize()))

	_, ok = c.Lookup("plan_unknown")
	require.False(t, ok)
}

func TestPlanCatalog_ExtraEntries(t *testing.T) {
	c, err := usecases.NewPlanCatalog([]config.PlanEntry{
		{ID: "plan_b", AccountSize: "$50,000", Price: "397", Type: "One-Step"},
		{ID: usecases.DefaultPlanID, AccountSize: "$25,000", Price: "199.50", Type: "Two-Step"},
	})
	require.NoError(t, err)

	plan, ok := c.Lookup(" plan_b ")
	require.True(t, ok)
	require.Equal(t, "One-Step", plan.Type)

	plan, _ = c.Lookup(usecases.DefaultPlanID)
	require.Equal(t, "199.5", plan.Price.String())

	all := c.All()
	require.Len(t, all, 2)
	require.Equal(t, "plan_FyRDLrDEd8ilp", all[0].ID)
}

func TestPlanCatalog_InvalidPrice(t *testing.T) {
	_, err := usecases.NewPlanCatalog([]config.PlanEntry{{ID: "plan_x", Price: "cheap"}})
	require.Error(t, err)
}
