package usecases

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"propdesk.backend/internal/config"
	"propdesk.backend/internal/domain/entities"
)

// DefaultPlanID is the processor plan sold on the public checkout page.
const DefaultPlanID = "plan_FyRDLrDEd8ilp"

// PlanCatalog maps processor plan ids to challenge tiers. It is read-only after construction.
type PlanCatalog struct {
	plans map[string]entities.Plan
}

// NewPlanCatalog builds the catalog from the built-in plans plus extra entries.
// Extra entries override built-in ones with the same id.
func NewPlanCatalog(extra []config.PlanEntry) (*PlanCatalog, error) {
	c := &PlanCatalog{plans: map[string]entities.Plan{
		DefaultPlanID: {
			ID:          DefaultPlanID,
			AccountSize: "$25,000",
			Price:       decimal.NewFromInt(247),
			Type:        "Two-Step",
		},
	}}

	for _, e := range extra {
		price := decimal.Zero
		if s := strings.TrimSpace(e.Price); s != "" {
			p, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("plan %s has invalid price %q: %w", e.ID, e.Price, err)
			}
			price = p
		}
		c.plans[e.ID] = entities.Plan{
			ID:          e.ID,
			AccountSize: e.AccountSize,
			Price:       price,
			Type:        e.Type,
		}
	}
	return c, nil
}

// Lookup returns the plan for id.
func (c *PlanCatalog) Lookup(id string) (entities.Plan, bool) {
	p, ok := c.plans[strings.TrimSpace(id)]
	return p, ok
}

// All returns the plans ordered by id.
func (c *PlanCatalog) All() []entities.Plan {
	out := make([]entities.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
