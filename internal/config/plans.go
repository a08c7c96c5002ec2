package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// PlanEntry is one row of the plan catalog file.
type PlanEntry struct {
	ID          string `mapstructure:"id"`
	AccountSize string `mapstructure:"account_size"`
	Price       string `mapstructure:"price"`
	Type        string `mapstructure:"type"`
}

// LoadPlanFile reads a yaml or json catalog of the form
//
//	plans:
//	  - id: plan_x
//	    account_size: "$50,000"
//	    price: 397
//	    type: Two-Step
func LoadPlanFile(path string) ([]PlanEntry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read plan catalog %s: %w", path, err)
	}

	var entries []PlanEntry
	if err := v.UnmarshalKey("plans", &entries); err != nil {
		return nil, fmt.Errorf("failed to decode plan catalog: %w", err)
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("plan catalog entry %d has no id", i)
		}
	}
	return entries, nil
}
