package config

import (
	"time"
)

// PricingConfig carries the settlement and matching knobs. The commission
// rate is deployment configuration, not a compiled constant.
type PricingConfig struct {
	CommissionRate    float64       `yaml:"commission_rate"`
	NegotiationWindow time.Duration `yaml:"negotiation_window"`
	DispatchWindow    time.Duration `yaml:"dispatch_window"`
	SearchRadiusKM    float64       `yaml:"search_radius_km"`
	SearchLimit       int           `yaml:"search_limit"`
}

func loadPricingConfig() *PricingConfig {
	return &PricingConfig{
		CommissionRate:    getEnvAsFloat64("PRICING_COMMISSION_RATE", 0.15),
		NegotiationWindow: getEnvAsDuration("PRICING_NEGOTIATION_WINDOW", 5*time.Minute),
		DispatchWindow:    getEnvAsDuration("PRICING_DISPATCH_WINDOW", 30*time.Minute),
		SearchRadiusKM:    getEnvAsFloat64("PRICING_SEARCH_RADIUS_KM", 10.0),
		SearchLimit:       getEnvAsInt("PRICING_SEARCH_LIMIT", 20),
	}
}
