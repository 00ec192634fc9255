package enums

import "fmt"

// Capability is an agent-scoped grant, distinct from store-level permissions.
// An agent-gated action requires both the store permission flag and the
// capability mapped to it.
type Capability string

const (
	CapabilityProductOptimization Capability = "product_optimization"
	CapabilityOrderTracking       Capability = "order_tracking"
	CapabilityOrderManagement     Capability = "order_management"
	CapabilityCustomerInsights    Capability = "customer_insights"
	CapabilityCustomerManagement  Capability = "customer_management"
	CapabilityAnalyticsReporting  Capability = "analytics_reporting"
	CapabilityInventoryManagement Capability = "inventory_management"
)

var validCapabilities = []Capability{
	CapabilityProductOptimization,
	CapabilityOrderTracking,
	CapabilityOrderManagement,
	CapabilityCustomerInsights,
	CapabilityCustomerManagement,
	CapabilityAnalyticsReporting,
	CapabilityInventoryManagement,
}

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}

// IsValid reports whether the capability is recognized.
func (c Capability) IsValid() bool {
	for _, candidate := range validCapabilities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCapability converts a raw string into a Capability.
func ParseCapability(value string) (Capability, error) {
	for _, candidate := range validCapabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid capability %q", value)
}
