package permissions

import "github.com/storelinkhq/storelink-backend/pkg/enums"

// requiredCapabilities maps a store permission to the capability an agent must
// hold before exercising it. Permissions without an entry are not agent-gated
// beyond the enabled flag.
var requiredCapabilities = map[enums.Permission]enums.Capability{
	enums.PermissionWriteProducts:  enums.CapabilityProductOptimization,
	enums.PermissionReadOrders:     enums.CapabilityOrderTracking,
	enums.PermissionWriteOrders:    enums.CapabilityOrderManagement,
	enums.PermissionReadCustomers:  enums.CapabilityCustomerInsights,
	enums.PermissionWriteCustomers: enums.CapabilityCustomerManagement,
	enums.PermissionReadAnalytics:  enums.CapabilityAnalyticsReporting,
	enums.PermissionWriteInventory: enums.CapabilityInventoryManagement,
}

// RequiredCapability returns the capability gating the permission, if any.
func RequiredCapability(permission enums.Permission) (enums.Capability, bool) {
	capability, ok := requiredCapabilities[permission]
	return capability, ok
}
