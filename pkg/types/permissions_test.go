package types

import (
	"testing"
	"time"

	"github.com/storelinkhq/storelink-backend/pkg/enums"
)

func TestDefaultPermissions(t *testing.T) {
	defaults := DefaultPermissions()

	if !defaults.Allows(enums.PermissionReadProducts) {
		t.Fatal("read_products should default to enabled")
	}
	if !defaults.Allows(enums.PermissionWriteOrders) {
		t.Fatal("write_orders should default to enabled")
	}
	if defaults.Allows(enums.PermissionWriteCustomers) {
		t.Fatal("write_customers should default to disabled")
	}
	if len(defaults) != len(enums.AllPermissions) {
		t.Fatalf("defaults should cover every permission, got %d of %d", len(defaults), len(enums.AllPermissions))
	}
}

func TestPermissionsMergeOnlyTouchesSuppliedKeys(t *testing.T) {
	base := DefaultPermissions()
	merged := base.Merge(Permissions{enums.PermissionWriteCustomers: true})

	if !merged.Allows(enums.PermissionWriteCustomers) {
		t.Fatal("merge should enable write_customers")
	}
	if !merged.Allows(enums.PermissionReadOrders) {
		t.Fatal("merge should leave read_orders untouched")
	}
	if base.Allows(enums.PermissionWriteCustomers) {
		t.Fatal("merge must not mutate the receiver")
	}
}

func TestPermissionsRoundTrip(t *testing.T) {
	original := DefaultPermissions()

	value, err := original.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var decoded Permissions
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if decoded.Allows(enums.PermissionWriteCustomers) {
		t.Fatal("decoded permissions drifted from original")
	}
	if !decoded.Allows(enums.PermissionWriteInventory) {
		t.Fatal("decoded permissions lost write_inventory")
	}
}

func TestAgentGrantHasCapability(t *testing.T) {
	grant := AgentGrant{
		Enabled:             true,
		GrantedCapabilities: []enums.Capability{enums.CapabilityOrderTracking},
	}
	if !grant.HasCapability(enums.CapabilityOrderTracking) {
		t.Fatal("expected capability to be granted")
	}
	if grant.HasCapability(enums.CapabilityOrderManagement) {
		t.Fatal("ungranted capability should be denied")
	}
}

func TestAgentAccessMerge(t *testing.T) {
	now := time.Now().UTC()
	base := AgentAccess{
		"pricing-bot": {Enabled: true, GrantedCapabilities: []enums.Capability{enums.CapabilityProductOptimization}},
		"order-bot":   {Enabled: true, GrantedCapabilities: []enums.Capability{enums.CapabilityOrderTracking}},
	}

	merged := base.Merge(AgentAccess{
		"order-bot": {Enabled: false, LastActivityAt: &now},
	})

	if merged["order-bot"].Enabled {
		t.Fatal("merge should disable order-bot")
	}
	if !merged["pricing-bot"].Enabled {
		t.Fatal("merge should leave pricing-bot untouched")
	}
	if base["order-bot"].LastActivityAt != nil {
		t.Fatal("merge must not mutate the receiver")
	}
}

func TestAgentAccessScanRejectsUnknownType(t *testing.T) {
	var access AgentAccess
	if err := access.Scan(42); err == nil {
		t.Fatal("expected scan error for unsupported type")
	}
}
