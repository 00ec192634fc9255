package enums

import "fmt"

// Permission is a store-level capability flag.
type Permission string

const (
	PermissionReadProducts   Permission = "read_products"
	PermissionWriteProducts  Permission = "write_products"
	PermissionReadOrders     Permission = "read_orders"
	PermissionWriteOrders    Permission = "write_orders"
	PermissionReadCustomers  Permission = "read_customers"
	PermissionWriteCustomers Permission = "write_customers"
	PermissionReadAnalytics  Permission = "read_analytics"
	PermissionReadInventory  Permission = "read_inventory"
	PermissionWriteInventory Permission = "write_inventory"
)

// AllPermissions enumerates every known permission in a stable order.
var AllPermissions = []Permission{
	PermissionReadProducts,
	PermissionWriteProducts,
	PermissionReadOrders,
	PermissionWriteOrders,
	PermissionReadCustomers,
	PermissionWriteCustomers,
	PermissionReadAnalytics,
	PermissionReadInventory,
	PermissionWriteInventory,
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the permission is recognized.
func (p Permission) IsValid() bool {
	for _, candidate := range AllPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts a raw string into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range AllPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
