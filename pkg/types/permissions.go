package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/storelinkhq/storelink-backend/pkg/enums"
)

// Permissions maps store-level permission flags, persisted as JSONB.
type Permissions map[enums.Permission]bool

// DefaultPermissions returns the flags assigned to a freshly connected store:
// every read flag plus write_products, write_orders and write_inventory.
// write_customers stays off until the owner opts in.
func DefaultPermissions() Permissions {
	return Permissions{
		enums.PermissionReadProducts:   true,
		enums.PermissionWriteProducts:  true,
		enums.PermissionReadOrders:     true,
		enums.PermissionWriteOrders:    true,
		enums.PermissionReadCustomers:  true,
		enums.PermissionWriteCustomers: false,
		enums.PermissionReadAnalytics:  true,
		enums.PermissionReadInventory:  true,
		enums.PermissionWriteInventory: true,
	}
}

// Allows reports whether the permission flag is present and enabled.
func (p Permissions) Allows(permission enums.Permission) bool {
	return p[permission]
}

// Clone returns an independent copy of the flag map.
func (p Permissions) Clone() Permissions {
	if p == nil {
		return nil
	}
	return p.Merge(nil)
}

// Merge returns a copy with only the supplied flags overridden.
func (p Permissions) Merge(partial Permissions) Permissions {
	merged := make(Permissions, len(p))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// Value marshals the map into JSON for Postgres.
func (p Permissions) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (p *Permissions) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("permissions: unsupported scan type %T", value)
	}

	result := make(Permissions)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*p = result
	return nil
}
