package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storelinkhq/storelink-backend/pkg/enums"
)

// AgentGrant describes what a single automated agent may do against a store.
type AgentGrant struct {
	Enabled             bool               `json:"enabled"`
	GrantedCapabilities []enums.Capability `json:"granted_capabilities"`
	LastActivityAt      *time.Time         `json:"last_activity_at,omitempty"`
}

// HasCapability reports whether the grant includes the capability.
func (g AgentGrant) HasCapability(capability enums.Capability) bool {
	for _, granted := range g.GrantedCapabilities {
		if granted == capability {
			return true
		}
	}
	return false
}

// AgentAccess maps agent identifiers to their grants, persisted as JSONB.
type AgentAccess map[string]AgentGrant

// Clone returns an independent copy of the grant map.
func (a AgentAccess) Clone() AgentAccess {
	if a == nil {
		return nil
	}
	return a.Merge(nil)
}

// Merge returns a copy with only the supplied agents overridden.
func (a AgentAccess) Merge(partial AgentAccess) AgentAccess {
	merged := make(AgentAccess, len(a))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// Value marshals the map into JSON for Postgres.
func (a AgentAccess) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (a *AgentAccess) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("agent access: unsupported scan type %T", value)
	}

	result := make(AgentAccess)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*a = result
	return nil
}
