package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	"github.com/storelinkhq/storelink-backend/pkg/types"
)

// StoreDTO exposes safe store data in API responses.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Domain      string    `json:"domain"`
	DisplayName string    `json:"display_name"`

	IsActive  bool `json:"is_active"`
	IsPrimary bool `json:"is_primary"`

	SyncStatus enums.SyncStatus    `json:"sync_status"`
	LastSyncAt *time.Time          `json:"last_sync_at,omitempty"`
	SyncError  *string             `json:"sync_error,omitempty"`
	Snapshot   *types.SyncSnapshot `json:"sync_snapshot,omitempty"`

	Currency string        `json:"currency,omitempty"`
	Timezone string        `json:"timezone,omitempty"`
	PlanTier string        `json:"plan_tier,omitempty"`
	Country  string        `json:"country,omitempty"`
	Address  types.Address `json:"address,omitempty"`

	Permissions types.Permissions `json:"permissions"`
	AgentAccess types.AgentAccess `json:"agent_access"`

	ConnectedAt time.Time `json:"connected_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}

	dto := &StoreDTO{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Domain:      m.Domain,
		DisplayName: m.DisplayName,
		IsActive:    m.IsActive,
		IsPrimary:   m.IsPrimary,
		SyncStatus:  m.SyncStatus,
		LastSyncAt:  m.LastSyncAt,
		SyncError:   m.SyncError,
		Currency:    m.Currency,
		Timezone:    m.Timezone,
		PlanTier:    m.PlanTier,
		Country:     m.Country,
		Address:     m.Address,
		Permissions: m.Permissions.Clone(),
		AgentAccess: m.AgentAccess.Clone(),
		ConnectedAt: m.ConnectedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.Snapshot != nil {
		cpy := *m.Snapshot
		dto.Snapshot = &cpy
	}

	return dto
}

// FromModels maps a slice of persisted stores.
func FromModels(ms []models.Store) []StoreDTO {
	out := make([]StoreDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *FromModel(&ms[i]))
	}
	return out
}
