package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/metrics"
)

type storeLoader interface {
	FindByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Store, error)
}

type auditAppender interface {
	Append(ctx context.Context, entry *models.PermissionAuditEntry) error
}

// Decision is the outcome of a single permission check. Reason is set on
// denials and names the remediation the caller needs.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Service evaluates store-level and agent-level authorization.
type Service interface {
	Check(ctx context.Context, ownerID, storeID uuid.UUID, permission enums.Permission, agentID string) (Decision, error)
	CheckAll(ctx context.Context, ownerID, storeID uuid.UUID, perms []enums.Permission, agentID string) (Decision, error)
	CheckAny(ctx context.Context, ownerID, storeID uuid.UUID, perms []enums.Permission, agentID string) (Decision, error)
}

type service struct {
	stores  storeLoader
	audit   auditAppender
	metrics *metrics.PermissionMetrics
	logg    *logger.Logger
}

// NewService builds the validator. Metrics may be nil.
func NewService(stores storeLoader, audit auditAppender, permMetrics *metrics.PermissionMetrics, logg *logger.Logger) (Service, error) {
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit appender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{stores: stores, audit: audit, metrics: permMetrics, logg: logg}, nil
}

// Check walks the decision ladder: existence, active flag, store permission,
// agent enablement, agent capability. Every call appends one audit row; an
// audit write failure never changes the computed outcome.
func (s *service) Check(ctx context.Context, ownerID, storeID uuid.UUID, permission enums.Permission, agentID string) (Decision, error) {
	decision, err := s.evaluate(ctx, ownerID, storeID, permission, agentID)
	if err != nil {
		return Decision{}, err
	}

	s.metrics.IncCheck(permission.String(), decision.Allowed)
	s.appendAudit(ctx, ownerID, storeID, permission, agentID, decision)
	return decision, nil
}

func (s *service) evaluate(ctx context.Context, ownerID, storeID uuid.UUID, permission enums.Permission, agentID string) (Decision, error) {
	store, err := s.stores.FindByOwnerAndID(ctx, ownerID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{Allowed: false, Reason: "not found or access denied"}, nil
		}
		return Decision{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if !store.IsActive {
		return Decision{Allowed: false, Reason: "store inactive"}, nil
	}

	if !store.Permissions.Allows(permission) {
		return Decision{Allowed: false, Reason: fmt.Sprintf("%s disabled for store", permission)}, nil
	}

	if agentID != "" {
		grant, ok := store.AgentAccess[agentID]
		if !ok || !grant.Enabled {
			return Decision{Allowed: false, Reason: "agent not enabled for store"}, nil
		}
		if capability, gated := RequiredCapability(permission); gated && !grant.HasCapability(capability) {
			return Decision{Allowed: false, Reason: "agent lacks capability"}, nil
		}
	}

	return Decision{Allowed: true}, nil
}

func (s *service) appendAudit(ctx context.Context, ownerID, storeID uuid.UUID, permission enums.Permission, agentID string, decision Decision) {
	entry := &models.PermissionAuditEntry{
		OwnerID:    ownerID,
		StoreID:    storeID,
		Permission: permission,
		Allowed:    decision.Allowed,
	}
	if agentID != "" {
		entry.AgentID = &agentID
	}
	if decision.Reason != "" {
		reason := decision.Reason
		entry.Reason = &reason
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logg.Warn(ctx, "permission audit write failed")
	}
}

// CheckAll allows only when every permission is allowed. Each permission runs
// through Check so each one is audited.
func (s *service) CheckAll(ctx context.Context, ownerID, storeID uuid.UUID, perms []enums.Permission, agentID string) (Decision, error) {
	combined := Decision{Allowed: true}
	for _, permission := range perms {
		decision, err := s.Check(ctx, ownerID, storeID, permission, agentID)
		if err != nil {
			return Decision{}, err
		}
		if !decision.Allowed && combined.Allowed {
			combined = decision
		}
	}
	return combined, nil
}

// CheckAny allows when at least one permission is allowed. No early exit:
// every permission is still checked and audited.
func (s *service) CheckAny(ctx context.Context, ownerID, storeID uuid.UUID, perms []enums.Permission, agentID string) (Decision, error) {
	combined := Decision{}
	for _, permission := range perms {
		decision, err := s.Check(ctx, ownerID, storeID, permission, agentID)
		if err != nil {
			return Decision{}, err
		}
		if decision.Allowed {
			combined = Decision{Allowed: true}
		} else if !combined.Allowed && combined.Reason == "" {
			combined.Reason = decision.Reason
		}
	}
	return combined, nil
}
