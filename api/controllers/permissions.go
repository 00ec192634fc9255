package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/storelinkhq/storelink-backend/api/middleware"
	"github.com/storelinkhq/storelink-backend/api/responses"
	"github.com/storelinkhq/storelink-backend/api/validators"
	"github.com/storelinkhq/storelink-backend/internal/permissions"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
)

type permissionCheckRequest struct {
	StoreID    string `json:"store_id" validate:"required,uuid4"`
	Permission string `json:"permission" validate:"required"`
	AgentID    string `json:"agent_id,omitempty"`
}

type permissionBatchCheckRequest struct {
	StoreID     string   `json:"store_id" validate:"required,uuid4"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
	AgentID     string   `json:"agent_id,omitempty"`
}

// requestAgentID prefers the agent bound into the token over one named in the
// body, so agent-scoped tokens cannot check on behalf of another agent.
func requestAgentID(r *http.Request, bodyAgentID string) string {
	if ctxAgent := middleware.AgentIDFromContext(r.Context()); ctxAgent != "" {
		return ctxAgent
	}
	return bodyAgentID
}

// PermissionCheck evaluates one permission against a store.
func PermissionCheck(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload permissionCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := uuid.Parse(payload.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		permission, err := enums.ParsePermission(payload.Permission)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown permission"))
			return
		}

		decision, err := svc.Check(r.Context(), ownerID, storeID, permission, requestAgentID(r, payload.AgentID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, decision)
	}
}

func batchCheck(
	run func(r *http.Request, ownerID, storeID uuid.UUID, perms []enums.Permission, agentID string) (permissions.Decision, error),
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload permissionBatchCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := uuid.Parse(payload.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		perms := make([]enums.Permission, 0, len(payload.Permissions))
		for _, raw := range payload.Permissions {
			permission, err := enums.ParsePermission(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown permission"))
				return
			}
			perms = append(perms, permission)
		}

		decision, err := run(r, ownerID, storeID, perms, requestAgentID(r, payload.AgentID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, decision)
	}
}

// PermissionCheckAll allows only when every listed permission is allowed.
func PermissionCheckAll(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return batchCheck(func(r *http.Request, ownerID, storeID uuid.UUID, perms []enums.Permission, agentID string) (permissions.Decision, error) {
		return svc.CheckAll(r.Context(), ownerID, storeID, perms, agentID)
	}, logg)
}

// PermissionCheckAny allows when at least one listed permission is allowed.
func PermissionCheckAny(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return batchCheck(func(r *http.Request, ownerID, storeID uuid.UUID, perms []enums.Permission, agentID string) (permissions.Decision, error) {
		return svc.CheckAny(r.Context(), ownerID, storeID, perms, agentID)
	}, logg)
}
