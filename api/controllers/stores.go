package controllers

import (
	"net/http"

	"github.com/storelinkhq/storelink-backend/api/responses"
	"github.com/storelinkhq/storelink-backend/api/validators"
	"github.com/storelinkhq/storelink-backend/internal/stores"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/types"
)

type storeConnectRequest struct {
	Domain      string `json:"domain" validate:"required,min=3"`
	AccessToken string `json:"access_token" validate:"required,min=1"`
}

// StoreConnect registers a store for the authenticated owner, or rewrites the
// credential when the domain is already connected.
func StoreConnect(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload storeConnectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.AddStore(r.Context(), ownerID, payload.Domain, payload.AccessToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

// StoreList returns every store connected by the owner.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListStores(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// StorePrimary returns the owner's primary store, falling back to the oldest
// connection when no primary flag is set.
func StorePrimary(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.GetPrimaryStore(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no stores connected"))
			return
		}

		responses.WriteSuccess(w, store)
	}
}

// StoreRemove disconnects a store and cleans up its subordinate records.
func StoreRemove(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := storeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveStore(r.Context(), ownerID, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// StoreSetPrimary promotes the store to the owner's primary.
func StoreSetPrimary(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := storeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetPrimaryStore(r.Context(), ownerID, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "primary"})
	}
}

type permissionsUpdateRequest struct {
	Permissions map[string]bool `json:"permissions" validate:"required,min=1"`
}

// StorePermissionsUpdate merges the supplied permission flags into the store.
func StorePermissionsUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := storeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload permissionsUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partial := make(types.Permissions, len(payload.Permissions))
		for raw, enabled := range payload.Permissions {
			permission, err := enums.ParsePermission(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown permission"))
				return
			}
			partial[permission] = enabled
		}

		store, err := svc.UpdatePermissions(r.Context(), ownerID, storeID, partial)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, store)
	}
}

type agentGrantRequest struct {
	Enabled             bool     `json:"enabled"`
	GrantedCapabilities []string `json:"granted_capabilities"`
}

type agentAccessUpdateRequest struct {
	AgentAccess map[string]agentGrantRequest `json:"agent_access" validate:"required,min=1"`
}

// StoreAgentAccessUpdate merges the supplied agent grants into the store.
func StoreAgentAccessUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := storeIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload agentAccessUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partial := make(types.AgentAccess, len(payload.AgentAccess))
		for agentID, grant := range payload.AgentAccess {
			if agentID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required"))
				return
			}
			capabilities := make([]enums.Capability, 0, len(grant.GrantedCapabilities))
			for _, raw := range grant.GrantedCapabilities {
				capability, err := enums.ParseCapability(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown capability"))
					return
				}
				capabilities = append(capabilities, capability)
			}
			partial[agentID] = types.AgentGrant{
				Enabled:             grant.Enabled,
				GrantedCapabilities: capabilities,
			}
		}

		store, err := svc.UpdateAgentAccess(r.Context(), ownerID, storeID, partial)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, store)
	}
}
