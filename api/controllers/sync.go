package controllers

import (
	"net/http"

	"github.com/storelinkhq/storelink-backend/api/responses"
	"github.com/storelinkhq/storelink-backend/internal/syncengine"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
)

// SyncTrigger runs a synchronization pass for the store. The call is
// synchronous: a completed pass reports done, a pass that lost the in-flight
// gate or failed against the platform reports triggered, and the store's own
// sync fields carry the detail either way.
func SyncTrigger(svc syncengine.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Sync(r.Context(), ownerID, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "triggered"})
	}
}
