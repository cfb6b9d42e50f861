package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/service"
)

const syncTriggerPrefix = "/internal/sync/"

// syncAllTimeout bounds a detached background run of all sources.
const syncAllTimeout = 30 * time.Minute

// NewSyncOneHandler returns POST /internal/sync/{sourceId} handler. The pass
// runs synchronously and its result is returned to the caller.
func NewSyncOneHandler(svc *service.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sourceID := strings.TrimPrefix(r.URL.Path, syncTriggerPrefix)
		if sourceID == "" || strings.Contains(sourceID, "/") {
			writeError(w, http.StatusNotFound, "unknown source")
			return
		}

		result, err := svc.SyncOne(r.Context(), sourceID)
		if err != nil {
			if errors.Is(err, service.ErrSourceNotFound) {
				writeError(w, http.StatusNotFound, "unknown source")
				return
			}
			writeError(w, http.StatusInternalServerError, "sync failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// NewSyncAllHandler returns POST /internal/sync/all handler. The run is
// detached from the request and acknowledged immediately.
func NewSyncAllHandler(svc *service.SyncService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), syncAllTimeout)
			defer cancel()
			results := svc.SyncAll(ctx)
			logger.Info("manual sync-all finished", zap.Int("sources", len(results)))
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

// NewSyncStatusHandler returns GET /internal/sync/status handler.
func NewSyncStatusHandler(svc *service.StatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := svc.Recent(r.Context(), 10)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch sync status")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sources": results,
		})
	}
}
