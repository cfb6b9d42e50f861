package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"evcharge/backend/services/catalog-service/internal/service"
)

// NewNearbyHandler returns GET /stations/nearby handler.
// Query params: lat, lng (required), radius (meters, optional),
// group_duplicates (optional bool).
func NewNearbyHandler(svc *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		lat, err := strconv.ParseFloat(q.Get("lat"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lat")
			return
		}
		lng, err := strconv.ParseFloat(q.Get("lng"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lng")
			return
		}

		radius := 0.0
		if raw := q.Get("radius"); raw != "" {
			radius, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid radius")
				return
			}
		}

		groupDuplicates := false
		if raw := q.Get("group_duplicates"); raw != "" {
			groupDuplicates, _ = strconv.ParseBool(raw)
		}

		result, err := svc.Nearby(r.Context(), lat, lng, radius, groupDuplicates)
		if err != nil {
			if errors.Is(err, service.ErrInvalidQuery) {
				writeError(w, http.StatusBadRequest, "coordinates out of range")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to fetch stations")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
