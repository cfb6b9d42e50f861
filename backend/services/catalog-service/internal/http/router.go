package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Nearby     http.HandlerFunc
	SyncStatus http.HandlerFunc
	SyncOne    http.HandlerFunc
	SyncAll    http.HandlerFunc
	Health     http.HandlerFunc
}

// NewRouter registers endpoints. Exact patterns take precedence over the
// /internal/sync/ prefix, so status and all don't collide with the
// per-source trigger.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Nearby != nil {
		mux.Handle("/stations/nearby", method(http.MethodGet, routes.Nearby))
	}
	if routes.SyncStatus != nil {
		mux.Handle("/internal/sync/status", method(http.MethodGet, routes.SyncStatus))
	}
	if routes.SyncAll != nil {
		mux.Handle("/internal/sync/all", method(http.MethodPost, routes.SyncAll))
	}
	if routes.SyncOne != nil {
		mux.Handle("/internal/sync/", method(http.MethodPost, routes.SyncOne))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
