package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/internal/observability"
)

// NewServer builds the ops router: Prometheus metrics, a health probe,
// and a read-only JSON snapshot of the cell's UE state.
func NewServer(state *cell.State, collector *observability.SchedulerCollector) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	if collector != nil {
		r.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/cell", serveCellSnapshot(state))
	})

	return r
}

func serveCellSnapshot(state *cell.State) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if state == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"no cell configured"}`))
			return
		}

		payload := struct {
			NumUEs int               `json:"num_ues"`
			UEs    []cell.UESnapshot `json:"ues"`
		}{
			NumUEs: state.NumUEs(),
			UEs:    state.Snapshot(),
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
