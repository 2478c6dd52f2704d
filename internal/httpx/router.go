package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jroldanc/ads-analytics-go/internal/ingest"
	"github.com/jroldanc/ads-analytics-go/internal/models"
	"github.com/jroldanc/ads-analytics-go/internal/query"
	"github.com/jroldanc/ads-analytics-go/internal/store"
	"github.com/jroldanc/ads-analytics-go/internal/utils"
)

// NewRouter wires the query API the presentation layer consumes, plus health
// probes, Prometheus metrics and a pipeline trigger.
func NewRouter(log *slog.Logger, etl *ingest.ETL, eng *query.Engine) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/pipeline/run", func(w http.ResponseWriter, r *http.Request) {
		report, err := etl.Run(r.Context())
		if err != nil {
			if errors.Is(err, ingest.ErrNoInput) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, report)
	})

	mux.Get("/api/records", func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rows, err := eng.Records(r.Context(), f)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		limit := atoiDef(r.URL.Query().Get("limit"), 100)
		offset := atoiDef(r.URL.Query().Get("offset"), 0)
		limit, offset = clampLimitOffset(limit, offset, len(rows))
		writeJSON(w, paginate(rows, limit, offset))
	})

	mux.Get("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s, err := eng.Summarize(r.Context(), f)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, s)
	})

	mux.Get("/api/grouped", func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		dim, err := models.ParseDimension(r.URL.Query().Get("by"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		groups, err := eng.GroupBy(r.Context(), f, dim)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, groups)
	})

	mux.Get("/api/top", func(w http.ResponseWriter, r *http.Request) {
		v := r.URL.Query()
		f, err := parseFilter(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		dim, err := models.ParseDimension(v.Get("by"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		metric, err := models.ParseMetric(v.Get("metric"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n := atoiDef(v.Get("n"), 20)
		groups, err := eng.TopN(r.Context(), f, dim, metric, n)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, groups)
	})

	return mux
}

func parseFilter(v url.Values) (query.Filter, error) {
	f := query.Filter{
		Platforms: csvList(v.Get("platform")),
		Campaigns: csvList(v.Get("campaign")),
	}
	for _, bound := range []struct {
		name string
		dst  *string
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := strings.TrimSpace(v.Get(bound.name))
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return query.Filter{}, errors.New(bound.name + " must be YYYY-MM-DD")
		}
		*bound.dst = raw
	}
	return f, nil
}

func csvList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// writeEngineError maps a never-loaded store to the explicit "run the
// pipeline" state instead of a blank 500.
func writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotLoaded) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
