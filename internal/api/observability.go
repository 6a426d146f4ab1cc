package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saintsjh/PortfolioWebsite/internal/lifecycle"
)

// Metrics with bounded cardinality (state labels only, never per-client)
var (
	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "physics_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016},
	}, []string{"state"})

	bodyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "physics_bodies",
		Help: "Current number of simulated bodies",
	})

	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "physics_state_transitions_total",
		Help: "Lifecycle state transitions",
	}, []string{"from", "to"})

	measureDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "layout_measure_duration_seconds",
		Help:    "Time spent measuring content",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	measureNotReady = promauto.NewCounter(prometheus.CounterOpts{
		Name: "layout_measure_not_ready_total",
		Help: "Measurements deferred because fonts or viewport were not ready",
	})

	fieldRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "field_render_duration_seconds",
		Help:    "Time spent rasterising a field frame",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1},
	})

	fieldSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "field_sessions_active",
		Help: "Field worker sessions currently running",
	})

	fieldFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "field_frames_total",
		Help: "Render frames sent to field sessions",
	})

	rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "physics_connections_rejected_total",
		Help: "Requests and connections turned away by a limit or origin check",
	}, []string{"reason"}) // rate_limit, origin, ws_total_limit, ws_ip_limit, field_limit

	characterClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "physics_character_clients",
		Help: "Connected character frame clients",
	})

	characterFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "physics_character_frames_total",
		Help: "Character frames broadcast to clients",
	})
)

var startedAt = time.Now()

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // localhost unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig listens on localhost:6060 without auth.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// DebugHandler serves pprof, Prometheus metrics and a health probe.
func DebugHandler(cfg ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	for name, h := range map[string]http.HandlerFunc{
		"cmdline": pprof.Cmdline,
		"profile": pprof.Profile,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	} {
		mux.HandleFunc("/debug/pprof/"+name, h)
	}

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status": "ok",
			"uptime": time.Since(startedAt).Round(time.Second).String(),
		})
	})

	if cfg.BasicAuthUser == "" {
		return mux
	}
	return requireBasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
}

// StartDebugServer serves DebugHandler in the background.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	host, port, err := net.SplitHostPort(cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("debug listen address: %w", err)
	}
	if host != "127.0.0.1" && host != "localhost" && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Printf("⚠️ Debug server on %s moved to localhost", host)
		cfg.ListenAddr = net.JoinHostPort("127.0.0.1", port)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           DebugHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("📊 Debug server on http://%s (/metrics, /debug/pprof/)", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️ Debug server stopped: %v", err)
		}
	}()
	return nil
}

func requireBasicAuth(user, pass string, next http.Handler) http.Handler {
	want := []byte(user + ":" + pass)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u+":"+p), want) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="physics-debug"`)
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records tick timing. Its signature matches the controller's
// OnTick hook.
func RecordTick(state lifecycle.State, bodies int, duration time.Duration) {
	tickDuration.WithLabelValues(string(state)).Observe(duration.Seconds())
	bodyCount.Set(float64(bodies))
}

// RecordTransition counts a lifecycle transition.
func RecordTransition(from, to lifecycle.State) {
	transitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordMeasure records a measurement attempt.
func RecordMeasure(units int, err error, duration time.Duration) {
	if err != nil {
		measureNotReady.Inc()
		return
	}
	measureDuration.Observe(duration.Seconds())
}

func RecordFieldRender(duration time.Duration) {
	fieldRenderDuration.Observe(duration.Seconds())
}

func RecordConnectionRejected(reason string) {
	rejections.WithLabelValues(reason).Inc()
}

func setCharacterClients(n int) {
	characterClients.Set(float64(n))
}

func recordCharacterFrame() {
	characterFrames.Inc()
}
