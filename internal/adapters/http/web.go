package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"rollcall/internal/adapters/email"
	"rollcall/internal/adapters/http/metrics"
	"rollcall/internal/adapters/http/middleware"
	"rollcall/internal/adapters/http/perf"
	attendanceStore "rollcall/internal/adapters/storage/attendance"
	eventStore "rollcall/internal/adapters/storage/event"
	memberStore "rollcall/internal/adapters/storage/member"
	outboxStore "rollcall/internal/adapters/storage/outbox"
	"rollcall/internal/application/projections"
	"rollcall/internal/config"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore     memberStore.Store
	EventStore      eventStore.Store
	AttendanceStore attendanceStore.Store
	OutboxStore     outboxStore.Store // optional; queues digests that failed to send
}

func (s *Stores) snapshotDeps() projections.SnapshotDeps {
	return projections.SnapshotDeps{
		MemberStore:     s.MemberStore,
		EventStore:      s.EventStore,
		AttendanceStore: s.AttendanceStore,
	}
}

func (s *Stores) eventSummaryDeps() projections.GetEventSummariesDeps {
	return projections.GetEventSummariesDeps{
		SnapshotDeps:  s.snapshotDeps(),
		RecordCounter: s.AttendanceStore,
	}
}

// Options configures NewMux.
type Options struct {
	CSRFKeyHex     string
	Production     bool
	TrustedOrigins []string
	SlowRequest    time.Duration
	MetricsWindow  time.Duration
}

// loadCSRFKey decodes the hex CSRF secret (32 bytes).
// In production the key is required. Otherwise a random key is generated per startup.
func loadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("ROLLCALL_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("ROLLCALL_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	slog.Warn("csrf_key_random", "reason", "ROLLCALL_CSRF_KEY unset; form tokens will not survive restart")
	return key, nil
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global live overview (set by NewMux)
var liveOverview *projections.LiveOverview

// Global selection store (set by NewMux)
var selections *SelectionStore

// RateLimitPerSecond controls the per-client rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// dashboardSettings holds the current dashboard settings; swapped on reload.
var dashboardSettings atomic.Pointer[config.Dashboard]

// Global email sender and recipients for threshold digests.
var emailSender email.Sender
var alertRecipients []string

// SetEmailSender sets the sender and recipients used by the digest endpoint.
func SetEmailSender(sender email.Sender, to []string) {
	emailSender = sender
	alertRecipients = to
}

// SetDashboard replaces the dashboard settings used for request defaults.
func SetDashboard(d config.Dashboard) {
	dashboardSettings.Store(&d)
}

func dashboard() config.Dashboard {
	if d := dashboardSettings.Load(); d != nil {
		return *d
	}
	return config.DefaultDashboard()
}

// NewMux wires HTTP handlers for the app. ctx bounds background work such as
// rate limiter sweeps.
func NewMux(ctx context.Context, s *Stores, collector *perf.Collector, live *projections.LiveOverview, opts Options) (http.Handler, error) {
	stores = s
	perfCollector = collector
	liveOverview = live
	selections = NewSelectionStore()

	csrfKey, err := loadCSRFKey(opts.CSRFKeyHex, opts.Production)
	if err != nil {
		return nil, err
	}
	window := opts.MetricsWindow
	if window <= 0 {
		window = 5 * time.Minute
	}

	mux := http.NewServeMux()
	registerRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler(latestOverview, collector, window))

	limiter := middleware.NewRateLimiter(ctx, RateLimitPerSecond, time.Second)

	// Apply middleware: RateLimit -> CSRF -> Timing -> SecurityHeaders -> Mux
	// Timing sits inside CSRF so it sees the request the mux routes.
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.Timing(collector, opts.SlowRequest),
		middleware.CSRF(csrfKey, opts.Production, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
	), nil
}

func latestOverview() (projections.LiveResult, bool) {
	if liveOverview == nil {
		return projections.LiveResult{}, false
	}
	return liveOverview.Latest()
}

// registerRoutes maps every API route onto mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("GET /api/attendance/stats", handleGetAttendanceStats)
	mux.HandleFunc("GET /api/attendance/overview", handleGetAttendanceOverview)
	mux.HandleFunc("POST /api/attendance/overview/refresh", handleRefreshOverview)
	mux.HandleFunc("GET /api/attendance/alerts", handleGetAttendanceAlerts)
	mux.HandleFunc("GET /api/attendance/alerts/digest", handleGetAlertDigest)
	mux.HandleFunc("POST /api/attendance/alerts/send", handleSendAlertDigest)
	mux.HandleFunc("GET /api/attendance/alerts/deliveries", handleListDeliveries)
	mux.HandleFunc("GET /api/attendance/events", handleGetEventSummaries)
	mux.HandleFunc("GET /api/attendance/export", handleExportAttendance)

	mux.HandleFunc("POST /api/selections", handleCreateSelection)
	mux.HandleFunc("GET /api/selections/{id}", handleGetSelection)
	mux.HandleFunc("PUT /api/selections/{id}", handleReplaceSelection)
	mux.HandleFunc("DELETE /api/selections/{id}", handleDeleteSelection)
	mux.HandleFunc("POST /api/selections/{id}/toggle", handleToggleSelection)
}
