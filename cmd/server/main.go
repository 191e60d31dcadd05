package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rollcall/internal/adapters/email"
	web "rollcall/internal/adapters/http"
	"rollcall/internal/adapters/http/perf"
	"rollcall/internal/adapters/storage"
	attendanceStore "rollcall/internal/adapters/storage/attendance"
	eventStore "rollcall/internal/adapters/storage/event"
	memberStore "rollcall/internal/adapters/storage/member"
	outboxStore "rollcall/internal/adapters/storage/outbox"
	"rollcall/internal/application/orchestrators"
	"rollcall/internal/application/projections"
	"rollcall/internal/config"
	"rollcall/internal/domain/selection"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	slog.SetDefault(config.NewLogger(os.Stderr, env.Environment, env.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(env.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, env.SlowQuery())

	stores := &web.Stores{
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		EventStore:      eventStore.NewSQLiteStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
	}

	// Seed synthetic data for development only
	if !env.IsProduction() {
		res, err := orchestrators.ExecuteSeedSynthetic(ctx, orchestrators.SyntheticSeedOptions{Seed: 1}, orchestrators.SyntheticSeedDeps{
			MemberStore:     stores.MemberStore,
			EventStore:      stores.EventStore,
			AttendanceStore: stores.AttendanceStore,
		})
		if err != nil {
			return err
		}
		if !res.Skipped {
			slog.Info("synthetic_seed_loaded", "members", res.Members, "events", res.Events, "attendance", res.Attendance)
		}
	}

	// Configure email sender
	var sender email.Sender
	if env.ResendKey != "" {
		sender = email.NewResendSender(env.ResendKey, env.AlertFrom)
		slog.Info("email_sender_configured", "provider", "resend", "recipients", len(env.AlertTo))
	} else {
		sender = email.NewNoopSender()
		if env.IsProduction() {
			slog.Warn("email_delivery_disabled", "reason", "ROLLCALL_RESEND_KEY is not set")
		}
	}
	web.SetEmailSender(sender, env.AlertTo)

	// Retry digests that failed to send
	orchestrators.StartBackgroundWorker(ctx, orchestrators.NewOutboxProcessor(stores.OutboxStore, sender), time.Minute)

	dash := config.DefaultDashboard()
	if env.DashboardConfig != "" {
		if dash, err = config.LoadDashboard(env.DashboardConfig); err != nil {
			return err
		}
	}
	web.SetDashboard(dash)

	live := projections.NewLiveOverview(projections.SnapshotDeps{
		MemberStore:     stores.MemberStore,
		EventStore:      stores.EventStore,
		AttendanceStore: stores.AttendanceStore,
	})
	refresh := func(d config.Dashboard) {
		_, _, err := live.Refresh(ctx, projections.GetAttendanceStatsQuery{
			Selection:   selection.New(d.SelectedEvents...),
			Threshold:   d.Threshold,
			AlertLimit:  d.AlertLimit,
			PreviewSize: d.PreviewSize,
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("overview_refresh_failed", "error", err)
		}
	}
	refresh(dash)

	if env.DashboardConfig != "" {
		go func() {
			err := config.WatchDashboard(ctx, env.DashboardConfig, func(d config.Dashboard) {
				web.SetDashboard(d)
				refresh(d)
			})
			if err != nil {
				slog.Error("config_watch_failed", "path", env.DashboardConfig, "error", err)
			}
		}()
	}

	handler, err := web.NewMux(ctx, stores, collector, live, web.Options{
		CSRFKeyHex:  env.CSRFKey,
		Production:  env.IsProduction(),
		SlowRequest: env.SlowRequest(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              env.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", env.Addr, "env", env.Environment, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
