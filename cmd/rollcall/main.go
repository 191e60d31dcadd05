// Command rollcall imports attendance and prints reports against the
// server's database.
//
//	rollcall import [-dry-run] [-strict] FILE.csv
//	rollcall report [-events E1,E2] [-threshold 75] [-sort rate] [-dir desc] [-o FILE]
//	rollcall alerts [-events E1,E2] [-threshold 75] [-limit 5] [-preview 3] [-send]
//	rollcall seed   [-members 20] [-events 12] [-seed 1]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rollcall/internal/adapters/email"
	"rollcall/internal/adapters/storage"
	attendanceStore "rollcall/internal/adapters/storage/attendance"
	eventStore "rollcall/internal/adapters/storage/event"
	memberStore "rollcall/internal/adapters/storage/member"
	outboxStore "rollcall/internal/adapters/storage/outbox"
	"rollcall/internal/application/listutil"
	"rollcall/internal/application/orchestrators"
	"rollcall/internal/application/projections"
	"rollcall/internal/config"
	"rollcall/internal/domain/export"
	"rollcall/internal/domain/selection"
)

const usage = `usage: rollcall <command> [flags]

commands:
  import   load MEMBER_ID,EVENT_ID rows from a CSV file
  report   write the attendance report as CSV
  alerts   print or email the below-threshold digest
  seed     fill an empty database with synthetic data
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(os.Stderr, env.Environment, env.LogLevel))

	if err := run(ctx, env, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "rollcall:", err)
		os.Exit(1)
	}
}

// app holds what every command needs.
type app struct {
	env        config.Env
	dash       config.Dashboard
	members    *memberStore.SQLiteStore
	events     *eventStore.SQLiteStore
	attendance *attendanceStore.SQLiteStore
	outbox     *outboxStore.SQLiteStore
	out        io.Writer
}

func (a *app) snapshotDeps() projections.SnapshotDeps {
	return projections.SnapshotDeps{
		MemberStore:     a.members,
		EventStore:      a.events,
		AttendanceStore: a.attendance,
	}
}

func run(ctx context.Context, env config.Env, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "import", "report", "alerts", "seed":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	db, err := storage.Open(env.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	timedDB := storage.NewTimedDB(db, nil, env.SlowQuery())

	dash := config.DefaultDashboard()
	if env.DashboardConfig != "" {
		if dash, err = config.LoadDashboard(env.DashboardConfig); err != nil {
			return err
		}
	}

	a := &app{
		env:        env,
		dash:       dash,
		members:    memberStore.NewSQLiteStore(timedDB),
		events:     eventStore.NewSQLiteStore(timedDB),
		attendance: attendanceStore.NewSQLiteStore(timedDB),
		outbox:     outboxStore.NewSQLiteStore(timedDB),
		out:        out,
	}

	switch cmd {
	case "import":
		return a.importCmd(ctx, args)
	case "report":
		return a.reportCmd(ctx, args)
	case "alerts":
		return a.alertsCmd(ctx, args)
	default:
		return a.seedCmd(ctx, args)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) importCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("import")
	dryRun := fs.Bool("dry-run", false, "validate and count without writing")
	strict := fs.Bool("strict", false, "reject rows naming unknown members or events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: import takes exactly one file", errUsage)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := orchestrators.ExecuteImportAttendance(ctx, orchestrators.ImportAttendanceInput{
		Reader: f,
		DryRun: *dryRun,
		Strict: *strict,
	}, orchestrators.ImportAttendanceDeps{
		MemberStore:     a.members,
		EventStore:      a.events,
		AttendanceStore: a.attendance,
	})
	if err != nil {
		return err
	}

	verb := "imported"
	if res.DryRun {
		verb = "would import"
	}
	fmt.Fprintf(a.out, "%d rows: %s %d, %d duplicates, %d unknown references\n",
		res.Total, verb, res.Imported, res.Duplicates, res.UnknownRefs)
	for _, e := range res.Errors {
		fmt.Fprintf(a.out, "  row %d: %s\n", e.Row, e.Message)
	}
	return nil
}

// queryFlags registers the scope and threshold flags shared by report and alerts.
func (a *app) queryFlags(fs *flag.FlagSet) func() (projections.GetAttendanceStatsQuery, error) {
	events := fs.String("events", "", "comma-separated event IDs; empty means the configured selection")
	threshold := fs.Float64("threshold", a.dash.Threshold, "attendance threshold percent")
	limit := fs.Int("limit", a.dash.AlertLimit, "maximum members in the digest, 0 for all")
	preview := fs.Int("preview", a.dash.PreviewSize, "missed events listed per member")
	return func() (projections.GetAttendanceStatsQuery, error) {
		if *threshold < 0 || *threshold > 100 {
			return projections.GetAttendanceStatsQuery{}, fmt.Errorf("threshold must be between 0 and 100")
		}
		sel := selection.New(a.dash.SelectedEvents...)
		if *events != "" {
			sel = selection.New(splitIDs(*events)...)
		}
		return projections.GetAttendanceStatsQuery{
			Selection:   sel,
			Threshold:   *threshold,
			AlertLimit:  *limit,
			PreviewSize: max(*preview, 0),
		}, nil
	}
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (a *app) reportCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("report")
	query := a.queryFlags(fs)
	sortBy := fs.String("sort", "", "sort column: name, rate or attended")
	dir := fs.String("dir", "asc", "sort direction: asc or desc")
	output := fs.String("o", "", "write to this file; \"-\" for stdout, empty for "+export.Filename(time.Now()))
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := query()
	if err != nil {
		return err
	}

	result, err := projections.QueryGetAttendanceStats(ctx, q, a.snapshotDeps())
	if err != nil {
		return err
	}
	sorted := listutil.SortStats(result.Report.Stats,
		listutil.ParseSortParams(url.Values{"sort": {*sortBy}, "dir": {*dir}}, listutil.StatsSortColumns))
	data := export.AttendanceCSV(sorted)

	if *output == "-" {
		_, err := a.out.Write(append(data, '\n'))
		return err
	}
	path := *output
	if path == "" {
		path = export.Filename(time.Now())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %d members %s to %s\n", len(sorted), result.Report.Scope.Describe(), path)
	return nil
}

func (a *app) alertsCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("alerts")
	query := a.queryFlags(fs)
	send := fs.Bool("send", false, "email the digest to ROLLCALL_ALERT_TO instead of printing it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := query()
	if err != nil {
		return err
	}

	var sender email.Sender = email.NewNoopSender()
	if *send {
		if a.env.ResendKey == "" {
			return errors.New("ROLLCALL_RESEND_KEY is not set")
		}
		sender = email.NewResendSender(a.env.ResendKey, a.env.AlertFrom)
	}
	res, err := orchestrators.ExecuteSendThresholdAlerts(ctx, orchestrators.SendThresholdAlertsInput{
		Query:  q,
		To:     a.env.AlertTo,
		DryRun: !*send,
		Now:    time.Now(),
	}, orchestrators.SendThresholdAlertsDeps{Stores: a.snapshotDeps(), Sender: sender, Outbox: a.outbox})
	if err != nil {
		return err
	}

	if !*send {
		fmt.Fprint(a.out, res.Markdown)
		return nil
	}
	switch {
	case res.Sent:
		fmt.Fprintf(a.out, "sent digest for %d members (%s)\n", res.Flagged, res.MessageID)
	case res.Queued:
		fmt.Fprintf(a.out, "delivery failed; queued as %s for the server to retry\n", res.OutboxID)
	default:
		fmt.Fprintln(a.out, "nobody is below the threshold; nothing sent")
	}
	return nil
}

func (a *app) seedCmd(ctx context.Context, args []string) error {
	fs := newFlagSet("seed")
	members := fs.Int("members", 0, "members to create (default 20)")
	events := fs.Int("events", 0, "weekly events to create (default 12)")
	seed := fs.Uint64("seed", 1, "attendance pattern seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := orchestrators.ExecuteSeedSynthetic(ctx, orchestrators.SyntheticSeedOptions{
		Members: *members,
		Events:  *events,
		Seed:    *seed,
	}, orchestrators.SyntheticSeedDeps{
		MemberStore:     a.members,
		EventStore:      a.events,
		AttendanceStore: a.attendance,
	})
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintln(a.out, "database already has members; nothing seeded")
		return nil
	}
	fmt.Fprintf(a.out, "seeded %d members, %d events, %d attendance records\n", res.Members, res.Events, res.Attendance)
	return nil
}
