package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/hiremetrics/hirestats/config"
	"github.com/hiremetrics/hirestats/internal/bootstrap"
	"github.com/hiremetrics/hirestats/internal/data"
	"github.com/hiremetrics/hirestats/internal/devseed"
	"github.com/hiremetrics/hirestats/internal/domain/model"
	apperrors "github.com/hiremetrics/hirestats/internal/errors"
	"github.com/hiremetrics/hirestats/internal/service"
	"github.com/hiremetrics/hirestats/internal/util"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultAggregateTimeout = 10 * time.Minute
	defaultLookupTimeout    = time.Minute
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"aggregate": {
			name:        "aggregate",
			description: "Run one days-to-hire aggregation pass and print the summary",
			run:         runAggregate,
		},
		"stats-get": {
			name:        "stats-get",
			description: "Look up the statistics record for a standard job and country scope",
			run:         runStatsGet,
		},
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run database migrations and seed development data",
			run:         runDBSeed,
		},
		"db-reset": {
			name:        "db-reset",
			description: "Drop the database schema, run migrations, and optionally seed data",
			run:         runDBReset,
		},
		"help": {
			name:        "help",
			description: "Show this usage listing",
			run:         runHelp,
		},
	}
}

func runHelp(_ *commandContext, _ []string) error {
	return printUsage()
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: hirestats-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

type aggregateOptions struct {
	MinThreshold  int
	StandardJobID string
	CountryCode   string
	Timeout       time.Duration
}

type statsGetOptions struct {
	StandardJobID string
	CountryCode   string
	Timeout       time.Duration
}

type migrateOptions struct {
	Timeout time.Duration
}

type dbResetOptions struct {
	Timeout     time.Duration
	Yes         bool
	Seed        bool
	AllowRemote bool
}

type dbSeedOptions struct {
	Timeout     time.Duration
	AllowRemote bool
}

func runAggregate(cmdCtx *commandContext, args []string) error {
	opts, err := parseAggregateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		aggregator := service.NewAggregatorService(service.AggregatorServiceOptions{
			Postings: data.NewPostingRepo(db),
			Stats:    data.NewStatsRepo(db),
			Logger:   cmdCtx.Logger,
		})

		cmdCtx.Logger.Info("starting aggregation pass",
			"min_threshold", opts.MinThreshold,
			"standard_job_id", opts.StandardJobID,
			"country_code", opts.CountryCode)

		start := time.Now()
		summary, runErr := aggregator.Run(ctx, model.AggregateParams{
			MinThreshold:  opts.MinThreshold,
			StandardJobID: opts.StandardJobID,
			CountryCode:   opts.CountryCode,
		})
		elapsed := time.Since(start)

		// A pass that aborts partway still reports the work it completed.
		if printErr := printAggregateSummary(summary, elapsed); printErr != nil {
			return printErr
		}
		if runErr != nil {
			return fmt.Errorf("aggregation pass: %w", runErr)
		}
		return nil
	})
}

func printAggregateSummary(summary model.AggregateSummary, elapsed time.Duration) error {
	if err := writef(os.Stdout, "\nAggregation Pass Summary\n"); err != nil {
		return fmt.Errorf("write summary title: %w", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Metric\tValue"); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	if err := writef(w, "Combinations Processed\t%d\n", summary.Processed); err != nil {
		return fmt.Errorf("write processed: %w", err)
	}
	if err := writef(w, "Stats Saved\t%d\n", summary.Saved); err != nil {
		return fmt.Errorf("write saved: %w", err)
	}
	if err := writef(w, "Stats Skipped\t%d\n", summary.Skipped); err != nil {
		return fmt.Errorf("write skipped: %w", err)
	}
	if err := writef(w, "Failures\t%d\n", summary.Failed); err != nil {
		return fmt.Errorf("write failures: %w", err)
	}
	if err := writef(w, "Pass Duration\t%s\n", util.FormatElapsed(elapsed)); err != nil {
		return fmt.Errorf("write duration: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return nil
}

func runStatsGet(cmdCtx *commandContext, args []string) error {
	opts, err := parseStatsGetFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		stats := service.NewStatsService(service.StatsServiceOptions{
			Stats: data.NewStatsRepo(db),
		})

		scope := model.ParseCountryScope(opts.CountryCode)
		rec, lookupErr := stats.Lookup(ctx, opts.StandardJobID, scope)
		if lookupErr != nil {
			if apperrors.IsNotFound(lookupErr) {
				return printStatsNotFound(opts.StandardJobID, scope)
			}
			return lookupErr
		}

		return printStatsRecord(rec)
	})
}

func printStatsNotFound(standardJobID string, scope model.CountryScope) error {
	if err := writef(
		os.Stdout,
		"No statistics recorded for job %s (scope %s)\n",
		standardJobID,
		scope,
	); err != nil {
		return fmt.Errorf("print not-found notice: %w", err)
	}
	return nil
}

func printStatsRecord(rec *model.DaysToHireStats) error {
	if rec == nil {
		return errors.New("stats lookup returned no record")
	}

	if err := writef(os.Stdout, "\nDays-to-Hire Statistics\n"); err != nil {
		return fmt.Errorf("write stats title: %w", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Field\tValue"); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}
	if err := writef(w, "Standard Job ID\t%s\n", rec.StandardJobID); err != nil {
		return fmt.Errorf("write standard job id: %w", err)
	}
	if err := writef(w, "Country Scope\t%s\n", rec.Scope); err != nil {
		return fmt.Errorf("write country scope: %w", err)
	}
	if err := writef(w, "Min Days\t%g\n", rec.MinDays); err != nil {
		return fmt.Errorf("write min days: %w", err)
	}
	if err := writef(w, "Avg Days\t%g\n", rec.AvgDays); err != nil {
		return fmt.Errorf("write avg days: %w", err)
	}
	if err := writef(w, "Max Days\t%g\n", rec.MaxDays); err != nil {
		return fmt.Errorf("write max days: %w", err)
	}
	if err := writef(w, "Job Postings\t%d\n", rec.JobPostingsNumber); err != nil {
		return fmt.Errorf("write posting count: %w", err)
	}
	if !rec.UpdatedAt.IsZero() {
		if err := writef(w, "Updated At\t%s\n", rec.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write updated at: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush stats: %w", err)
	}
	return nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")

		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBReset(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBResetFlags(args)
	if err != nil {
		return err
	}

	target := fmt.Sprintf(
		"database %q on %s:%d",
		cmdCtx.Config.Postgres.Name,
		cmdCtx.Config.Postgres.Host,
		cmdCtx.Config.Postgres.Port,
	)

	remote, err := guardRemoteHost(cmdCtx, opts.AllowRemote, "drop and recreate the public schema")
	if err != nil {
		return err
	}

	confirmOpts := dbResetConfirmOptions{
		yes:    opts.Yes,
		target: target,
	}
	if remote {
		confirmOpts.remoteHost = cmdCtx.Config.Postgres.Host
	}
	if confirmErr := confirmAction(confirmOpts, "reset database schema"); confirmErr != nil {
		return confirmErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("dropping public schema", "database", cmdCtx.Config.Postgres.Name)
		if resetErr := cmdCtx.resetDatabase(ctx, db); resetErr != nil {
			return resetErr
		}

		cmdCtx.Logger.Info("re-running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		if opts.Seed {
			cmdCtx.Logger.Info("seeding development data after reset")
			if seedErr := devseed.Run(ctx, db, cmdCtx.Logger); seedErr != nil {
				return fmt.Errorf("seed data: %w", seedErr)
			}
		}

		cmdCtx.Logger.Info("database reset completed successfully")
		return nil
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBSeedFlags(args)
	if err != nil {
		return err
	}

	if _, guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "seed development data on the configured database"); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		cmdCtx.Logger.Info("seeding development data")
		if seedErr := devseed.Run(ctx, db, cmdCtx.Logger); seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}

		cmdCtx.Logger.Info("database seeding completed successfully")
		return nil
	})
}

func parseAggregateFlags(args []string) (aggregateOptions, error) {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := aggregateOptions{
		MinThreshold: service.DefaultMinThreshold,
		Timeout:      defaultAggregateTimeout,
	}

	fs.IntVar(
		&opts.MinThreshold,
		"min-threshold",
		service.DefaultMinThreshold,
		"Minimum usable postings a combination needs before a record is written",
	)
	fs.StringVar(
		&opts.StandardJobID,
		"standard-job-id",
		"",
		"Restrict the pass to one standard job",
	)
	fs.StringVar(
		&opts.CountryCode,
		"country-code",
		"",
		fmt.Sprintf("Restrict the pass to one country code (%q for the global aggregates)", model.WorldCountryCode),
	)
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultAggregateTimeout,
		"Maximum duration to wait for the pass to complete",
	)

	if err := fs.Parse(args); err != nil {
		return aggregateOptions{}, err
	}

	if opts.MinThreshold < 1 {
		return aggregateOptions{}, errors.New("--min-threshold must be at least 1")
	}
	if opts.Timeout <= 0 {
		return aggregateOptions{}, errors.New("--timeout must be greater than zero")
	}

	opts.StandardJobID = strings.TrimSpace(opts.StandardJobID)
	opts.CountryCode = strings.TrimSpace(opts.CountryCode)

	return opts, nil
}

func parseStatsGetFlags(args []string) (statsGetOptions, error) {
	fs := flag.NewFlagSet("stats-get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := statsGetOptions{
		Timeout: defaultLookupTimeout,
	}

	fs.StringVar(&opts.StandardJobID, "standard-job-id", "", "Standard job ID to look up (required)")
	fs.StringVar(
		&opts.CountryCode,
		"country-code",
		"",
		"Country code to look up (empty for the global aggregate)",
	)
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultLookupTimeout,
		"Maximum duration to wait for the lookup",
	)

	if err := fs.Parse(args); err != nil {
		return statsGetOptions{}, err
	}

	opts.StandardJobID = strings.TrimSpace(opts.StandardJobID)
	if opts.StandardJobID == "" {
		return statsGetOptions{}, errors.New("--standard-job-id is required")
	}
	if opts.Timeout <= 0 {
		return statsGetOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{
		Timeout: defaultMigrationTimeout,
	}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}

	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseDBResetFlags(args []string) (dbResetOptions, error) {
	fs := flag.NewFlagSet("db-reset", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbResetOptions{
		Timeout: defaultMigrationTimeout,
	}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for reset operations to complete",
	)
	fs.BoolVar(
		&opts.Yes,
		"yes",
		false,
		"Skip confirmation prompt",
	)
	fs.BoolVar(
		&opts.Seed,
		"seed",
		false,
		"Run database seeding after reset completes",
	)
	fs.BoolVar(
		&opts.AllowRemote,
		"allow-remote",
		false,
		"Permit running against database hosts that do not look local",
	)

	if err := fs.Parse(args); err != nil {
		return dbResetOptions{}, err
	}

	if opts.Timeout <= 0 {
		return dbResetOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseDBSeedFlags(args []string) (dbSeedOptions, error) {
	fs := flag.NewFlagSet("db-seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbSeedOptions{
		Timeout: defaultMigrationTimeout,
	}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for seeding to complete",
	)
	fs.BoolVar(
		&opts.AllowRemote,
		"allow-remote",
		false,
		"Permit running against database hosts that do not look local",
	)

	if err := fs.Parse(args); err != nil {
		return dbSeedOptions{}, err
	}

	if opts.Timeout <= 0 {
		return dbSeedOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

func guardRemoteHost(cmdCtx *commandContext, allow bool, action string) (bool, error) {
	remote := isLikelyRemoteHost(cmdCtx.Config.Postgres.Host)
	if !remote {
		return false, nil
	}
	if !allow {
		return true, fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			cmdCtx.Config.Postgres.Host,
		)
	}
	if err := requireRemoteHostConfirmation(action, cmdCtx.Config.Postgres.Host); err != nil {
		return true, err
	}
	return true, nil
}

func (cmdCtx *commandContext) resetDatabase(ctx context.Context, db *sql.DB) error {
	if cmdCtx == nil {
		return errors.New("command context is required")
	}

	cfg := &cmdCtx.Config.Postgres
	statements := []string{
		"DROP SCHEMA public CASCADE",
		"CREATE SCHEMA public",
		"GRANT ALL ON SCHEMA public TO public",
	}
	if user := strings.TrimSpace(cfg.User); user != "" && !strings.EqualFold(user, "public") {
		statements = append(statements, "GRANT ALL ON SCHEMA public TO "+quoteIdentifier(user))
	}

	for _, stmt := range statements {
		if cmdCtx.Logger != nil {
			cmdCtx.Logger.DebugContext(ctx, "executing reset statement", "sql", stmt)
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return false
	}
	if h == "localhost" || h == "127.0.0.1" || h == "::1" {
		return false
	}
	if strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

func requireRemoteHostConfirmation(action, host string) error {
	if err := writef(
		os.Stderr,
		"\nWARNING: database host %q does not look like a local address.\n"+
			"This operation will %s.\n",
		host,
		action,
	); err != nil {
		return fmt.Errorf("print remote host warning: %w", err)
	}
	if err := writef(os.Stderr, "Type %q to continue or press enter to abort: ", host); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	reader := bufio.NewReader(os.Stdin)
	resp, err := reader.ReadString('\n')
	if err != nil {
		if writeErr := writef(os.Stderr, "\nFailed to read confirmation input: %v\n", err); writeErr != nil {
			return fmt.Errorf("aborted by user: report write failed: %w", writeErr)
		}
		return errors.New("aborted by user")
	}
	if strings.TrimSpace(resp) != host {
		if writeErr := writeln(os.Stderr, "\nRemote safeguard check failed; aborting."); writeErr != nil {
			return fmt.Errorf("print remote safeguard failure: %w", writeErr)
		}
		return errors.New("aborted by user")
	}
	return nil
}

type confirmOptions interface {
	IsDryRun() bool
	IsYes() bool
	GetTarget() string
	GetWarning() string
}

type dbResetConfirmOptions struct {
	yes        bool
	target     string
	remoteHost string
}

func (d dbResetConfirmOptions) IsDryRun() bool { return false }
func (d dbResetConfirmOptions) IsYes() bool {
	if d.remoteHost != "" {
		return false
	}
	return d.yes
}

func (d dbResetConfirmOptions) GetWarning() string {
	warning := "WARNING: this will drop and recreate the public schema for the configured database."
	if d.remoteHost != "" {
		warning += fmt.Sprintf(" Host %q appears to be remote; double-check before proceeding.", d.remoteHost)
	}
	return warning
}
func (d dbResetConfirmOptions) GetTarget() string { return d.target }

func confirmAction(opts confirmOptions, actionType string) error {
	if opts.IsDryRun() || opts.IsYes() {
		return nil
	}

	if err := printConfirmationIntro(opts, actionType); err != nil {
		return err
	}

	if err := write(os.Stdout, "Continue? [y/N]: "); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	reader := bufio.NewReader(os.Stdin)
	resp, err := reader.ReadString('\n')
	if err != nil {
		if writeErr := writef(os.Stdout, "\nFailed to read confirmation input: %v\n", err); writeErr != nil {
			return fmt.Errorf("aborted by user: report write failed: %w", writeErr)
		}
		return errors.New("aborted by user")
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}

func printConfirmationIntro(opts confirmOptions, actionType string) error {
	target := opts.GetTarget()
	if target == "" {
		if err := writeln(os.Stdout, opts.GetWarning()); err != nil {
			return fmt.Errorf("print confirmation warning: %w", err)
		}
		return nil
	}

	if err := writef(os.Stdout, "About to %s for %s.\n", actionType, target); err != nil {
		return fmt.Errorf("print confirmation message: %w", err)
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
