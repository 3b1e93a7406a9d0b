package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	// pgx driver for database/sql in integration tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/hiremetrics/hirestats/internal/migrate"
)

// TestingTB covers the subset of *testing.T and *testing.B the helpers need.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// cleanup registers fn with t.Cleanup when the harness supports it.
func cleanup(t TestingTB, fn func()) bool {
	tc, ok := any(t).(interface{ Cleanup(func()) })
	if ok {
		tc.Cleanup(fn)
	}
	return ok
}

// TestDBConfig describes the Postgres instance integration tests run against.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads TEST_DB_* overrides and falls back to the
// docker-compose test profile on port 55432. CI sets TEST_DB_PORT=5432.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "55432"),
		User:     envOr("TEST_DB_USER", "hirestats"),
		Password: envOr("TEST_DB_PASSWORD", "hirestats"),
		DBName:   envOr("TEST_DB_NAME", "hirestats"),
	}
}

func (c TestDBConfig) dsn() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + envOr("DB_SSL_MODE", "disable"),
	}
	return u.String()
}

// SkipIfNoTestDB skips (or fails under TEST_REQUIRE_DB) when the test
// database does not answer a ping.
func SkipIfNoTestDB(t TestingTB) {
	t.Helper()

	if err := probeDB(DefaultTestDBConfig().dsn()); err != nil {
		if requireDB() {
			t.Fatal("Test database not available:", err)
		}
		t.Skip("Test database not available:", err)
	}
}

func probeDB(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// WithAutoDB runs fn against a migrated test database. With
// TEST_DB_EPHEMERAL set, each call gets its own schema that is dropped
// afterwards; otherwise the shared database is used and its tables are
// emptied before and after fn.
func WithAutoDB(t TestingTB, fn func(*sql.DB)) {
	t.Helper()
	SkipIfNoTestDB(t)

	if envBool("TEST_DB_EPHEMERAL") {
		fn(ephemeralSchemaDB(t))
		return
	}

	db := openMigratedDB(t, DefaultTestDBConfig().dsn())
	defer func() {
		truncateAll(t, db)
		if err := db.Close(); err != nil {
			t.Logf("close test db: %v", err)
		}
	}()
	truncateAll(t, db)
	fn(db)
}

func openMigratedDB(t TestingTB, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatal("open test database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Fatal("ping test database (is docker-compose up?):", err)
	}
	if err := migrate.Run(ctx, db); err != nil {
		t.Fatal("migrate test database:", err)
	}
	return db
}

// truncateAll empties every table in child-before-parent order.
func truncateAll(t TestingTB, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, table := range []string{"job_posting_stats", "job_posting", "standard_job", "standard_job_family"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("clean table %s: %v", table, err)
		}
	}
}

// ephemeralSchemaDB migrates a throwaway schema and points the returned
// connection's search_path at it. The schema is dropped on cleanup.
func ephemeralSchemaDB(t TestingTB) *sql.DB {
	t.Helper()

	cfg := DefaultTestDBConfig()
	admin, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
		t.Fatal("open admin connection:", err)
	}

	schema := "t_" + randomSuffix()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
		admin.Close()
		t.Fatalf("create schema %s: %v", schema, err)
	}
	t.Logf("using ephemeral schema %s", schema)

	u, err := url.Parse(cfg.dsn())
	if err != nil {
		admin.Close()
		t.Fatal("parse dsn:", err)
	}
	q := u.Query()
	q.Set("search_path", schema+",public")
	u.RawQuery = q.Encode()

	db, err := sql.Open("pgx", u.String())
	if err != nil {
		admin.Close()
		t.Fatal("open schema-scoped connection:", err)
	}

	drop := func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		if err := db.Close(); err != nil {
			t.Logf("close schema db: %v", err)
		}
		if _, err := admin.ExecContext(dropCtx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		if err := admin.Close(); err != nil {
			t.Logf("close admin db: %v", err)
		}
	}
	// Registered before migrating so a failed migration still drops the schema.
	if !cleanup(t, drop) {
		defer drop()
	}

	if err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("migrate schema %s: %v", schema, err)
	}
	return db
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}

// TestTime returns a fixed instant so persisted timestamps are assertable.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// StatsRowInfo mirrors one job_posting_stats row for assertions.
type StatsRowInfo struct {
	ID                string
	StandardJobID     string
	CountryCode       string
	MinDays           float64
	AvgDays           float64
	MaxDays           float64
	JobPostingsNumber int
}

// InspectStatsRows reads every statistics row ordered by (job, country).
func InspectStatsRows(t TestingTB, db *sql.DB) []StatsRowInfo {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT id, standard_job_id, country_code,
		       min_days, avg_days, max_days, job_postings_number
		FROM job_posting_stats
		ORDER BY standard_job_id, country_code
	`)
	if err != nil {
		t.Fatalf("query stats rows: %v", err)
	}
	defer rows.Close()

	var out []StatsRowInfo
	for rows.Next() {
		var r StatsRowInfo
		if err := rows.Scan(&r.ID, &r.StandardJobID, &r.CountryCode,
			&r.MinDays, &r.AvgDays, &r.MaxDays, &r.JobPostingsNumber); err != nil {
			t.Fatalf("scan stats row: %v", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate stats rows: %v", err)
	}
	return out
}

// SetupTestRedis connects to a test Redis, reserving a database index so
// packages running in parallel do not flush each other's keys. Tests skip
// (or fail under TEST_REQUIRE_REDIS) when no instance answers.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr, ok := findRedis(t)
	if !ok {
		if requireRedis() {
			t.Fatal("Redis not available for testing")
		}
		t.Skip("Redis not available for testing")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: reserveRedisDB(t, addr)})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		if requireRedis() {
			t.Fatalf("Redis not available at %s: %v", addr, err)
		}
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	return client
}

// findRedis tries REDIS_ADDR, then the usual CI addresses, then the local
// docker-compose test port.
func findRedis(t TestingTB) (string, bool) {
	t.Helper()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr, pingRedis(addr)
	}
	for _, addr := range []string{"redis:6379", "localhost:6379", "localhost:56379"} {
		if pingRedis(addr) {
			return addr, true
		}
	}
	return "", false
}

func pingRedis(addr string) bool {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// reserveRedisDB picks a database index for this test run. TEST_REDIS_DB
// overrides; otherwise indexes 1..15 are claimed through SetNX lock keys
// kept in DB 0, out of reach of the per-test FlushDB.
func reserveRedisDB(t TestingTB, addr string) int {
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
		t.Logf("invalid TEST_REDIS_DB=%q, auto-selecting", v)
	}

	meta := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	defer meta.Close()

	for i := 1; i <= 15; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		key := fmt.Sprintf("hirestats:testutil:db_lock:%d", i)
		val := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
		ok, err := meta.SetNX(ctx, key, val, 30*time.Minute).Result()
		cancel()
		if err != nil || !ok {
			continue
		}

		cleanup(t, func() {
			c := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
			defer c.Close()
			delCtx, delCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer delCancel()
			if err := c.Del(delCtx, key).Err(); err != nil {
				t.Logf("release redis db lock %s: %v", key, err)
			}
		})
		t.Logf("using redis DB=%d at %s", i, addr)
		return i
	}

	t.Logf("all redis DB locks taken, falling back to DB=1 at %s", addr)
	return 1
}
