package testutil

import "testing"

func TestDefaultTestDBConfigDefaults(t *testing.T) {
	for _, key := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
		t.Setenv(key, "")
	}

	cfg := DefaultTestDBConfig()

	want := TestDBConfig{
		Host:     "localhost",
		Port:     "55432",
		User:     "hirestats",
		Password: "hirestats",
		DBName:   "hirestats",
	}
	if cfg != want {
		t.Errorf("DefaultTestDBConfig() = %+v, want %+v", cfg, want)
	}
}

func TestDefaultTestDBConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "postgres")
	t.Setenv("TEST_DB_PORT", "5432")
	t.Setenv("TEST_DB_NAME", "hirestats_ci")

	cfg := DefaultTestDBConfig()

	if cfg.Host != "postgres" {
		t.Errorf("Host = %q, want postgres", cfg.Host)
	}
	if cfg.Port != "5432" {
		t.Errorf("Port = %q, want 5432", cfg.Port)
	}
	if cfg.DBName != "hirestats_ci" {
		t.Errorf("DBName = %q, want hirestats_ci", cfg.DBName)
	}
}
