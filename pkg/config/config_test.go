package config

import "testing"

func TestEnsureDSNFromParts(t *testing.T) {
	cfg := DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "talentbridge",
		Password: "secret",
		Name:     "talentbridge",
		SSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	want := "host=localhost port=5432 user=talentbridge password=secret dbname=talentbridge sslmode=disable"
	if cfg.DSN != want {
		t.Fatalf("unexpected DSN %q", cfg.DSN)
	}
}

func TestEnsureDSNPrefersExplicit(t *testing.T) {
	cfg := DBConfig{DSN: "host=db port=5432"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if cfg.DSN != "host=db port=5432" {
		t.Fatalf("explicit DSN must win, got %q", cfg.DSN)
	}
}

func TestEnsureDSNMissingParts(t *testing.T) {
	cfg := DBConfig{Host: "localhost"}
	if err := cfg.ensureDSN(); err == nil {
		t.Fatal("expected error without user/name")
	}
}
