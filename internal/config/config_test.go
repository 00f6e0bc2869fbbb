package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Queries.Dir != "latest_queries" {
		t.Errorf("expected default queries dir, got %q", cfg.Queries.Dir)
	}
	if cfg.SFTP.Port != 22 || cfg.SFTP.PasswordEnv != "SFTP_PASS" {
		t.Errorf("unexpected sftp defaults: %+v", cfg.SFTP)
	}
	if cfg.Output.ConflictLog != "transfer_rule_conflicts.log" {
		t.Errorf("unexpected conflict log default: %q", cfg.Output.ConflictLog)
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := parse([]byte(`
queries:
  dir: /data/queries
  rules: rules_extract.csv
ignore_institutions: [TRMA1, NONE1]
sftp:
  enabled: true
  host: drop.example.edu
  user: registrar
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Queries.Dir != "/data/queries" || cfg.Queries.Rules != "rules_extract.csv" {
		t.Errorf("unexpected queries: %+v", cfg.Queries)
	}
	if len(cfg.IgnoreInstitutions) != 2 {
		t.Errorf("expected 2 ignored institutions, got %v", cfg.IgnoreInstitutions)
	}
	if !cfg.SFTP.Enabled || cfg.SFTP.Host != "drop.example.edu" {
		t.Errorf("unexpected sftp: %+v", cfg.SFTP)
	}
	// Defaults survive partial override.
	if cfg.SFTP.Port != 22 {
		t.Errorf("expected default port preserved, got %d", cfg.SFTP.Port)
	}
}

func TestDefaultConfigParses(t *testing.T) {
	if _, err := parse(DefaultConfigYAML); err != nil {
		t.Fatalf("embedded default config must parse: %v", err)
	}
}

func TestQueryPath(t *testing.T) {
	cfg, _ := parse([]byte("queries:\n  dir: q\n"))
	if got := cfg.QueryPath("rules.csv"); got != filepath.Join("q", "rules.csv") {
		t.Errorf("unexpected query path %q", got)
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	_, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit path")
	}
}

func TestLoadExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: DEBUG\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected DEBUG level, got %q", cfg.Logging.Level)
	}
}
