package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Queries            Queries  `yaml:"queries"`
	IgnoreInstitutions []string `yaml:"ignore_institutions"`
	SFTP               SFTP     `yaml:"sftp"`
	Output             Output   `yaml:"output"`
	Logging            Logging  `yaml:"logging"`
}

// Queries locates the registrar query exports the engine consumes.
type Queries struct {
	Dir          string `yaml:"dir"`
	IncomingDir  string `yaml:"incoming_dir"`
	Institutions string `yaml:"institutions"`
	Catalog      string `yaml:"catalog"`
	Rules        string `yaml:"rules"`
}

// SFTP configures retrieval of query files from the registrar's drop.
// The password is read from the environment variable named PasswordEnv;
// a .env file is honored when present.
type SFTP struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	PasswordEnv string `yaml:"password_env"`
	RemoteDir   string `yaml:"remote_dir"`
}

type Output struct {
	DataDir     string `yaml:"data_dir"`
	ConflictLog string `yaml:"conflict_log"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for transferrules.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "transferrules")
}

// DataDir returns the XDG data directory for transferrules.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "transferrules")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/transferrules/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'transferrules init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file. A .env file in the working
// directory is loaded first so password_env variables resolve.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Queries: Queries{
			Dir:          "latest_queries",
			IncomingDir:  "incoming",
			Institutions: "institutions.csv",
			Catalog:      "course_catalog.csv",
			Rules:        "transfer_rules.csv",
		},
		SFTP: SFTP{
			Port:        22,
			PasswordEnv: "SFTP_PASS",
			RemoteDir:   "/exports",
		},
		Output: Output{
			ConflictLog: "transfer_rule_conflicts.log",
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// QueryPath returns the path of a query file under the latest-queries dir.
func (c *Config) QueryPath(name string) string {
	return filepath.Join(c.Queries.Dir, name)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
