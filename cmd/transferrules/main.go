package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/acadex/transferrules/internal/config"
	"github.com/acadex/transferrules/internal/database"
	"github.com/acadex/transferrules/internal/loader"
	"github.com/acadex/transferrules/internal/pipeline"
	"github.com/acadex/transferrules/internal/retrieve"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "transferrules",
	Short:   "Transfer rule reconciliation engine",
	Long:    "transferrules reconciles the registrar's course-transfer equivalency feed against the course catalog and rebuilds the relational rule model.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(runCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("transferrules", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/transferrules/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure query locations and the SFTP drop.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database contents and last update times",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Database:")
		fmt.Printf("  Institutions: %d\n", stats.Institutions)
		fmt.Printf("  Catalog courses: %d\n", stats.Courses)
		fmt.Printf("  Transfer rules: %d\n", stats.Rules)
		fmt.Printf("  Source courses: %d\n", stats.SourceCourses)
		fmt.Printf("  Destination courses: %d\n", stats.DestinationCourses)

		stamps, err := db.GetUpdateStamps()
		if err != nil {
			return fmt.Errorf("getting update stamps: %w", err)
		}
		if len(stamps) > 0 {
			fmt.Println("\nLast updates:")
			for _, s := range stamps {
				fmt.Printf("  %-16s %s  (%s)\n", s.TableName, s.UpdateDate, s.FileName)
			}
		}
		return nil
	},
}

// --- fetch command ---

var fetchTimeout time.Duration

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download query exports from the registrar's SFTP drop",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.SFTP.Enabled {
			return fmt.Errorf("sftp is disabled in config; enable sftp.enabled or place files in %s manually", cfg.Queries.Dir)
		}
		password := os.Getenv(cfg.SFTP.PasswordEnv)
		if password == "" {
			return fmt.Errorf("environment variable %s is not set", cfg.SFTP.PasswordEnv)
		}

		names := queryNames()
		incoming := cfg.Queries.IncomingDir
		if err := os.MkdirAll(incoming, 0o755); err != nil {
			return fmt.Errorf("creating incoming directory: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		fmt.Printf("Fetching %d files from %s...\n", len(names), cfg.SFTP.Host)
		err := retrieve.Download(ctx, retrieve.SFTPConfig{
			Host:      cfg.SFTP.Host,
			Port:      cfg.SFTP.Port,
			User:      cfg.SFTP.User,
			Password:  password,
			RemoteDir: cfg.SFTP.RemoteDir,
		}, names, incoming)
		if err != nil {
			return fmt.Errorf("downloading: %w", err)
		}

		paths := make([]string, len(names))
		for i, name := range names {
			paths[i] = filepath.Join(incoming, name)
		}
		dates, consistent, err := retrieve.FileDates(paths)
		if err != nil {
			return fmt.Errorf("checking file dates: %w", err)
		}
		for _, d := range dates {
			fmt.Printf("  %s  %s\n", d.Date, filepath.Base(d.Path))
		}
		if !consistent {
			fmt.Println("\nWARNING: file dates differ; the exports are from different query runs.")
			fmt.Println("Files left in", incoming, "- promote manually once resolved.")
			return fmt.Errorf("inconsistent export dates")
		}

		if err := retrieve.Promote(incoming, cfg.Queries.Dir, names); err != nil {
			return fmt.Errorf("promoting files: %w", err)
		}
		fmt.Printf("Promoted %d files to %s.\n", len(names), cfg.Queries.Dir)
		return nil
	},
}

func init() {
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 5*time.Minute, "Overall download timeout")
}

// --- load command ---

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load institutions and the course catalog into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		instPath := cfg.QueryPath(cfg.Queries.Institutions)
		f, err := os.Open(instPath)
		if err != nil {
			return fmt.Errorf("opening institutions file: %w", err)
		}
		insts, err := loader.Institutions(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading institutions: %w", err)
		}
		n, err := db.ReplaceInstitutions(insts)
		if err != nil {
			return fmt.Errorf("writing institutions: %w", err)
		}
		fmt.Printf("Loaded %d institutions.\n", n)
		if err := stampFile(db, "institutions", instPath); err != nil {
			return err
		}

		catPath := cfg.QueryPath(cfg.Queries.Catalog)
		f, err = os.Open(catPath)
		if err != nil {
			return fmt.Errorf("opening catalog file: %w", err)
		}
		result, err := loader.Catalog(f, db, cfg.IgnoreInstitutions)
		f.Close()
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		fmt.Printf("Loaded %d catalog courses (%d skipped, %d ignored institutions).\n",
			result.Courses, result.Skipped, result.Ignored)
		return stampFile(db, "courses", catPath)
	},
}

func stampFile(db *database.DB, table, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	err = db.StampUpdate(database.UpdateStamp{
		TableName:  table,
		UpdateDate: info.ModTime().Format("2006-01-02"),
		FileName:   filepath.Base(path),
	})
	if err != nil {
		return fmt.Errorf("recording update: %w", err)
	}
	return nil
}

// --- run command ---

var showProgress bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rebuild transfer rules from the equivalency feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result := pipeline.New(cfg, db, showProgress).Run()

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/3: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if result.Failed() {
			return fmt.Errorf("rebuild failed")
		}

		fmt.Printf("\nRebuild complete: %d rules, %d source courses, %d destination courses.\n",
			result.Rules, result.Sources, result.Dests)
		if result.Anomalies > 0 {
			fmt.Printf("%d anomalies logged to %s.\n", result.Anomalies, cfg.Output.ConflictLog)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "Log progress during reconciliation")
}

func queryNames() []string {
	return []string{cfg.Queries.Institutions, cfg.Queries.Catalog, cfg.Queries.Rules}
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "transferrules.db")
	return database.Open(dbPath)
}
