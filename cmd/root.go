package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/hotelops/internal/output"
	"github.com/joescharf/hotelops/internal/service"
	"github.com/joescharf/hotelops/internal/stats"
	"github.com/joescharf/hotelops/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "hotelops",
	Short: "Hotel maintenance tracker - report, assign, and resolve room issues",
	Long: `hotelops tracks maintenance requests for hotel rooms.
Front desk and operations staff report issues, assign technicians,
move requests through their lifecycle, and watch summary counts.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	closeStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/hotelops/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HOTELOPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key's default value.
func setDefaults() {
	defaultConfigDir, _ := configDirFunc()

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "hotelops.db"))
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("postgres.dsn", "")
	viper.SetDefault("port", 8080)
	viper.SetDefault("requests.default_reporter", service.DefaultReporter)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// Initialize store lazily: only when commands actually need it.
	// This allows config/version commands to run without a db.
}

// openStore builds the backend selected by store.driver and migrates it.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)

	driver := strings.ToLower(viper.GetString("store.driver"))
	switch driver {
	case "", "sqlite":
		s, err = store.NewSQLiteStore(viper.GetString("db_path"))
	case "postgres", "postgresql":
		s, err = store.NewPostgresStore(ctx, viper.GetString("postgres.dsn"))
	case "memory":
		s = store.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store.driver %q (want sqlite, postgres, or memory)", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	ui.VerboseLog("Using %s store", viper.GetString("store.driver"))
	dataStore = s
	return dataStore, nil
}

func closeStore() {
	if dataStore != nil {
		_ = dataStore.Close()
		dataStore = nil
	}
}

// getService wires the lifecycle service over the shared store.
func getService() (*service.Service, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	return service.New(s, service.WithDefaultReporter(viper.GetString("requests.default_reporter"))), nil
}

// getAggregator wires the statistics aggregator over the shared store.
func getAggregator() (*stats.Aggregator, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	return stats.New(s), nil
}
