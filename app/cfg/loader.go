package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./data/newsdesk.db" description:"SQLite database file"`
	InMemory bool   `long:"in-memory" env:"IN_MEMORY" description:"Keep published news in memory only"`

	// Moderation configuration
	RulesFile         string        `long:"rules-file" env:"RULES_FILE" description:"YAML file overriding the built-in moderation rules (optional)"`
	ProcessingDelay   time.Duration `long:"processing-delay" env:"PROCESSING_DELAY" default:"2s" description:"Simulated moderation latency"`
	ProcessingTimeout time.Duration `long:"processing-timeout" env:"PROCESSING_TIMEOUT" default:"10s" description:"Upper bound for a single moderation run"`
	EditorialNotes    bool          `long:"editorial-notes" env:"EDITORIAL_NOTES" description:"Append a random editorial note to published summaries"`

	// Application configuration
	ImportsDir   string `long:"imports-dir" env:"IMPORTS_DIR" default:"./imports" description:"Directory containing import source configuration files"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for imports"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return parse(nil)
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		InMemory:          raw.InMemory,
		RulesFile:         raw.RulesFile,
		ProcessingDelay:   raw.ProcessingDelay,
		ProcessingTimeout: raw.ProcessingTimeout,
		EditorialNotes:    raw.EditorialNotes,
		ImportsDir:        raw.ImportsDir,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		APIAccessKey:      raw.APIAccessKey,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func validate(raw rawCfg) error {
	if raw.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if raw.ProcessingDelay < 0 {
		return fmt.Errorf("processing delay must be non-negative")
	}
	if raw.ProcessingTimeout <= raw.ProcessingDelay {
		return fmt.Errorf("processing timeout must exceed processing delay")
	}
	if !raw.InMemory && raw.DBPath == "" {
		return fmt.Errorf("database path is required unless running in memory")
	}
	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set installs cfg as the global configuration. Used by tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
