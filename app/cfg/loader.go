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
	DBPath string `long:"db-path" env:"DB_PATH" default:"./pulseboard.db" description:"Path to the SQLite database file"`

	// Upstream aggregator configuration
	AggregatorURL     string `long:"aggregator-url" env:"AGGREGATOR_URL" default:"http://localhost:9090" description:"Base URL of the upstream content aggregator"`
	AggregatorTimeout int    `long:"aggregator-timeout" env:"AGGREGATOR_TIMEOUT" default:"15" description:"Aggregator request timeout in seconds"`
	FeedLimit         int    `long:"feed-limit" env:"FEED_LIMIT" default:"100" description:"Number of items requested per feed composition pass"`
	ExploreLimit      int    `long:"explore-limit" env:"EXPLORE_LIMIT" default:"30" description:"Number of items requested per explore page"`

	// Application configuration
	SectionsFile      string `long:"sections-file" env:"SECTIONS_FILE" default:"./sections.yml" description:"YAML file with feed section definitions (optional, defaults apply)"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	ExploreCacheTTL   int    `long:"explore-cache-ttl" env:"EXPLORE_CACHE_TTL" default:"300" description:"Explore first-page cache TTL in seconds"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for maintenance tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"240" description:"Scheduler interval in seconds"`
	RetentionDays     int    `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Days to keep durable content rows not referenced by any saved item"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Pulseboard/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		AggregatorURL:     raw.AggregatorURL,
		AggregatorTimeout: raw.AggregatorTimeout,
		FeedLimit:         raw.FeedLimit,
		ExploreLimit:      raw.ExploreLimit,
		SectionsFile:      raw.SectionsFile,
		Port:              raw.Port,
		ExploreCacheTTL:   raw.ExploreCacheTTL,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		RetentionDays:     raw.RetentionDays,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
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

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
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
