package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultPriorityTier is the tier name given to the legacy priority line list
const DefaultPriorityTier = "keio"

const defaultBusURL = "https://transfer.navitime.biz/keiseibus/pc/location/BusLocationResult?startId=00180695&goalId=00180769"

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Bus: BusConfig{
			URL:            defaultBusURL,
			Schedule:       "@every 60s",
			TransitMinutes: 19,
			Output:         "public/chiba_timetable.csv",
		},
		Disruption: DisruptionConfig{
			Schedule:      "@every 180s",
			RoutesFile:    "routes.csv",
			PriorityTiers: []string{DefaultPriorityTier},
			PriorityLines: []string{"京王線", "京王相模原線", "京王高尾線"},
			Concurrency:   4,
			Output:        "public/result.csv",
			Corridor: CorridorConfig{
				Lines:  []string{"総武線快速", "総武線(各停)", "京成千葉線", "京成本線"},
				Output: "public/chiba_result.csv",
			},
		},
		HTTP: HTTPConfig{
			Timeout:           10 * time.Second,
			UserAgent:         "transit-board/1.0",
			MaxBytes:          4 << 20,
			MaxRetries:        2,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Operator: OperatorConfig{
			Prompt: true,
			Wait:   120 * time.Second,
			File:   "public/custom.csv",
		},
		Publish: PublishConfig{
			Enabled: true,
			RepoDir: ".",
			Push:    true,
		},
		Storage: StorageConfig{
			Enabled: true,
			DBPath:  "data/snapshot.db",
		},
	}
}

// SetDefaults registers every built-in value with v so env variables can override them
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("bus.url", d.Bus.URL)
	v.SetDefault("bus.schedule", d.Bus.Schedule)
	v.SetDefault("bus.transit_minutes", d.Bus.TransitMinutes)
	v.SetDefault("bus.output", d.Bus.Output)

	v.SetDefault("disruption.schedule", d.Disruption.Schedule)
	v.SetDefault("disruption.routes_file", d.Disruption.RoutesFile)
	v.SetDefault("disruption.priority_tiers", d.Disruption.PriorityTiers)
	v.SetDefault("disruption.priority_lines", d.Disruption.PriorityLines)
	v.SetDefault("disruption.concurrency", d.Disruption.Concurrency)
	v.SetDefault("disruption.output", d.Disruption.Output)
	v.SetDefault("disruption.corridor.lines", d.Disruption.Corridor.Lines)
	v.SetDefault("disruption.corridor.output", d.Disruption.Corridor.Output)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_bytes", d.HTTP.MaxBytes)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)
	v.SetDefault("http.requests_per_second", d.HTTP.RequestsPerSecond)
	v.SetDefault("http.burst", d.HTTP.Burst)
	v.SetDefault("http.respect_robots", d.HTTP.RespectRobots)

	v.SetDefault("operator.prompt", d.Operator.Prompt)
	v.SetDefault("operator.wait", d.Operator.Wait)
	v.SetDefault("operator.file", d.Operator.File)
	v.SetDefault("operator.telegram.token", "")
	v.SetDefault("operator.telegram.allowed_chat_ids", []int64{})

	v.SetDefault("publish.enabled", d.Publish.Enabled)
	v.SetDefault("publish.repo_dir", d.Publish.RepoDir)
	v.SetDefault("publish.push", d.Publish.Push)

	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.db_path", d.Storage.DBPath)
}
