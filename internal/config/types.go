// Package config loads and validates the transit board configuration
package config

import (
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
)

// BusConfig configures the bus schedule pipeline
type BusConfig struct {
	URL            string `yaml:"url" mapstructure:"url" validate:"required,url"`
	Schedule       string `yaml:"schedule" mapstructure:"schedule" validate:"required"`
	TransitMinutes int    `yaml:"transit_minutes" mapstructure:"transit_minutes" validate:"gte=0"`
	Output         string `yaml:"output" mapstructure:"output" validate:"required"`
}

// CorridorConfig configures the derived corridor view
type CorridorConfig struct {
	Lines  []string `yaml:"lines" mapstructure:"lines"`
	Output string   `yaml:"output" mapstructure:"output" validate:"required"`
}

// DisruptionConfig configures the line disruption pipeline
type DisruptionConfig struct {
	Schedule      string           `yaml:"schedule" mapstructure:"schedule" validate:"required"`
	RoutesFile    string           `yaml:"routes_file" mapstructure:"routes_file"`
	Routes        []entities.Route `yaml:"routes" mapstructure:"routes" validate:"dive"`
	PriorityTiers []string         `yaml:"priority_tiers" mapstructure:"priority_tiers"`
	PriorityLines []string         `yaml:"priority_lines" mapstructure:"priority_lines"`
	Concurrency   int              `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=1"`
	Output        string           `yaml:"output" mapstructure:"output" validate:"required"`
	Corridor      CorridorConfig   `yaml:"corridor" mapstructure:"corridor"`
}

// HTTPConfig configures page retrieval
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes          int64         `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gt=0"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int           `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// TelegramConfig configures the chat bot that takes operator messages and answers status queries
type TelegramConfig struct {
	Token          string  `yaml:"token" mapstructure:"token"`
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids" mapstructure:"allowed_chat_ids"`
}

// OperatorConfig configures the operator message step
type OperatorConfig struct {
	Prompt   bool           `yaml:"prompt" mapstructure:"prompt"`
	Wait     time.Duration  `yaml:"wait" mapstructure:"wait" validate:"gt=0"`
	File     string         `yaml:"file" mapstructure:"file" validate:"required"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
}

// PublishConfig configures the git publishing step
type PublishConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	RepoDir string `yaml:"repo_dir" mapstructure:"repo_dir" validate:"required_if=Enabled true"`
	Push    bool   `yaml:"push" mapstructure:"push"`
}

// StorageConfig configures the latest-snapshot database
type StorageConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	DBPath  string `yaml:"db_path" mapstructure:"db_path"`
}

// Config is the root configuration structure
type Config struct {
	Bus        BusConfig        `yaml:"bus" mapstructure:"bus"`
	Disruption DisruptionConfig `yaml:"disruption" mapstructure:"disruption"`
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
	Operator   OperatorConfig   `yaml:"operator" mapstructure:"operator"`
	Publish    PublishConfig    `yaml:"publish" mapstructure:"publish"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Verbose    bool             `yaml:"verbose" mapstructure:"verbose"`
}

// Catalog builds the route catalog. Routes without a tier that appear in
// PriorityLines join DefaultPriorityTier, which is a priority tier only when
// PriorityTiers is unset or lists it.
func (c DisruptionConfig) Catalog() entities.RouteCatalog {
	tiers := c.PriorityTiers
	if len(tiers) == 0 && len(c.PriorityLines) > 0 {
		tiers = []string{DefaultPriorityTier}
	}

	priority := make(map[string]bool, len(c.PriorityLines))
	for _, name := range c.PriorityLines {
		priority[name] = true
	}

	routes := make([]entities.Route, 0, len(c.Routes))
	for _, r := range c.Routes {
		if r.Tier == "" && priority[r.LineName] {
			r.Tier = DefaultPriorityTier
		}
		routes = append(routes, r)
	}

	return entities.RouteCatalog{
		Routes:        routes,
		PriorityTiers: tiers,
	}
}
