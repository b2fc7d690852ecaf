package entities

// DefaultTier is the tier assigned to routes that declare none
const DefaultTier = "other"

// Route is one monitored railway line
type Route struct {
	LineName string `yaml:"line_name" mapstructure:"line_name" validate:"required"`
	URL      string `yaml:"url" mapstructure:"url" validate:"required,url"`
	Tier     string `yaml:"tier" mapstructure:"tier"`
}

// RouteCatalog is the ordered set of monitored lines and the tiers that take precedence
type RouteCatalog struct {
	Routes        []Route
	PriorityTiers []string // Highest precedence first
}

// TierOf returns the route's tier, DefaultTier when unset
func (r Route) TierOf() string {
	if r.Tier == "" {
		return DefaultTier
	}
	return r.Tier
}

// IsPriorityTier reports whether tier is one of the catalog's priority tiers
func (c RouteCatalog) IsPriorityTier(tier string) bool {
	for _, t := range c.PriorityTiers {
		if t == tier {
			return true
		}
	}
	return false
}
