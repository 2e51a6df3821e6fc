package notify

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"docportal/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// routingRule is one priority-ordered substring rule.
type routingRule struct {
	Contains string `yaml:"contains"`
	Type     string `yaml:"type"`
}

// routingConfig is the embedded rule file. Shipping the rules as one embedded
// artifact keeps the priority order auditable in a single place instead of
// scattered across call sites.
type routingConfig struct {
	Rules      []routingRule `yaml:"rules"`
	Fallback   string        `yaml:"fallback"`
	Structural []string      `yaml:"structural"`
}

// loadRoutingConfig parses and validates the embedded routing rules.
func loadRoutingConfig() (*routingConfig, error) {
	data, err := configFiles.ReadFile("config/routing.yaml")
	if err != nil {
		return nil, fmt.Errorf("read routing rules: %w", err)
	}

	var cfg routingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal routing rules: %w", err)
	}

	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("routing rules: no rules defined")
	}
	for i, rule := range cfg.Rules {
		if rule.Contains == "" || rule.Type == "" {
			return nil, fmt.Errorf("routing rules: rule %d is missing contains or type", i)
		}
	}
	if cfg.Fallback == "" {
		return nil, fmt.Errorf("routing rules: fallback type is required")
	}

	return &cfg, nil
}

func (c *routingConfig) structuralSet() map[string]models.NotificationType {
	set := make(map[string]models.NotificationType, len(c.Structural))
	for _, s := range c.Structural {
		set[s] = models.NotificationType(s)
	}
	return set
}
