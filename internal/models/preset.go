package models

import "time"

// FilterPreset is a named, saved rule chain
type FilterPreset struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Table       string       `yaml:"table,omitempty" json:"table,omitempty"` // "schema.table" the chain was built for
	Rules       []FilterRule `yaml:"rules" json:"rules"`
	Tags        []string     `yaml:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt   time.Time    `yaml:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `yaml:"updated_at" json:"updatedAt"`
	LastUsed    time.Time    `yaml:"last_used,omitempty" json:"lastUsed,omitempty"`
	UsageCount  int          `yaml:"usage_count" json:"usageCount"`
}
