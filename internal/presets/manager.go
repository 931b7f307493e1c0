package presets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebelice/lazyfilter/internal/export"
	"github.com/rebelice/lazyfilter/internal/models"
	"gopkg.in/yaml.v3"
)

// Manager manages saved filter presets
type Manager struct {
	path    string
	presets []models.FilterPreset
}

// NewManager creates a new presets manager
func NewManager(configDir string) (*Manager, error) {
	path := filepath.Join(configDir, "presets.yaml")

	m := &Manager{
		path:    path,
		presets: []models.FilterPreset{},
	}

	// Load existing presets if file exists
	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
	}

	return m, nil
}

// Path returns the presets file location
func (m *Manager) Path() string {
	return m.path
}

// Load loads presets from YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read presets file: %w", err)
	}

	var presets []models.FilterPreset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return fmt.Errorf("failed to parse presets: %w", err)
	}
	m.presets = presets

	return nil
}

// Save saves presets to YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.presets)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write presets file: %w", err)
	}

	return nil
}

// Add saves a rule chain under a new name
func (m *Manager) Add(name, description, table string, rules []models.FilterRule, tags []string) (*models.FilterPreset, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, fmt.Errorf("preset name cannot be empty")
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("preset must contain at least one rule")
	}

	// Check for duplicate names (case-insensitive)
	for _, p := range m.presets {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("a preset with the name '%s' already exists (names are case-insensitive)", name)
		}
	}

	now := time.Now()
	preset := models.FilterPreset{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Table:       table,
		Rules:       models.CloneRules(rules),
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.presets = append(m.presets, preset)

	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("failed to save preset: %w", err)
	}

	return &preset, nil
}

// Update replaces the name, description, rules and tags of a preset
func (m *Manager) Update(id, name, description string, rules []models.FilterRule, tags []string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if len(rules) == 0 {
		return fmt.Errorf("preset must contain at least one rule")
	}

	// Check for duplicate names (case-insensitive, excluding the current preset)
	for _, p := range m.presets {
		if p.ID != id && strings.EqualFold(p.Name, name) {
			return fmt.Errorf("a preset with the name '%s' already exists (names are case-insensitive)", name)
		}
	}

	for i, p := range m.presets {
		if p.ID == id {
			m.presets[i].Name = name
			m.presets[i].Description = strings.TrimSpace(description)
			m.presets[i].Rules = models.CloneRules(rules)
			m.presets[i].Tags = tags
			m.presets[i].UpdatedAt = time.Now()
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save preset: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("preset with ID '%s' was not found", id)
}

// Delete deletes a preset by ID
func (m *Manager) Delete(id string) error {
	for i, p := range m.presets {
		if p.ID == id {
			m.presets = append(m.presets[:i], m.presets[i+1:]...)
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save presets after deletion: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("preset with ID '%s' was not found", id)
}

// Get returns a preset by ID
func (m *Manager) Get(id string) (*models.FilterPreset, error) {
	for _, p := range m.presets {
		if p.ID == id {
			p.Rules = models.CloneRules(p.Rules)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("preset with ID '%s' was not found", id)
}

// GetByName returns a preset by name, ignoring case
func (m *Manager) GetByName(name string) (*models.FilterPreset, error) {
	for _, p := range m.presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			p.Rules = models.CloneRules(p.Rules)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("preset '%s' was not found", name)
}

// GetAll returns a copy of all presets
func (m *Manager) GetAll() []models.FilterPreset {
	return slices.Clone(m.presets)
}

// Search searches presets by name, description, table or tags
func (m *Manager) Search(query string) []models.FilterPreset {
	if query == "" {
		return m.GetAll()
	}

	query = strings.ToLower(query)
	var results []models.FilterPreset

	for _, p := range m.presets {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) ||
			strings.Contains(strings.ToLower(p.Table), query) {
			results = append(results, p)
			continue
		}

		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				results = append(results, p)
				break
			}
		}
	}

	return results
}

// RecordUsage updates usage statistics for a preset
func (m *Manager) RecordUsage(id string) error {
	for i, p := range m.presets {
		if p.ID == id {
			m.presets[i].UsageCount++
			m.presets[i].LastUsed = time.Now()
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save usage statistics: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("preset with ID '%s' was not found", id)
}

// GetMostUsed returns the most frequently used presets
func (m *Manager) GetMostUsed(limit int) []models.FilterPreset {
	sorted := make([]models.FilterPreset, len(m.presets))
	copy(sorted, m.presets)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

// GetRecent returns the most recently used presets
func (m *Manager) GetRecent(limit int) []models.FilterPreset {
	sorted := make([]models.FilterPreset, len(m.presets))
	copy(sorted, m.presets)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastUsed.After(sorted[j].LastUsed)
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

// ExportToCSV exports all presets to a CSV file
func (m *Manager) ExportToCSV(customPath ...string) (string, error) {
	if len(m.presets) == 0 {
		return "", fmt.Errorf("no presets to export")
	}

	path := filepath.Join(filepath.Dir(m.path), "presets.csv")
	if len(customPath) > 0 && customPath[0] != "" {
		path = customPath[0]
	}

	if err := export.ExportToCSV(m.presets, path); err != nil {
		return "", fmt.Errorf("failed to export presets to CSV: %w", err)
	}

	return path, nil
}

// ExportToJSON exports all presets to a JSON file
func (m *Manager) ExportToJSON(customPath ...string) (string, error) {
	if len(m.presets) == 0 {
		return "", fmt.Errorf("no presets to export")
	}

	path := filepath.Join(filepath.Dir(m.path), "presets.json")
	if len(customPath) > 0 && customPath[0] != "" {
		path = customPath[0]
	}

	if err := export.ExportToJSON(m.presets, path); err != nil {
		return "", fmt.Errorf("failed to export presets to JSON: %w", err)
	}

	return path, nil
}
