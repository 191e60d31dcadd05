package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values for the dashboard settings.
const (
	DefaultThreshold   = 75.0
	DefaultAlertLimit  = 5
	DefaultPreviewSize = 3
	DefaultPageSize    = 25
	MaxPageSize        = 200
)

// Dashboard holds the tunable settings of the attendance dashboard,
// parsed from the `dashboard:` section of the YAML settings file.
type Dashboard struct {
	// Threshold is the percentage below which a member is flagged (strict <).
	Threshold float64 `yaml:"threshold"`

	// SelectedEvents is the default event selection. Empty means all events.
	SelectedEvents []string `yaml:"selected_events"`

	// AlertLimit caps the number of flagged members shown. Zero or less is unbounded.
	AlertLimit int `yaml:"alert_limit"`

	// PreviewSize is how many missed events are listed per flagged member.
	PreviewSize int `yaml:"preview_size"`

	// PageSize is the default page size of the stats table.
	PageSize int `yaml:"page_size"`
}

type fileLayout struct {
	Dashboard Dashboard `yaml:"dashboard"`
}

// DefaultDashboard returns the settings used when no file is configured.
func DefaultDashboard() Dashboard {
	return Dashboard{
		Threshold:   DefaultThreshold,
		AlertLimit:  DefaultAlertLimit,
		PreviewSize: DefaultPreviewSize,
		PageSize:    DefaultPageSize,
	}
}

// LoadDashboard reads and parses the settings file at path.
// Missing fields keep their defaults before validation.
func LoadDashboard(path string) (Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard config: read %q: %w", path, err)
	}
	return ParseDashboard(data)
}

// ParseDashboard parses YAML settings on top of the defaults.
func ParseDashboard(data []byte) (Dashboard, error) {
	layout := fileLayout{Dashboard: DefaultDashboard()}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard config: parse yaml: %w", err)
	}
	if err := layout.Dashboard.Validate(); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard config: %w", err)
	}
	return layout.Dashboard, nil
}

// Validate checks structural constraints on the settings.
func (d Dashboard) Validate() error {
	if d.Threshold < 0 || d.Threshold > 100 {
		return fmt.Errorf("dashboard.threshold %v is out of range [0, 100]", d.Threshold)
	}
	if d.PreviewSize < 0 {
		return fmt.Errorf("dashboard.preview_size must not be negative")
	}
	if d.PageSize <= 0 || d.PageSize > MaxPageSize {
		return fmt.Errorf("dashboard.page_size %d is out of range [1, %d]", d.PageSize, MaxPageSize)
	}
	for _, id := range d.SelectedEvents {
		if id == "" {
			return fmt.Errorf("dashboard.selected_events must not contain empty ids")
		}
	}
	return nil
}
