package compose

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the section layout of the composed feed. It is loaded from a
// YAML file at startup; a missing file falls back to the built-in defaults.
type Config struct {
	Cap     int           `yaml:"cap"`
	Windows WindowsConfig `yaml:"windows"`
	Titles  TitlesConfig  `yaml:"titles"`
}

type WindowsConfig struct {
	FreshHours    int `yaml:"fresh_hours"`
	TodayHours    int `yaml:"today_hours"`
	TrendingHours int `yaml:"trending_hours"`
}

type TitlesConfig struct {
	Fresh    SectionTitle `yaml:"fresh"`
	Today    SectionTitle `yaml:"today"`
	Trending SectionTitle `yaml:"trending"`
}

type SectionTitle struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
}

func DefaultConfig() *Config {
	return &Config{
		Cap: 20,
		Windows: WindowsConfig{
			FreshHours:    6,
			TodayHours:    24,
			TrendingHours: 48,
		},
		Titles: TitlesConfig{
			Fresh:    SectionTitle{Title: "Fresh", Subtitle: "Just in"},
			Today:    SectionTitle{Title: "Today", Subtitle: "From the last 24 hours"},
			Trending: SectionTitle{Title: "Trending", Subtitle: "Popular over the last two days"},
		},
	}
}

// LoadConfig reads the section configuration file. A missing file is not an
// error: the defaults apply. Partial files are filled in with defaults before
// validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var sectionsConfig Config
	if err := yaml.Unmarshal(data, &sectionsConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	sectionsConfig.applyDefaults()

	if err := sectionsConfig.validate(); err != nil {
		return nil, fmt.Errorf("invalid sections config %s: %w", path, err)
	}

	return &sectionsConfig, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Cap == 0 {
		c.Cap = defaults.Cap
	}
	if c.Windows.FreshHours == 0 {
		c.Windows.FreshHours = defaults.Windows.FreshHours
	}
	if c.Windows.TodayHours == 0 {
		c.Windows.TodayHours = defaults.Windows.TodayHours
	}
	if c.Windows.TrendingHours == 0 {
		c.Windows.TrendingHours = defaults.Windows.TrendingHours
	}
	if c.Titles.Fresh.Title == "" {
		c.Titles.Fresh = defaults.Titles.Fresh
	}
	if c.Titles.Today.Title == "" {
		c.Titles.Today = defaults.Titles.Today
	}
	if c.Titles.Trending.Title == "" {
		c.Titles.Trending = defaults.Titles.Trending
	}
}

func (c *Config) validate() error {
	if c.Cap < 1 {
		return fmt.Errorf("cap must be positive")
	}

	nonNegativeFields := map[string]int{
		"fresh window":    c.Windows.FreshHours,
		"today window":    c.Windows.TodayHours,
		"trending window": c.Windows.TrendingHours,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 1 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if c.Windows.FreshHours >= c.Windows.TodayHours {
		return fmt.Errorf("fresh window must be narrower than today window")
	}
	if c.Windows.TodayHours >= c.Windows.TrendingHours {
		return fmt.Errorf("today window must be narrower than trending window")
	}

	return nil
}

func (c *Config) windows() Windows {
	return Windows{
		Fresh:         time.Duration(c.Windows.FreshHours) * time.Hour,
		Today:         time.Duration(c.Windows.TodayHours) * time.Hour,
		TrendingFloor: time.Duration(c.Windows.TrendingHours) * time.Hour,
	}
}
