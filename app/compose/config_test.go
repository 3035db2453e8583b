package compose

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	sectionsConfig, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Missing file should not be an error: %v", err)
	}

	if sectionsConfig.Cap != 20 {
		t.Errorf("Expected default cap 20, got %d", sectionsConfig.Cap)
	}
	if sectionsConfig.Windows.FreshHours != 6 {
		t.Errorf("Expected default fresh window 6, got %d", sectionsConfig.Windows.FreshHours)
	}
	if sectionsConfig.Titles.Fresh.Title != "Fresh" {
		t.Errorf("Expected default fresh title, got %s", sectionsConfig.Titles.Fresh.Title)
	}
}

func TestLoadConfig_PartialFileFilledWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yml")
	content := `
cap: 10
titles:
  fresh:
    title: "Breaking"
    subtitle: "Hot off the wire"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	sectionsConfig, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if sectionsConfig.Cap != 10 {
		t.Errorf("Expected cap 10, got %d", sectionsConfig.Cap)
	}
	if sectionsConfig.Titles.Fresh.Title != "Breaking" {
		t.Errorf("Expected overridden fresh title, got %s", sectionsConfig.Titles.Fresh.Title)
	}
	if sectionsConfig.Windows.TodayHours != 24 {
		t.Errorf("Expected default today window 24, got %d", sectionsConfig.Windows.TodayHours)
	}
	if sectionsConfig.Titles.Today.Title != "Today" {
		t.Errorf("Expected default today title, got %s", sectionsConfig.Titles.Today.Title)
	}
}

func TestLoadConfig_InvalidWindows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yml")
	content := `
windows:
  fresh_hours: 30
  today_hours: 24
  trending_hours: 48
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error when fresh window is wider than today window")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yml")
	if err := os.WriteFile(path, []byte("cap: [not an int"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
