package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Tezigudo/SaladBarOntology/aggregate"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ontology.OutputFormat != "turtle" {
		t.Errorf("expected default output format turtle, got %s", cfg.Ontology.OutputFormat)
	}
	if cfg.Ontology.Namespace != salad.Namespace {
		t.Errorf("expected default namespace %s, got %s", salad.Namespace, cfg.Ontology.Namespace)
	}
	if cfg.UnitPolicy() != aggregate.PolicyScaleOne {
		t.Errorf("expected default unit policy scale-one, got %s", cfg.UnitPolicy())
	}
	if cfg.Repair.NormalizeUnits {
		t.Error("expected unit repair disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing ontology path",
			modify:  func(c *Config) { c.Ontology.Path = "" },
			wantErr: true,
		},
		{
			name:    "missing namespace",
			modify:  func(c *Config) { c.Ontology.Namespace = "" },
			wantErr: true,
		},
		{
			name:    "unknown input format",
			modify:  func(c *Config) { c.Ontology.Format = "owlxml" },
			wantErr: true,
		},
		{
			name:    "read-only output format",
			modify:  func(c *Config) { c.Ontology.OutputFormat = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "unknown unit policy",
			modify:  func(c *Config) { c.Aggregate.UnknownUnitPolicy = "guess" },
			wantErr: true,
		},
		{
			name: "threshold low above high",
			modify: func(c *Config) {
				c.Query.Thresholds = map[string]ThresholdConfig{"Iron": {High: 1, Low: 4}}
			},
			wantErr: true,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
ontology:
  path: "data/salad-bar.ttl"
  output: "out/salad-bar.nt"
  output_format: ntriples
declarations:
  - "decl/**/*.yaml"
aggregate:
  unknown_unit_policy: skip
repair:
  normalize_units: true
query:
  thresholds:
    Iron:
      high: 5
      low: 2
metrics:
  file: "saladbar.prom"
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Ontology.Path != "data/salad-bar.ttl" {
		t.Errorf("expected ontology path data/salad-bar.ttl, got %s", cfg.Ontology.Path)
	}
	if cfg.Ontology.OutputFormat != "ntriples" {
		t.Errorf("expected output format ntriples, got %s", cfg.Ontology.OutputFormat)
	}
	if cfg.Ontology.Namespace != salad.Namespace {
		t.Errorf("namespace should keep its default, got %s", cfg.Ontology.Namespace)
	}
	if len(cfg.Declarations) != 1 {
		t.Errorf("expected 1 declaration pattern, got %d", len(cfg.Declarations))
	}
	if cfg.UnitPolicy() != aggregate.PolicySkip {
		t.Errorf("expected unit policy skip, got %s", cfg.UnitPolicy())
	}
	if !cfg.Repair.NormalizeUnits {
		t.Error("expected unit repair enabled")
	}
	if cfg.Metrics.File != "saladbar.prom" {
		t.Errorf("expected metrics file saladbar.prom, got %s", cfg.Metrics.File)
	}

	th := cfg.Thresholds()
	if th["Iron"].High != 5 || th["Iron"].Low != 2 {
		t.Errorf("expected Iron threshold 5/2, got %+v", th["Iron"])
	}
	if th["Sodium"].High != 1475 {
		t.Errorf("expected built-in Sodium threshold to survive, got %+v", th["Sodium"])
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Ontology: OntologyConfig{
			Path: "override.ttl",
		},
		Repair: RepairConfig{NormalizeUnits: true},
		Query: QueryConfig{
			Thresholds: map[string]ThresholdConfig{"Zinc": {High: 10, Low: 3}},
		},
	}

	base.Merge(override)

	if base.Ontology.Path != "override.ttl" {
		t.Errorf("expected path override.ttl, got %s", base.Ontology.Path)
	}
	// Output format should remain from base since override didn't set it
	if base.Ontology.OutputFormat != "turtle" {
		t.Errorf("expected output format to remain default, got %s", base.Ontology.OutputFormat)
	}
	if !base.Repair.NormalizeUnits {
		t.Error("expected repair enabled after merge")
	}
	if _, ok := base.Query.Thresholds["Zinc"]; !ok {
		t.Error("expected Zinc threshold after merge")
	}

	base.Merge(&Config{})
	if !base.Repair.NormalizeUnits {
		t.Error("an empty layer should not disable repair")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Ontology.Path = "saved.ttl"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Ontology.Path != "saved.ttl" {
		t.Errorf("expected path saved.ttl, got %s", loaded.Ontology.Path)
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	userDir := filepath.Join(home, UserConfigDir)
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	user := "ontology:\n  path: user.ttl\nlog:\n  level: warn\n"
	if err := os.WriteFile(filepath.Join(userDir, UserConfigFile), []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	project := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(project, []byte("ontology:\n  path: project.ttl\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(nil).WithFile(project).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ontology.Path != "project.ttl" {
		t.Errorf("project layer should win over user layer, got %s", cfg.Ontology.Path)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("user layer should still apply, got level %s", cfg.Log.Level)
	}

	t.Setenv(EnvOntology, "env.ttl")
	cfg, err = NewLoader(nil).WithFile(project).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ontology.Path != "env.ttl" {
		t.Errorf("environment should win, got %s", cfg.Ontology.Path)
	}
}

func TestLoaderMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := NewLoader(nil).WithFile(filepath.Join(t.TempDir(), "nope.yaml")).Load(); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
