// Package config holds the run configuration threaded through every
// command: where raw results live, where artifacts go, and which file
// each experiment family reads.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvInputDir  = "EXPDATA_INPUT_DIR"
	EnvOutputDir = "EXPDATA_OUTPUT_DIR"
	EnvLogLevel  = "EXPDATA_LOG_LEVEL"
)

// Files names the raw result file of each single-file family, relative to
// the input directory.
type Files struct {
	Scalability string `yaml:"scalability" json:"scalability"`
	Baseline    string `yaml:"baseline" json:"baseline"`
	Ablation    string `yaml:"ablation" json:"ablation"`
	Churn       string `yaml:"churn" json:"churn"`
}

// TopologyFile is one topology result file and the network size its
// records were generated at.
type TopologyFile struct {
	File        string `yaml:"file" json:"file"`
	NetworkSize int    `yaml:"network_size" json:"network_size"`
}

// Logging configures the process-wide logger.
type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Config is the full run configuration.
type Config struct {
	Project        string         `yaml:"project" json:"project"`
	InputDir       string         `yaml:"input_dir" json:"input_dir"`
	OutputDir      string         `yaml:"output_dir" json:"output_dir"`
	Files          Files          `yaml:"files" json:"files"`
	Topology       []TopologyFile `yaml:"topology" json:"topology"`
	TopologyGlob   string         `yaml:"topology_glob" json:"topology_glob"`
	TablesDir      string         `yaml:"tables_dir" json:"tables_dir"`
	HopAnalysisDir string         `yaml:"hop_analysis_dir" json:"hop_analysis_dir"`
	AnalysisDocs   []string       `yaml:"analysis_docs" json:"analysis_docs"`
	Archive        string         `yaml:"archive" json:"archive"`
	MetricsFile    string         `yaml:"metrics_file" json:"metrics_file"`
	Logging        Logging        `yaml:"logging" json:"logging"`
}

// Default returns the configuration matching the conventional layout of
// the experiment repository.
func Default() Config {
	return Config{
		Project:   "DRFE-R Experimental Data",
		InputDir:  ".",
		OutputDir: "experimental_data",
		Files: Files{
			Scalability: "scalability_results.json",
			Baseline:    "baseline_comparison.json",
			Ablation:    filepath.Join("paper_data", "ablation", "ablation_summary.csv"),
			Churn:       filepath.Join("paper_data", "churn", "churn_robustness.json"),
		},
		Topology: []TopologyFile{
			{File: "topology_experiments_n100.json", NetworkSize: 100},
			{File: "topology_experiments_n200.json", NetworkSize: 200},
			{File: "topology_experiments_n300.json", NetworkSize: 300},
		},
		TopologyGlob:   "topology_experiments_n*.json",
		TablesDir:      filepath.Join("paper_data", "tables"),
		HopAnalysisDir: filepath.Join("paper_data", "hop_analysis"),
		AnalysisDocs: []string{
			"scalability_experiments_summary.md",
			"topology_experiments_summary.md",
			"baseline_comparison_summary.md",
			"benchmark_summary.md",
		},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// LoadFromPath reads a YAML or JSON config file over the defaults.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config bytes over the defaults. ext selects the format
// (".json", ".yaml", ".yml"); empty detects it from the first non-blank
// character.
func Load(data []byte, ext string) (Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}
	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse json: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvInputDir); ok && v != "" {
		c.InputDir = v
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.OutputDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects configurations no command can run with.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("config: output_dir is empty")
	}
	for _, t := range c.Topology {
		if t.File == "" {
			return fmt.Errorf("config: topology entry without file")
		}
		if t.NetworkSize <= 0 {
			return fmt.Errorf("config: topology %s: network_size must be positive", t.File)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	return nil
}

// Input resolves a raw file name against the input directory. Absolute
// names are returned unchanged.
func (c Config) Input(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.InputDir, name)
}

// Output resolves an artifact name against the output directory.
func (c Config) Output(name string) string {
	return filepath.Join(c.OutputDir, name)
}
