package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/testsmith-io/testsmith/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "testsmith.yaml"

type Config struct {
	// Root overrides project root detection when set.
	Root          string   `yaml:"root"`
	TestRoot      string   `yaml:"test_root"`
	FixtureDir    string   `yaml:"fixture_dir"`
	FixtureSuffix string   `yaml:"fixture_suffix"`
	Conftest      string   `yaml:"conftest"`
	RegistryVar   string   `yaml:"registry_var"`
	ExcludeDirs   []string `yaml:"exclude_dirs"`
	LLM           LLM      `yaml:"llm"`
}

type LLM struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxTokens int    `yaml:"max_tokens"`
}

func Default() *Config {
	return &Config{
		TestRoot:      "tests",
		FixtureDir:    filepath.Join("tests", "fixtures"),
		FixtureSuffix: "_fixture.py",
		Conftest:      "conftest.py",
		RegistryVar:   "paths_to_add",
		ExcludeDirs: []string{
			"node_modules", ".venv", "venv", "__pycache__",
			".git", "build", "dist", ".tox", ".eggs",
		},
		LLM: LLM{
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			MaxTokens: 1500,
		},
	}
}

// Load reads testsmith.yaml from dir, falling back to defaults when the file
// is absent. Fields left empty in the file keep their default values.
func Load(dir string) (*Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working dir: %w", err)
		}
		dir = wd
	}

	cfg := Default()

	filePath := filepath.Join(dir, FileName)
	if _, err := os.Stat(filePath); err != nil {
		logger.Debug("No config file found in %s, using defaults", dir)
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	logger.Debug("Config file found: %s", filePath)
	return cfg, nil
}
