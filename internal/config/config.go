package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/texstruct/internal/structure"
	"github.com/spf13/viper"
)

// Config is the full service configuration: server settings plus the outline
// structure settings handed to each construction run.
type Config struct {
	Port   string `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`

	WorkerCount  int           `mapstructure:"worker_count"`
	MaxQueueSize int           `mapstructure:"max_queue_size"`
	JobTTL       time.Duration `mapstructure:"job_ttl"`

	Structure StructureSettings `mapstructure:"structure"`
}

// StructureSettings mirrors structure.Config in configuration-file form.
type StructureSettings struct {
	Sections       []string `mapstructure:"sections"`
	Commands       []string `mapstructure:"commands"`
	Environments   []string `mapstructure:"environments"`
	Floats         []string `mapstructure:"floats"`
	ShowCaptions   bool     `mapstructure:"show_captions"`
	NumberSections bool     `mapstructure:"number_sections"`
	NumberFloats   bool     `mapstructure:"number_floats"`
	SearchDirs     []string `mapstructure:"search_dirs"`
}

// StructureConfig produces the immutable per-run snapshot. MergeSubFiles is a
// per-request choice and defaults to true.
func (s StructureSettings) StructureConfig() structure.Config {
	return structure.Config{
		Sections:       append([]string(nil), s.Sections...),
		Commands:       append([]string(nil), s.Commands...),
		Environments:   append([]string(nil), s.Environments...),
		Floats:         append([]string(nil), s.Floats...),
		ShowCaptions:   s.ShowCaptions,
		NumberSections: s.NumberSections,
		NumberFloats:   s.NumberFloats,
		SearchDirs:     append([]string(nil), s.SearchDirs...),
		MergeSubFiles:  true,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8092")
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("job_ttl", time.Hour)

	v.SetDefault("structure.sections", []string{
		"part", "chapter", "section", "subsection",
		"subsubsection", "paragraph", "subparagraph",
	})
	v.SetDefault("structure.commands", []string{"label"})
	v.SetDefault("structure.environments", []string{})
	v.SetDefault("structure.floats", []string{"figure", "table"})
	v.SetDefault("structure.show_captions", true)
	v.SetDefault("structure.number_sections", true)
	v.SetDefault("structure.number_floats", true)
	v.SetDefault("structure.search_dirs", []string{})
}

// Load reads texstruct.yaml from the working directory or the user config
// directory, with TEXSTRUCT_* environment overrides.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("texstruct")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "texstruct"))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "texstruct"))
	}

	setDefaults(v)

	v.SetEnvPrefix("TEXSTRUCT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (TEXSTRUCT_API_KEY)")
	}
	return nil
}
