// Package config loads pipeline configuration from yaml files with
// environment overrides. Every tunable the scoring layer exposes lives
// here so behavior is configuration, not constants.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Pipeline struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	LogLvl  string `mapstructure:"log_level"`
}

type Analysis struct {
	Anonymize      bool   `mapstructure:"anonymize"`
	BatchSize      int    `mapstructure:"batch_size"`
	Workers        int    `mapstructure:"workers"`
	ShortTextFloor int    `mapstructure:"short_text_floor"`
	LanguageHint   string `mapstructure:"language_hint"`
}

type Ensemble struct {
	PositiveThreshold float64 `mapstructure:"positive_threshold"`
	NegativeThreshold float64 `mapstructure:"negative_threshold"`
	DefaultWeight     float64 `mapstructure:"default_weight"`
}

type ONNXModel struct {
	ModelPath     string `mapstructure:"model_path"`
	TokenizerPath string `mapstructure:"tokenizer_path"`
}

func (m ONNXModel) Configured() bool { return m.ModelPath != "" && m.TokenizerPath != "" }

type LLM struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type Models struct {
	OnnxLibrary string    `mapstructure:"onnx_library"`
	Sentiment   ONNXModel `mapstructure:"sentiment"`
	Emotion     ONNXModel `mapstructure:"emotion"`
	Toxicity    ONNXModel `mapstructure:"toxicity"`
	LLM         LLM       `mapstructure:"llm"`
}

type Paths struct {
	Outputs string `mapstructure:"outputs"`
}

type Root struct {
	Pipeline Pipeline `mapstructure:"pipeline"`
	Analysis Analysis `mapstructure:"analysis"`
	Ensemble Ensemble `mapstructure:"ensemble"`
	Models   Models   `mapstructure:"models"`
	Paths    Paths    `mapstructure:"paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "chatlens")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("analysis.anonymize", true)
	v.SetDefault("analysis.batch_size", 64)
	v.SetDefault("analysis.workers", 0) // 0: size to available CPUs
	v.SetDefault("analysis.short_text_floor", 3)
	v.SetDefault("ensemble.positive_threshold", 0.05)
	v.SetDefault("ensemble.negative_threshold", -0.05)
	v.SetDefault("ensemble.default_weight", 0.5)
	v.SetDefault("models.llm.model", "gpt-4o-mini")
	v.SetDefault("paths.outputs", "outputs")
}

// Load reads the config file at path, or, when path is empty, the first
// match from the usual guesses. A missing file is fine: defaults apply,
// with CHATLENS_* environment variables on top.
func Load(path string) (*Root, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix("chatlens")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		guesses := []string{
			filepath.Join("config", env, "config.yaml"),
			"config.yaml",
		}
		for _, g := range guesses {
			v.SetConfigFile(g)
			if err := v.ReadInConfig(); err == nil {
				break
			}
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
