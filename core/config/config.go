package config

import (
	_ "embed"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte

	//go:embed default/rc.star
	defaultRcData []byte
)

const (
	ConfigurationName = "config.yaml"
	RcName            = "rc.star"
	HistoryName       = "history"
)

// Pipeline exit status policies.
const (
	StatusLast         = "last"
	StatusFirstFailure = "first_failure"
)

// Configuration holds the user-tunable settings for a shell session.
type Configuration struct {
	configurationDir string

	// Motd is printed once when an interactive session starts.
	Motd string `json:"motd"`

	Prompt             string `json:"prompt" validate:"required"`
	ContinuationPrompt string `json:"continuation_prompt" validate:"required"`

	// DefaultPath is the search path used when PATH is unset.
	DefaultPath string `json:"default_path" validate:"required"`

	// PipelineExitStatus selects how a pipeline's overall status is
	// derived: "last" (final stage) or "first_failure" (pipefail).
	PipelineExitStatus string `json:"pipeline_exit_status" validate:"oneof=last first_failure"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// RcPath returns the path of the rc file sourced at session start, or ""
// if the configuration wasn't loaded from a directory.
func (c *Configuration) RcPath() string {
	if c.configurationDir == "" {
		return ""
	}
	return filepath.Join(c.configurationDir, RcName)
}

// HistoryPath returns the path of the readline history file, or "".
func (c *Configuration) HistoryPath() string {
	if c.configurationDir == "" {
		return ""
	}
	return filepath.Join(c.configurationDir, HistoryName)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration, used when no config
// directory exists.
func Default() *Configuration {
	return defaultConfig()
}
