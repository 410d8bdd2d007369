package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())
}

func TestDefaultIsStandalone(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.RcPath())
	assert.Empty(t, cfg.HistoryPath())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr string
	}{
		{
			name:   "default is valid",
			mutate: func(c *Configuration) {},
		},
		{
			name:    "missing prompt",
			mutate:  func(c *Configuration) { c.Prompt = "" },
			wantErr: "prompt",
		},
		{
			name:    "missing continuation prompt",
			mutate:  func(c *Configuration) { c.ContinuationPrompt = "" },
			wantErr: "continuation_prompt",
		},
		{
			name:    "missing default path",
			mutate:  func(c *Configuration) { c.DefaultPath = "" },
			wantErr: "default_path",
		},
		{
			name:    "bad pipeline exit status",
			mutate:  func(c *Configuration) { c.PipelineExitStatus = "sometimes" },
			wantErr: "pipeline_exit_status",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				// Errors report fields by their config file names.
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.configurationDir = "/home/user/.shipshell"

	assert.Equal(t, filepath.Join("/home/user/.shipshell", RcName), cfg.RcPath())
	assert.Equal(t, filepath.Join("/home/user/.shipshell", HistoryName), cfg.HistoryPath())
}
