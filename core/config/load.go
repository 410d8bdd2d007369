package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs loads the configuration from a directory on the given
// filesystem.
func LoadFs(fs afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fs, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, err
	}
	out.configurationDir = path
	return &out, nil
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "shipshell")
	}
	return filepath.Join(os.Getenv("HOME"), ".shipshell")
}

// Initialize writes the default configuration and rc file into the
// directory, creating it if needed. Existing files are kept as-is.
func Initialize(dir string, logger *log.Logger) error {
	return InitializeFs(afero.NewOsFs(), dir, logger)
}

// InitializeFs is Initialize against an arbitrary filesystem.
func InitializeFs(fs afero.Fs, dir string, logger *log.Logger) error {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return err
	}

	for _, f := range []struct {
		name string
		data []byte
	}{
		{ConfigurationName, defaultConfigData},
		{RcName, defaultRcData},
	} {
		path := filepath.Join(dir, f.name)
		if _, err := fs.Stat(path); err == nil {
			logger.Printf("keeping existing %s", f.name)
			continue
		}
		if err := afero.WriteFile(fs, path, f.data, 0600); err != nil {
			return err
		}
		logger.Printf("wrote %s", path)
	}

	return nil
}
