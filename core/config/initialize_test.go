package config

import (
	"io"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestInitialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/home/user/.shipshell"

	require.NoError(t, InitializeFs(fs, dir, discardLogger()))

	// The written tree loads as a valid configuration.
	cfg, err := LoadFs(fs, dir)
	require.NoError(t, err)
	assert.Nil(t, cfg.Validate())
	assert.Equal(t, dir+"/"+RcName, cfg.RcPath())

	exists, err := afero.Exists(fs, dir+"/"+RcName)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInitializeKeepsExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/home/user/.shipshell"

	custom := []byte("prompt: \"custom> \"\ncontinuation_prompt: \"> \"\ndefault_path: /bin\npipeline_exit_status: last\n")
	require.NoError(t, afero.WriteFile(fs, dir+"/"+ConfigurationName, custom, 0600))

	require.NoError(t, InitializeFs(fs, dir, discardLogger()))

	cfg, err := LoadFs(fs, dir)
	require.NoError(t, err)
	assert.Equal(t, "custom> ", cfg.Prompt)
}

func TestLoadAcceptsFilePath(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/etc/shipshell"
	require.NoError(t, InitializeFs(fs, dir, discardLogger()))

	cfg, err := LoadFs(fs, dir+"/"+ConfigurationName)
	require.NoError(t, err)
	assert.Equal(t, dir+"/"+RcName, cfg.RcPath())
}

func TestLoadMissing(t *testing.T) {
	_, err := LoadFs(afero.NewMemMapFs(), "/nowhere")
	assert.NotNil(t, err)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/etc/shipshell"
	bad := []byte("prompt: \"> \"\nno_such_setting: true\n")
	require.NoError(t, afero.WriteFile(fs, dir+"/"+ConfigurationName, bad, 0600))

	_, err := LoadFs(fs, dir)
	assert.NotNil(t, err)
}
