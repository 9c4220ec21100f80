package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoExplicitPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExplicitMissingPathFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fwdctl.yaml")
	content := `
ruleFile: /opt/fwd/forwards.conf
engineOptions: "-d -d"
portCheck: false
autoRestart: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/fwd/forwards.conf", cfg.RuleFile)
	assert.Equal(t, "-d -d", cfg.EngineOptions)
	assert.False(t, cfg.PortCheck)
	assert.True(t, cfg.AutoRestart)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().EngineBin, cfg.EngineBin)
	assert.Equal(t, Default().StateDir, cfg.StateDir)
}

func TestLoadMalformedYamlFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fwdctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ruleFile: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "fwdctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stateDir: ~/.fwdctl-state\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".fwdctl-state"), cfg.StateDir)
}
