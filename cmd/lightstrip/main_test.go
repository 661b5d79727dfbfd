package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-lightstrip/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestConfigInitThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err, "refuses to overwrite")
	_, err = execute(t, "config", "init", "-f", path)
	assert.NoError(t, err)

	out, err = execute(t, "--config", path, "--length", "60", "--link", "ws", "config", "show")
	require.NoError(t, err)
	var got config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, 60, got.Strip.Length, "flag overrides file")
	assert.Equal(t, "ws", got.Link.Mode)
	assert.Equal(t, 255, got.Strip.Brightness, "unset flag leaves file value")
	assert.Len(t, got.Cases, 4)
}

func TestShowWithoutConfigUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "length: 123")
}

func TestExplicitMissingConfigFails(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "config", "show")
	assert.Error(t, err)
}

func TestInvalidOverrideFails(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := execute(t, "--driver", "dmx", "config", "show")
	assert.Error(t, err)
	_, err = execute(t, "--log-level", "loud", "config", "show")
	assert.Error(t, err)
}

func TestSelftestRejectsUnknownKind(t *testing.T) {
	_, err := execute(t, "selftest", "--kind", "disco")
	assert.Error(t, err)
}

func TestConfigCheck(t *testing.T) {
	chdir(t, t.TempDir())
	out, err := execute(t, "--brightness", "0", "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, `"code": "BRIGHTNESS_ZERO"`)
	assert.Contains(t, out, `"code": "POWER_LIMITED"`)
}
