package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/beacon.scope/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

func testFlags(t *testing.T, set map[string]string) *rootFlags {
	t.Helper()
	f := &rootFlags{}
	f.register(&cobra.Command{Use: "beaconscope"})
	for k, v := range set {
		require.NoError(t, f.cmd.PersistentFlags().Set(k, v))
	}
	return f
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: printer.local\nport: 80\nwindow: 20s\n"), 0o644))

	f := testFlags(t, map[string]string{"config": path, "port": "7125"})
	cfg, err := f.loadConfig()
	require.NoError(t, err)

	url, err := cfg.GetURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://printer.local:7125/klippysocket", url)
	assert.Equal(t, 20*time.Second, cfg.GetWindow())
}

func TestLoadConfigDefaultFlagsDoNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"url": "wss://printer.local/klippysocket"}`), 0o644))

	f := testFlags(t, map[string]string{"config": path})
	cfg, err := f.loadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.Port, "unset --port leaves the file alone")
	url, err := cfg.GetURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://printer.local/klippysocket", url)
}

func TestNewAppNeedsEndpoint(t *testing.T) {
	_, err := testFlags(t, nil).newApp()
	assert.Error(t, err)

	a, err := testFlags(t, map[string]string{"dev": "true"}).newApp()
	require.NoError(t, err)
	defer a.close()
	assert.Equal(t, syntheticURL, a.url)
}

func TestTailPrintsSyntheticSamples(t *testing.T) {
	a, err := testFlags(t, map[string]string{"dev": "true"}).newApp()
	require.NoError(t, err)
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, runTail(ctx, a, &tailFlags{count: 5}, &out))
	require.NoError(t, ctx.Err(), "tail stopped on count, not timeout")

	text := out.String()
	assert.Contains(t, text, "# connecting")
	assert.Contains(t, text, "# header: [time dist freq pos temp vel]")

	var samples []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Dist ") {
			samples = append(samples, line)
		}
	}
	require.Len(t, samples, 5)
	assert.Contains(t, samples[0], "Time 0.000")
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "beaconscope dev")
}

func TestInitConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.yaml")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init-config", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "zoom_factor: 1.1")

	cmd = newRootCmd()
	cmd.SetArgs([]string{"init-config", path})
	assert.Error(t, cmd.Execute(), "existing file is kept")
}

func TestInvalidUnitsRejected(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--units", "furlong", "version"})
	assert.Error(t, cmd.Execute())
}
