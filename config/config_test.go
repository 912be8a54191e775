// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
output:
  backend: clock
  sample_rate: 48000
  channels: 2
  frames_per_buffer: 480
  format: int16
  record_path: /tmp/mix.wav
queue:
  capacity_ms: 100
  min_ms: 10
pacing:
  kp: 0.5
  max_delay_ms: 15
log:
  level: debug
  format: json
sources:
  - name: intro
    kind: file
    path: /srv/audio/intro.wav
    loop: true
  - name: studio
    kind: network
    protocol: rtp
    address: 239.1.1.1:5004
    interface: eth0
    sample_rate: 48000
    channels: 2
  - name: hdmi
    kind: capture
    command: [ffmpeg, -f, alsa, -i, "hw:1", -f, s16le, "-"]
    sample_rate: 48000
    channels: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	r := cfg.ValidateTiered()

	assert.False(t, r.HasFatals(), "%v", r.Fatals)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, 44100, cfg.Output.SampleRate)
	assert.Equal(t, 441, cfg.Output.FramesPerBuffer)
	assert.Equal(t, FormatFloat32, cfg.Output.Format)
	assert.Equal(t, 50.0, cfg.Pacing.Target)
	assert.Equal(t, 500.0, cfg.Pacing.IntegralLimit)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, BackendClock, cfg.Output.Backend)
	assert.Equal(t, 48000, cfg.Output.SampleRate)
	assert.Equal(t, FormatInt16, cfg.Output.Format)
	assert.Equal(t, "/tmp/mix.wav", cfg.Output.RecordPath)
	assert.Equal(t, 100, cfg.Queue.CapacityMS)
	assert.Equal(t, 0.5, cfg.Pacing.Kp)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.01, cfg.Pacing.Ki)
	assert.Equal(t, 15*time.Millisecond, cfg.MaxDelay())
	assert.Equal(t, "json", cfg.Log.Format)

	require.Len(t, cfg.Sources, 3)
	assert.Equal(t, SourceConfig{Name: "intro", Kind: KindFile, Path: "/srv/audio/intro.wav", Loop: true}, cfg.Sources[0])
	assert.Equal(t, ProtocolRTP, cfg.Sources[1].Protocol)
	assert.Equal(t, "eth0", cfg.Sources[1].Interface)
	assert.Equal(t, []string{"ffmpeg", "-f", "alsa", "-i", "hw:1", "-f", "s16le", "-"}, cfg.Sources[2].Command)

	assert.Empty(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "output: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AUDMIX_OUTPUT_BACKEND", "clock")
	t.Setenv("AUDMIX_QUEUE_MIN_MS", "40")

	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, BackendClock, cfg.Output.Backend)
	assert.Equal(t, 40, cfg.Queue.MinMS)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestQueueFrames(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.SampleRate = 48000
	cfg.Queue.CapacityMS = 100
	cfg.Queue.MinMS = 10

	capacity, minFrames := cfg.QueueFrames()
	assert.Equal(t, 4800, capacity)
	assert.Equal(t, 480, minFrames)

	assert.Equal(t, 441, MillisToFrames(10, 44100))
	assert.Equal(t, 5*time.Millisecond, Default().RetryBackoff())
}
