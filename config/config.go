// SPDX-License-Identifier: EPL-2.0

// Package config loads the mixer configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Output backends.
const (
	BackendOto   = "oto"
	BackendClock = "clock"
)

// Sample formats.
const (
	FormatFloat32 = "float32"
	FormatInt16   = "int16"
)

// Source kinds.
const (
	KindNetwork = "network"
	KindCapture = "capture"
	KindFile    = "file"
)

// Network protocols.
const (
	ProtocolRTP       = "rtp"
	ProtocolWebSocket = "websocket"
)

type Config struct {
	Output  OutputConfig   `mapstructure:"output"`
	Queue   QueueConfig    `mapstructure:"queue"`
	Pacing  PacingConfig   `mapstructure:"pacing"`
	Log     LogConfig      `mapstructure:"log"`
	Sources []SourceConfig `mapstructure:"sources"`
}

type OutputConfig struct {
	Backend         string `mapstructure:"backend"`
	SampleRate      int    `mapstructure:"sample_rate"`
	Channels        int    `mapstructure:"channels"`
	FramesPerBuffer int    `mapstructure:"frames_per_buffer"`
	Format          string `mapstructure:"format"`
	// RecordPath, when set, makes the clock backend write the mix to a WAV file.
	RecordPath string `mapstructure:"record_path"`
}

// QueueConfig sizes every source queue in milliseconds of output audio.
type QueueConfig struct {
	CapacityMS int `mapstructure:"capacity_ms"`
	MinMS      int `mapstructure:"min_ms"`
}

type PacingConfig struct {
	Kp             float64 `mapstructure:"kp"`
	Ki             float64 `mapstructure:"ki"`
	Kd             float64 `mapstructure:"kd"`
	Target         float64 `mapstructure:"target"`
	MaxDelayMS     int     `mapstructure:"max_delay_ms"`
	IntegralLimit  float64 `mapstructure:"integral_limit"`
	Retries        int     `mapstructure:"retries"`
	RetryBackoffMS int     `mapstructure:"retry_backoff_ms"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourceConfig describes one input. Which fields apply depends on Kind.
type SourceConfig struct {
	Name string `mapstructure:"name"`
	Kind string `mapstructure:"kind"`

	// network
	Protocol  string `mapstructure:"protocol"`
	Address   string `mapstructure:"address"`
	Interface string `mapstructure:"interface"`

	// network (rtp) and capture: format of the incoming PCM
	SampleRate int `mapstructure:"sample_rate"`
	Channels   int `mapstructure:"channels"`

	// capture
	Command []string `mapstructure:"command"`

	// file
	Path string `mapstructure:"path"`
	Loop bool   `mapstructure:"loop"`

	// ChunkFrames is the read size for file and capture sources.
	ChunkFrames int `mapstructure:"chunk_frames"`
}

func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Backend:         BackendOto,
			SampleRate:      44100,
			Channels:        2,
			FramesPerBuffer: 441,
			Format:          FormatFloat32,
		},
		Queue: QueueConfig{
			CapacityMS: 200,
			MinMS:      20,
		},
		Pacing: PacingConfig{
			Kp:             1.0,
			Ki:             0.01,
			Kd:             0.001,
			Target:         50,
			MaxDelayMS:     20,
			IntegralLimit:  500,
			Retries:        3,
			RetryBackoffMS: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads cfgFile, or audmix.yaml from the working directory, the user
// config directory or /etc/audmix. A missing file is not an error.
// AUDMIX_ environment variables override file values, with dots in keys
// replaced by underscores (AUDMIX_OUTPUT_BACKEND=clock).
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("audmix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "audmix"))
		}
		v.AddConfigPath("/etc/audmix")
	}

	v.SetEnvPrefix("AUDMIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every scalar key so environment overrides apply
// even when the file does not mention the key.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("output.backend", cfg.Output.Backend)
	v.SetDefault("output.sample_rate", cfg.Output.SampleRate)
	v.SetDefault("output.channels", cfg.Output.Channels)
	v.SetDefault("output.frames_per_buffer", cfg.Output.FramesPerBuffer)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.record_path", cfg.Output.RecordPath)

	v.SetDefault("queue.capacity_ms", cfg.Queue.CapacityMS)
	v.SetDefault("queue.min_ms", cfg.Queue.MinMS)

	v.SetDefault("pacing.kp", cfg.Pacing.Kp)
	v.SetDefault("pacing.ki", cfg.Pacing.Ki)
	v.SetDefault("pacing.kd", cfg.Pacing.Kd)
	v.SetDefault("pacing.target", cfg.Pacing.Target)
	v.SetDefault("pacing.max_delay_ms", cfg.Pacing.MaxDelayMS)
	v.SetDefault("pacing.integral_limit", cfg.Pacing.IntegralLimit)
	v.SetDefault("pacing.retries", cfg.Pacing.Retries)
	v.SetDefault("pacing.retry_backoff_ms", cfg.Pacing.RetryBackoffMS)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

// MillisToFrames converts a duration in milliseconds at rate Hz to frames.
func MillisToFrames(ms, rate int) int {
	return ms * rate / 1000
}

// QueueFrames returns the queue capacity and priming threshold in frames
// at the output rate.
func (c *Config) QueueFrames() (capacity, minFrames int) {
	return MillisToFrames(c.Queue.CapacityMS, c.Output.SampleRate),
		MillisToFrames(c.Queue.MinMS, c.Output.SampleRate)
}

func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.Pacing.MaxDelayMS) * time.Millisecond
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Pacing.RetryBackoffMS) * time.Millisecond
}
