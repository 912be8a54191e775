// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/output"
)

// OutputConfig is the driver format of cfg.
func OutputConfig(cfg *config.Config) output.Config {
	return output.Config{
		SampleRate:      cfg.Output.SampleRate,
		Channels:        cfg.Output.Channels,
		FramesPerBuffer: cfg.Output.FramesPerBuffer,
	}
}

// NewDriver creates the output backend named by the mixer configuration,
// draining the mixer's bus. The clock backend records to
// output.record_path when it is set.
func NewDriver[T audio.Sample](m *Mixer[T]) (output.Driver, error) {
	cfg := m.Config()
	ocfg := OutputConfig(cfg)
	logger := m.logger.Named("output")

	switch cfg.Output.Backend {
	case config.BackendOto:
		o, err := output.NewOto[T](ocfg, m.Bus(), logger)
		if err != nil {
			return nil, err
		}
		return o, nil

	case config.BackendClock:
		var rec output.Recorder[T]
		if cfg.Output.RecordPath != "" {
			w, err := wav.Create[T](cfg.Output.RecordPath, ocfg.SampleRate, ocfg.Channels)
			if err != nil {
				return nil, err
			}
			rec = w
		}

		c, err := output.NewClock[T](ocfg, m.Bus(), rec, logger)
		if err != nil {
			if rec != nil {
				rec.Close()
			}
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, cfg.Output.Backend)
	}
}
