// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidationResult splits problems into fatals, which must stop startup,
// and warnings, which were corrected in place.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// Validate checks the config and returns every problem found. Dangerous
// numeric values are clamped to safe ranges as a side effect.
func (c *Config) Validate() []error {
	r := c.ValidateTiered()
	return append(r.Fatals, r.Warnings...)
}

func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult
	fatal := func(format string, args ...any) {
		r.Fatals = append(r.Fatals, fmt.Errorf(format, args...))
	}
	warn := func(format string, args ...any) {
		r.Warnings = append(r.Warnings, fmt.Errorf(format, args...))
	}

	o := &c.Output
	switch o.Backend {
	case BackendOto, BackendClock:
	default:
		fatal("output.backend %q is not valid (use oto or clock)", o.Backend)
	}
	switch o.Format {
	case FormatFloat32, FormatInt16:
	default:
		fatal("output.format %q is not valid (use float32 or int16)", o.Format)
	}
	if o.SampleRate < 8000 || o.SampleRate > 192000 {
		fatal("output.sample_rate %d is outside 8000-192000", o.SampleRate)
	}
	if o.Channels < 1 || o.Channels > 8 {
		fatal("output.channels %d is outside 1-8", o.Channels)
	}
	if o.RecordPath != "" && o.Backend != BackendClock {
		warn("output.record_path is only used by the clock backend")
	}

	if o.FramesPerBuffer < 32 {
		warn("output.frames_per_buffer %d is below minimum 32, clamping", o.FramesPerBuffer)
		o.FramesPerBuffer = 32
	} else if o.FramesPerBuffer > 8192 {
		warn("output.frames_per_buffer %d exceeds maximum 8192, clamping", o.FramesPerBuffer)
		o.FramesPerBuffer = 8192
	}

	q := &c.Queue
	if q.CapacityMS < 10 {
		warn("queue.capacity_ms %d is below minimum 10, clamping", q.CapacityMS)
		q.CapacityMS = 10
	} else if q.CapacityMS > 10000 {
		warn("queue.capacity_ms %d exceeds maximum 10000, clamping", q.CapacityMS)
		q.CapacityMS = 10000
	}
	if q.MinMS < 0 {
		warn("queue.min_ms %d is negative, clamping", q.MinMS)
		q.MinMS = 0
	} else if q.MinMS > q.CapacityMS {
		warn("queue.min_ms %d exceeds queue.capacity_ms %d, clamping", q.MinMS, q.CapacityMS)
		q.MinMS = q.CapacityMS
	}

	p := &c.Pacing
	if p.Target < 0 || p.Target > 100 {
		warn("pacing.target %g is outside 0-100, clamping", p.Target)
		p.Target = max(0, min(p.Target, 100))
	}
	if p.MaxDelayMS < 0 {
		warn("pacing.max_delay_ms %d is negative, clamping", p.MaxDelayMS)
		p.MaxDelayMS = 0
	} else if p.MaxDelayMS > 1000 {
		warn("pacing.max_delay_ms %d exceeds maximum 1000, clamping", p.MaxDelayMS)
		p.MaxDelayMS = 1000
	}
	if p.Retries < 0 {
		warn("pacing.retries %d is negative, clamping", p.Retries)
		p.Retries = 0
	}
	if p.RetryBackoffMS < 0 {
		warn("pacing.retry_backoff_ms %d is negative, clamping", p.RetryBackoffMS)
		p.RetryBackoffMS = 0
	}

	if c.Log.Level != "" && !validLogLevels[strings.ToLower(c.Log.Level)] {
		warn("log.level %q is not valid (use debug, info, warn, error)", c.Log.Level)
		c.Log.Level = "info"
	}
	if c.Log.Format != "" && c.Log.Format != "console" && c.Log.Format != "json" {
		warn("log.format %q is not valid (use console or json)", c.Log.Format)
		c.Log.Format = "console"
	}

	seen := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Name == "" {
			s.Name = fmt.Sprintf("%s-%d", s.Kind, i)
		}
		if seen[s.Name] {
			fatal("sources[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true

		for _, err := range s.validate() {
			r.Fatals = append(r.Fatals, fmt.Errorf("sources[%d] %q: %w", i, s.Name, err))
		}
	}

	return r
}

func (s *SourceConfig) validate() []error {
	var errs []error

	switch s.Kind {
	case KindNetwork:
		switch s.Protocol {
		case ProtocolRTP:
			if s.SampleRate <= 0 || s.Channels <= 0 {
				errs = append(errs, fmt.Errorf("rtp needs sample_rate and channels"))
			}
		case ProtocolWebSocket:
		default:
			errs = append(errs, fmt.Errorf("protocol %q is not valid (use rtp or websocket)", s.Protocol))
		}
		if s.Address == "" {
			errs = append(errs, fmt.Errorf("address is required"))
		}
	case KindCapture:
		if len(s.Command) == 0 {
			errs = append(errs, fmt.Errorf("command is required"))
		}
		if s.SampleRate <= 0 || s.Channels <= 0 {
			errs = append(errs, fmt.Errorf("capture needs sample_rate and channels"))
		}
	case KindFile:
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("kind %q is not valid (use network, capture or file)", s.Kind))
	}

	if s.ChunkFrames < 0 {
		errs = append(errs, fmt.Errorf("chunk_frames %d is negative", s.ChunkFrames))
	}

	return errs
}
