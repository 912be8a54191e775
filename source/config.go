// SPDX-License-Identifier: EPL-2.0

package source

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
)

// FromConfig builds the adapter described by sc, writing into sink. reg is
// used by file sources and may be nil.
func FromConfig(sc config.SourceConfig, sink Sink, reg *audio.Registry, logger *zap.Logger) (Adapter, error) {
	switch sc.Kind {
	case config.KindFile:
		return NewFileSource(sc.Name, FileConfig{
			Path:        sc.Path,
			Loop:        sc.Loop,
			ChunkFrames: sc.ChunkFrames,
			Registry:    reg,
		}, sink, logger), nil

	case config.KindCapture:
		s, err := NewCaptureSource(sc.Name, CaptureConfig{
			Command:     sc.Command,
			SampleRate:  sc.SampleRate,
			Channels:    sc.Channels,
			ChunkFrames: sc.ChunkFrames,
		}, sink, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.KindNetwork:
		switch sc.Protocol {
		case config.ProtocolRTP:
			s, err := NewRTPSource(sc.Name, RTPConfig{
				Address:    sc.Address,
				Interface:  sc.Interface,
				SampleRate: sc.SampleRate,
				Channels:   sc.Channels,
			}, sink, logger)
			if err != nil {
				return nil, err
			}
			return s, nil
		case config.ProtocolWebSocket:
			return NewWebSocketSource(sc.Name, WebSocketConfig{URL: sc.Address}, sink, logger), nil
		default:
			return nil, fmt.Errorf("%w: network protocol %q", ErrUnknownKind, sc.Protocol)
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, sc.Kind)
	}
}
