// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ik5/audmix/utils"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
	maxMessageSize   = 1 << 20

	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2.0
	jitterFactor   = 0.3
)

// Encoding is the sample encoding of a PCM message. The values follow the
// WAVE format tags.
type Encoding uint16

const (
	EncodingS16LE Encoding = 1
	EncodingF32LE Encoding = 3
)

// HeaderSize is the length of the header in front of every PCM message.
const HeaderSize = 8

// AppendHeader appends a PCM message header to dst: the sample rate as a
// little-endian uint32, then the channel count and the encoding as
// little-endian uint16. Interleaved samples follow the header.
func AppendHeader(dst []byte, sampleRate, channels int, enc Encoding) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(sampleRate))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(channels))
	return binary.LittleEndian.AppendUint16(dst, uint16(enc))
}

type WebSocketConfig struct {
	URL string
	// InitialBackoff and MaxBackoff bound the reconnect delay. Zero values
	// mean 1 s and 60 s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// WebSocketSource reads binary PCM messages from a WebSocket server and
// reconnects with jittered exponential backoff when the connection drops.
// Text messages are ignored.
type WebSocketSource struct {
	base

	cfg     WebSocketConfig
	sink    Sink
	dialer  websocket.Dialer
	samples []float32

	connects atomic.Uint64
	messages atomic.Uint64
}

func NewWebSocketSource(name string, cfg WebSocketConfig, sink Sink, logger *zap.Logger) *WebSocketSource {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = initialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = maxBackoff
	}

	return &WebSocketSource{
		base:   newBase(name, KindNetwork, logger),
		cfg:    cfg,
		sink:   sink,
		dialer: websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// Connects counts successful connections.
func (s *WebSocketSource) Connects() uint64 {
	return s.connects.Load()
}

// Messages counts PCM messages delivered to the sink.
func (s *WebSocketSource) Messages() uint64 {
	return s.messages.Load()
}

// Run keeps a connection open until ctx is done. Dial and read failures
// are logged and retried, never returned.
func (s *WebSocketSource) Run(ctx context.Context) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end()

	backoff := s.cfg.InitialBackoff

	for ctx.Err() == nil {
		conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			jitter := time.Duration(float64(backoff) * jitterFactor * (rand.Float64()*2 - 1))
			delay := backoff + jitter
			if delay < 0 {
				delay = backoff
			}

			s.logger.Warn("websocket connect failed", zap.Error(err), zap.Duration("retry", delay))
			if !sleep(ctx, delay) {
				return nil
			}

			backoff = min(time.Duration(float64(backoff)*backoffFactor), s.cfg.MaxBackoff)
			continue
		}

		backoff = s.cfg.InitialBackoff
		s.connects.Add(1)
		s.logger.Info("websocket connected", zap.String("url", s.cfg.URL))

		s.read(ctx, conn)
	}

	return nil
}

// read consumes messages until the connection fails or ctx is done.
func (s *WebSocketSource) read(ctx context.Context, conn *websocket.Conn) {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if kind != websocket.BinaryMessage {
			continue
		}

		if err := s.deliver(msg); err != nil {
			s.logger.Debug("pcm message rejected", zap.Error(err))
		}
	}
}

func (s *WebSocketSource) deliver(msg []byte) error {
	samples, frames, rate, channels, err := decodeMessage(s.samples, msg)
	if err != nil {
		return err
	}
	s.samples = samples

	if frames == 0 {
		return nil
	}

	s.messages.Add(1)
	s.sink.Write(samples, frames, rate, channels)

	return nil
}

// decodeMessage parses one PCM message into float32 samples, reusing dst.
func decodeMessage(dst []float32, msg []byte) (samples []float32, frames, rate, channels int, err error) {
	if len(msg) < HeaderSize {
		return dst, 0, 0, 0, ErrBadHeader
	}

	rate = int(binary.LittleEndian.Uint32(msg))
	channels = int(binary.LittleEndian.Uint16(msg[4:]))
	enc := Encoding(binary.LittleEndian.Uint16(msg[6:]))
	body := msg[HeaderSize:]

	if rate <= 0 || channels <= 0 {
		return dst, 0, 0, 0, ErrInvalidFormat
	}

	var width int
	switch enc {
	case EncodingS16LE:
		width = 2
	case EncodingF32LE:
		width = 4
	default:
		return dst, 0, 0, 0, fmt.Errorf("%w: %d", ErrUnsupportedEncoding, enc)
	}

	frames = len(body) / (width * channels)
	body = body[:frames*channels*width]

	if enc == EncodingS16LE {
		dst = utils.DecodeS16(dst, body, binary.LittleEndian)
	} else {
		dst = utils.DecodeF32LE(dst, body)
	}

	return dst, frames, rate, channels, nil
}
