// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/ik5/audmix/utils"
)

// maxPacketSize is one Ethernet MTU.
const maxPacketSize = 1500

// RTPConfig describes an RTP stream carrying L16 audio (big-endian signed
// 16-bit, RFC 3551). L16 has no in-band format, so rate and channels come
// from configuration.
type RTPConfig struct {
	// Address to listen on, host:port. A multicast group address joins the
	// group on Interface.
	Address string
	// Interface names the multicast interface. Empty means the system
	// default.
	Interface  string
	SampleRate int
	Channels   int
}

type RTPStats struct {
	Packets uint64
	// Lost counts sequence numbers skipped by the sender's stream.
	Lost uint64
	// Invalid counts datagrams that were not RTP.
	Invalid uint64
}

// RTPSource receives an L16 RTP stream over UDP unicast or multicast.
type RTPSource struct {
	base

	cfg  RTPConfig
	sink Sink

	addrMtx sync.Mutex
	addr    net.Addr
	ready   chan struct{}

	haveSeq bool
	lastSeq uint16
	samples []float32

	packets atomic.Uint64
	lost    atomic.Uint64
	invalid atomic.Uint64
}

func NewRTPSource(name string, cfg RTPConfig, sink Sink, logger *zap.Logger) (*RTPSource, error) {
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return nil, ErrInvalidFormat
	}

	return &RTPSource{
		base:  newBase(name, KindNetwork, logger),
		cfg:   cfg,
		sink:  sink,
		ready: make(chan struct{}),
	}, nil
}

// Ready is closed once Run has bound its socket.
func (s *RTPSource) Ready() <-chan struct{} {
	return s.ready
}

// LocalAddr is the bound address, nil before Ready.
func (s *RTPSource) LocalAddr() net.Addr {
	s.addrMtx.Lock()
	defer s.addrMtx.Unlock()

	return s.addr
}

func (s *RTPSource) Stats() RTPStats {
	return RTPStats{
		Packets: s.packets.Load(),
		Lost:    s.lost.Load(),
		Invalid: s.invalid.Load(),
	}
}

func (s *RTPSource) Run(ctx context.Context) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end()

	conn, err := s.listen()
	if err != nil {
		return fmt.Errorf("rtp source %s: %w", s.name, err)
	}
	defer conn.Close()

	s.addrMtx.Lock()
	if s.addr == nil {
		s.addr = conn.LocalAddr()
		close(s.ready)
	}
	s.addrMtx.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s.logger.Info("rtp listening", zap.Stringer("addr", conn.LocalAddr()))

	buf := make([]byte, maxPacketSize)
	var pkt rtp.Packet

	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("rtp source %s: %w", s.name, err)
		}

		if err := pkt.Unmarshal(buf[:n]); err != nil {
			s.invalid.Add(1)
			s.logger.Debug("invalid rtp packet", zap.Error(err))
			continue
		}

		s.packets.Add(1)
		s.track(pkt.SequenceNumber)

		frames := len(pkt.Payload) / (2 * s.cfg.Channels)
		if frames == 0 {
			continue
		}

		s.samples = utils.DecodeS16(s.samples, pkt.Payload[:frames*2*s.cfg.Channels], binary.BigEndian)
		s.sink.Write(s.samples, frames, s.cfg.SampleRate, s.cfg.Channels)
	}
}

func (s *RTPSource) listen() (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", s.cfg.Address)
	if err != nil {
		return nil, err
	}

	if addr.IP == nil || !addr.IP.IsMulticast() {
		return net.ListenUDP("udp", addr)
	}

	var ifi *net.Interface
	if s.cfg.Interface != "" {
		if ifi, err = net.InterfaceByName(s.cfg.Interface); err != nil {
			return nil, err
		}
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: addr.Port})
	if err != nil {
		return nil, err
	}

	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(ifi, &net.UDPAddr{IP: addr.IP}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join %s: %w", addr.IP, err)
	}
	if err := p.SetMulticastLoopback(true); err != nil {
		s.logger.Debug("multicast loopback", zap.Error(err))
	}

	return conn, nil
}

// track counts the sequence numbers skipped since the last packet.
// Late and duplicate packets are not counted.
func (s *RTPSource) track(seq uint16) {
	if !s.haveSeq {
		s.haveSeq = true
		s.lastSeq = seq
		return
	}

	gap := seq - s.lastSeq
	if gap == 0 || gap >= 0x8000 {
		return
	}

	if gap > 1 {
		s.lost.Add(uint64(gap - 1))
	}
	s.lastSeq = seq
}
