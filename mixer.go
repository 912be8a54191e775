// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/internal/logging"
	"github.com/ik5/audmix/mixbus"
	"github.com/ik5/audmix/output"
	"github.com/ik5/audmix/pacing"
	"github.com/ik5/audmix/queue"
	"github.com/ik5/audmix/source"
)

const (
	defaultMonitorInterval = 100 * time.Millisecond
	// occupancy is logged every reportEvery monitor ticks
	reportEvery = 10
)

// BuildFunc creates an adapter that writes into sink.
type BuildFunc func(sink source.Sink) (source.Adapter, error)

// Option customizes a Mixer.
type Option func(*options)

type options struct {
	monitorInterval time.Duration
	registry        *audio.Registry
}

// WithMonitorInterval sets how often the monitor checks the bus. The
// default is 100 ms.
func WithMonitorInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.monitorInterval = d
		}
	}
}

// WithRegistry sets the decoders used by file sources.
func WithRegistry(r *audio.Registry) Option {
	return func(o *options) { o.registry = r }
}

// member is one source with its queue and feeder.
type member[T audio.Sample] struct {
	adapter source.Adapter
	feeder  *source.Feeder[T]

	launched bool
	done     chan struct{}
	finished atomic.Bool
}

// Mixer owns the bus, the sources and their queues. Sources may be added
// and removed while it runs.
type Mixer[T audio.Sample] struct {
	cfg    *config.Config
	bus    *mixbus.Bus[T]
	logger *zap.Logger

	monitorInterval time.Duration
	registry        *audio.Registry

	stopped atomic.Bool

	mtx     sync.Mutex
	members []*member[T]
	group   *errgroup.Group
	gctx    context.Context
	cancel  context.CancelFunc
}

// New validates cfg, clamping dangerous values, and creates an idle mixer
// in the output format. Validation warnings are logged.
func New[T audio.Sample](cfg *config.Config, logger *zap.Logger, opts ...Option) (*Mixer[T], error) {
	logger = logging.OrNop(logger).Named("mixer")

	res := cfg.ValidateTiered()
	for _, w := range res.Warnings {
		logger.Warn("configuration adjusted", zap.Error(w))
	}
	if res.HasFatals() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(res.Fatals...))
	}

	o := options{monitorInterval: defaultMonitorInterval}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = source.DefaultRegistry()
	}

	return &Mixer[T]{
		cfg:             cfg,
		bus:             mixbus.New[T](cfg.Output.SampleRate, cfg.Output.Channels),
		logger:          logger,
		monitorInterval: o.monitorInterval,
		registry:        o.registry,
	}, nil
}

func (m *Mixer[T]) Bus() *mixbus.Bus[T] {
	return m.bus
}

func (m *Mixer[T]) Config() *config.Config {
	return m.cfg
}

// Sources lists the attached adapters in the order they were added.
func (m *Mixer[T]) Sources() []source.Adapter {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	out := make([]source.Adapter, len(m.members))
	for i, mb := range m.members {
		out[i] = mb.adapter
	}

	return out
}

// AddSource builds the adapter described by sc and attaches it.
func (m *Mixer[T]) AddSource(sc config.SourceConfig) (source.Adapter, error) {
	return m.Add(sc.Name, func(sink source.Sink) (source.Adapter, error) {
		return source.FromConfig(sc, sink, m.registry, m.logger)
	})
}

// Add creates a queue and a feeder for name, builds the adapter on top of
// the feeder and attaches the queue to the bus. When the mixer is running
// the adapter starts at once.
func (m *Mixer[T]) Add(name string, build BuildFunc) (source.Adapter, error) {
	if m.stopped.Load() {
		return nil, ErrStopped
	}

	capacity, minFrames := m.cfg.QueueFrames()
	q, err := queue.New[T](m.cfg.Output.SampleRate, m.cfg.Output.Channels, capacity, minFrames)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	feeder := source.NewFeeder(name, q, source.FeederConfig{
		Throttle:     m.throttle(),
		Retries:      m.cfg.Pacing.Retries,
		RetryBackoff: m.cfg.RetryBackoff(),
	}, m.logger)

	adapter, err := build(feeder)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.stopped.Load() {
		return nil, ErrStopped
	}
	if err := m.bus.Add(name, q); err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	mb := &member[T]{adapter: adapter, feeder: feeder}
	m.members = append(m.members, mb)
	if m.group != nil {
		m.launch(mb)
	}

	m.logger.Info("source added",
		zap.String(logging.KeySource, name),
		zap.Stringer(logging.KeyKind, adapter.Kind()),
		zap.Int("capacityFrames", capacity),
		zap.Int("minFrames", minFrames),
	)

	return adapter, nil
}

// Remove stops the source called name, waits for its producer to exit and
// detaches its queue.
func (m *Mixer[T]) Remove(name string) error {
	m.mtx.Lock()
	i := slices.IndexFunc(m.members, func(mb *member[T]) bool { return mb.adapter.Name() == name })
	if i < 0 {
		m.mtx.Unlock()
		return ErrUnknownSource
	}
	mb := m.members[i]
	m.members = slices.Delete(m.members, i, i+1)
	m.mtx.Unlock()

	mb.adapter.Stop()
	mb.feeder.Close()
	if mb.launched {
		<-mb.done
	}

	// The output callback may still hold the old snapshot, so the queue is
	// dropped rather than cleared.
	m.bus.Remove(name)
	m.logger.Info("source removed", zap.String(logging.KeySource, name))

	return nil
}

// throttle builds the pacing state of one producer.
func (m *Mixer[T]) throttle() *pacing.Throttle {
	p := m.cfg.Pacing
	ctrl := pacing.NewController(p.Kp, p.Ki, p.Kd, p.Target)
	if p.IntegralLimit > 0 {
		ctrl.SetIntegralLimit(p.IntegralLimit)
	}

	return pacing.NewThrottle(ctrl, m.cfg.MaxDelay())
}

// launch starts the producer of mb. m.mtx must be held and the mixer
// running.
func (m *Mixer[T]) launch(mb *member[T]) {
	mb.launched = true
	mb.done = make(chan struct{})
	ctx := m.gctx

	m.group.Go(func() error {
		defer close(mb.done)
		defer mb.finished.Store(true)

		name := mb.adapter.Name()
		if err := mb.adapter.Run(ctx); err != nil {
			m.logger.Error("source failed", zap.String(logging.KeySource, name), zap.Error(err))
			return nil
		}

		st := mb.feeder.Stats()
		m.logger.Info("source finished",
			zap.String(logging.KeySource, name),
			zap.Uint64("pushed", st.Pushed),
			zap.Uint64(logging.KeyDropped, st.Dropped),
		)

		return nil
	})
}

// Run starts every source and the monitor, and blocks until ctx is done,
// Stop is called or the driver fails. driver is started once audio is
// buffered and paused while every queue is empty. Run closes driver before
// it returns.
//
// Shutdown order: the stop flag is raised, producers exit and are joined,
// the driver is closed, then the queues are cleared and detached.
func (m *Mixer[T]) Run(ctx context.Context, driver output.Driver) error {
	m.mtx.Lock()
	if m.stopped.Load() {
		m.mtx.Unlock()
		return ErrStopped
	}
	if m.group != nil {
		m.mtx.Unlock()
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	m.group, m.gctx = errgroup.WithContext(ctx)
	m.cancel = cancel
	for _, mb := range m.members {
		m.launch(mb)
	}
	gctx := m.gctx
	m.group.Go(func() error { return m.monitor(gctx, driver) })
	m.mtx.Unlock()

	m.logger.Info("mixer running",
		zap.Int("sampleRate", m.cfg.Output.SampleRate),
		zap.Int("channels", m.cfg.Output.Channels),
		zap.Int("framesPerBuffer", m.cfg.Output.FramesPerBuffer),
		zap.Int("sources", m.bus.Len()),
	)

	<-gctx.Done()

	m.mtx.Lock()
	m.stopped.Store(true)
	members := m.members
	m.mtx.Unlock()

	for _, mb := range members {
		mb.feeder.Close()
	}

	err := m.group.Wait()
	cancel()

	if cerr := driver.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing output: %w", cerr))
	}

	m.mtx.Lock()
	for _, mb := range m.members {
		if q, ok := m.bus.Remove(mb.adapter.Name()); ok {
			q.Clear()
		}
	}
	m.members = nil
	m.mtx.Unlock()

	m.logger.Info("mixer stopped")

	return err
}

// Stop ends a running Run. A mixer that was never run refuses further use.
func (m *Mixer[T]) Stop() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.cancel != nil {
		m.cancel()
		return
	}
	m.stopped.Store(true)
}

// Stopped reports whether the stop flag is raised.
func (m *Mixer[T]) Stopped() bool {
	return m.stopped.Load()
}

// monitor starts and pauses the driver with the bus state, detaches
// finished sources once their queues ran dry and reports occupancy.
func (m *Mixer[T]) monitor(ctx context.Context, driver output.Driver) error {
	ticker := time.NewTicker(m.monitorInterval)
	defer ticker.Stop()

	for tick := 1; ; tick++ {
		m.reap()

		if err := m.steer(driver); err != nil {
			return err
		}

		if tick%reportEvery == 0 && m.logger.Core().Enabled(zapcore.DebugLevel) {
			m.report()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// steer pauses the driver while every queue is empty and resumes it when
// audio arrives.
func (m *Mixer[T]) steer(driver output.Driver) error {
	idle := m.bus.AllEmpty()

	switch {
	case idle && driver.Playing():
		if err := driver.Pause(); err != nil {
			return fmt.Errorf("pausing output: %w", err)
		}
		m.logger.Debug("output paused")
	case !idle && !driver.Playing():
		if err := driver.Start(); err != nil {
			return fmt.Errorf("starting output: %w", err)
		}
		m.logger.Debug("output started")
	}

	return nil
}

// reap detaches sources whose producer has exited and whose queue can no
// longer deliver: empty, or holding less than the priming threshold.
func (m *Mixer[T]) reap() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.members = slices.DeleteFunc(m.members, func(mb *member[T]) bool {
		if !mb.finished.Load() {
			return false
		}

		q := mb.feeder.Queue()
		if !q.Empty() && q.Frames() >= q.Min() {
			return false
		}

		m.bus.Remove(mb.adapter.Name())
		m.logger.Info("source drained", zap.String(logging.KeySource, mb.adapter.Name()))

		return true
	})
}

func (m *Mixer[T]) report() {
	for _, e := range m.bus.Entries() {
		m.logger.Debug("queue occupancy",
			zap.String(logging.KeySource, e.Name),
			zap.Int(logging.KeySamples, e.Queue.Size()),
			zap.Int64(logging.KeyLatencyMs, e.Queue.Latency().Milliseconds()),
			zap.Float64(logging.KeyUsage, e.Queue.Usage()),
		)
	}
}
