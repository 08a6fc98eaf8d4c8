package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"artnet2magichome/internal/config"
	"artnet2magichome/internal/dispatch"
	"artnet2magichome/internal/gate"
	"artnet2magichome/internal/logger"
	"artnet2magichome/internal/mapping"
)

// Notifier is told about every command that reached the light.
type Notifier interface {
	Notify(cmd mapping.LightCommand, state gate.DeviceState)
}

// Bridge owns the device state and is the only consumer of the mailbox,
// so frames are mapped, gated and dispatched strictly one after another.
type Bridge struct {
	log        logger.Logger
	cfg        config.ChannelMap
	dispatcher *dispatch.Dispatcher
	mailbox    *Mailbox
	pollEvery  time.Duration
	notifiers  []Notifier

	mu    sync.Mutex
	state gate.DeviceState
	last  *mapping.LightCommand
	stats counters
}

type counters struct {
	processed  uint64
	malformed  uint64
	suppressed uint64
	dispatched uint64
	failed     uint64
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithPowerPoll makes the worker query the light power every d. Zero disables it.
func WithPowerPoll(d time.Duration) Option {
	return func(b *Bridge) { b.pollEvery = d }
}

// WithNotifier adds a Notifier.
func WithNotifier(n Notifier) Option {
	return func(b *Bridge) { b.notifiers = append(b.notifiers, n) }
}

// New конструктор.
func New(log logger.Logger, cfg config.ChannelMap, d *dispatch.Dispatcher, mailbox *Mailbox, opts ...Option) *Bridge {
	b := &Bridge{
		log:        log,
		cfg:        cfg,
		dispatcher: d,
		mailbox:    mailbox,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init powers the light on and blacks it out, leaving a known state.
func (b *Bridge) Init(ctx context.Context) error {
	err := b.dispatcher.Run(ctx, []gate.Action{
		{Kind: gate.PowerOn},
		{Kind: gate.SetColor},
	})
	if err != nil {
		return err
	}
	black := mapping.RGB{}
	b.mu.Lock()
	b.state = gate.DeviceState{Power: true, Color: &black}
	b.mu.Unlock()
	return nil
}

// Run drains the mailbox until ctx is done.
func (b *Bridge) Run(ctx context.Context) {
	log := b.log.With(logger.Fields{"module": "bridge"})

	var poll <-chan time.Time
	if b.pollEvery > 0 {
		t := time.NewTicker(b.pollEvery)
		defer t.Stop()
		poll = t.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker stopped")
			return
		case f := <-b.mailbox.Frames():
			if err := b.Handle(ctx, f); err != nil && !errors.Is(err, mapping.ErrMalformedFrame) {
				log.Errorf("frame dropped: %v", err)
			}
		case <-poll:
			b.pollPower(ctx)
		}
	}
}

// Handle processes one frame. The device state only changes when every
// write for the frame succeeded.
func (b *Bridge) Handle(ctx context.Context, f mapping.Frame) error {
	log := b.log.With(logger.Fields{"module": "bridge"})

	if err := mapping.CheckFrame(f, b.cfg); err != nil {
		b.count(func(c *counters) { c.malformed++ })
		log.Warnf("skip frame on universe %d: %v", f.Universe, err)
		return err
	}

	cmd := mapping.Map(f, b.cfg)

	b.mu.Lock()
	state := b.state
	b.mu.Unlock()

	actions, next := gate.Apply(cmd, state)
	if len(actions) == 0 {
		b.count(func(c *counters) { c.processed++; c.suppressed++ })
		return nil
	}

	if err := b.dispatcher.Run(ctx, actions); err != nil {
		b.count(func(c *counters) { c.processed++; c.failed++ })
		return err
	}

	b.mu.Lock()
	b.state = next
	b.last = &cmd
	b.stats.processed++
	b.stats.dispatched += uint64(len(actions))
	b.mu.Unlock()

	log.Debugf("applied %v", cmd)
	for _, n := range b.notifiers {
		n.Notify(cmd, next)
	}
	return nil
}

func (b *Bridge) pollPower(ctx context.Context) {
	on, err := b.dispatcher.QueryPower(ctx)
	if err != nil {
		b.log.With(logger.Fields{"module": "bridge"}).Warnf("power query failed: %v", err)
		return
	}
	b.mu.Lock()
	changed := b.state.Power != on
	b.state.Power = on
	b.mu.Unlock()
	if changed {
		b.log.With(logger.Fields{"module": "bridge"}).Infof("light reports power=%v", on)
	}
}

func (b *Bridge) count(fn func(*counters)) {
	b.mu.Lock()
	fn(&b.stats)
	b.mu.Unlock()
}

// Snapshot is a point in time view of the bridge.
type Snapshot struct {
	Universe     int                   `json:"universe"`
	StartChannel int                   `json:"startChannel"`
	State        gate.DeviceState      `json:"state"`
	LastCommand  *mapping.LightCommand `json:"lastCommand,omitempty"`
	Received     uint64                `json:"received"`
	Dropped      uint64                `json:"dropped"`
	Processed    uint64                `json:"processed"`
	Malformed    uint64                `json:"malformed"`
	Suppressed   uint64                `json:"suppressed"`
	Dispatched   uint64                `json:"dispatched"`
	Failed       uint64                `json:"failed"`
}

// Snapshot returns the current state and counters.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Universe:     b.cfg.Universe,
		StartChannel: b.cfg.StartChannel,
		State:        b.state,
		LastCommand:  b.last,
		Received:     b.mailbox.Received(),
		Dropped:      b.mailbox.Dropped(),
		Processed:    b.stats.processed,
		Malformed:    b.stats.malformed,
		Suppressed:   b.stats.suppressed,
		Dispatched:   b.stats.dispatched,
		Failed:       b.stats.failed,
	}
}
