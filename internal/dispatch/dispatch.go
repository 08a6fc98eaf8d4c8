package dispatch

import (
	"context"
	"fmt"
	"sync"

	"artnet2magichome/internal/gate"
	"artnet2magichome/internal/logger"
	"artnet2magichome/internal/magichome"
)

// Light is the device the dispatcher writes to.
type Light interface {
	TurnOn(ctx context.Context) error
	SetColor(ctx context.Context, r, g, b uint8) error
	SetPresetPattern(ctx context.Context, p magichome.Pattern, speedPercent uint8) error
	State(ctx context.Context) (magichome.State, error)
}

// DeviceError is a failed write or query.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Dispatcher executes actions one at a time. Calls from different
// goroutines are serialized, so two writes are never in flight together.
type Dispatcher struct {
	log   logger.Logger
	mu    sync.Mutex
	light Light
}

// New конструктор.
func New(log logger.Logger, light Light) *Dispatcher {
	return &Dispatcher{log: log, light: light}
}

// Submit performs one action. Failures are returned, not retried.
func (d *Dispatcher) Submit(ctx context.Context, a gate.Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	switch a.Kind {
	case gate.PowerOn:
		err = d.light.TurnOn(ctx)
	case gate.SetColor:
		err = d.light.SetColor(ctx, a.Color.Red, a.Color.Green, a.Color.Blue)
	case gate.SetPreset:
		err = d.light.SetPresetPattern(ctx, a.Pattern, a.Speed)
	default:
		err = fmt.Errorf("unknown action %v", a.Kind)
	}
	if err != nil {
		return &DeviceError{Op: a.Kind.String(), Err: err}
	}
	d.log.With(logger.Fields{"module": "dispatch"}).Debugf("sent %v", a)
	return nil
}

// Run submits actions in order and stops at the first failure.
func (d *Dispatcher) Run(ctx context.Context, actions []gate.Action) error {
	for _, a := range actions {
		if err := d.Submit(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// QueryPower asks the light whether it is on.
func (d *Dispatcher) QueryPower(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, err := d.light.State(ctx)
	if err != nil {
		return false, &DeviceError{Op: "query-state", Err: err}
	}
	return st.Power, nil
}
