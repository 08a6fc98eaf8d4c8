package magichome

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// Light is a TCP connection to one controller. The connection is opened
// lazily and dropped after an I/O error so the next command redials.
type Light struct {
	addr         string
	dialTimeout  time.Duration
	writeTimeout time.Duration

	mu    sync.Mutex
	conn  net.Conn
	power bool
	red   uint8
	green uint8
	blue  uint8
}

// Option configures a Light.
type Option func(*Light)

// DialTimeout sets the TCP connect timeout.
func DialTimeout(d time.Duration) Option {
	return func(l *Light) { l.dialTimeout = d }
}

// WriteTimeout bounds a single command round trip.
func WriteTimeout(d time.Duration) Option {
	return func(l *Light) { l.writeTimeout = d }
}

// NewLight конструктор. addr is host:port, the port defaults to ControlPort.
func NewLight(addr string, opts ...Option) *Light {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, fmt.Sprint(ControlPort))
	}
	l := &Light{
		addr:         addr,
		dialTimeout:  5 * time.Second,
		writeTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Addr returns the control address.
func (l *Light) Addr() string {
	return l.addr
}

// Connect opens the connection and refreshes the cached state.
func (l *Light) Connect(ctx context.Context) error {
	_, err := l.State(ctx)
	return err
}

// Close drops the connection.
func (l *Light) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

// Power returns the last known power state.
func (l *Light) Power() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.power
}

// Color returns the last known color.
func (l *Light) Color() (r, g, b uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.red, l.green, l.blue
}

func (l *Light) TurnOn(ctx context.Context) error {
	if err := l.send(ctx, powerCommand(true), nil); err != nil {
		return fmt.Errorf("turn on: %w", err)
	}
	l.mu.Lock()
	l.power = true
	l.mu.Unlock()
	return nil
}

func (l *Light) TurnOff(ctx context.Context) error {
	if err := l.send(ctx, powerCommand(false), nil); err != nil {
		return fmt.Errorf("turn off: %w", err)
	}
	l.mu.Lock()
	l.power = false
	l.mu.Unlock()
	return nil
}

func (l *Light) SetColor(ctx context.Context, r, g, b uint8) error {
	if err := l.send(ctx, colorCommand(r, g, b), nil); err != nil {
		return fmt.Errorf("set color: %w", err)
	}
	l.mu.Lock()
	l.red, l.green, l.blue = r, g, b
	l.mu.Unlock()
	return nil
}

// SetPresetPattern starts a built-in animation; speedPercent is 0..100.
func (l *Light) SetPresetPattern(ctx context.Context, p Pattern, speedPercent uint8) error {
	if !p.Valid() {
		return fmt.Errorf("set pattern: unknown %v", p)
	}
	if err := l.send(ctx, patternCommand(p, speedPercent), nil); err != nil {
		return fmt.Errorf("set pattern: %w", err)
	}
	return nil
}

// State queries the controller and refreshes Power and Color.
func (l *Light) State(ctx context.Context) (State, error) {
	reply := make([]byte, stateReplyLen)
	if err := l.send(ctx, stateQuery(), reply); err != nil {
		return State{}, fmt.Errorf("query state: %w", err)
	}
	st, err := parseState(reply)
	if err != nil {
		return State{}, err
	}
	l.mu.Lock()
	l.power = st.Power
	l.red, l.green, l.blue = st.Red, st.Green, st.Blue
	l.mu.Unlock()
	return st, nil
}

// send writes msg and, when reply is not nil, reads len(reply) bytes back.
func (l *Light) send(ctx context.Context, msg, reply []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		d := net.Dialer{Timeout: l.dialTimeout}
		conn, err := d.DialContext(ctx, "tcp", l.addr)
		if err != nil {
			return err
		}
		l.conn = conn
	}

	deadline := time.Now().Add(l.writeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := l.conn.SetDeadline(deadline); err != nil {
		l.dropLocked()
		return err
	}

	if _, err := l.conn.Write(msg); err != nil {
		l.dropLocked()
		return err
	}
	if reply == nil {
		return nil
	}
	if _, err := io.ReadFull(l.conn, reply); err != nil {
		l.dropLocked()
		return err
	}
	return nil
}

func (l *Light) dropLocked() {
	_ = l.conn.Close()
	l.conn = nil
}
