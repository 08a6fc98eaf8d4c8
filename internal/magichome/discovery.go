package magichome

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrNoLightFound is returned when nothing answered the discovery broadcast.
var ErrNoLightFound = errors.New("no lights found")

// DiscoverOptions controls a discovery round.
type DiscoverOptions struct {
	// Target is where the probe is sent, broadcast on DiscoveryPort when empty.
	Target  string
	Timeout time.Duration
}

// Discover broadcasts a probe and collects the controllers that answer
// before the timeout, in reply order.
func Discover(ctx context.Context, opts DiscoverOptions) ([]Device, error) {
	target := opts.Target
	if target == "" {
		target = fmt.Sprintf("%s:%d", net.IPv4bcast.String(), DiscoveryPort)
	}
	addr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return nil, fmt.Errorf("resolve discovery target: %w", err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, fmt.Errorf("open discovery socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(opts.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetDeadline(time.Now())
		case <-done:
		}
	}()

	if _, err := conn.WriteToUDP([]byte(discoveryMessage), addr); err != nil {
		return nil, fmt.Errorf("send discovery probe: %w", err)
	}

	var devices []Device
	seen := map[string]bool{}
	buf := make([]byte, 256)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				break
			}
			return devices, fmt.Errorf("read discovery reply: %w", err)
		}
		dev, ok := parseDiscoveryReply(string(buf[:n]))
		if !ok || seen[dev.IP] {
			continue
		}
		seen[dev.IP] = true
		devices = append(devices, dev)
	}

	if err := ctx.Err(); err != nil {
		return devices, err
	}
	if len(devices) == 0 {
		return nil, ErrNoLightFound
	}
	return devices, nil
}

// parseDiscoveryReply parses "ip,mac,model". Our own probe echoed back is ignored.
func parseDiscoveryReply(s string) (Device, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 3 {
		return Device{}, false
	}
	if net.ParseIP(parts[0]) == nil {
		return Device{}, false
	}
	return Device{IP: parts[0], MAC: parts[1], Model: parts[2]}, true
}
