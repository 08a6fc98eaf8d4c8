package artnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"artnet2magichome/internal/config"
	"artnet2magichome/internal/logger"
	"artnet2magichome/internal/mapping"
	"github.com/Haba1234/go-artnet"
	"github.com/Haba1234/go-artnet/packet"
)

// Listener receives ArtDmx packets for one universe (DMX over UDP/IP).
type Listener struct {
	logger   logger.Logger
	universe int
	sink     Sink
	conn     *net.UDPConn
	network  *net.IPNet
	wg       sync.WaitGroup
}

// NewListener opens the Art-Net socket. When cfg.Network is set the host
// must own an address in it and packets from outside it are ignored.
func NewListener(log logger.Logger, cfg config.ArtNetConf, universe int, sink Sink) (*Listener, error) {
	l := &Listener{
		logger:   log,
		universe: universe,
		sink:     sink,
	}

	if cfg.Network != "" {
		ip, err := FindArtNetIP(cfg.Network)
		if err != nil {
			return nil, fmt.Errorf("failed to find the art-net IP: %w", err)
		}
		if len(ip) == 0 {
			return nil, errors.New("failed to find the art-net IP: No interface found")
		}
		_, l.network, _ = net.ParseCIDR(cfg.Network)
		log.With(logger.Fields{"module": "art-net"}).Infof("Using ArtNet IP %s", ip.String())
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: cfg.Port})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on art-net port %d: %w", cfg.Port, err)
	}
	l.conn = conn

	log.With(logger.Fields{"module": "art-net"}).Infof("listening on %s for universe %d", conn.LocalAddr(), universe)
	return l, nil
}

// Addr returns the local socket address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Start the Listener. It stops when ctx is done.
func (l *Listener) Start(ctx context.Context) {
	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		<-ctx.Done()
		l.conn.Close()
	}()
	go func() {
		defer l.wg.Done()
		l.receive()
	}()
}

// Wait blocks until the receive loop exited.
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) receive() {
	log := l.logger.With(logger.Fields{"module": "art-net"})
	buf := make([]byte, readBufferSize)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Debug("socket closed, listener stopped")
				return
			}
			log.Errorf("udp read: %v", err)
			continue
		}
		if l.network != nil && !l.network.Contains(from.IP) {
			continue
		}
		l.handlePacket(buf[:n])
	}
}

// handlePacket decodes one datagram and forwards DMX data of our universe.
func (l *Listener) handlePacket(b []byte) {
	p, err := packet.Unmarshal(b)
	if err != nil {
		l.logger.With(logger.Fields{"module": "art-net"}).Debugf("not an art-net packet: %v", err)
		return
	}

	dmx, ok := p.(*packet.ArtDMXPacket)
	if !ok {
		return
	}

	universe := int(artnet.Address{Net: dmx.Net, SubUni: dmx.SubUni}.Integer())
	if universe != l.universe {
		return
	}

	n := int(dmx.Length)
	if n > len(dmx.Data) {
		n = len(dmx.Data)
	}
	data := make([]byte, n)
	copy(data, dmx.Data[:n])

	if l.sink.Push(mapping.Frame{Universe: universe, Data: data}) {
		l.logger.With(logger.Fields{"module": "art-net"}).Debug("DMX. worker busy, older frame replaced")
	}
}
