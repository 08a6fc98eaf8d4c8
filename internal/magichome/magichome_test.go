package magichome

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeController answers on a loopback TCP port and records every command.
type fakeController struct {
	ln    net.Listener
	state []byte

	mu       sync.Mutex
	commands [][]byte
}

func newFakeController(t *testing.T, state []byte) *fakeController {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeController{ln: ln, state: state}
	t.Cleanup(func() { _ = ln.Close() })
	go f.serve()
	return f
}

func (f *fakeController) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeController) handle(conn net.Conn) {
	defer conn.Close()
	lengths := map[byte]int{opPower: 4, opSetColor: 8, opPattern: 5, opStateHead: 4}
	head := make([]byte, 1)
	for {
		if _, err := io.ReadFull(conn, head); err != nil {
			return
		}
		n, ok := lengths[head[0]]
		if !ok {
			return
		}
		cmd := make([]byte, n)
		cmd[0] = head[0]
		if _, err := io.ReadFull(conn, cmd[1:]); err != nil {
			return
		}
		f.mu.Lock()
		f.commands = append(f.commands, cmd)
		f.mu.Unlock()
		if cmd[0] == opStateHead {
			if _, err := conn.Write(f.state); err != nil {
				return
			}
		}
	}
}

func (f *fakeController) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.commands...)
}

func stateReply(power byte, r, g, b uint8) []byte {
	msg := []byte{opStateHead, 0x44, power, 0x61, 0x21, 0x10, r, g, b, 0x00, 0x09, 0x00, 0x00}
	return withChecksum(msg...)
}

func TestCommandFrames(t *testing.T) {
	require.Equal(t, []byte{0x71, 0x23, 0x0f, 0xa3}, powerCommand(true))
	require.Equal(t, []byte{0x71, 0x24, 0x0f, 0xa4}, powerCommand(false))
	require.Equal(t, []byte{0x31, 0xff, 0x00, 0x00, 0x00, 0x00, 0x0f, 0x3f}, colorCommand(255, 0, 0))
	require.Equal(t, []byte{0x81, 0x8a, 0x8b, 0x96}, stateQuery())
	require.Equal(t, []byte{0x61, 0x25, 0x01, 0x0f, 0x96}, patternCommand(SevenColorsCrossFade, 100))
}

func TestSpeedToDelay(t *testing.T) {
	require.Equal(t, byte(31), speedToDelay(0))
	require.Equal(t, byte(16), speedToDelay(50))
	require.Equal(t, byte(1), speedToDelay(100))
	require.Equal(t, byte(1), speedToDelay(200))
}

func TestParseState(t *testing.T) {
	st, err := parseState(stateReply(powerOn, 10, 20, 30))
	require.NoError(t, err)
	require.True(t, st.Power)
	require.Equal(t, uint8(10), st.Red)
	require.Equal(t, uint8(20), st.Green)
	require.Equal(t, uint8(30), st.Blue)

	st, err = parseState(stateReply(powerOff, 0, 0, 0))
	require.NoError(t, err)
	require.False(t, st.Power)

	bad := stateReply(powerOn, 1, 2, 3)
	bad[13]++
	_, err = parseState(bad)
	require.ErrorIs(t, err, errBadReply)

	_, err = parseState([]byte{0x81, 0x00})
	require.ErrorIs(t, err, errBadReply)
}

func TestPatternNames(t *testing.T) {
	require.Equal(t, Pattern(0x38), SevenColorsJumping)
	require.Equal(t, "SevenColorsJumping", SevenColorsJumping.String())
	require.Equal(t, "Pattern(0x10)", Pattern(0x10).String())
	require.False(t, Pattern(0x10).Valid())
}

func TestLightCommands(t *testing.T) {
	dev := newFakeController(t, stateReply(powerOff, 1, 2, 3))
	l := NewLight(dev.ln.Addr().String(), WriteTimeout(time.Second))
	defer l.Close()
	ctx := context.Background()

	require.NoError(t, l.Connect(ctx))
	require.False(t, l.Power())
	r, g, b := l.Color()
	require.Equal(t, [3]uint8{1, 2, 3}, [3]uint8{r, g, b})

	require.NoError(t, l.TurnOn(ctx))
	require.True(t, l.Power())
	require.NoError(t, l.SetColor(ctx, 255, 0, 0))
	require.NoError(t, l.SetPresetPattern(ctx, RedStrobeFlash, 0))
	require.Error(t, l.SetPresetPattern(ctx, Pattern(0x01), 0))

	require.Eventually(t, func() bool { return len(dev.received()) == 4 }, time.Second, 10*time.Millisecond)
	got := dev.received()
	require.Equal(t, stateQuery(), got[0])
	require.Equal(t, powerCommand(true), got[1])
	require.Equal(t, colorCommand(255, 0, 0), got[2])
	require.Equal(t, patternCommand(RedStrobeFlash, 0), got[3])
}

func TestLightRedialsAfterError(t *testing.T) {
	dev := newFakeController(t, stateReply(powerOn, 0, 0, 0))
	l := NewLight(dev.ln.Addr().String())
	ctx := context.Background()

	require.NoError(t, l.TurnOn(ctx))
	require.NoError(t, l.Close())
	require.NoError(t, l.SetColor(ctx, 1, 1, 1))
	require.Eventually(t, func() bool { return len(dev.received()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestLightDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	l := NewLight(addr, DialTimeout(200*time.Millisecond))
	require.Error(t, l.TurnOn(context.Background()))
	require.False(t, l.Power())
}

func TestNewLightDefaultPort(t *testing.T) {
	require.Equal(t, "10.0.0.2:5577", NewLight("10.0.0.2").Addr())
	require.Equal(t, "10.0.0.2:1234", NewLight("10.0.0.2:1234").Addr())
}

func TestParseDiscoveryReply(t *testing.T) {
	dev, ok := parseDiscoveryReply("192.168.1.40,ACCF23A1B2C3,HF-LPB100-ZJ200\r\n")
	require.True(t, ok)
	require.Equal(t, Device{IP: "192.168.1.40", MAC: "ACCF23A1B2C3", Model: "HF-LPB100-ZJ200"}, dev)
	require.Equal(t, "192.168.1.40:5577", dev.Addr())

	_, ok = parseDiscoveryReply(discoveryMessage)
	require.False(t, ok)
	_, ok = parseDiscoveryReply("nonsense,a,b")
	require.False(t, ok)
}

func TestDiscover(t *testing.T) {
	responder, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer responder.Close()

	go func() {
		buf := make([]byte, 64)
		n, from, err := responder.ReadFromUDP(buf)
		if err != nil || string(buf[:n]) != discoveryMessage {
			return
		}
		_, _ = responder.WriteToUDP([]byte("127.0.0.1,ACCF23000001,AK001-ZJ2101"), from)
		_, _ = responder.WriteToUDP([]byte("127.0.0.1,ACCF23000001,AK001-ZJ2101"), from)
	}()

	devices, err := Discover(context.Background(), DiscoverOptions{
		Target:  responder.LocalAddr().String(),
		Timeout: 300 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, "AK001-ZJ2101", devices[0].Model)
}

func TestDiscoverNothing(t *testing.T) {
	silent, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer silent.Close()

	_, err = Discover(context.Background(), DiscoverOptions{
		Target:  silent.LocalAddr().String(),
		Timeout: 100 * time.Millisecond,
	})
	require.ErrorIs(t, err, ErrNoLightFound)
}
