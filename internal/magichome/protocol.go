package magichome

import (
	"errors"
	"fmt"
)

const (
	// ControlPort is the TCP port controllers accept commands on.
	ControlPort = 5577
	// DiscoveryPort is the UDP port controllers answer discovery on.
	DiscoveryPort = 48899

	discoveryMessage = "HF-A11ASSISTHREAD"
	stateReplyLen    = 14

	opSetColor  = 0x31
	opPattern   = 0x61
	opPower     = 0x71
	opStateHead = 0x81

	powerOn  = 0x23
	powerOff = 0x24

	// terminator for commands sent from the local network.
	localFlag = 0x0f

	minDelay = 0x01
	maxDelay = 0x1f
)

var errBadReply = errors.New("magichome: malformed state reply")

func checksum(msg []byte) byte {
	var sum byte
	for _, b := range msg {
		sum += b
	}
	return sum
}

// withChecksum appends the low byte of the sum of msg.
func withChecksum(msg ...byte) []byte {
	return append(msg, checksum(msg))
}

func powerCommand(on bool) []byte {
	if on {
		return withChecksum(opPower, powerOn, localFlag)
	}
	return withChecksum(opPower, powerOff, localFlag)
}

func colorCommand(r, g, b uint8) []byte {
	return withChecksum(opSetColor, r, g, b, 0x00, 0x00, localFlag)
}

func patternCommand(p Pattern, speedPercent uint8) []byte {
	return withChecksum(opPattern, byte(p), speedToDelay(speedPercent), localFlag)
}

func stateQuery() []byte {
	return withChecksum(opStateHead, 0x8a, 0x8b)
}

// speedToDelay converts 0..100 percent to the controller delay 31..1,
// lower delay is faster.
func speedToDelay(percent uint8) byte {
	if percent > 100 {
		percent = 100
	}
	delay := int(maxDelay) - int(percent)*(maxDelay-minDelay)/100
	return byte(delay)
}

func parseState(b []byte) (State, error) {
	if len(b) != stateReplyLen || b[0] != opStateHead {
		return State{}, errBadReply
	}
	if sum := checksum(b[:stateReplyLen-1]); sum != b[stateReplyLen-1] {
		return State{}, fmt.Errorf("%w: checksum 0x%02x", errBadReply, b[stateReplyLen-1])
	}
	return State{
		Power: b[2] == powerOn,
		Mode:  b[3],
		Red:   b[6],
		Green: b[7],
		Blue:  b[8],
		Warm:  b[9],
	}, nil
}
