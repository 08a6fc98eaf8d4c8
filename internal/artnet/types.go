package artnet

import "artnet2magichome/internal/mapping"

// Sink receives the frames of the subscribed universe.
type Sink interface {
	Push(f mapping.Frame) bool
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f mapping.Frame) bool

func (fn SinkFunc) Push(f mapping.Frame) bool {
	return fn(f)
}

// readBufferSize fits the largest ArtDmx packet (18 byte header + 512).
const readBufferSize = 1024
