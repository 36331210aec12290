package protocol

import "log"

// FrameChannelCapacity is the spec's bounded MPSC channel size feeding the
// renderer (spec §5 "Bounded MPSC FrameUpdate channel... capacity 100").
const FrameChannelCapacity = 100

// FrameChannel is the bounded, many-producers/one-consumer channel every
// tattoy and the shadow terminal send FrameUpdates on. Sends never block:
// when full, the new update is dropped and logged (spec §5 "Backpressure
// policy: when full, new sends are dropped (logged)").
type FrameChannel struct {
	ch chan FrameUpdate
}

// NewFrameChannel allocates a bounded FrameChannel at the spec's capacity.
func NewFrameChannel() *FrameChannel {
	return &FrameChannel{ch: make(chan FrameUpdate, FrameChannelCapacity)}
}

// Send attempts a non-blocking send, returning false (and logging) if the
// channel was full.
func (f *FrameChannel) Send(update FrameUpdate) bool {
	select {
	case f.ch <- update:
		return true
	default:
		log.Printf("[WARN] frame update channel full, dropping update (backlog %d)", len(f.ch))
		return false
	}
}

// Recv exposes the receive side for the renderer's select loop.
func (f *FrameChannel) Recv() <-chan FrameUpdate {
	return f.ch
}

// Backlog reports the number of updates currently queued but not yet
// received, used by the renderer's maybe_paint skip-on-backlog rule (spec
// §4.7).
func (f *FrameChannel) Backlog() int {
	return len(f.ch)
}
