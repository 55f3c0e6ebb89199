package product

import "sync/atomic"

// Sequencer provides monotonically increasing fetch tickets.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next ticket.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }
