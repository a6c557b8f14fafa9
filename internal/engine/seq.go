package engine

// seqCounter stamps interaction log records. Cycles and executions draw
// from the same counter, so a cycle sorts before the execution it
// triggered and log reads never depend on wall-clock time.
//
// Only the Run goroutine touches it.
type seqCounter struct {
	last int64
}

// next returns the seq for the next record.
func (c *seqCounter) next() int64 {
	c.last++
	return c.last
}

// resumeAfter moves the counter past seq, the largest seq already in the
// log. It never moves backwards.
func (c *seqCounter) resumeAfter(seq int64) {
	if seq > c.last {
		c.last = seq
	}
}
