// Package counter holds the aggregate counters stored on entities.
//
// A Counter can never become negative. Decrementing past zero is a caller defect:
// the caller must know the counted thing exists before removing it, so Dec and Sub
// panic with an *InvariantViolation instead of clamping.
package counter

import "fmt"

type Counter int64

// InvariantViolation is the panic value raised when a counter would go negative.
type InvariantViolation struct {
	Current int64
	Delta   int64
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("counter would become negative: %d - %d", v.Current, v.Delta)
}

func (c *Counter) Inc() {
	c.Add(1)
}

func (c *Counter) Add(n int64) {
	if n < 0 {
		panic(fmt.Sprintf("counter: Add called with negative amount %d", n))
	}
	*c += Counter(n)
}

func (c *Counter) Dec() {
	c.Sub(1)
}

func (c *Counter) Sub(n int64) {
	if n < 0 {
		panic(fmt.Sprintf("counter: Sub called with negative amount %d", n))
	}
	if int64(*c) < n {
		panic(&InvariantViolation{Current: int64(*c), Delta: n})
	}
	*c -= Counter(n)
}

func (c Counter) Int64() int64 {
	return int64(c)
}
