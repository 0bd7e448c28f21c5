// Package clock provides a time source that tests can pin.
package clock

import "time"

// Clock abstracts time operations for testability.
type Clock interface {
	Now() time.Time
}

// Real is a Clock backed by the system clock.
type Real struct{}

// Now returns the current time in UTC.
func (Real) Now() time.Time { return time.Now().UTC() }

// Mock is a Clock that always returns a fixed time.
type Mock struct {
	T time.Time
}

// Now returns the fixed time.
func (m Mock) Now() time.Time { return m.T }

// Add returns a copy of the mock moved forward by d.
func (m Mock) Add(d time.Duration) Mock { return Mock{T: m.T.Add(d)} }

// Since reports the time elapsed on clk since t.
func Since(clk Clock, t time.Time) time.Duration {
	return clk.Now().Sub(t)
}
