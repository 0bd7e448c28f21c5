// Package money converts copper amounts to gold/silver/copper and computes
// price movement between two observations.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	CopperPerSilver = 100
	CopperPerGold   = 100 * CopperPerSilver
)

// ErrNoBaseline is returned by PercentDelta when the previous price is zero.
var ErrNoBaseline = errors.New("previous price is zero")

// Coins is a price split into denominations. Gold, Silver and Copper are
// never negative; the sign lives in Negative.
type Coins struct {
	Gold     int64 `json:"gold"`
	Silver   int64 `json:"silver"`
	Copper   int64 `json:"copper"`
	Negative bool  `json:"negative,omitempty"`
}

// Decompose splits a copper amount into gold, silver and copper.
func Decompose(price int64) Coins {
	c := Coins{Negative: price < 0}
	abs := uint64(price)
	if c.Negative {
		abs = uint64(-(price + 1)) + 1
	}
	c.Gold = int64(abs / CopperPerGold)
	rest := abs % CopperPerGold
	c.Silver = int64(rest / CopperPerSilver)
	c.Copper = int64(rest % CopperPerSilver)
	return c
}

// Compose is the inverse of Decompose.
func Compose(c Coins) int64 {
	total := c.Gold*CopperPerGold + c.Silver*CopperPerSilver + c.Copper
	if c.Negative {
		return -total
	}
	return total
}

// Total returns the coins as a copper amount.
func (c Coins) Total() int64 { return Compose(c) }

// FormatOption tweaks Format.
type FormatOption func(*formatOptions)

type formatOptions struct {
	sign bool
	full bool
}

// WithoutSign drops the leading minus for negative amounts.
func WithoutSign() FormatOption {
	return func(o *formatOptions) { o.sign = false }
}

// WithAllDenominations prints zero denominations too.
func WithAllDenominations() FormatOption {
	return func(o *formatOptions) { o.full = true }
}

// Format renders a copper amount such as "12g 3s 40c". Zero denominations
// are omitted unless WithAllDenominations is set; zero renders as "0c".
func Format(price int64, opts ...FormatOption) string {
	o := formatOptions{sign: true}
	for _, opt := range opts {
		opt(&o)
	}

	c := Decompose(price)
	var parts []string
	if o.full || c.Gold > 0 {
		parts = append(parts, fmt.Sprintf("%dg", c.Gold))
	}
	if o.full || c.Silver > 0 {
		parts = append(parts, fmt.Sprintf("%ds", c.Silver))
	}
	if o.full || c.Copper > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dc", c.Copper))
	}

	s := strings.Join(parts, " ")
	if c.Negative && o.sign {
		s = "-" + s
	}
	return s
}

// FormatFull renders all three denominations, as chart axes do.
func FormatFull(price int64) string {
	return Format(price, WithAllDenominations())
}

// PercentDelta returns (current-previous)/previous*100 rounded to one decimal.
func PercentDelta(current, previous int64) (float64, error) {
	if previous == 0 {
		return 0, ErrNoBaseline
	}
	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*10) / 10, nil
}

// Trend is the direction of a price difference.
type Trend string

const (
	Up   Trend = "up"
	Down Trend = "down"
	Flat Trend = "flat"
)

// Direction classifies a difference.
func Direction(diff int64) Trend {
	switch {
	case diff > 0:
		return Up
	case diff < 0:
		return Down
	default:
		return Flat
	}
}
