package domain

import "fmt"

// OpenEnded is the upper bound of a PositionRange that extends to the last record.
const OpenEnded = -1

// PositionRange is an inclusive range of positions within one container.
// A range whose To is OpenEnded covers every position from From onwards.
type PositionRange struct {
	From int
	To   int
}

// RangeFrom returns the open-ended range [from, last].
func RangeFrom(from int) PositionRange {
	return PositionRange{From: from, To: OpenEnded}
}

// RangeBetween returns the bounded range [from, to].
func RangeBetween(from, to int) PositionRange {
	return PositionRange{From: from, To: to}
}

// IsOpen reports whether the range has no upper bound.
func (r PositionRange) IsOpen() bool {
	return r.To == OpenEnded
}

// Contains reports whether position p lies within the range.
func (r PositionRange) Contains(p int) bool {
	if p < r.From {
		return false
	}
	return r.IsOpen() || p <= r.To
}

// Validate rejects negative starts and bounded ranges that end before they begin.
func (r PositionRange) Validate() error {
	if r.From < 0 {
		return fmt.Errorf("%w: from %d is negative", ErrInvalidRange, r.From)
	}
	if !r.IsOpen() && r.To < r.From {
		return fmt.Errorf("%w: to %d precedes from %d", ErrInvalidRange, r.To, r.From)
	}
	return nil
}

func (r PositionRange) String() string {
	if r.IsOpen() {
		return fmt.Sprintf("[%d,end]", r.From)
	}
	return fmt.Sprintf("[%d,%d]", r.From, r.To)
}
