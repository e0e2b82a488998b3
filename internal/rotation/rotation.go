// Package rotation computes the shotgun-start hole order of a round.
//
// A round starting at hole S visits S, S+1, ..., Holes, 1, ..., S-1: every
// hole exactly once, in circular ascending order.
package rotation

import "fmt"

// Holes is the number of holes on a course.
const Holes = 18

// Valid reports whether hole is a hole number on a course.
func Valid(hole int) bool {
	return hole >= 1 && hole <= Holes
}

func check(hole int) error {
	if !Valid(hole) {
		return fmt.Errorf("hole %d outside 1-%d", hole, Holes)
	}
	return nil
}

// Sequence returns the holes a round starting at start visits, in order.
func Sequence(start int) ([]int, error) {
	if err := check(start); err != nil {
		return nil, err
	}
	seq := make([]int, 0, Holes)
	for i := 0; i < Holes; i++ {
		seq = append(seq, (start-1+i)%Holes+1)
	}
	return seq, nil
}

// Position returns the zero-based index of hole within the sequence that
// starts at start.
func Position(start, hole int) (int, error) {
	if err := check(start); err != nil {
		return 0, err
	}
	if err := check(hole); err != nil {
		return 0, err
	}
	return (hole - start + Holes) % Holes, nil
}

// Last returns the final hole of the sequence that starts at start.
func Last(start int) (int, error) {
	if err := check(start); err != nil {
		return 0, err
	}
	return (start+Holes-2)%Holes + 1, nil
}

// Next returns the hole after current in the sequence that starts at start.
// ok is false when current is the last hole, which completes the round.
func Next(start, current int) (next int, ok bool, err error) {
	if _, err := Position(start, current); err != nil {
		return 0, false, err
	}
	last, err := Last(start)
	if err != nil {
		return 0, false, err
	}
	if current == last {
		return 0, false, nil
	}
	return current%Holes + 1, true, nil
}
