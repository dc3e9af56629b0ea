package hanoi

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrIllegalMove is returned when a planned move would put a disk on a
// smaller one. It only happens when the planner is handed a placement
// that breaks its preconditions.
var ErrIllegalMove = errors.New("illegal move")

// Emitter receives each move as soon as the rods have been updated.
// Returning false stops the solve.
type Emitter func(Move) bool

// solver threads the move counter through the recursion
type solver struct {
	count   int
	emit    Emitter
	stopped bool
	err     error
}

// Solve moves the n top disks of source onto target using auxiliary as
// the free rod. It emits exactly 2^n - 1 moves in algorithmic order and
// returns how many moves were performed.
func Solve(n int, source, target, auxiliary *Rod, emit Emitter) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative disk count %d", n)
	}
	if source.Len() < n {
		return 0, fmt.Errorf("%s holds %d disks, need %d", source.Name(), source.Len(), n)
	}
	s := &solver{emit: emit}
	s.solve(n, source, target, auxiliary)
	return s.count, s.err
}

// Gather moves every disk on the three rods onto target with the fewest
// moves, starting from any legal placement. When all disks start on
// source the sequence is identical to Solve's.
func Gather(source, target, auxiliary *Rod, emit Emitter) (int, error) {
	rods := [3]*Rod{source, target, auxiliary}
	var sizes []int
	for _, r := range rods {
		sizes = append(sizes, r.disks...)
	}
	sort.Ints(sizes)

	s := &solver{emit: emit}
	s.gather(sizes, target, rods)
	return s.count, s.err
}

func (s *solver) solve(n int, from, to, via *Rod) {
	if n == 0 || s.stopped {
		return
	}
	s.solve(n-1, from, via, to)
	s.step(from, to)
	s.solve(n-1, via, to, from)
}

// gather places the disks in sizes (ascending) on to, largest first
func (s *solver) gather(sizes []int, to *Rod, rods [3]*Rod) {
	k := len(sizes)
	if k == 0 || s.stopped {
		return
	}
	from := locate(sizes[k-1], rods)
	if from == to {
		s.gather(sizes[:k-1], to, rods)
		return
	}
	spare := spareRod(from, to, rods)
	s.gather(sizes[:k-1], spare, rods)
	s.step(from, to)
	s.solve(k-1, spare, to, from)
}

func (s *solver) step(from, to *Rod) {
	if s.stopped {
		return
	}
	top, ok := from.Top()
	if !ok {
		s.fail(fmt.Errorf("move %d from %s: %w", s.count+1, from.Name(), ErrEmptyRod))
		return
	}
	if !to.Accepts(top) {
		s.fail(fmt.Errorf("move %d: disk %d onto %s: %w", s.count+1, top, to.Name(), ErrIllegalMove))
		return
	}

	m, err := from.MoveTopTo(to, s.count+1)
	if err != nil {
		s.fail(err)
		return
	}
	s.count++
	if s.emit != nil && !s.emit(m) {
		s.stopped = true
	}
}

func (s *solver) fail(err error) {
	s.err = err
	s.stopped = true
}

func locate(size int, rods [3]*Rod) *Rod {
	for _, r := range rods {
		if r.Contains(size) {
			return r
		}
	}
	return nil
}

func spareRod(a, b *Rod, rods [3]*Rod) *Rod {
	for _, r := range rods {
		if r != a && r != b {
			return r
		}
	}
	return nil
}

// GatherCount returns how many moves Gather will make from the current
// placement without moving anything.
func GatherCount(source, target, auxiliary *Rod) uint64 {
	rods := [3]*Rod{source, target, auxiliary}
	var sizes []int
	for _, r := range rods {
		sizes = append(sizes, r.disks...)
	}
	sort.Ints(sizes)

	var total uint64
	to := target
	for k := len(sizes); k > 0; k-- {
		from := locate(sizes[k-1], rods)
		if from == to {
			continue
		}
		// move disk k, then rebuild the k-1 tower on top of it
		total = addSaturating(total, addSaturating(MoveCount(k-1), 1))
		to = spareRod(from, to, rods)
	}
	return total
}

// addSaturating adds without wrapping; sums past the range stay at the maximum
func addSaturating(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
