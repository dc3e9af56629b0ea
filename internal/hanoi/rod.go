package hanoi

import (
	"errors"
	"sort"
)

// ErrEmptyRod is returned when moving from a rod with no disks
var ErrEmptyRod = errors.New("rod is empty")

// Rod is a named stack of disks. Disks are kept sorted from largest
// (bottom) to smallest (top).
type Rod struct {
	name  RodName
	disks []int
}

// NewRod creates an empty rod
func NewRod(name RodName) *Rod {
	return &Rod{name: name}
}

// Name returns the rod identifier
func (r *Rod) Name() RodName {
	return r.name
}

// AddDisk places a disk on the rod and re-sorts so the rod stays
// descending bottom-to-top. It does not reject a disk larger than the
// current top; the planner never produces one.
func (r *Rod) AddDisk(size int) {
	r.disks = append(r.disks, size)
	sort.Sort(sort.Reverse(sort.IntSlice(r.disks)))
}

// Top returns the smallest disk on the rod, or false if the rod is empty
func (r *Rod) Top() (int, bool) {
	if len(r.disks) == 0 {
		return 0, false
	}
	return r.disks[len(r.disks)-1], true
}

// Accepts reports whether size could legally be placed on this rod
func (r *Rod) Accepts(size int) bool {
	top, ok := r.Top()
	return !ok || top > size
}

// MoveTopTo moves the top disk onto other and returns the move event
// stamped with seq.
func (r *Rod) MoveTopTo(other *Rod, seq int) (Move, error) {
	top, ok := r.Top()
	if !ok {
		return Move{}, ErrEmptyRod
	}
	r.disks = r.disks[:len(r.disks)-1]
	other.AddDisk(top)
	return Move{Seq: seq, Disk: top, From: r.name, To: other.name}, nil
}

// Disks returns a copy of the rod contents, bottom to top
func (r *Rod) Disks() []int {
	out := make([]int, len(r.disks))
	copy(out, r.disks)
	return out
}

// Len returns the number of disks on the rod
func (r *Rod) Len() int {
	return len(r.disks)
}

// Contains reports whether the disk is on this rod
func (r *Rod) Contains(size int) bool {
	for _, d := range r.disks {
		if d == size {
			return true
		}
	}
	return false
}

// Reset removes all disks
func (r *Rod) Reset() {
	r.disks = nil
}
