package hanoi

import (
	"fmt"
	"strings"
)

// RodName identifies one of the three rods
type RodName string

const (
	Source    RodName = "Source"
	Target    RodName = "Target"
	Auxiliary RodName = "Auxiliary"
)

// RodNames returns the rods in display order
func RodNames() []RodName {
	return []RodName{Source, Auxiliary, Target}
}

// ParseRodChoice maps user input to a rod. It accepts a single letter
// (S, A, T) or a full rod name, case-insensitively.
func ParseRodChoice(input string) (RodName, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "s", "source":
		return Source, true
	case "a", "auxiliary", "aux":
		return Auxiliary, true
	case "t", "target":
		return Target, true
	default:
		return "", false
	}
}

// Move records a single disk relocation
type Move struct {
	Seq  int     `json:"seq"`
	Disk int     `json:"disk"`
	From RodName `json:"from"`
	To   RodName `json:"to"`
}

// String renders the move the way it appears in the move log
func (m Move) String() string {
	return fmt.Sprintf("Moved disk %d from %s to %s", m.Disk, m.From, m.To)
}

// MoveCount returns the minimal number of moves for n disks (2^n - 1).
// Counts beyond 63 disks saturate.
func MoveCount(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}
