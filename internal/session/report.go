package session

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dash-soft/hanoi/internal/hanoi"
	"github.com/dash-soft/hanoi/internal/movelog"
)

// Summary is the end-of-run state
type Summary struct {
	ID         string
	TotalMoves int
	Final      map[hanoi.RodName][]int
}

// Summary returns the move total and the current rod contents
func (s *Session) Summary() Summary {
	final := make(map[hanoi.RodName][]int, 3)
	for _, r := range []*hanoi.Rod{s.Source, s.Auxiliary, s.Target} {
		final[r.Name()] = r.Disks()
	}
	return Summary{ID: s.ID, TotalMoves: s.moves, Final: final}
}

// Report prints the move total, the final rods and the move log to w.
// A log that cannot be read is reported on errw and only the replay is
// skipped.
func (s *Session) Report(w, errw io.Writer) {
	fmt.Fprintf(w, "\nTotal moves: %d\n", s.moves)

	fmt.Fprintln(w, "\nFinal State:")
	for _, r := range []*hanoi.Rod{s.Source, s.Auxiliary, s.Target} {
		fmt.Fprintln(w, FormatRod(r))
	}

	if err := movelog.Replay(s.opts.MoveLogPath, w); err != nil {
		fmt.Fprintf(errw, "Error opening %s: %v\n", s.opts.MoveLogPath, err)
	}
}

// FormatRod renders a rod as "Rod <name>: d1 d2 ..." bottom to top
func FormatRod(r *hanoi.Rod) string {
	disks := r.Disks()
	parts := make([]string, len(disks))
	for i, d := range disks {
		parts[i] = strconv.Itoa(d)
	}
	return strings.TrimRight(fmt.Sprintf("Rod %s: %s", r.Name(), strings.Join(parts, " ")), " ")
}
