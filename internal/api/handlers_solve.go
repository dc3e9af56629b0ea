package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dash-soft/hanoi/internal/hanoi"
	"github.com/dash-soft/hanoi/internal/model"
)

// MaxSolveDisks caps GET /solve; 16 disks is 65535 moves.
const MaxSolveDisks = 16

// SolveHandler computes solutions without touching any saved state.
type SolveHandler struct {
	logger *slog.Logger
}

// NewSolveHandler creates a SolveHandler that logs each planned solve
func NewSolveHandler(logger *slog.Logger) *SolveHandler {
	return &SolveHandler{logger: logger}
}

// Solve handles GET /solve?disks=N
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("disks")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		h.reject(w, r, raw, "disks must be a non-negative integer")
		return
	}
	if n > MaxSolveDisks {
		h.reject(w, r, raw, "disks must be at most "+strconv.Itoa(MaxSolveDisks))
		return
	}

	source := hanoi.NewRod(hanoi.Source)
	for d := 1; d <= n; d++ {
		source.AddDisk(d)
	}

	resp := model.SolveResponse{
		Disks: n,
		Moves: make([]model.PlannedMove, 0, hanoi.MoveCount(n)),
	}
	total, err := hanoi.Solve(n, source, hanoi.NewRod(hanoi.Target), hanoi.NewRod(hanoi.Auxiliary), func(m hanoi.Move) bool {
		resp.Moves = append(resp.Moves, model.PlannedMove{
			Seq:  m.Seq,
			Disk: m.Disk,
			From: string(m.From),
			To:   string(m.To),
		})
		return true
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp.TotalMoves = total

	h.logger.Info("solve planned",
		"request_id", GetRequestID(r),
		"disks", n,
		"total_moves", total,
	)
	writeJSON(w, http.StatusOK, resp)
}

func (h *SolveHandler) reject(w http.ResponseWriter, r *http.Request, disks, reason string) {
	h.logger.Warn("solve rejected", "request_id", GetRequestID(r), "disks", disks, "reason", reason)
	writeError(w, http.StatusBadRequest, reason)
}
