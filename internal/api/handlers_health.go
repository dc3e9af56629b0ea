package api

import (
	"net/http"

	"github.com/dash-soft/hanoi/internal/history"
	"github.com/dash-soft/hanoi/internal/model"
)

type HealthHandler struct {
	db *history.DB
}

func NewHealthHandler(db *history.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := model.HealthResponse{
		Status: "ok",
	}

	switch {
	case h.db == nil:
		resp.DB = model.ServiceCheck{Status: "disabled"}
	default:
		count, err := h.db.SessionCount()
		if err != nil {
			resp.DB = model.ServiceCheck{Status: "error", Message: err.Error()}
			resp.Status = "degraded"
		} else {
			resp.DB = model.ServiceCheck{Status: "ok"}
			resp.SessionCount = count
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
