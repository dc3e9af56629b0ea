package model

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status       string       `json:"status"`
	DB           ServiceCheck `json:"db"`
	SessionCount int          `json:"sessionCount"`
}

type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// PlannedMove is one step of a computed solution
type PlannedMove struct {
	Seq  int    `json:"seq"`
	Disk int    `json:"disk"`
	From string `json:"from"`
	To   string `json:"to"`
}

// SolveResponse is returned from GET /solve.
type SolveResponse struct {
	Disks      int           `json:"disks"`
	TotalMoves int           `json:"totalMoves"`
	Moves      []PlannedMove `json:"moves"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
}
