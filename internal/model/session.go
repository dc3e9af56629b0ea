package model

// SessionStatus represents how a solve session ended
type SessionStatus string

const (
	SessionStatusRunning     SessionStatus = "running"
	SessionStatusSolved      SessionStatus = "solved"
	SessionStatusInterrupted SessionStatus = "interrupted"
	SessionStatusFailed      SessionStatus = "failed"
)

// SessionRecord is one row of solve history
type SessionRecord struct {
	ID          string           `json:"id"`
	StartedAt   int64            `json:"startedAt"`
	FinishedAt  *int64           `json:"finishedAt,omitempty"`
	NumDisks    int              `json:"numDisks"`
	ThreadLimit int              `json:"threadLimit"`
	Restored    bool             `json:"restored"`
	Status      SessionStatus    `json:"status"`
	TotalMoves  int              `json:"totalMoves"`
	Final       map[string][]int `json:"final,omitempty"`
}

// StatusIcon returns the icon for the session status
func (s SessionRecord) StatusIcon() string {
	switch s.Status {
	case SessionStatusRunning:
		return "●"
	case SessionStatusSolved:
		return "✓"
	case SessionStatusInterrupted:
		return "⊖"
	case SessionStatusFailed:
		return "⊘"
	default:
		return "○"
	}
}
