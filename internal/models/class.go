package models

import "time"

// Class describes one class owned by a professor. SessionCount is the
// sole source of truth for the current session id: zero means no session
// has ever been opened.
type Class struct {
	ID             int64     `json:"id"`
	Name           string    `json:"class_name"`
	ProfessorLabel string    `json:"professor_label"`
	ProfessorName  string    `json:"professor_name"`
	ProfessorCode  string    `json:"professor_code"`
	LedgerFile     string    `json:"file"`
	StartTime      time.Time `json:"start_time"`
	SessionCount   int64     `json:"session_count"`
}

// HasOpenSession reports whether attendance can currently be recorded.
func (c *Class) HasOpenSession() bool {
	return c.SessionCount > 0
}

// IsActiveSession reports whether the given session id is the class's
// current one. The check is explicit rather than inferred from ledger
// row order.
func (c *Class) IsActiveSession(sessionID int64) bool {
	return sessionID == c.SessionCount
}
