package models

import "time"

// Ledger is the durable per-class store. Its four sections mirror the
// sheets of the workbook it replaces: meta, roster, sessions and the
// derived summary.
type Ledger struct {
	Meta     LedgerMeta   `json:"meta"`
	Roster   []RosterRow  `json:"roster"`
	Sessions []SessionRow `json:"sessions"`
	Summary  []SummaryRow `json:"summary,omitempty"`
}

// LedgerMeta duplicates the owning class record inside the ledger so the
// file remains self-describing when exported or archived.
type LedgerMeta struct {
	ClassID        int64     `json:"class_id"`
	ClassName      string    `json:"class_name"`
	ProfessorLabel string    `json:"professor_label"`
	ProfessorName  string    `json:"professor_name"`
	ProfessorCode  string    `json:"professor_code"`
	StartTime      time.Time `json:"start_time"`
	SessionCount   int64     `json:"session_count"`
}

// RosterRow tracks one enrolled identity and its running present count.
type RosterRow struct {
	IdentityID   int64  `json:"identity_id"`
	Label        string `json:"face_label"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	TotalPresent int64  `json:"total_present"`
}

// SessionRow is one row of the sessions section. Session-open rows carry
// a zero identity; attendance rows carry the full identity.
type SessionRow struct {
	SessionID  int64     `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	IdentityID int64     `json:"identity_id,omitempty"`
	Label      string    `json:"face_label,omitempty"`
	Name       string    `json:"name,omitempty"`
	Code       string    `json:"code,omitempty"`
}

// IsOpenMarker reports whether the row records a session-open event
// rather than an attendance entry.
func (r SessionRow) IsOpenMarker() bool {
	return r.IdentityID == 0
}

// SummaryRow is one derived row of the rebuildable summary section.
type SummaryRow struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	Date          string `json:"date"`
	Present       int64  `json:"present"`
	Absent        int64  `json:"absent"`
	TotalSessions int64  `json:"total_sessions"`
}

// SessionSummary is the live view of the current session returned by the
// summary endpoint.
type SessionSummary struct {
	TotalEnrolled int64          `json:"total_enrolled"`
	TotalPresent  int64          `json:"total_present"`
	TotalAbsent   int64          `json:"total_absent"`
	Present       []PresentEntry `json:"present"`
}

// PresentEntry identifies one identity seen in the current session.
type PresentEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
