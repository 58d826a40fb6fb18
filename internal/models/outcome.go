package models

// Outcome is the discriminated result of a recognition or ledger
// operation. Expected conditions surface as outcomes, never as errors.
type Outcome string

const (
	OutcomeRecorded      Outcome = "RECORDED"
	OutcomeAlreadyToday  Outcome = "ALREADY_TODAY"
	OutcomeNoOpenSession Outcome = "NO_OPEN_SESSION"
	OutcomeCooldown      Outcome = "COOLDOWN"
	OutcomeNotTrained    Outcome = "NOT_TRAINED"
	OutcomeNoFace        Outcome = "NO_FACE_DETECTED"
	OutcomeNotRecognized Outcome = "NOT_RECOGNIZED"
	OutcomeRoleMismatch  Outcome = "ROLE_MISMATCH"
	OutcomeSessionOpened Outcome = "SESSION_OPENED"
)

// Match is the result of nearest-template resolution.
type Match struct {
	Label      string  `json:"label"`
	Similarity float64 `json:"similarity"`
}

// CheckInResult is returned to callers of the student check-in flow.
type CheckInResult struct {
	Outcome    Outcome `json:"outcome"`
	ClassName  string  `json:"class_name,omitempty"`
	Name       string  `json:"name,omitempty"`
	Code       string  `json:"code,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// OpenClassResult is returned by the professor scan flow.
type OpenClassResult struct {
	Outcome    Outcome `json:"outcome"`
	ClassID    int64   `json:"class_id,omitempty"`
	ClassName  string  `json:"class_name,omitempty"`
	SessionID  int64   `json:"session_id,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}
