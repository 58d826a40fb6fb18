package models

import "strings"

// Role distinguishes professors from students. It is decided once, when
// a label is constructed or first loaded, and stored on the identity
// record; downstream code never re-parses label prefixes.
type Role string

const (
	RoleProfessor Role = "PROFESSOR"
	RoleStudent   Role = "STUDENT"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleProfessor || r == RoleStudent
}

const professorPrefix = "prof_"

// NewStudentLabel builds the canonical label for a student.
func NewStudentLabel(code, name string) string {
	return code + "_" + name
}

// NewProfessorLabel builds the canonical label for a professor.
func NewProfessorLabel(code, name string) string {
	return professorPrefix + code + "_" + name
}

// ParseLabel splits a label into display code, display name and role.
// The prof_ prefix is the sole role discriminator. Labels without an
// underscore use the whole label for both fields, mirroring how legacy
// records were keyed.
func ParseLabel(label string) (code, name string, role Role) {
	role = RoleStudent
	rest := label
	if strings.HasPrefix(label, professorPrefix) {
		role = RoleProfessor
		rest = strings.TrimPrefix(label, professorPrefix)
	}
	if idx := strings.Index(rest, "_"); idx >= 0 {
		return rest[:idx], rest[idx+1:], role
	}
	return rest, rest, role
}

// Identity is the durable record for one enrolled person.
type Identity struct {
	ID    int64  `json:"id"`
	Label string `json:"-"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Role  Role   `json:"role"`
}
