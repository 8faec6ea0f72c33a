package screening

import (
	"fmt"
	"strings"
)

// Role is the advisory actor role selected at login.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// ParseRole accepts patient, doctor, or empty.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	default:
		return "", fmt.Errorf("unknown role %q (expected patient or doctor)", raw)
	}
}

// AuthContext is the explicit actor identity threaded through a session.
//
// Role checks against it are advisory only.
type AuthContext struct {
	Role      Role
	PatientID string
	Name      string
}

// Anonymous reports whether no identity is known.
func (a AuthContext) Anonymous() bool {
	return strings.TrimSpace(a.PatientID) == ""
}

// Is reports whether the context carries role r.
func (a AuthContext) Is(r Role) bool {
	return a.Role == r
}
