package auth

import (
	"github.com/pkg/errors"

	clienterrors "github.com/campushq/go-placement-client/internal/errors"
)

// RoleType is the backend's role_type discriminator.
type RoleType string

const (
	RoleStudent          RoleType = "Student"
	RoleAlumni           RoleType = "Alumni"
	RoleCompany          RoleType = "Company"
	RoleDean             RoleType = "Dean"
	RoleManagement       RoleType = "Management"
	RoleAdmissionOffice  RoleType = "Admission_Office"
	RoleParents          RoleType = "Parents"
	RolePlacementOfficer RoleType = "Placement_Officer"
)

var landingPaths = map[RoleType]string{
	RoleStudent:          "/student/dashboard",
	RoleAlumni:           "/alumni/dashboard",
	RoleCompany:          "/company/dashboard",
	RoleDean:             "/dean/dashboard",
	RoleManagement:       "/management/dashboard",
	RoleAdmissionOffice:  "/management/dashboard",
	RoleParents:          "/parents/dashboard",
	RolePlacementOfficer: "/placement-officer/dashboard",
}

// LandingPath maps a role to its dashboard path. An unrecognized role
// is a hard error, not a silent default.
func LandingPath(role RoleType) (string, error) {
	path, ok := landingPaths[role]
	if !ok {
		return "", errors.Wrapf(clienterrors.ErrUnknownRole, "%q", role)
	}
	return path, nil
}
