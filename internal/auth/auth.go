// Package auth maps bearer tokens to principals and principals to the
// capabilities routes ask for.
package auth

import "golang.org/x/exp/slices"

type Role string

const (
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

type Capability string

const (
	ManageOfficers       Capability = "manage_officers"
	ManageConstituencies Capability = "manage_constituencies"
	ReviewApplications   Capability = "review_applications"
	ViewReports          Capability = "view_reports"

	SubmitApplications  Capability = "submit_applications"
	ConfirmCollection   Capability = "confirm_collection"
	ViewOwnApplications Capability = "view_own_applications"
)

var capabilities = map[Role][]Capability{
	RoleAdmin: {
		ManageOfficers,
		ManageConstituencies,
		ReviewApplications,
		ViewReports,
	},
	RoleOfficer: {
		SubmitApplications,
		ConfirmCollection,
		ViewOwnApplications,
	},
}

// Can reports whether the role is granted capability.
func (r Role) Can(capability Capability) bool {
	return slices.Contains(capabilities[r], capability)
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   int64
	Role Role
	// Status is the officer account status; admins have none.
	Status string

	// Constituency and Station are copied from the officer record.
	Constituency string
	Station      string
}

const officerApproved = "approved"

// Can applies the role table. Officers only hold their capabilities while
// their account is approved.
func (p *Principal) Can(capability Capability) bool {
	if p == nil {
		return false
	}
	if p.Role == RoleOfficer && p.Status != officerApproved {
		return false
	}
	return p.Role.Can(capability)
}

// IsApprovedOfficer reports whether p is an officer allowed to submit work.
func (p *Principal) IsApprovedOfficer() bool {
	return p != nil && p.Role == RoleOfficer && p.Status == officerApproved
}
