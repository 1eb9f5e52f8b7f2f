// Package authz holds the capability table: one explicit mapping from
// (resource, action) to the set of roles allowed to invoke it plus an
// ownership flag, evaluated through a single entry point instead of
// role switches scattered through the services.
package authz

import (
	"github.com/campuslink/campus-service/internal/models"
)

type Resource string

const (
	ResourceGrievance     Resource = "grievance"
	ResourceOpportunity   Resource = "opportunity"
	ResourceInternship    Resource = "internship"
	ResourceApplication   Resource = "application"
	ResourceCourse        Resource = "course"
	ResourceCourseItem    Resource = "resource"
	ResourceAcademicEvent Resource = "academic_event"
	ResourceLostFound     Resource = "lostfound"
	ResourceUser          Resource = "user"
	ResourceDomain        Resource = "domain"
)

type Action string

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionReadAll      Action = "read_all"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "update_status"
	ActionDelete       Action = "delete"
	ActionClaim        Action = "claim"
)

// rule is one capability-table row. Roles is the static allow set;
// Owner additionally authorizes the record owner regardless of role.
// The two paths are OR'd: an admin who owns a record passes either way.
type rule struct {
	Roles []models.UserRole
	Owner bool
}

var (
	overseers = []models.UserRole{models.RoleAuthority, models.RoleAdmin}
	posters   = []models.UserRole{models.RoleFaculty, models.RoleAuthority, models.RoleAdmin}
	adminOnly = []models.UserRole{models.RoleAdmin}
	anyRole   = []models.UserRole{models.RoleStudent, models.RoleFaculty, models.RoleAuthority, models.RoleAdmin}
)

// policy reproduces the ownership rule table. Keep rows in sync with
// the route guards in internal/handlers.
var policy = map[Resource]map[Action]rule{
	ResourceGrievance: {
		ActionCreate:       {Roles: []models.UserRole{models.RoleStudent}},
		ActionRead:         {Roles: overseers, Owner: true},
		ActionReadAll:      {Roles: overseers},
		ActionUpdate:       {Owner: true}, // content fields only, never status
		ActionUpdateStatus: {Roles: overseers},
		ActionDelete:       {Roles: overseers},
	},
	ResourceOpportunity: {
		ActionCreate: {Roles: posters},
		ActionRead:   {Roles: anyRole},
		ActionUpdate: {Roles: adminOnly, Owner: true},
		ActionDelete: {Roles: adminOnly, Owner: true},
	},
	ResourceInternship: {
		ActionCreate: {Roles: posters},
		ActionRead:   {Roles: anyRole},
		ActionUpdate: {Roles: adminOnly, Owner: true},
		ActionDelete: {Roles: adminOnly, Owner: true},
	},
	ResourceApplication: {
		ActionCreate: {Roles: []models.UserRole{models.RoleStudent}},
		ActionRead:   {Owner: true}, // student reads own; parent owner via ReadAll
		// ReadAll and UpdateStatus require the parent posting's owner,
		// checked by the application service; admin passes on role.
		ActionReadAll:      {Roles: adminOnly, Owner: true},
		ActionUpdateStatus: {Roles: adminOnly, Owner: true},
	},
	ResourceCourse: {
		ActionCreate: {Roles: posters},
		ActionRead:   {Roles: anyRole},
		ActionUpdate: {Roles: overseers, Owner: true}, // authority may manage courses
		ActionDelete: {Roles: overseers, Owner: true},
	},
	ResourceCourseItem: {
		// Creation gated on parent-course ownership by the academic
		// service; the row covers the role component.
		ActionCreate: {Roles: overseers, Owner: true},
		ActionRead:   {Roles: anyRole},
		ActionUpdate: {Roles: overseers, Owner: true},
		ActionDelete: {Roles: overseers, Owner: true},
	},
	ResourceAcademicEvent: {
		ActionCreate: {Roles: posters},
		ActionRead:   {Roles: anyRole},
		ActionUpdate: {Roles: overseers, Owner: true},
		ActionDelete: {Roles: overseers, Owner: true},
	},
	ResourceLostFound: {
		ActionCreate: {Roles: anyRole},
		ActionRead:   {Roles: anyRole},
		ActionUpdate: {Roles: adminOnly, Owner: true},
		ActionDelete: {Roles: adminOnly, Owner: true},
		ActionClaim:  {Roles: anyRole}, // non-owner constraint checked per record
	},
	ResourceUser: {
		ActionRead:         {Roles: overseers, Owner: true},
		ActionReadAll:      {Roles: adminOnly},
		ActionUpdate:       {Owner: true}, // own profile; role changes go through UpdateStatus
		ActionUpdateStatus: {Roles: adminOnly},
		ActionDelete:       {Roles: adminOnly},
	},
	ResourceDomain: {
		ActionCreate:  {Roles: adminOnly},
		ActionReadAll: {Roles: adminOnly},
		ActionUpdate:  {Roles: adminOnly},
		ActionDelete:  {Roles: adminOnly},
	},
}

// Can is the single policy-check entry point. A blocked caller is
// denied before the role test so a blocked admin keeps no capability.
func Can(caller *models.User, isOwner bool, resource Resource, action Action) bool {
	if caller == nil || caller.IsBlocked() {
		return false
	}

	actions, ok := policy[resource]
	if !ok {
		return false
	}
	r, ok := actions[action]
	if !ok {
		return false
	}

	if r.Owner && isOwner {
		return true
	}
	for _, role := range r.Roles {
		if caller.Role == role {
			return true
		}
	}
	return false
}

// AllowedRoles exposes a row's role set for route-guard wiring.
func AllowedRoles(resource Resource, action Action) []models.UserRole {
	if actions, ok := policy[resource]; ok {
		if r, ok := actions[action]; ok {
			return append([]models.UserRole(nil), r.Roles...)
		}
	}
	return nil
}
