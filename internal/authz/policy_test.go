package authz

import (
	"testing"

	"github.com/campuslink/campus-service/internal/models"
)

func activeUser(role models.UserRole) *models.User {
	return &models.User{ID: "u-" + string(role), Role: role, Status: models.AccountActive}
}

func TestCan_RoleTable(t *testing.T) {
	tests := []struct {
		name     string
		caller   *models.User
		isOwner  bool
		resource Resource
		action   Action
		want     bool
	}{
		// Grievances
		{"StudentCreatesGrievance", activeUser(models.RoleStudent), false, ResourceGrievance, ActionCreate, true},
		{"FacultyCannotCreateGrievance", activeUser(models.RoleFaculty), false, ResourceGrievance, ActionCreate, false},
		{"OwnerReadsOwnGrievance", activeUser(models.RoleStudent), true, ResourceGrievance, ActionRead, true},
		{"StudentCannotReadOthersGrievance", activeUser(models.RoleStudent), false, ResourceGrievance, ActionRead, false},
		{"AuthorityListsGrievances", activeUser(models.RoleAuthority), false, ResourceGrievance, ActionReadAll, true},
		{"StudentCannotListGrievances", activeUser(models.RoleStudent), false, ResourceGrievance, ActionReadAll, false},
		{"AuthorityTransitionsStatus", activeUser(models.RoleAuthority), false, ResourceGrievance, ActionUpdateStatus, true},
		{"OwnerCannotTransitionOwnStatus", activeUser(models.RoleStudent), true, ResourceGrievance, ActionUpdateStatus, false},

		// Postings
		{"FacultyPostsOpportunity", activeUser(models.RoleFaculty), false, ResourceOpportunity, ActionCreate, true},
		{"StudentCannotPostOpportunity", activeUser(models.RoleStudent), false, ResourceOpportunity, ActionCreate, false},
		{"PosterEditsOwnInternship", activeUser(models.RoleFaculty), true, ResourceInternship, ActionUpdate, true},
		{"FacultyCannotEditOthersInternship", activeUser(models.RoleFaculty), false, ResourceInternship, ActionUpdate, false},
		{"AdminEditsAnyOpportunity", activeUser(models.RoleAdmin), false, ResourceOpportunity, ActionUpdate, true},

		// Applications
		{"StudentApplies", activeUser(models.RoleStudent), false, ResourceApplication, ActionCreate, true},
		{"FacultyCannotApply", activeUser(models.RoleFaculty), false, ResourceApplication, ActionCreate, false},
		{"PostingOwnerReviewsApplications", activeUser(models.RoleFaculty), true, ResourceApplication, ActionUpdateStatus, true},

		// Lost & found
		{"AnyRoleClaims", activeUser(models.RoleStudent), false, ResourceLostFound, ActionClaim, true},
		{"OwnerUpdatesOwnItem", activeUser(models.RoleStudent), true, ResourceLostFound, ActionUpdate, true},
		{"NonOwnerCannotUpdateItem", activeUser(models.RoleAuthority), false, ResourceLostFound, ActionUpdate, false},

		// Governance
		{"AdminListsUsers", activeUser(models.RoleAdmin), false, ResourceUser, ActionReadAll, true},
		{"AuthorityCannotListUsers", activeUser(models.RoleAuthority), false, ResourceUser, ActionReadAll, false},
		{"AdminManagesDomains", activeUser(models.RoleAdmin), false, ResourceDomain, ActionCreate, true},
		{"AuthorityCannotManageDomains", activeUser(models.RoleAuthority), false, ResourceDomain, ActionCreate, false},

		// Unknown rows deny
		{"UnknownActionDenied", activeUser(models.RoleAdmin), false, ResourceDomain, ActionClaim, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.caller, tt.isOwner, tt.resource, tt.action); got != tt.want {
				t.Errorf("Can(%s, owner=%v, %s, %s) = %v, want %v",
					tt.caller.Role, tt.isOwner, tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestCan_BlockedCallerAlwaysDenied(t *testing.T) {
	blocked := &models.User{ID: "blocked-admin", Role: models.RoleAdmin, Status: models.AccountBlocked}

	if Can(blocked, false, ResourceUser, ActionReadAll) {
		t.Error("blocked admin should be denied on role path")
	}
	if Can(blocked, true, ResourceGrievance, ActionRead) {
		t.Error("blocked owner should be denied on ownership path")
	}
	if Can(nil, true, ResourceGrievance, ActionRead) {
		t.Error("nil caller should be denied")
	}
}

func TestAllowedRoles(t *testing.T) {
	roles := AllowedRoles(ResourceGrievance, ActionUpdateStatus)
	if len(roles) != 2 {
		t.Fatalf("Expected 2 roles, got %v", roles)
	}
	if roles[0] != models.RoleAuthority || roles[1] != models.RoleAdmin {
		t.Errorf("Unexpected roles %v", roles)
	}

	if AllowedRoles(ResourceGrievance, ActionClaim) != nil {
		t.Error("missing row should return nil")
	}
}
