package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectflow/internal/common"
	"projectflow/internal/models"
)

type fixture struct {
	tenantA, tenantB uuid.UUID
	superAdmin       Identity
	adminA           Identity
	userA            Identity
	otherUserA       Identity
	adminB           Identity
}

func newFixture() fixture {
	a, b := uuid.New(), uuid.New()
	return fixture{
		tenantA:    a,
		tenantB:    b,
		superAdmin: Identity{UserID: uuid.New(), Role: models.RoleSuperAdmin},
		adminA:     Identity{UserID: uuid.New(), TenantID: &a, Role: models.RoleTenantAdmin},
		userA:      Identity{UserID: uuid.New(), TenantID: &a, Role: models.RoleUser},
		otherUserA: Identity{UserID: uuid.New(), TenantID: &a, Role: models.RoleUser},
		adminB:     Identity{UserID: uuid.New(), TenantID: &b, Role: models.RoleTenantAdmin},
	}
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, common.KindForbidden, common.KindOf(err))
}

func intPtr(i int) *int                  { return &i }
func strPtr(s string) *string            { return &s }
func rolePtr(r models.Role) *models.Role { return &r }
func boolPtr(b bool) *bool               { return &b }

func TestTenantPolicies(t *testing.T) {
	f := newFixture()

	assert.NoError(t, CanListTenants(f.superAdmin))
	assertForbidden(t, CanListTenants(f.adminA))
	assertForbidden(t, CanListTenants(f.userA))

	assert.NoError(t, CanReadTenant(f.superAdmin, f.tenantB))
	assert.NoError(t, CanReadTenant(f.userA, f.tenantA))
	assertForbidden(t, CanReadTenant(f.userA, f.tenantB))
	assertForbidden(t, CanReadTenant(f.adminB, f.tenantA))
}

func TestCanUpdateTenant(t *testing.T) {
	f := newFixture()
	rename := models.TenantUpdate{Name: strPtr("Acme Two")}
	renameAndGrow := models.TenantUpdate{Name: strPtr("Acme Two"), MaxUsers: intPtr(50)}

	tests := []struct {
		name    string
		id      Identity
		tenant  uuid.UUID
		change  models.TenantUpdate
		allowed bool
	}{
		{name: "tenant admin renames own tenant", id: f.adminA, tenant: f.tenantA, change: rename, allowed: true},
		{name: "tenant admin cannot raise limits", id: f.adminA, tenant: f.tenantA, change: renameAndGrow},
		{name: "tenant admin cannot change plan", id: f.adminA, tenant: f.tenantA, change: models.TenantUpdate{SubscriptionPlan: strPtr("pro")}},
		{name: "tenant admin cannot change status", id: f.adminA, tenant: f.tenantA, change: models.TenantUpdate{Status: strPtr("suspended")}},
		{name: "tenant admin of other tenant", id: f.adminB, tenant: f.tenantA, change: rename},
		{name: "plain user cannot rename", id: f.userA, tenant: f.tenantA, change: rename},
		{name: "super admin changes everything", id: f.superAdmin, tenant: f.tenantB, change: renameAndGrow, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanUpdateTenant(tt.id, tt.tenant, tt.change)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assertForbidden(t, err)
			}
		})
	}
}

func TestCanCreateTenantUser(t *testing.T) {
	f := newFixture()

	assert.NoError(t, CanCreateTenantUser(f.adminA, f.tenantA, models.RoleUser))
	assert.NoError(t, CanCreateTenantUser(f.adminA, f.tenantA, models.RoleTenantAdmin))
	assertForbidden(t, CanCreateTenantUser(f.adminA, f.tenantA, models.RoleSuperAdmin))
	assertForbidden(t, CanCreateTenantUser(f.adminB, f.tenantA, models.RoleUser))
	assertForbidden(t, CanCreateTenantUser(f.userA, f.tenantA, models.RoleUser))
	assertForbidden(t, CanCreateTenantUser(f.superAdmin, f.tenantA, models.RoleUser))
}

func TestCanUpdateUser(t *testing.T) {
	f := newFixture()
	target := &models.User{ID: f.userA.UserID, TenantID: &f.tenantA, Role: models.RoleUser}

	assert.NoError(t, CanUpdateUser(f.userA, target, models.UserUpdate{FullName: strPtr("New Name")}))
	assertForbidden(t, CanUpdateUser(f.userA, target, models.UserUpdate{Role: rolePtr(models.RoleTenantAdmin)}))
	assertForbidden(t, CanUpdateUser(f.userA, target, models.UserUpdate{IsActive: boolPtr(false)}))
	assertForbidden(t, CanUpdateUser(f.otherUserA, target, models.UserUpdate{FullName: strPtr("Hijack")}))

	assert.NoError(t, CanUpdateUser(f.adminA, target, models.UserUpdate{Role: rolePtr(models.RoleTenantAdmin), IsActive: boolPtr(false)}))
	assertForbidden(t, CanUpdateUser(f.adminA, target, models.UserUpdate{Role: rolePtr(models.RoleSuperAdmin)}))
	assertForbidden(t, CanUpdateUser(f.adminB, target, models.UserUpdate{FullName: strPtr("x")}))
	assertForbidden(t, CanUpdateUser(f.superAdmin, target, models.UserUpdate{FullName: strPtr("x")}))
}

func TestCanDeleteUser(t *testing.T) {
	f := newFixture()

	err := CanDeleteUser(f.adminA, f.adminA.UserID)
	assertForbidden(t, err)
	assert.Equal(t, "Cannot delete yourself", err.Error())
	// repeated attempts get the same answer
	assert.Equal(t, err, CanDeleteUser(f.adminA, f.adminA.UserID))

	assert.NoError(t, CanDeleteUser(f.adminA, f.userA.UserID))
	assertForbidden(t, CanDeleteUser(f.userA, f.otherUserA.UserID))
	assertForbidden(t, CanDeleteUser(f.superAdmin, f.userA.UserID))

	assert.NoError(t, RequireSameTenant(f.adminA, f.tenantA))
	assertForbidden(t, RequireSameTenant(f.adminB, f.tenantA))
}

func TestProjectPolicies(t *testing.T) {
	f := newFixture()
	creator := f.userA.UserID
	project := &models.Project{ID: uuid.New(), TenantID: f.tenantA, CreatedBy: &creator}

	assertForbidden(t, CanAccessProjects(f.superAdmin))
	assert.NoError(t, CanAccessProjects(f.userA))

	assert.NoError(t, CanReadProject(f.otherUserA, project))
	assertForbidden(t, CanReadProject(f.adminB, project))
	assertForbidden(t, CanReadProject(f.superAdmin, project))

	assert.NoError(t, CanModifyProject(f.userA, project))
	assert.NoError(t, CanModifyProject(f.adminA, project))
	assertForbidden(t, CanModifyProject(f.otherUserA, project))
	assertForbidden(t, CanModifyProject(f.adminB, project))

	orphan := &models.Project{ID: uuid.New(), TenantID: f.tenantA}
	assertForbidden(t, CanModifyProject(f.userA, orphan))
	assert.NoError(t, CanModifyProject(f.adminA, orphan))
}

func TestTaskPolicies(t *testing.T) {
	f := newFixture()
	projectOwner := f.otherUserA.UserID
	project := &models.Project{ID: uuid.New(), TenantID: f.tenantA, CreatedBy: &projectOwner}

	creator := uuid.New()
	assignee := f.userA.UserID
	task := &models.Task{ID: uuid.New(), ProjectID: project.ID, TenantID: f.tenantA, CreatedBy: &creator, AssignedTo: &assignee}

	assert.NoError(t, CanModifyTask(f.adminA, task, project))
	assert.NoError(t, CanModifyTask(f.otherUserA, task, project))
	assertForbidden(t, CanModifyTask(f.userA, task, project))
	assertForbidden(t, CanModifyTask(f.otherUserA, task, nil))
	assertForbidden(t, CanModifyTask(f.adminB, task, project))
	assertForbidden(t, CanModifyTask(f.superAdmin, task, project))

	assert.NoError(t, CanUpdateTaskStatus(f.userA, task, project))
	assertForbidden(t, CanUpdateTaskStatus(f.adminB, task, project))

	task.AssignedTo = nil
	assertForbidden(t, CanUpdateTaskStatus(f.userA, task, project))
}
