package authz

import (
	"github.com/google/uuid"

	"projectflow/internal/common"
	"projectflow/internal/models"
)

var (
	errAccessDenied        = common.ForbiddenError("Access denied")
	errSuperAdminRequired  = common.ForbiddenError("Super admin access required")
	errTenantAdminRequired = common.ForbiddenError("Tenant admin access required")
	errRestrictedFields    = common.ForbiddenError("Only super admin can change status, plan or limits")
	errOperatorNoWorkspace = common.ForbiddenError("Super admin cannot access tenant workspaces")
	errSuperAdminRole      = common.ForbiddenError("Cannot assign super_admin role")
	errDeleteSelf          = common.ForbiddenError("Cannot delete yourself")
	errNotOwner            = common.ForbiddenError("Only the creator or a tenant admin can modify this resource")
	errUserFieldsAdminOnly = common.ForbiddenError("Only tenant admins can change role or status")
)

// CanListTenants restricts the tenant registry to the operator.
func CanListTenants(id Identity) error {
	if !id.IsSuperAdmin() {
		return errSuperAdminRequired
	}
	return nil
}

// CanReadTenant allows the tenant's own members and the operator.
func CanReadTenant(id Identity, tenantID uuid.UUID) error {
	if id.IsSuperAdmin() || id.InTenant(tenantID) {
		return nil
	}
	return errAccessDenied
}

// CanUpdateTenant applies the field-level tenant policy. A tenant admin may
// rename its own tenant; status, plan and limits belong to the operator. A
// request touching any restricted field is refused as a whole.
func CanUpdateTenant(id Identity, tenantID uuid.UUID, change models.TenantUpdate) error {
	if id.IsSuperAdmin() {
		return nil
	}
	if !id.InTenant(tenantID) {
		return errAccessDenied
	}
	if !id.IsTenantAdmin() {
		return errTenantAdminRequired
	}
	if change.Status != nil || change.SubscriptionPlan != nil || change.MaxUsers != nil || change.MaxProjects != nil {
		return errRestrictedFields
	}
	return nil
}

// CanCreateTenantUser requires a tenant admin of exactly tenantID. The new
// account's role can never be super_admin.
func CanCreateTenantUser(id Identity, tenantID uuid.UUID, role models.Role) error {
	if !id.InTenant(tenantID) {
		return errAccessDenied
	}
	if !id.IsTenantAdmin() {
		return errTenantAdminRequired
	}
	if !role.TenantScoped() {
		return errSuperAdminRole
	}
	return nil
}

// CanListTenantUsers follows tenant read access.
func CanListTenantUsers(id Identity, tenantID uuid.UUID) error {
	return CanReadTenant(id, tenantID)
}

// CanUpdateUser lets members edit their own name and tenant admins edit
// anyone in their tenant, including role and activation.
func CanUpdateUser(id Identity, target *models.User, change models.UserUpdate) error {
	if target.TenantID == nil || !id.InTenant(*target.TenantID) {
		return errAccessDenied
	}
	if change.Role != nil && !change.Role.TenantScoped() {
		return errSuperAdminRole
	}
	if id.IsTenantAdmin() {
		return nil
	}
	if id.UserID != target.ID {
		return errAccessDenied
	}
	if change.TouchesPrivilegedFields() {
		return errUserFieldsAdminOnly
	}
	return nil
}

// CanDeleteUser is checked before the target is loaded: self-deletion is
// refused for every role.
func CanDeleteUser(id Identity, targetID uuid.UUID) error {
	if id.UserID == targetID {
		return errDeleteSelf
	}
	if !id.IsTenantAdmin() {
		return errTenantAdminRequired
	}
	return nil
}

// RequireSameTenant is the post-fetch tenant equality check.
func RequireSameTenant(id Identity, tenantID uuid.UUID) error {
	if !id.InTenant(tenantID) {
		return errAccessDenied
	}
	return nil
}

// CanAccessProjects gates every project and task operation. The operator
// role has no workspace access.
func CanAccessProjects(id Identity) error {
	if id.IsSuperAdmin() || id.TenantID == nil {
		return errOperatorNoWorkspace
	}
	return nil
}

// CanReadProject allows any workspace member of the project's tenant.
func CanReadProject(id Identity, project *models.Project) error {
	if err := CanAccessProjects(id); err != nil {
		return err
	}
	return RequireSameTenant(id, project.TenantID)
}

// CanModifyProject allows the project's creator and tenant admins.
func CanModifyProject(id Identity, project *models.Project) error {
	if err := CanReadProject(id, project); err != nil {
		return err
	}
	if id.IsTenantAdmin() || project.CreatedByUser(id.UserID) {
		return nil
	}
	return errNotOwner
}

// CanModifyTask allows tenant admins, the task's creator and the owning
// project's creator. project may be nil when it is not loaded.
func CanModifyTask(id Identity, task *models.Task, project *models.Project) error {
	if err := CanAccessProjects(id); err != nil {
		return err
	}
	if err := RequireSameTenant(id, task.TenantID); err != nil {
		return err
	}
	if id.IsTenantAdmin() || task.CreatedByUser(id.UserID) {
		return nil
	}
	if project != nil && project.CreatedByUser(id.UserID) {
		return nil
	}
	return errNotOwner
}

// CanUpdateTaskStatus extends CanModifyTask to the task's current assignee.
func CanUpdateTaskStatus(id Identity, task *models.Task, project *models.Project) error {
	err := CanModifyTask(id, task, project)
	if err == errNotOwner && task.AssignedToUser(id.UserID) {
		return nil
	}
	return err
}
