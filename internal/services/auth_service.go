package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projectflow/internal/authz"
	"projectflow/internal/common"
	"projectflow/internal/models"
	"projectflow/internal/repositories"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

type LoginRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	TenantSubdomain string `json:"tenantSubdomain" validate:"omitempty,max=63"`
}

type LoginResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
}

type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName" validate:"required,max=255"`
	Subdomain     string `json:"subdomain" validate:"required,max=63"`
	AdminEmail    string `json:"adminEmail" validate:"required,email"`
	AdminPassword string `json:"adminPassword" validate:"required,min=6"`
	AdminFullName string `json:"adminFullName" validate:"required,max=255"`
}

type RegisterTenantResult struct {
	Tenant *models.Tenant `json:"tenant"`
	User   *models.User   `json:"user"`
}

// TenantInfo is the tenant summary attached to a profile.
type TenantInfo struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Subdomain        string    `json:"subdomain"`
	SubscriptionPlan string    `json:"subscriptionPlan"`
	MaxUsers         int       `json:"maxUsers"`
	MaxProjects      int       `json:"maxProjects"`
}

type Profile struct {
	*models.User
	Tenant *TenantInfo `json:"tenant"`
}

// RegistrationDefaults are the plan and quotas given to self-registered tenants.
type RegistrationDefaults struct {
	Plan        string
	MaxUsers    int
	MaxProjects int
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	RegisterTenant(ctx context.Context, req RegisterTenantRequest) (*RegisterTenantResult, error)
	Me(ctx context.Context, id authz.Identity) (*Profile, error)
}

type authService struct {
	tenants   repositories.TenantRepository
	users     repositories.UserRepository
	tokens    TokenService
	hasher    *PasswordHasher
	limiter   LoginLimiter
	defaults  RegistrationDefaults
	dummyHash string
	log       *zap.Logger
}

func NewAuthService(
	tenants repositories.TenantRepository,
	users repositories.UserRepository,
	tokens TokenService,
	hasher *PasswordHasher,
	limiter LoginLimiter,
	defaults RegistrationDefaults,
	log *zap.Logger,
) AuthService {
	// Verified against when no account matches the email.
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		log.Warn("failed to prepare dummy hash", zap.Error(err))
	}
	if limiter == nil {
		limiter = NoopLoginLimiter()
	}
	return &authService{
		tenants:   tenants,
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		limiter:   limiter,
		defaults:  defaults,
		dummyHash: dummy,
		log:       log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login resolves the tenant first. An unknown or inactive tenant fails before
// any account lookup, so its answer never depends on the email. An empty
// subdomain selects the operator (super_admin) login.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)
	subdomain := strings.ToLower(strings.TrimSpace(req.TenantSubdomain))
	if email == "" || req.Password == "" {
		return nil, common.ValidationError("Email and password are required")
	}

	key := loginKey(subdomain, email)
	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		s.log.Warn("login limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return nil, common.RateLimitedError("Too many failed login attempts, try again later")
	}

	var user *models.User
	if subdomain == "" {
		user, err = s.users.GetSuperAdminByEmail(ctx, email)
	} else {
		tenant, terr := s.tenants.GetBySubdomain(ctx, subdomain)
		if errors.Is(terr, repositories.ErrNotFound) {
			return nil, common.ErrTenantNotFound
		}
		if terr != nil {
			return nil, common.InternalError(fmt.Errorf("resolve tenant: %w", terr))
		}
		if !tenant.IsActive() {
			return nil, common.ErrTenantInactive
		}
		user, err = s.users.GetByTenantAndEmail(ctx, tenant.ID, email)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, common.InternalError(fmt.Errorf("load user: %w", err))
	}

	hash := s.dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	if !s.hasher.Verify(hash, req.Password) || user == nil {
		if ferr := s.limiter.Fail(ctx, key); ferr != nil {
			s.log.Warn("failed to record login attempt", zap.Error(ferr))
		}
		return nil, common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, common.ErrAccountInactive
	}
	if rerr := s.limiter.Reset(ctx, key); rerr != nil {
		s.log.Warn("failed to reset login attempts", zap.Error(rerr))
	}

	token, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return nil, common.InternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresIn: expiresIn}, nil
}

// RegisterTenant creates a tenant together with its first tenant admin.
func (s *authService) RegisterTenant(ctx context.Context, req RegisterTenantRequest) (*RegisterTenantResult, error) {
	name := strings.TrimSpace(req.TenantName)
	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	email := normalizeEmail(req.AdminEmail)
	fullName := strings.TrimSpace(req.AdminFullName)

	if err := common.ValidateRequiredString(name, "tenantName"); err != nil {
		return nil, common.ValidationError(err.Error())
	}
	if !subdomainPattern.MatchString(subdomain) {
		return nil, common.ValidationError("subdomain must be 3-63 lowercase letters, digits or hyphens")
	}
	if err := common.ValidateRequiredString(fullName, "adminFullName"); err != nil {
		return nil, common.ValidationError(err.Error())
	}
	if email == "" || len(req.AdminPassword) < 6 {
		return nil, common.ValidationError("adminEmail and an adminPassword of at least 6 characters are required")
	}

	hash, err := s.hasher.Hash(req.AdminPassword)
	if err != nil {
		return nil, common.InternalError(err)
	}

	tenantID := uuid.New()
	tenant := &models.Tenant{
		ID:               tenantID,
		Name:             name,
		Subdomain:        subdomain,
		Status:           models.TenantStatusActive,
		SubscriptionPlan: s.defaults.Plan,
		MaxUsers:         s.defaults.MaxUsers,
		MaxProjects:      s.defaults.MaxProjects,
	}
	admin := &models.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleTenantAdmin,
		IsActive:     true,
	}

	if err := s.tenants.CreateWithAdmin(ctx, tenant, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, common.ConflictError("Subdomain already exists")
		}
		return nil, common.InternalError(fmt.Errorf("register tenant: %w", err))
	}
	return &RegisterTenantResult{Tenant: tenant, User: admin}, nil
}

func (s *authService) Me(ctx context.Context, id authz.Identity) (*Profile, error) {
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, notFoundOrInternal(err, "User")
	}

	profile := &Profile{User: user}
	if id.IsSuperAdmin() || user.TenantID == nil {
		return profile, nil
	}

	tenant, err := s.tenants.GetByID(ctx, *user.TenantID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Tenant")
	}
	profile.Tenant = &TenantInfo{
		ID:               tenant.ID,
		Name:             tenant.Name,
		Subdomain:        tenant.Subdomain,
		SubscriptionPlan: tenant.SubscriptionPlan,
		MaxUsers:         tenant.MaxUsers,
		MaxProjects:      tenant.MaxProjects,
	}
	return profile, nil
}
