package usecase

import (
	"context"
	"fmt"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IsbatBInHossain/bookstore-cms/internal/core/domain"
	"github.com/IsbatBInHossain/bookstore-cms/internal/core/port"
)

// SeedService installs the role and permission reference data. Running it
// repeatedly is safe; every write is an upsert.
type SeedService struct {
	roles port.RoleRepository
	log   *zap.Logger
}

// NewSeedService constructs a SeedService instance.
func NewSeedService(roles port.RoleRepository, log *zap.Logger) *SeedService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SeedService{roles: roles, log: log}
}

type seedRole struct {
	name        domain.RoleName
	description string
	grants      []seedGrant
}

type seedGrant struct {
	action  domain.PermissionAction
	subject domain.PermissionSubject
}

var allActions = []domain.PermissionAction{
	domain.ActionCreate,
	domain.ActionRead,
	domain.ActionUpdate,
	domain.ActionDelete,
}

var allSubjects = []domain.PermissionSubject{
	domain.SubjectUser,
	domain.SubjectBook,
	domain.SubjectOrder,
}

func seedRoles() []seedRole {
	adminGrants := make([]seedGrant, 0, len(allActions)*len(allSubjects))
	for _, subject := range allSubjects {
		for _, action := range allActions {
			adminGrants = append(adminGrants, seedGrant{action: action, subject: subject})
		}
	}

	managerGrants := []seedGrant{
		{domain.ActionRead, domain.SubjectUser},
	}
	for _, action := range allActions {
		managerGrants = append(managerGrants, seedGrant{action: action, subject: domain.SubjectBook})
		managerGrants = append(managerGrants, seedGrant{action: action, subject: domain.SubjectOrder})
	}

	return []seedRole{
		{
			name:        domain.RoleCustomer,
			description: "Default role for registered shoppers",
			grants: []seedGrant{
				{domain.ActionRead, domain.SubjectBook},
				{domain.ActionCreate, domain.SubjectOrder},
				{domain.ActionRead, domain.SubjectOrder},
			},
		},
		{
			name:        domain.RoleManager,
			description: "Catalog and order management",
			grants:      managerGrants,
		},
		{
			name:        domain.RoleAdmin,
			description: "Full administrative access",
			grants:      adminGrants,
		},
	}
}

// Seed upserts the full permission matrix and the three roles with their
// grants.
func (s *SeedService) Seed(ctx context.Context) error {
	permissionIDs := make(map[seedGrant]string, len(allActions)*len(allSubjects))

	for _, subject := range allSubjects {
		for _, action := range allActions {
			description := fmt.Sprintf("%s %s", action, subject)
			id, err := s.roles.UpsertPermission(ctx, domain.Permission{
				ID:          uuid.NewString(),
				Action:      action,
				Subject:     subject,
				Description: &description,
			})
			if err != nil {
				return fmt.Errorf("seed permission %s %s: %w", action, subject, err)
			}
			permissionIDs[seedGrant{action: action, subject: subject}] = id
		}
	}

	for _, role := range seedRoles() {
		description := role.description
		roleID, err := s.roles.UpsertRole(ctx, domain.Role{
			ID:          uuid.NewString(),
			Name:        role.name,
			Description: &description,
		})
		if err != nil {
			return fmt.Errorf("seed role %s: %w", role.name, err)
		}

		for _, grant := range role.grants {
			permissionID, ok := permissionIDs[grant]
			if !ok {
				return fmt.Errorf("seed role %s: unknown grant %s %s", role.name, grant.action, grant.subject)
			}
			if err := s.roles.GrantPermission(ctx, roleID, permissionID); err != nil {
				return fmt.Errorf("seed grant %s %s to %s: %w", grant.action, grant.subject, role.name, err)
			}
		}

		s.log.Info("seeded role",
			zap.String("role", string(role.name)),
			zap.Int("grants", len(role.grants)),
		)
	}

	return nil
}
