package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/audit"
	"go.pilab.hu/mcportal/internal/auth/rbac"
)

// UserService implements the user management operations. Callers are
// expected to have passed authentication; role checks that depend on the
// target are made here.
type UserService struct {
	users domain.UserRepository
	audit *audit.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, auditLog *audit.Logger) *UserService {
	return &UserService{users: users, audit: auditLog}
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListUsers(ctx)
}

// Get returns the user with id. The permission check runs before the
// lookup, so a non-admin asking for someone else's id gets ErrForbidden
// whether or not the id exists.
func (s *UserService) Get(ctx context.Context, caller *domain.User, id string) (*domain.User, error) {
	if !rbac.CanReadUser(caller, id) {
		return nil, domain.ErrForbidden
	}
	return s.users.GetUserByID(ctx, id)
}

// ToggleAdmin flips the admin flag of the target user and returns the new
// value.
func (s *UserService) ToggleAdmin(ctx context.Context, caller *domain.User, id string) (bool, error) {
	target, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}

	isAdmin := !target.IsAdmin
	err = s.users.SetAdmin(ctx, id, isAdmin)
	s.audit.Record(audit.ActionToggleAdmin, caller.MinecraftUsername, id, fmt.Sprintf("is_admin=%t", isAdmin), err)
	if err != nil {
		return false, err
	}

	log.Ctx(ctx).Info().
		Str("userID", id).
		Bool("isAdmin", isAdmin).
		Str("by", caller.MinecraftUsername).
		Msg("Admin flag changed")
	return isAdmin, nil
}

// Delete removes the target user. An admin cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, caller *domain.User, id string) error {
	if !rbac.CanDeleteUser(caller, id) {
		if rbac.IsAdmin(caller) {
			return domain.ErrCannotDeleteSelf
		}
		return domain.ErrForbidden
	}

	err := s.users.DeleteUser(ctx, id)
	s.audit.Record(audit.ActionDeleteUser, caller.MinecraftUsername, id, "", err)
	return err
}

// SetAdminByUsername sets the admin flag for the named user. It is used by
// the operator CLI where no session exists.
func (s *UserService) SetAdminByUsername(ctx context.Context, username string, isAdmin bool) (*domain.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	err = s.users.SetAdmin(ctx, user.ID, isAdmin)
	s.audit.Record(audit.ActionCLISetAdmin, "cli", user.ID, fmt.Sprintf("is_admin=%t", isAdmin), err)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = isAdmin
	return user, nil
}
