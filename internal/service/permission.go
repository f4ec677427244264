package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fotowand/backend/internal/db"
)

// PermissionResolver decides whether a user may use privileged routes.
type PermissionResolver interface {
	Permission(ctx context.Context, userID int64) (bool, error)
}

// AccountPermission grants permission to every existing account. There are
// no roles; holding an account is the capability.
type AccountPermission struct {
	users UserStore
}

func NewAccountPermission(users UserStore) *AccountPermission {
	return &AccountPermission{users: users}
}

func (p *AccountPermission) Permission(ctx context.Context, userID int64) (bool, error) {
	_, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AdminListPermission restricts permission to accounts whose email is listed.
type AdminListPermission struct {
	users  UserStore
	emails map[string]struct{}
}

func NewAdminListPermission(users UserStore, emails []string) *AdminListPermission {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if trimmed := strings.TrimSpace(email); trimmed != "" {
			set[normalizeEmail(trimmed)] = struct{}{}
		}
	}
	return &AdminListPermission{users: users, emails: set}
}

func (p *AdminListPermission) Permission(ctx context.Context, userID int64) (bool, error) {
	user, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	_, ok := p.emails[normalizeEmail(user.Email)]
	return ok, nil
}

// NewPermissionResolver picks the allow-list resolver when emails are given.
func NewPermissionResolver(users UserStore, adminEmails []string) PermissionResolver {
	if len(adminEmails) > 0 {
		return NewAdminListPermission(users, adminEmails)
	}
	return NewAccountPermission(users)
}
