package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

// SearchLimit caps user search results.
const SearchLimit = 10

// UserService manages accounts and roles.
type UserService struct {
	base
}

// UpsertResult tells whether Upsert created the user.
type UpsertResult struct {
	Inserted bool
	ID       string
}

// Upsert records a sign-in: an existing user only gets last_logged_in
// touched, a new one is inserted with the user role.
func (s *UserService) Upsert(ctx context.Context, u *model.User) (UpsertResult, error) {
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" {
		return UpsertResult{}, badRequest("email is required")
	}
	now := s.now()

	existing, err := s.st.Users.GetByEmail(ctx, u.Email)
	switch {
	case err == nil:
		return s.touch(ctx, existing.ID, u.Email)
	case !errors.Is(err, store.ErrNotFound):
		return UpsertResult{}, s.fail("user.upsert", "Failed to load user", err)
	}

	u.Role = model.RoleUser
	u.CreatedAt = now
	u.LastLoggedIn = &now
	id, err := s.st.Users.Insert(ctx, u)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// lost a race with a concurrent first sign-in
			winner, err := s.st.Users.GetByEmail(ctx, u.Email)
			if err != nil {
				return UpsertResult{}, s.fail("user.upsert", "Failed to load user", err)
			}
			return s.touch(ctx, winner.ID, u.Email)
		}
		return UpsertResult{}, s.fail("user.upsert", "Failed to create user", err)
	}
	return UpsertResult{Inserted: true, ID: id}, nil
}

func (s *UserService) touch(ctx context.Context, id, email string) (UpsertResult, error) {
	if _, err := s.st.Users.TouchLogin(ctx, email, s.now()); err != nil {
		return UpsertResult{}, s.fail("user.touch", "Failed to update last login", err)
	}
	return UpsertResult{Inserted: false, ID: id}, nil
}

// Search finds up to SearchLimit users whose email or name contains q.
func (s *UserService) Search(ctx context.Context, q string) ([]*model.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, badRequest("Missing search query")
	}
	out, err := s.st.Users.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, s.fail("user.search", "Failed to search users", err)
	}
	return out, nil
}

// SetRole changes a user's role to admin or user.
func (s *UserService) SetRole(ctx context.Context, id, role string) (store.UpdateResult, error) {
	if !model.AssignableRole(role) {
		return store.UpdateResult{}, badRequest("role must be admin or user")
	}
	res, err := s.st.Users.SetRoleByID(ctx, id, role)
	if err != nil {
		return store.UpdateResult{}, s.fail("user.set_role", "Failed to update user role", err)
	}
	return res, nil
}

// GetRole returns the public role projection of a user.
func (s *UserService) GetRole(ctx context.Context, email string) (model.UserRole, error) {
	u, err := s.st.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.UserRole{}, notFound("User not found")
		}
		return model.UserRole{}, s.fail("user.get_role", "Failed to get user role", err)
	}
	return model.UserRole{Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}, nil
}

// HasRole reports whether the user with email holds role. A missing user
// holds no role.
func (s *UserService) HasRole(ctx context.Context, email, role string) (bool, error) {
	u, err := s.st.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, s.fail("user.has_role", "Failed to load user", err)
	}
	return u.Role == role, nil
}
