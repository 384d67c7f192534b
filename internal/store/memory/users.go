package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/modules/user"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

func (s *Store) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loginTaken(u) {
		return apperr.Conflict("User with this email or username already exists")
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt, u.UpdatedAt = s.now(), s.now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByLogin(_ context.Context, login string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == strings.ToLower(login) || (u.UserName != nil && *u.UserName == login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (s *Store) ListUsers(context.Context) ([]*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*user.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sortBy(out, func(a, b *user.User) bool { return a.CreatedAt.After(b.CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	if s.loginTaken(u) {
		return apperr.Conflict("User with this email or username already exists")
	}
	cp := *u
	cp.PasswordHash = cur.PasswordHash
	cp.UpdatedAt = s.now()
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	return nil
}

// ActiveAdmins is ordered by account creation.
func (s *Store) ActiveAdmins(context.Context) ([]notification.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeAdmins(), nil
}

func (s *Store) activeAdmins() []notification.Recipient {
	var admins []*user.User
	for _, u := range s.users {
		if u.Role == authctx.RoleAdmin && u.IsActive {
			admins = append(admins, u)
		}
	}
	sortBy(admins, func(a, b *user.User) bool { return a.CreatedAt.Before(b.CreatedAt) })

	out := make([]notification.Recipient, 0, len(admins))
	for _, u := range admins {
		out = append(out, notification.Recipient{UserID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out
}

func (s *Store) loginTaken(u *user.User) bool {
	for _, o := range s.users {
		if o.ID == u.ID {
			continue
		}
		if o.Email == u.Email {
			return true
		}
		if o.UserName != nil && u.UserName != nil && *o.UserName == *u.UserName {
			return true
		}
	}
	return false
}
