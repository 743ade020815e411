package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeUserRepo struct {
	mu          sync.Mutex
	seq         int
	users       map[string]*domain.User
	ticketOwner map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[string]*domain.User),
		ticketOwner: make(map[string]bool),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.Email == email {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, stored := range r.users {
		result = append(result, *stored)
	}
	return result, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) OwnsTickets(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticketOwner[id], nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, Name: "Seed User", PasswordHash: "x", Role: role}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	user := seedUser(t, repo, "a@example.com", domain.RoleUser)

	name := "Renamed"
	updated, err := svc.UpdateProfile(ctx, user.ID, UserUpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	role := "admin"
	_, err = svc.UpdateProfile(ctx, user.ID, UserUpdateInput{Role: &role})
	requireDomainCode(t, err, "FORBIDDEN", 403)

	_, err = svc.UpdateProfile(ctx, user.ID, UserUpdateInput{})
	requireDomainCode(t, err, "NO_UPDATES", 400)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	user := seedUser(t, repo, "a@example.com", domain.RoleUser)
	seedUser(t, repo, "b@example.com", domain.RoleUser)

	taken := "b@example.com"
	_, err := svc.UpdateProfile(ctx, user.ID, UserUpdateInput{Email: &taken})
	requireDomainCode(t, err, "EMAIL_EXISTS", 409)

	fresh := "c@example.com"
	updated, err := svc.UpdateProfile(ctx, user.ID, UserUpdateInput{Email: &fresh})
	require.NoError(t, err)
	require.Equal(t, "c@example.com", updated.Email)
}

func TestUpdateByAdminChangesRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	user := seedUser(t, repo, "a@example.com", domain.RoleUser)

	role := "agent"
	updated, err := svc.UpdateByAdmin(context.Background(), user.ID, UserUpdateInput{Role: &role})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAgent, updated.Role)
}

func TestDeleteUserRefusedWhileOwningTickets(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	user := seedUser(t, repo, "a@example.com", domain.RoleUser)

	repo.ticketOwner[user.ID] = true
	err := svc.Delete(ctx, user.ID)
	requireDomainCode(t, err, "USER_HAS_TICKETS", 409)

	repo.ticketOwner[user.ID] = false
	require.NoError(t, svc.Delete(ctx, user.ID))

	err = svc.Delete(ctx, user.ID)
	requireDomainCode(t, err, "USER_NOT_FOUND", 404)
}
