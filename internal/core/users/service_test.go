package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Swipeline/internal/backend"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *mockUserRepository) ListByIDs(ctx context.Context, ids []string) ([]*Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Profile), args.Error(1)
}

func (m *mockUserRepository) Upsert(ctx context.Context, profile *Profile) (*Profile, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *mockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetByID", mock.Anything, "nobody").Return(nil, backend.Wrap("users.get", sql.ErrNoRows))

	svc := NewUserService(repo, nil, nil)
	_, err := svc.GetProfile(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetAuthor_UsesCache(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetByID", mock.Anything, "u1").Return(&Profile{ID: "u1", Name: "Aki", IconURL: "https://x/i.png"}, nil).Once()

	svc := NewUserService(repo, NewAuthorCache(16, time.Minute), nil)

	first, err := svc.GetAuthor(context.Background(), "u1")
	require.NoError(t, err)
	second, err := svc.GetAuthor(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "Aki", first.Name)
	assert.Same(t, first, second)
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestUpdateProfile_InvalidatesCache(t *testing.T) {
	repo := new(mockUserRepository)
	cache := NewAuthorCache(16, time.Minute)
	cache.Set(&Author{ID: "u1", Name: "old"})

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.ID == "u1" && p.Name == "new"
	})).Return(&Profile{ID: "u1", Name: "new"}, nil)

	svc := NewUserService(repo, cache, nil)
	profile, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{Name: " new "})

	require.NoError(t, err)
	assert.Equal(t, "new", profile.Name)
	_, ok := cache.Get("u1")
	assert.False(t, ok)
}

func TestUpdateProfile_Validation(t *testing.T) {
	svc := NewUserService(new(mockUserRepository), nil, nil)

	tests := []struct {
		name  string
		req   UpdateProfileRequest
		field string
	}{
		{"missing name", UpdateProfileRequest{Name: ""}, "name"},
		{"long name", UpdateProfileRequest{Name: strings.Repeat("n", MaxNameLength+1)}, "name"},
		{"long bio", UpdateProfileRequest{Name: "n", Bio: strings.Repeat("b", MaxBioLength+1)}, "bio"},
		{"bad icon", UpdateProfileRequest{Name: "n", IconURL: "javascript:alert(1)"}, "iconUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(context.Background(), "u1", tt.req)
			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
}

func TestProfileExists(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("Exists", mock.Anything, "u1").Return(true, nil)

	svc := NewUserService(repo, nil, nil)

	ok, err := svc.ProfileExists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ProfileExists(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorCache_Expiry(t *testing.T) {
	cache := NewAuthorCache(4, time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Set(&Author{ID: "u1", Name: "Aki"})
	_, ok := cache.Get("u1")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestAuthorCache_Bounded(t *testing.T) {
	cache := NewAuthorCache(2, time.Minute)
	cache.Set(&Author{ID: "a"})
	cache.Set(&Author{ID: "b"})
	cache.Set(&Author{ID: "c"})

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}
