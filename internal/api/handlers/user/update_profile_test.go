package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"Swipeline/internal/api/middleware"
	"Swipeline/internal/core/users"
)

// MockUserService is a mock implementation of users.UserService for testing
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, id string) (*users.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Profile), args.Error(1)
}

func (m *MockUserService) ListProfiles(ctx context.Context, ids []string) ([]*users.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*users.Profile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id string, req users.UpdateProfileRequest) (*users.Profile, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Profile), args.Error(1)
}

func (m *MockUserService) ProfileExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) GetAuthor(ctx context.Context, id string) (*users.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Author), args.Error(1)
}

func withUser(req *http.Request, id string) *http.Request {
	return req.WithContext(middleware.SetTestUserID(req.Context(), id))
}

func TestGetProfile(t *testing.T) {
	service := new(MockUserService)
	service.On("GetProfile", mock.Anything, "u1").Return(&users.Profile{ID: "u1", Name: "Aki"}, nil)
	service.On("GetProfile", mock.Anything, "new").Return(nil, users.ErrUserNotFound)
	service.On("GetProfile", mock.Anything, "broken").Return(nil, errors.New("db down"))
	h := NewProfileHandler(service)

	w := httptest.NewRecorder()
	h.HandleGetProfile(w, withUser(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "u1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Aki"`)

	w = httptest.NewRecorder()
	h.HandleGetProfile(w, withUser(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "new"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profile":null}`, w.Body.String())

	w = httptest.NewRecorder()
	h.HandleGetProfile(w, withUser(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "broken"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	h.HandleGetProfile(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	service := new(MockUserService)
	service.On("UpdateProfile", mock.Anything, "u1", users.UpdateProfileRequest{Name: "Aki", Bio: "hi"}).
		Return(&users.Profile{ID: "u1", Name: "Aki", Bio: "hi"}, nil)
	service.On("UpdateProfile", mock.Anything, "u1", users.UpdateProfileRequest{Name: ""}).
		Return(nil, users.NewValidationError("name", "name is required"))
	h := NewProfileHandler(service)

	put := func(body string) *httptest.ResponseRecorder {
		req := withUser(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(body)), "u1")
		w := httptest.NewRecorder()
		h.HandleUpdateProfile(w, req)
		return w
	}

	w := put(`{"name":"Aki","bio":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bio":"hi"`)

	w = put(`{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name is required")

	w = put(`{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNumberOfCalls(t, "UpdateProfile", 2)
}

func TestGetAuthor(t *testing.T) {
	service := new(MockUserService)
	service.On("GetAuthor", mock.Anything, "u1").Return(&users.Author{ID: "u1", Name: "Aki"}, nil)
	service.On("GetAuthor", mock.Anything, "ghost").Return(nil, users.ErrUserNotFound)

	r := chi.NewRouter()
	r.Get("/api/users/{id}", NewGetAuthorHandler(service).HandleGetAuthor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/u1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","name":"Aki"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
