package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukimura/org-identity-api/internal/authservice"
	"github.com/yukimura/org-identity-api/internal/constants"
	"github.com/yukimura/org-identity-api/internal/models"
	"github.com/yukimura/org-identity-api/internal/repository"
	"github.com/yukimura/org-identity-api/internal/services"
	"github.com/yukimura/org-identity-api/internal/storage"
)

// stubAuth is a minimal scriptable Auth Service double for handler tests.
type stubAuth struct {
	sessionFn         func() (*authservice.Session, error)
	createOrgFn       func(creatorID, name, slug, logoURL string) (*authservice.Organization, error)
	checkSlugFn       func(slug string) (authservice.SlugStatus, error)
	listOrgsFn        func() ([]authservice.Organization, error)
	getFullOrgFn      func() (*authservice.Organization, error)
	getActiveMemberFn func() (*authservice.Member, error)
	listMembersFn     func(orgID string) ([]authservice.Member, error)
	listInvitationsFn func() ([]authservice.Invitation, error)
}

func (s *stubAuth) GetSession(context.Context, http.Header) (*authservice.Session, error) {
	if s.sessionFn != nil {
		return s.sessionFn()
	}
	return nil, nil
}

func (s *stubAuth) CreateOrganization(_ context.Context, creatorID, name, slug, logoURL string) (*authservice.Organization, error) {
	if s.createOrgFn != nil {
		return s.createOrgFn(creatorID, name, slug, logoURL)
	}
	return &authservice.Organization{ID: "org-" + slug, Name: name, Slug: slug, Logo: logoURL}, nil
}

func (s *stubAuth) CheckOrganizationSlug(_ context.Context, slug string) (authservice.SlugStatus, error) {
	if s.checkSlugFn != nil {
		return s.checkSlugFn(slug)
	}
	return authservice.SlugFree, nil
}

func (s *stubAuth) UpdateOrganization(context.Context, string, authservice.OrganizationUpdate, http.Header) error {
	return nil
}

func (s *stubAuth) DeleteOrganization(context.Context, string, http.Header) error {
	return nil
}

func (s *stubAuth) GetFullOrganization(context.Context, http.Header) (*authservice.Organization, error) {
	if s.getFullOrgFn != nil {
		return s.getFullOrgFn()
	}
	return nil, nil
}

func (s *stubAuth) ListOrganizations(context.Context, http.Header) ([]authservice.Organization, error) {
	if s.listOrgsFn != nil {
		return s.listOrgsFn()
	}
	return nil, nil
}

func (s *stubAuth) ListMembers(_ context.Context, orgID string, _ http.Header) ([]authservice.Member, error) {
	if s.listMembersFn != nil {
		return s.listMembersFn(orgID)
	}
	return nil, nil
}

func (s *stubAuth) GetActiveMember(context.Context, http.Header) (*authservice.Member, error) {
	if s.getActiveMemberFn != nil {
		return s.getActiveMemberFn()
	}
	return nil, nil
}

func (s *stubAuth) SetActiveOrganization(context.Context, string, http.Header) error {
	return nil
}

func (s *stubAuth) LeaveOrganization(context.Context, string, http.Header) error {
	return nil
}

func (s *stubAuth) UpdateMemberRole(context.Context, string, string, string, http.Header) error {
	return nil
}

func (s *stubAuth) ListInvitations(context.Context, http.Header) ([]authservice.Invitation, error) {
	if s.listInvitationsFn != nil {
		return s.listInvitationsFn()
	}
	return nil, nil
}

func (s *stubAuth) UpdateUser(context.Context, authservice.UserUpdate, http.Header) error {
	return nil
}

func (s *stubAuth) SetPassword(context.Context, string, http.Header) error {
	return nil
}

var _ authservice.API = (*stubAuth)(nil)

// stubBlobs keeps blobs as a key set in memory.
type stubBlobs struct {
	mu      sync.Mutex
	objects map[string]bool
}

func newStubBlobs(keys ...string) *stubBlobs {
	objects := make(map[string]bool, len(keys))
	for _, key := range keys {
		objects[key] = true
	}
	return &stubBlobs{objects: objects}
}

func (s *stubBlobs) NewUploadTarget(_ context.Context, prefix string) (*storage.UploadTarget, error) {
	key := prefix + "/generated"
	s.mu.Lock()
	s.objects[key] = true
	s.mu.Unlock()
	return &storage.UploadTarget{Key: key, UploadURL: "https://blobs.test/upload/" + key}, nil
}

func (s *stubBlobs) ResolveURL(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.objects[key] {
		return "", storage.ErrBlobNotFound
	}
	return "https://blobs.test/" + key, nil
}

func (s *stubBlobs) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type handlerTestEnv struct {
	db          *gorm.DB
	auth        *stubAuth
	blobs       *stubBlobs
	users       repository.UserRepository
	orgHandler  *OrganizationHandler
	userHandler *UserHandler
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.OrganizationProjection{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	auth := &stubAuth{}
	blobs := newStubBlobs()
	users := repository.NewUserRepository(db)
	projections := repository.NewProjectionRepository(db)

	slugs := services.NewSlugAllocator(auth, 10)
	orgService := services.NewOrganizationService(auth, users, projections, blobs, slugs, 3)
	queries := services.NewMembershipQueries(auth)
	userService := services.NewUserService(auth, users, blobs)

	return handlerTestEnv{
		db:          db,
		auth:        auth,
		blobs:       blobs,
		users:       users,
		orgHandler:  NewOrganizationHandler(orgService, queries),
		userHandler: NewUserHandler(userService),
	}
}

func authedTestContext(method, url string, body []byte, authUserID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if authUserID != "" {
		c.Set(constants.ContextKeyAuthUserID, authUserID)
		c.Set(constants.ContextKeySessionHeaders, http.Header{"Cookie": []string{"session=test"}})
	}

	return c, w
}
