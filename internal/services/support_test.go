package services

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/yukimura/org-identity-api/internal/authservice"
	"github.com/yukimura/org-identity-api/internal/storage"
)

// fakeAuth is a scriptable Auth Service double. Unset functions answer with
// zero values; every call is recorded by name for ordering assertions.
type fakeAuth struct {
	mu    sync.Mutex
	calls []string

	getSessionFn      func(headers http.Header) (*authservice.Session, error)
	createOrgFn       func(creatorID, name, slug, logoURL string) (*authservice.Organization, error)
	checkSlugFn       func(slug string) (authservice.SlugStatus, error)
	updateOrgFn       func(orgID string, update authservice.OrganizationUpdate) error
	deleteOrgFn       func(orgID string) error
	getFullOrgFn      func() (*authservice.Organization, error)
	listOrgsFn        func() ([]authservice.Organization, error)
	listMembersFn     func(orgID string) ([]authservice.Member, error)
	getActiveMemberFn func() (*authservice.Member, error)
	setActiveFn       func(orgID string) error
	leaveFn           func(orgID string) error
	updateRoleFn      func(orgID, memberID, role string) error
	listInvitationsFn func() ([]authservice.Invitation, error)
	updateUserFn      func(update authservice.UserUpdate) error
	setPasswordFn     func(newPassword string) error
}

func (f *fakeAuth) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAuth) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if call == name {
			n++
		}
	}
	return n
}

func (f *fakeAuth) GetSession(_ context.Context, headers http.Header) (*authservice.Session, error) {
	f.record("GetSession")
	if f.getSessionFn != nil {
		return f.getSessionFn(headers)
	}
	return nil, nil
}

func (f *fakeAuth) CreateOrganization(_ context.Context, creatorID, name, slug, logoURL string) (*authservice.Organization, error) {
	f.record("CreateOrganization")
	if f.createOrgFn != nil {
		return f.createOrgFn(creatorID, name, slug, logoURL)
	}
	return &authservice.Organization{ID: "org-" + slug, Name: name, Slug: slug, Logo: logoURL}, nil
}

func (f *fakeAuth) CheckOrganizationSlug(_ context.Context, slug string) (authservice.SlugStatus, error) {
	f.record("CheckOrganizationSlug")
	if f.checkSlugFn != nil {
		return f.checkSlugFn(slug)
	}
	return authservice.SlugFree, nil
}

func (f *fakeAuth) UpdateOrganization(_ context.Context, orgID string, update authservice.OrganizationUpdate, _ http.Header) error {
	f.record("UpdateOrganization")
	if f.updateOrgFn != nil {
		return f.updateOrgFn(orgID, update)
	}
	return nil
}

func (f *fakeAuth) DeleteOrganization(_ context.Context, orgID string, _ http.Header) error {
	f.record("DeleteOrganization")
	if f.deleteOrgFn != nil {
		return f.deleteOrgFn(orgID)
	}
	return nil
}

func (f *fakeAuth) GetFullOrganization(_ context.Context, _ http.Header) (*authservice.Organization, error) {
	f.record("GetFullOrganization")
	if f.getFullOrgFn != nil {
		return f.getFullOrgFn()
	}
	return nil, nil
}

func (f *fakeAuth) ListOrganizations(_ context.Context, _ http.Header) ([]authservice.Organization, error) {
	f.record("ListOrganizations")
	if f.listOrgsFn != nil {
		return f.listOrgsFn()
	}
	return nil, nil
}

func (f *fakeAuth) ListMembers(_ context.Context, orgID string, _ http.Header) ([]authservice.Member, error) {
	f.record("ListMembers")
	if f.listMembersFn != nil {
		return f.listMembersFn(orgID)
	}
	return nil, nil
}

func (f *fakeAuth) GetActiveMember(_ context.Context, _ http.Header) (*authservice.Member, error) {
	f.record("GetActiveMember")
	if f.getActiveMemberFn != nil {
		return f.getActiveMemberFn()
	}
	return nil, nil
}

func (f *fakeAuth) SetActiveOrganization(_ context.Context, orgID string, _ http.Header) error {
	f.record("SetActiveOrganization")
	if f.setActiveFn != nil {
		return f.setActiveFn(orgID)
	}
	return nil
}

func (f *fakeAuth) LeaveOrganization(_ context.Context, orgID string, _ http.Header) error {
	f.record("LeaveOrganization")
	if f.leaveFn != nil {
		return f.leaveFn(orgID)
	}
	return nil
}

func (f *fakeAuth) UpdateMemberRole(_ context.Context, orgID, memberID, role string, _ http.Header) error {
	f.record("UpdateMemberRole")
	if f.updateRoleFn != nil {
		return f.updateRoleFn(orgID, memberID, role)
	}
	return nil
}

func (f *fakeAuth) ListInvitations(_ context.Context, _ http.Header) ([]authservice.Invitation, error) {
	f.record("ListInvitations")
	if f.listInvitationsFn != nil {
		return f.listInvitationsFn()
	}
	return nil, nil
}

func (f *fakeAuth) UpdateUser(_ context.Context, update authservice.UserUpdate, _ http.Header) error {
	f.record("UpdateUser")
	if f.updateUserFn != nil {
		return f.updateUserFn(update)
	}
	return nil
}

func (f *fakeAuth) SetPassword(_ context.Context, newPassword string, _ http.Header) error {
	f.record("SetPassword")
	if f.setPasswordFn != nil {
		return f.setPasswordFn(newPassword)
	}
	return nil
}

// fakeBlobStore keeps blobs as a key set in memory.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string]bool
	deleted []string
}

func newFakeBlobStore(keys ...string) *fakeBlobStore {
	objects := make(map[string]bool, len(keys))
	for _, key := range keys {
		objects[key] = true
	}
	return &fakeBlobStore{objects: objects}
}

func (f *fakeBlobStore) NewUploadTarget(_ context.Context, prefix string) (*storage.UploadTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := prefix + "/generated"
	f.objects[key] = true
	return &storage.UploadTarget{Key: key, UploadURL: "https://blobs.test/upload/" + key}, nil
}

func (f *fakeBlobStore) ResolveURL(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.objects[key] {
		return "", storage.ErrBlobNotFound
	}
	return "https://blobs.test/" + key, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

var errAuthDown = errors.New("auth service unreachable")
