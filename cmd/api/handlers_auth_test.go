package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/config"
	"github.com/tiendahub/tienda/internal/tenant"
	"github.com/tiendahub/tienda/internal/user"
)

// stubTenants implements tenant.Repository in memory.
type stubTenants struct {
	items map[string]*tenant.Tenant
}

func newStubTenants() *stubTenants { return &stubTenants{items: make(map[string]*tenant.Tenant)} }

func (s *stubTenants) Create(ctx context.Context, t *tenant.Tenant) error {
	for _, cur := range s.items {
		if cur.Subdomain == t.Subdomain || cur.Email == t.Email {
			return tenant.ErrAlreadyExist
		}
	}
	cp := *t
	s.items[t.ID] = &cp
	return nil
}

func (s *stubTenants) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, ok := s.items[id]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *stubTenants) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	for _, t := range s.items {
		if t.Subdomain == subdomain {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrNotFound
}

func (s *stubTenants) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	for _, t := range s.items {
		if t.Domain == domain {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrNotFound
}

// stubUsers implements user.Repository in memory.
type stubUsers struct {
	items map[string]*user.User
}

func newStubUsers() *stubUsers { return &stubUsers{items: make(map[string]*user.User)} }

func (s *stubUsers) Create(ctx context.Context, u *user.User) error {
	for _, cur := range s.items {
		if cur.Email == u.Email {
			return user.ErrAlreadyExist
		}
	}
	cp := *u
	s.items[u.ID] = &cp
	return nil
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := s.items[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range s.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUsers) GetByEmailAndTenant(ctx context.Context, email, tenantID string) (*user.User, error) {
	for _, u := range s.items {
		if u.Email == email && u.TenantID == tenantID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUsers) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if u, ok := s.items[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func newAuthFixture() (*gin.Engine, *stubTenants, *stubUsers) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	a := &app{
		cfg:     config.Config{},
		log:     log,
		tokens:  auth.NewTokenManager("test-secret", time.Hour),
		tenants: newStubTenants(),
		users:   newStubUsers(),
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", registerHandler(a))
	r.POST("/auth/login", loginHandler(a))
	return r, a.tenants.(*stubTenants), a.users.(*stubUsers)
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

const registerBody = `{
	"email": "owner@acme.test",
	"password": "s3cret-pass",
	"first_name": "Ana",
	"last_name": "Gomez",
	"tenant_name": "Acme Shop",
	"subdomain": "Acme"
}`

func TestRegister(t *testing.T) {
	r, tenants, users := newAuthFixture()

	w := postJSON(r, "/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got struct {
		Token  string `json:"token"`
		User   map[string]any
		Tenant map[string]any
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.Token)

	require.Len(t, tenants.items, 1)
	for _, te := range tenants.items {
		assert.Equal(t, "acme", te.Subdomain)
		assert.Equal(t, tenant.StatusActive, te.Status)
	}
	require.Len(t, users.items, 1)
	for _, u := range users.items {
		assert.Equal(t, user.RoleOwner, u.Role)
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	}

	// duplicate subdomain
	w = postJSON(r, "/auth/register", registerBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _, _ := newAuthFixture()
	w := postJSON(r, "/auth/register", `{"email":"a@b.c"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	r, tenants, _ := newAuthFixture()
	require.Equal(t, http.StatusCreated, postJSON(r, "/auth/register", registerBody).Code)

	w := postJSON(r, "/auth/login", `{"email":"owner@acme.test","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.Token)

	// scoped to subdomain
	w = postJSON(r, "/auth/login", `{"email":"owner@acme.test","password":"s3cret-pass","subdomain":"acme"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = postJSON(r, "/auth/login", `{"email":"owner@acme.test","password":"s3cret-pass","subdomain":"other"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// wrong password / unknown user
	w = postJSON(r, "/auth/login", `{"email":"owner@acme.test","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = postJSON(r, "/auth/login", `{"email":"nobody@acme.test","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// suspended tenant
	for _, te := range tenants.items {
		te.Status = tenant.StatusSuspended
	}
	w = postJSON(r, "/auth/login", `{"email":"owner@acme.test","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
