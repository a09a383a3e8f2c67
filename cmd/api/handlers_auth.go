package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/tenant"
	"github.com/tiendahub/tienda/internal/user"
)

// RegisterRequest payload for tenant + owner signup.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	TenantName string `json:"tenant_name"`
	Subdomain  string `json:"subdomain"`
	Phone      string `json:"phone"`
}

// LoginRequest payload for dashboard login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Subdomain string `json:"subdomain,omitempty"`
}

func userView(u *user.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"role":       u.Role,
	}
}

func tenantView(t *tenant.Tenant) gin.H {
	return gin.H{
		"id":                t.ID,
		"name":              t.Name,
		"subdomain":         t.Subdomain,
		"subscription_plan": t.SubscriptionPlan,
	}
}

// registerHandler creates a tenant and its owner user and returns a token.
//
// @Summary  Register a new shop
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body RegisterRequest true "registration payload"
// @Success  201 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /auth/register [post]
func registerHandler(a *app) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		req.Subdomain = strings.ToLower(strings.TrimSpace(req.Subdomain))
		if req.Email == "" || req.Password == "" || req.TenantName == "" || req.Subdomain == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email, password, tenant_name and subdomain are required"})
			return
		}

		ctx := c.Request.Context()
		if _, err := a.tenants.GetBySubdomain(ctx, req.Subdomain); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subdomain or email already exists"})
			return
		}
		if _, err := a.users.GetByEmail(ctx, req.Email); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}

		t := &tenant.Tenant{
			ID:                 uuid.NewString(),
			Name:               req.TenantName,
			Domain:             req.Subdomain + ".localhost",
			Subdomain:          req.Subdomain,
			Email:              req.Email,
			Phone:              req.Phone,
			Status:             tenant.StatusActive,
			SubscriptionPlan:   "basic",
			SubscriptionStatus: "active",
		}
		if err := a.tenants.Create(ctx, t); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subdomain or email already exists"})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			a.log.WithError(err).Error("hash password")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}
		u := &user.User{
			ID:           uuid.NewString(),
			TenantID:     t.ID,
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         user.RoleOwner,
			Status:       "active",
		}
		if err := a.users.Create(ctx, u); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}

		token, err := a.tokens.Issue(u.ID, t.ID)
		if err != nil {
			a.log.WithError(err).Error("issue token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "registration successful",
			"token":   token,
			"user":    userView(u),
			"tenant":  tenantView(t),
		})
	}
}

// loginHandler authenticates a dashboard user, optionally scoped by subdomain.
//
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} map[string]any
// @Failure  401 {object} product.HTTPError
// @Router   /auth/login [post]
func loginHandler(a *app) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		ctx := c.Request.Context()
		var u *user.User
		var err error
		if req.Subdomain != "" {
			t, terr := a.tenants.GetBySubdomain(ctx, req.Subdomain)
			if terr != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "shop not found"})
				return
			}
			u, err = a.users.GetByEmailAndTenant(ctx, req.Email, t.ID)
		} else {
			u, err = a.users.GetByEmail(ctx, req.Email)
		}
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if !auth.CheckPassword(u.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		t, err := a.tenants.GetByID(ctx, u.TenantID)
		if err != nil || t.Status != tenant.StatusActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is suspended"})
			return
		}

		_ = a.users.TouchLastLogin(ctx, u.ID, time.Now().UTC())

		token, err := a.tokens.Issue(u.ID, t.ID)
		if err != nil {
			a.log.WithError(err).Error("issue token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "login successful",
			"token":   token,
			"user":    userView(u),
			"tenant":  tenantView(t),
		})
	}
}

// meHandler returns the authenticated user and tenant.
//
// @Summary  Current session
// @Tags     auth
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /auth/me [get]
func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.CurrentUser(c)
		t := auth.CurrentTenant(c)
		c.JSON(http.StatusOK, gin.H{"user": userView(u), "tenant": tenantView(t)})
	}
}
