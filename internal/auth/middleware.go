package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tiendahub/tienda/internal/tenant"
	"github.com/tiendahub/tienda/internal/user"
)

const (
	ctxUserKey   = "auth.user"
	ctxTenantKey = "auth.tenant"
)

// CurrentUser returns the authenticated user attached by Authenticate.
func CurrentUser(c *gin.Context) *user.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(*user.User); ok {
			return u
		}
	}
	return nil
}

// CurrentTenant returns the tenant attached by Authenticate or ResolveTenant.
func CurrentTenant(c *gin.Context) *tenant.Tenant {
	if v, ok := c.Get(ctxTenantKey); ok {
		if t, ok := v.(*tenant.Tenant); ok {
			return t
		}
	}
	return nil
}

// SetTenant attaches a tenant to the request context. Exposed for handler tests.
func SetTenant(c *gin.Context, t *tenant.Tenant) { c.Set(ctxTenantKey, t) }

// SetUser attaches a user to the request context. Exposed for handler tests.
func SetUser(c *gin.Context, u *user.User) { c.Set(ctxUserKey, u) }

// Authenticate verifies the bearer token and loads the user and its tenant.
func Authenticate(tm *TokenManager, users user.Repository, tenants tenant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" || raw == c.GetHeader("Authorization") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied, no token provided"})
			return
		}
		claims, err := tm.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if u.Status != "active" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account is inactive"})
			return
		}
		t, err := tenants.GetByID(c.Request.Context(), u.TenantID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Set(ctxTenantKey, t)
		c.Next()
	}
}

// CheckTenantStatus rejects requests for suspended tenants or lapsed subscriptions.
func CheckTenantStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := CurrentTenant(c)
		if t == nil || t.Status != tenant.StatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant account is inactive"})
			return
		}
		if t.SubscriptionStatus != "active" {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "subscription is not active"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied, admin role required"})
			return
		}
		c.Next()
	}
}

func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || u.Role != user.RoleOwner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied, owner role required"})
			return
		}
		c.Next()
	}
}

// ResolveTenant resolves the storefront tenant from the X-Tenant-Subdomain
// header or the request host, for unauthenticated public routes.
func ResolveTenant(tenants tenant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var t *tenant.Tenant
		var err error

		if sub := c.GetHeader("X-Tenant-Subdomain"); sub != "" {
			t, err = tenants.GetBySubdomain(c.Request.Context(), sub)
		} else if host := c.Request.Host; host != "" {
			t, err = tenants.GetByDomain(c.Request.Context(), stripPort(host))
		} else {
			err = tenant.ErrNotFound
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		if t.Status != tenant.StatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant is not active"})
			return
		}
		c.Set(ctxTenantKey, t)
		c.Next()
	}
}

func stripPort(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}
