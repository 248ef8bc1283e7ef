package middleware

// tenant.go resolves the tenant scope of a request. Authentication and
// authorization happen upstream; by the time a request reaches this
// service the caller's tenant has been resolved and travels in the
// X-Tenant-ID header. Every booking, blackout and sequence counter is
// scoped to that tenant.

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderTenantID is the header carrying the resolved tenant identity.
const HeaderTenantID = "X-Tenant-ID"

const tenantContextKey = "tenant_id"

// RequireTenant validates the X-Tenant-ID header and stores the parsed
// UUID in the Echo context.  Requests without a valid tenant are
// rejected with 400 before reaching any handler.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderTenantID)
			if raw == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing " + HeaderTenantID + " header"})
			}
			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
			}
			c.Set(tenantContextKey, id)
			return next(c)
		}
	}
}

// TenantID returns the tenant stored by RequireTenant.  The boolean is
// false when the middleware did not run for this route.
func TenantID(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(tenantContextKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// currentTenantID returns the tenant as a string for rate-limit keys,
// or "anon" when the request carries no tenant.
func currentTenantID(c echo.Context) string {
	if id, ok := TenantID(c); ok {
		return id.String()
	}
	return "anon"
}
