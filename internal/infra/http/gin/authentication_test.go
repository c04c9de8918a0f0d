package ginserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	gin "github.com/gin-gonic/gin"

	domainuser "hems/internal/domain/user"
)

func TestPrincipalHasRole(t *testing.T) {
	p := principal{Roles: []domainuser.Role{domainuser.RoleGuest}}
	if !p.HasRole(domainuser.RoleGuest) {
		t.Fatalf("guest role missing")
	}
	if p.HasRole(domainuser.RoleStaff) {
		t.Fatalf("staff role granted to guest")
	}
	if p.HasRole("") {
		t.Fatalf("empty role granted")
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("unauthenticated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		if _, ok := requireRole(c, ""); ok {
			t.Fatalf("missing principal accepted")
		}
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("guest denied staff route", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		setPrincipal(c, principal{ID: "usr-1", Roles: []domainuser.Role{domainuser.RoleGuest}})
		if _, ok := requireRole(c, domainuser.RoleStaff); ok {
			t.Fatalf("guest passed staff check")
		}
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", recorder.Code)
		}
	})

	t.Run("staff allowed", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		setPrincipal(c, principal{ID: "usr-2", Roles: []domainuser.Role{domainuser.RoleStaff}})
		p, ok := requireRole(c, domainuser.RoleStaff)
		if !ok || p.ID != "usr-2" {
			t.Fatalf("staff rejected: %+v ok=%v", p, ok)
		}
	})
}
