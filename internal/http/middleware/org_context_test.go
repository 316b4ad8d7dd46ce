package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/tenancy"
)

func TestOrgContextRejectsMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()

	OrgContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestOrgContextStoresOrgID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-Org-Id", "org-42")
	rec := httptest.NewRecorder()

	called := false
	OrgContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		orgID, ok := tenancy.OrgIDFromContext(r.Context())
		if !ok || orgID != "org-42" {
			t.Fatalf("expected org-42 in context, got %q (ok=%v)", orgID, ok)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected handler to be called")
	}
}
