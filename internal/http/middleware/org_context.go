package middleware

import (
	"net/http"
	"strings"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/tenancy"
)

// OrgContext resolves the tenant for a request from the X-Org-Id header and
// stores it in the request context. Requests without a tenant are rejected.
func OrgContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := strings.TrimSpace(r.Header.Get("X-Org-Id"))
		if orgID == "" {
			http.Error(w, "missing X-Org-Id header", http.StatusBadRequest)
			return
		}
		ctx := tenancy.WithOrgID(r.Context(), orgID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
