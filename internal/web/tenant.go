package web

import (
	"net/http"

	"github.com/google/uuid"
)

// coupleIDHeader names the couple a request acts for. Requests without it
// fall back to the configured default couple.
const coupleIDHeader = "X-Couple-ID"

// coupleID resolves the tenant for a request. Returns uuid.Nil when neither
// the header nor the configured default names a couple; the import service
// treats that as ErrTenantMissing.
func (s *Server) coupleID(r *http.Request) (uuid.UUID, bool) {
	if raw := r.Header.Get(coupleIDHeader); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}
	return s.tenantID, true
}
