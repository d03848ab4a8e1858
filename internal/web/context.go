package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/settings"
	mw "github.com/JonMunkholm/fleetdesk/internal/web/middleware"
)

// OwnerHeader identifies the user whose column settings apply.
const OwnerHeader = "X-Owner-ID"

// withClient attaches the client metadata used for settings lookups and
// export logging. RemoteAddr has already been resolved by TrustedRealIP.
func withClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), core.Client{
			IP:        mw.ClientIP(r),
			UserAgent: r.UserAgent(),
			Owner:     ownerFromHeader(r),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromHeader(r *http.Request) string {
	if owner := strings.TrimSpace(r.Header.Get(OwnerHeader)); owner != "" {
		return owner
	}
	return settings.DefaultOwner
}

// owner returns the settings owner of the request.
func owner(r *http.Request) string {
	if o := core.ClientFromContext(r.Context()).Owner; o != "" {
		return o
	}
	return settings.DefaultOwner
}
