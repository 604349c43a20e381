package handler

import (
	"errors"
	"net/http"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/auth"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/service"
)

// requestPrincipal resolves the request's user record, or nil for
// anonymous requests. A session whose user no longer exists counts as
// anonymous rather than an error, so stale cookies degrade gracefully.
// The authorization pipeline downstream treats a nil principal as
// unauthenticated.
func requestPrincipal(r *http.Request, auths *service.AuthService) (*model.User, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, nil
	}

	user, err := auths.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
