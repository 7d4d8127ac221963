package middleware

import (
	"net/http"

	"github.com/notelyhq/notely/internal/repository"
)

// Activated rejects requests from accounts that have not exchanged their
// activation token yet. Must run after Auth.
func Activated(users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				http.Error(w, `{"success":false,"error":"Server error"}`, http.StatusInternalServerError)
				return
			}
			if user == nil || !user.IsActivated {
				http.Error(w, `{"success":false,"error":"Please activate your account"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
