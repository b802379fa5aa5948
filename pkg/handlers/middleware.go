package handlers

import (
	"net/http"

	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
)

// WithDatabase injects the connection pool into every request context, so
// repositories resolve their querier without threading the pool through
// call sites. Transactional paths override it with their transaction.
func WithDatabase(db *database.DB, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := database.WithQuerier(r.Context(), db)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
