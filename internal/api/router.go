package api

import (
	"database/sql"
	"net/http"

	"kleiderkammer/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	articlesHandler := &ArticlesHandler{DB: db}
	personsHandler := &PersonsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Accounts (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Articles: read (all roles), write (manager+).
	mux.Handle("GET /api/articles", authMW(http.HandlerFunc(articlesHandler.List)))
	mux.Handle("POST /api/articles", authMW(requireManager(http.HandlerFunc(articlesHandler.Create))))
	mux.Handle("GET /api/articles/{id}", authMW(http.HandlerFunc(articlesHandler.Get)))
	mux.Handle("PATCH /api/articles/{id}", authMW(requireManager(http.HandlerFunc(articlesHandler.Update))))
	mux.Handle("DELETE /api/articles/{id}", authMW(requireManager(http.HandlerFunc(articlesHandler.Delete))))
	mux.Handle("PATCH /api/articles/{id}/assignment", authMW(http.HandlerFunc(articlesHandler.Assign)))
	mux.Handle("POST /api/articles/{id}/helmet-check", authMW(requireManager(http.HandlerFunc(articlesHandler.HelmetCheck))))

	// Children: read (all roles), write (manager+).
	mux.Handle("GET /api/children", authMW(http.HandlerFunc(personsHandler.List)))
	mux.Handle("POST /api/children", authMW(requireManager(http.HandlerFunc(personsHandler.Create))))
	mux.Handle("GET /api/children/{id}", authMW(http.HandlerFunc(personsHandler.Get)))
	mux.Handle("PATCH /api/children/{id}", authMW(requireManager(http.HandlerFunc(personsHandler.Update))))
	mux.Handle("DELETE /api/children/{id}", authMW(requireManager(http.HandlerFunc(personsHandler.Delete))))
	mux.Handle("GET /api/children/{id}/articles", authMW(http.HandlerFunc(personsHandler.Articles)))

	return mux
}
