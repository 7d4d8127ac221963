package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/notelyhq/notely/internal/config"
	"github.com/notelyhq/notely/internal/database"
	"github.com/notelyhq/notely/internal/mail"
	postgresrepo "github.com/notelyhq/notely/internal/repository/postgres"
	"github.com/notelyhq/notely/internal/service"
	"github.com/notelyhq/notely/internal/storage"
	"github.com/notelyhq/notely/internal/transport/http/handlers"
	"github.com/notelyhq/notely/internal/transport/http/middleware"
	"github.com/notelyhq/notely/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	if err := database.Migrate(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Object storage
	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Mail
	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg)
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	noteRepo := postgresrepo.NewNoteRepo(pool)
	labelRepo := postgresrepo.NewLabelRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, mailer, store, cfg.JWTSecret, cfg.ClientURL)
	noteService := service.NewNoteService(noteRepo, userRepo, labelRepo, store)
	labelService := service.NewLabelService(labelRepo)
	userService := service.NewUserService(userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	noteHandler := handlers.NewNoteHandler(noteService)
	labelHandler := handlers.NewLabelHandler(labelService)
	userHandler := handlers.NewUserHandler(userService)

	// Collaboration relay
	hub := ws.NewHub()
	go hub.Run()

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret)
	activated := middleware.Activated(userRepo)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(activated(h))
	}

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Public - Auth
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/activate/{token}", authHandler.Activate)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/forgotpassword", authHandler.ForgotPassword)
	mux.HandleFunc("PUT /api/auth/resetpassword/{token}", authHandler.ResetPassword)

	// Protected - Auth (me works before activation, the rest requires it)
	mux.Handle("GET /api/auth/me", auth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/updatedetails", protect(authHandler.UpdateDetails))
	mux.Handle("PUT /api/auth/updatepassword", protect(authHandler.UpdatePassword))
	mux.Handle("PUT /api/auth/preferences", protect(authHandler.UpdatePreferences))
	mux.Handle("PUT /api/auth/avatar", protect(authHandler.UploadAvatar))

	// Protected - Notes
	mux.Handle("GET /api/notes", protect(noteHandler.List))
	mux.Handle("POST /api/notes", protect(noteHandler.Create))
	mux.Handle("GET /api/notes/search", protect(noteHandler.Search))
	mux.Handle("GET /api/notes/{id}", protect(noteHandler.Get))
	mux.Handle("PUT /api/notes/{id}", protect(noteHandler.Update))
	mux.Handle("DELETE /api/notes/{id}", protect(noteHandler.Delete))
	mux.Handle("POST /api/notes/{id}/verify", protect(noteHandler.Verify))
	mux.Handle("PUT /api/notes/{id}/images", protect(noteHandler.UploadImages))
	mux.Handle("PUT /api/notes/{id}/collaborators/{userId}", protect(noteHandler.AddCollaborator))
	mux.Handle("DELETE /api/notes/{id}/collaborators/{userId}", protect(noteHandler.RemoveCollaborator))

	// Protected - Labels
	mux.Handle("GET /api/labels", protect(labelHandler.List))
	mux.Handle("POST /api/labels", protect(labelHandler.Create))
	mux.Handle("PUT /api/labels/{id}", protect(labelHandler.Update))
	mux.Handle("DELETE /api/labels/{id}", protect(labelHandler.Delete))

	// Protected - Users
	mux.Handle("GET /api/users/search", protect(userHandler.Search))
	mux.Handle("GET /api/users/{id}", protect(userHandler.Get))

	// WebSocket (token auth happens in the handshake)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(cfg.ClientURL)(mux)))
}
