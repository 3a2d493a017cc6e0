package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"brawlpit/arena"
	"brawlpit/database"
)

type Server struct {
	router  *mux.Router
	repo    *database.Repository
	pit     *arena.Arena
	authMW  *AuthMiddleware
	authH   *AuthHandler
	gateway *Gateway
}

func NewServer(repo *database.Repository, pit *arena.Arena, sessionSecret string) *Server {
	authMW := NewAuthMiddleware(repo, sessionSecret)
	authH := NewAuthHandler(repo, authMW)

	s := &Server{
		router:  mux.NewRouter().StrictSlash(true),
		repo:    repo,
		pit:     pit,
		authMW:  authMW,
		authH:   authH,
		gateway: NewGateway(),
	}

	s.setupRoutes()
	return s
}

// Gateway returns the websocket hub so main can wire it into the
// arena's notifier fan-out.
func (s *Server) Gateway() *Gateway {
	return s.gateway
}

func (s *Server) setupRoutes() {
	// Public routes
	public := s.router.PathPrefix("").Subrouter()
	public.Use(s.authMW.LoadAccount)

	public.HandleFunc("/auth/discord", s.authH.HandleLogin).Methods("GET")
	public.HandleFunc("/auth/discord/callback", s.authH.HandleCallback).Methods("GET")
	public.HandleFunc("/logout", s.authH.HandleLogout).Methods("POST")

	public.HandleFunc("/api/arena", s.handleArenaStatus).Methods("GET")
	public.HandleFunc("/api/matches", s.handleMatchHistory).Methods("GET")
	public.HandleFunc("/api/leaderboard", s.handleLeaderboard).Methods("GET")

	// WebSocket route (public, spectators welcome)
	public.HandleFunc("/ws/arena", s.gateway.HandleWebSocket)

	// Player routes (require authentication)
	player := s.router.PathPrefix("/api/arena").Subrouter()
	player.Use(s.authMW.LoadAccount)
	player.Use(s.authMW.RequireAuth)

	player.HandleFunc("/me", s.handleArenaMe).Methods("GET")
	player.HandleFunc("/register", s.handleRegister).Methods("POST")
	player.HandleFunc("/unregister", s.handleUnregister).Methods("POST")
	player.HandleFunc("/attack", s.handleAttack).Methods("POST")

	// Admin routes
	admin := s.router.PathPrefix("/api/admin/arena").Subrouter()
	admin.Use(s.authMW.LoadAccount)
	admin.Use(s.authMW.RequireAuth)

	admin.HandleFunc("/open", s.handleAdminOpen).Methods("POST")
	admin.HandleFunc("/start", s.handleAdminStart).Methods("POST")
	admin.HandleFunc("/close", s.handleAdminClose).Methods("POST")
}

// Command handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if err := s.pit.Register(account.ID); err != nil {
		writeArenaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if err := s.pit.Unregister(account.ID); err != nil {
		writeArenaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unregistered"})
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())

	var req struct {
		TargetID int `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.pit.Attack(account.ID, req.TargetID)
	if err != nil {
		writeArenaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdminOpen(w http.ResponseWriter, r *http.Request) {
	if err := s.requireAdmin(r); err != nil {
		writeArenaError(w, err)
		return
	}
	if err := s.pit.Open(); err != nil {
		writeArenaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": arena.StatusRegistration})
}

func (s *Server) handleAdminStart(w http.ResponseWriter, r *http.Request) {
	if err := s.requireAdmin(r); err != nil {
		writeArenaError(w, err)
		return
	}
	if err := s.pit.Start(); err != nil {
		writeArenaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": arena.StatusActive})
}

func (s *Server) handleAdminClose(w http.ResponseWriter, r *http.Request) {
	if err := s.requireAdmin(r); err != nil {
		writeArenaError(w, err)
		return
	}
	s.pit.Close()
	writeJSON(w, http.StatusOK, map[string]string{"status": arena.StatusClosed})
}

func (s *Server) requireAdmin(r *http.Request) error {
	account := AccountFromContext(r.Context())
	if account == nil || !account.IsAdmin {
		return fmt.Errorf("%w: admin command", arena.ErrNotAuthorized)
	}
	return nil
}

// Query handlers

func (s *Server) handleArenaStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pit.Snapshot())
}

func (s *Server) handleArenaMe(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	view, err := s.pit.View(account.ID)
	if err != nil {
		writeArenaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMatchHistory(w http.ResponseWriter, r *http.Request) {
	matches, err := s.repo.GetRecentMatches(20)
	if err != nil {
		log.Printf("Failed to load match history: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load match history")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

type leaderboardEntry struct {
	Username string `json:"username"`
	Race     string `json:"race"`
	Rank     string `json:"rank"`
	Gold     int    `json:"gold"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.repo.GetAllAccountsByGold()
	if err != nil {
		log.Printf("Failed to load leaderboard: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	entries := make([]leaderboardEntry, 0, len(accounts))
	for _, a := range accounts {
		entries = append(entries, leaderboardEntry{
			Username: a.Username,
			Race:     a.Race,
			Rank:     a.Rank,
			Gold:     a.Gold,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeArenaError maps the arena error taxonomy onto HTTP codes.
func writeArenaError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, arena.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, arena.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, arena.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, arena.ErrState), errors.Is(err, arena.ErrPrecondition):
		status = http.StatusConflict
	}
	writeJSONError(w, status, err.Error())
}

func (s *Server) Start(port string) error {
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"*"}),
	)

	finalHandler := corsHandler(s.router)

	log.Printf("Starting web server on port %s", port)
	return http.ListenAndServe(":"+port, finalHandler)
}
