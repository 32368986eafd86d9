// Package backendtest is an in-process fake of the fitness-social backend
// for tests and local demos. It implements the account, profile and
// preferences endpoints and supports failure and latency injection.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type user struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash []byte
	DisplayName  string
	Bio          *string
	PictureURL   *string
	CreatedAt    time.Time
	Preferences  Preferences
}

// Preferences mirrors the backend preference record.
type Preferences struct {
	PreferredLanguage         string `json:"preferredLanguage"`
	IsDarkModeEnabled         bool   `json:"isDarkModeEnabled"`
	ReceiveEmailNotifications bool   `json:"receiveEmailNotifications"`
	UnitSystem                string `json:"unitSystem"`
}

func defaultPreferences() Preferences {
	return Preferences{
		PreferredLanguage:         "en",
		ReceiveEmailNotifications: true,
		UnitSystem:                "metric",
	}
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	mu       sync.Mutex
	users    map[string]*user
	tokens   map[string]string
	google   map[string]string
	failures map[string]int
	calls    map[string]int
	latency  time.Duration
	router   *mux.Router
}

func New() *Server {
	s := &Server{
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		google:   make(map[string]string),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
	s.router = s.routes()
	return s
}

// Start serves s on a local listener for the lifetime of tb and returns the
// API base URL.
func (s *Server) Start(tb testing.TB) string {
	tb.Helper()
	srv := httptest.NewServer(s)
	tb.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/account/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/account/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/account/external-login", s.externalLogin).Methods(http.MethodPost)
	api.HandleFunc("/user/profile", s.authenticated(s.getProfile)).Methods(http.MethodGet)
	api.HandleFunc("/user/profile", s.authenticated(s.patchProfile)).Methods(http.MethodPatch)
	api.HandleFunc("/user/profile/photo", s.authenticated(s.uploadPhoto)).Methods(http.MethodPatch)
	api.HandleFunc("/user/preferences", s.authenticated(s.getPreferences)).Methods(http.MethodGet)
	api.HandleFunc("/user/preferences", s.authenticated(s.patchPreferences)).Methods(http.MethodPatch)
	return r
}

func routeKey(method, p string) string {
	return method + " " + strings.TrimPrefix(p, "/api")
}

// Fail makes every request to route ("PATCH /user/preferences") answer with
// status until Recover is called.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// SetLatency delays every response by d, honouring request cancellation.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, r.URL.Path)
		s.mu.Lock()
		s.calls[key]++
		status, failing := s.failures[key]
		latency := s.latency
		s.mu.Unlock()

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeError(w, status, fmt.Sprintf("injected failure for %s", key))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SeedUser registers an account directly and returns its id and a token.
func (s *Server) SeedUser(email, userName, password string) (id, token string, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.createLocked(email, userName, hash)
	if err != nil {
		return "", "", err
	}
	return u.ID, s.issueLocked(u.ID), nil
}

// RegisterGoogleToken makes idToken a valid Google credential for email.
func (s *Server) RegisterGoogleToken(idToken, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.google[idToken] = strings.ToLower(email)
}

// Preferences returns the stored preferences of userID.
func (s *Server) Preferences(userID string) (Preferences, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return Preferences{}, false
	}
	return u.Preferences, true
}

// SetDarkMode overwrites the stored dark-mode flag of userID.
func (s *Server) SetDarkMode(userID string, dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Preferences.IsDarkModeEnabled = dark
	}
}

func (s *Server) createLocked(email, userName string, hash []byte) (*user, error) {
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, email) {
			return nil, fmt.Errorf("email %q is already taken", email)
		}
		if strings.EqualFold(existing.UserName, userName) {
			return nil, fmt.Errorf("user name %q is already taken", userName)
		}
	}
	u := &user{
		ID:           uuid.NewString(),
		Email:        email,
		UserName:     userName,
		PasswordHash: hash,
		DisplayName:  userName,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		Preferences:  defaultPreferences(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Server) issueLocked(userID string) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		s.mu.Lock()
		u := s.users[s.tokens[token]]
		s.mu.Unlock()
		if u == nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r, u)
	}
}

type accountUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  accountUser `json:"user"`
}

func (s *Server) authResponseLocked(u *user) authResponse {
	return authResponse{
		Token: s.issueLocked(u.ID),
		User:  accountUser{ID: u.ID, Email: u.Email, UserName: u.UserName, DisplayName: u.DisplayName},
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	var problems []string
	if !strings.Contains(req.Email, "@") {
		problems = append(problems, "Email is invalid")
	}
	if strings.TrimSpace(req.UserName) == "" {
		problems = append(problems, "UserName is required")
	}
	if len(req.Password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if len(problems) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(problems, "; "))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hashing failed")
		return
	}
	s.mu.Lock()
	u, err := s.createLocked(req.Email, req.UserName, hash)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	resp := s.authResponseLocked(u)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Login) || strings.EqualFold(u.UserName, req.Login) {
			found = u
			break
		}
	}
	s.mu.Unlock()
	if found == nil || found.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword(found.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}
	s.mu.Lock()
	resp := s.authResponseLocked(found)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) externalLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		IDToken  string `json:"idToken"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.Provider != "Google" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported provider %q", req.Provider))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.google[req.IDToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}
	var found *user
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found = u
			break
		}
	}
	if found == nil {
		name, _, _ := strings.Cut(email, "@")
		created, err := s.createLocked(email, name, nil)
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		found = created
	}
	writeJSON(w, http.StatusOK, s.authResponseLocked(found))
}

type profileResponse struct {
	ID                string  `json:"id"`
	UserName          string  `json:"userName"`
	DisplayName       string  `json:"displayName"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
	CreatedAt         string  `json:"createdAt"`
}

func profileOf(u *user) profileResponse {
	return profileResponse{
		ID:                u.ID,
		UserName:          u.UserName,
		DisplayName:       u.DisplayName,
		Bio:               u.Bio,
		ProfilePictureURL: u.PictureURL,
		// Zoneless, the way the real backend serialises DateTime.
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

func (s *Server) getProfile(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	resp := profileOf(u)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) patchProfile(w http.ResponseWriter, r *http.Request, u *user) {
	var req struct {
		DisplayName *string `json:"displayName"`
		Bio         *string `json:"bio"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		bio := *req.Bio
		u.Bio = &bio
	}
	resp := profileOf(u)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) uploadPhoto(w http.ResponseWriter, r *http.Request, u *user) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()
	if _, err := io.Copy(io.Discard, file); err != nil {
		writeError(w, http.StatusBadRequest, "Unreadable file")
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeError(w, http.StatusBadRequest, "File must be an image")
		return
	}
	url := "/media/" + u.ID + "/" + path.Base(header.Filename)
	s.mu.Lock()
	u.PictureURL = &url
	resp := profileOf(u)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getPreferences(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	prefs := u.Preferences
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) patchPreferences(w http.ResponseWriter, r *http.Request, u *user) {
	var req struct {
		PreferredLanguage         *string `json:"preferredLanguage"`
		IsDarkModeEnabled         *bool   `json:"isDarkModeEnabled"`
		ReceiveEmailNotifications *bool   `json:"receiveEmailNotifications"`
		UnitSystem                *string `json:"unitSystem"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.UnitSystem != nil && *req.UnitSystem != "metric" && *req.UnitSystem != "imperial" {
		writeError(w, http.StatusBadRequest, "UnitSystem must be metric or imperial")
		return
	}
	s.mu.Lock()
	if req.PreferredLanguage != nil {
		u.Preferences.PreferredLanguage = *req.PreferredLanguage
	}
	if req.IsDarkModeEnabled != nil {
		u.Preferences.IsDarkModeEnabled = *req.IsDarkModeEnabled
	}
	if req.ReceiveEmailNotifications != nil {
		u.Preferences.ReceiveEmailNotifications = *req.ReceiveEmailNotifications
	}
	if req.UnitSystem != nil {
		u.Preferences.UnitSystem = *req.UnitSystem
	}
	prefs := u.Preferences
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, prefs)
}

func readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
