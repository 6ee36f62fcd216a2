package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"wikid/pkg/auth"
	"wikid/pkg/config"
	"wikid/pkg/logger"
	"wikid/pkg/metrics"
	"wikid/pkg/store"
	"wikid/pkg/utils"
)

// RegisterSessions registers signup, login and logout.
func RegisterSessions(r *mux.Router) {
	r.HandleFunc("/signup", signup).Methods(http.MethodPost)
	r.HandleFunc("/login", login).Methods(http.MethodPost)
	r.HandleFunc("/logout", logout).Methods(http.MethodPost)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// signup creates an account plus its personal namespace and logs the new
// user straight in.
func signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	hash, err := auth.DefaultVerifier.Hash(c.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	u, err := store.CreateUser(c.Username, hash)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	logger.Info("user_signed_up", "user", u.Name)
	issueSession(w, u.Name, http.StatusCreated)
}

// login verifies the password and issues a fresh session token, both as a
// cookie and in the response body for header-based clients.
func login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, ok, err := store.GetUser(c.Username)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if !ok || !auth.DefaultVerifier.Verify(c.Password, u.PasswordHash) {
		metrics.AuthFailures.Inc()
		logger.Warn("login_failed", "user", c.Username)
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	logger.Info("login_ok", "user", u.Name)
	issueSession(w, u.Name, http.StatusOK)
}

// logout clears the session cookie. Tokens held in headers simply expire.
func logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func issueSession(w http.ResponseWriter, username string, status int) {
	signed, err := auth.NewToken(username).Signed()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	cookie := &http.Cookie{
		Name:     auth.CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := config.GetTokenTTL(); ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, cookie)
	_ = utils.JSONWrite(w, status, map[string]string{
		"username": username,
		"token":    signed,
	})
}
