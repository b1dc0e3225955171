package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/blogapi/internal/common"
)

const sessionCookieName = common.SessionCookieName

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type loginUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	decodeJSON(r, &req)

	_, err := h.users.Register(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password)
	switch {
	case err == nil:
		writeMessage(w, http.StatusCreated, "User registered successfully. Please verify your email.")
	case errors.Is(err, common.ErrPasswordTooLong):
		writeMessage(w, http.StatusBadRequest, "Password must be at most 72 bytes")
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, common.ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, "Email is already registered")
	default:
		h.log.Error(r.Context(), "register failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error registering user")
	}
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	decodeJSON(r, &req)

	res, err := h.users.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case errors.Is(err, common.ErrUnverifiedEmail):
		writeMessage(w, http.StatusForbidden, "Please verify your email to log in.")
		return
	default:
		h.log.Error(r.Context(), "login failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    res.Session.ID,
		Path:     "/",
		MaxAge:   int(h.opts.SessionTTL.Seconds()),
		Expires:  res.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    loginUser{ID: res.User.ID, Name: res.User.Name},
	})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if c, err := r.Cookie(sessionCookieName); err == nil {
		sessionID = c.Value
	}

	if err := h.users.Logout(r.Context(), sessionID); err != nil {
		h.log.Error(r.Context(), "logout failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error logging out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, "Logout successful")
}

// verifyEmail takes the token from the query string, or from a JSON body on POST.
func (h *handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Method == http.MethodPost {
		var req verifyRequest
		decodeJSON(r, &req)
		token = req.Token
	}

	err := h.users.VerifyEmail(r.Context(), strings.TrimSpace(token))
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Email verified successfully. You can now log in.")
	case errors.Is(err, common.ErrMissingToken):
		writeMessage(w, http.StatusBadRequest, "Verification token is required")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusBadRequest, "User not found")
	case errors.Is(err, common.ErrInvalidToken):
		h.log.Warn(r.Context(), "verification token rejected", "kind", tokenErrorKind(err))
		writeMessage(w, http.StatusInternalServerError, msgTokenInvalid)
	default:
		h.log.Error(r.Context(), "email verification failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgTokenInvalid)
	}
}
