package api

import (
	"log/slog"
	"net/http"

	"striker-stats-server/auth"
	"striker-stats-server/matcherrors"
)

// adminSubject is the session subject of password logins.
const adminSubject = "admin"

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// SessionResponse reports whether the caller holds a valid session.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject,omitempty"`
}

// Login exchanges the admin password for a session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.Auth == nil || !h.Auth.CheckPassword(req.Password) {
		slog.Warn("failed login", "tag", "auth", "remote", r.RemoteAddr)
		h.writeError(w, r, matcherrors.ErrUnauthorized)
		return
	}
	token, exp, err := h.Auth.IssueToken(adminSubject)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	http.SetCookie(w, h.Auth.SessionCookie(token, exp))
	writeJSON(w, http.StatusOK, Result{Success: true, Message: "Logged in"})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.Auth != nil {
		http.SetCookie(w, h.Auth.ClearCookie())
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Message: "Logged out"})
}

// Session reports the caller's session state.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{}
	if h.Auth != nil {
		if claims, err := h.Auth.Authenticate(r); err == nil {
			resp.Authenticated = true
			resp.Subject = auth.SubjectFromClaims(claims)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
