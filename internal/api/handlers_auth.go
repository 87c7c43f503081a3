package api

import (
	"net/http"
	"strings"

	"github.com/slmn-lf/east-stress-store/internal/logging"
)

const (
	loginPage     = "/auth/login"
	dashboardPage = "/admin/dashboard"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login accepts a JSON body or the login page form. Form posts are
// answered with redirects.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	jsonReq := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	var req loginRequest
	next := dashboardPage
	if jsonReq {
		if !decodeOrFail(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid form", nil)
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		next = safeRedirect(r.PostFormValue("next"), dashboardPage)
	}

	token, err := s.sessions.Login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Str("remote_addr", r.RemoteAddr).Msg("admin login failed")
		if jsonReq {
			respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error(), nil)
			return
		}
		http.Redirect(w, r, loginPage+"?error=invalid", http.StatusSeeOther)
		return
	}

	s.sessions.SetCookie(w, token)
	logging.Ctx(r.Context()).Info().Msg("admin logged in")
	if jsonReq {
		respond(w, r, http.StatusOK, map[string]string{"username": strings.TrimSpace(req.Username)}, nil)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	if wantsJSON(r) {
		respond(w, r, http.StatusOK, map[string]bool{"logged_out": true}, nil)
		return
	}
	http.Redirect(w, r, loginPage, http.StatusSeeOther)
}

// safeRedirect only allows same-site absolute paths.
func safeRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}
