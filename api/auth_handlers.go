package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"wakegate/config"
	"wakegate/core/auth"
	"wakegate/core/utils"
)

type AuthHandler struct {
	cfg    *config.AppConfig
	svc    *auth.Service
	logger *utils.Logger
}

func NewAuthHandler(cfg *config.AppConfig, svc *auth.Service, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, svc: svc, logger: logger}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.TLSEnabled,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.svc.Tokens().TTL() / time.Second),
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.TLSEnabled,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// State tells the frontend whether first-run setup is still open.
func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	setupRequired, err := h.svc.SetupRequired(r.Context())
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"setup_required": setupRequired})
}

type setupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	OTPSecret string `json:"otp_secret"`
	OTPCode   string `json:"otp_code"`
}

func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	token, err := h.svc.Setup(r.Context(), req.Username, req.Password, strings.TrimSpace(req.OTPSecret), req.OTPCode)
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"username": req.Username})
}

// EnrollOTP hands the setup page a candidate secret and QR code. Open only
// while no account exists; afterwards the account page regenerates secrets
// behind a password check.
func (h *AuthHandler) EnrollOTP(w http.ResponseWriter, r *http.Request) {
	setupRequired, err := h.svc.SetupRequired(r.Context())
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	if !setupRequired {
		writeError(w, http.StatusForbidden, "forbidden", "Setup already completed")
		return
	}
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	enr, err := h.svc.NewEnrollment(strings.TrimSpace(req.Username))
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	h.writeEnrollment(w, enr)
}

func (h *AuthHandler) writeEnrollment(w http.ResponseWriter, enr *auth.Enrollment) {
	png, err := qrcode.Encode(enr.URI, qrcode.Medium, 256)
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"secret":        enr.Secret,
		"uri":           enr.URI,
		"qr_png_base64": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var cred auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	cred.Username = strings.TrimSpace(cred.Username)
	token, err := h.svc.Login(r.Context(), cred.Username, cred.Password, cred.OTPCode)
	if err != nil {
		loginAttempts.WithLabelValues(loginResult(err)).Inc()
		writeAuthError(w, h.logger, err)
		return
	}
	loginAttempts.WithLabelValues("success").Inc()
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"username": cred.Username})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case err == auth.ErrOTPRequired:
		return "otp_required"
	case err == auth.ErrOTPInvalid:
		return "otp_invalid"
	case err == auth.ErrInvalidCredentials:
		return "invalid_credentials"
	}
	return "error"
}

// Logout discards the cookie. The token itself stays valid until expiry;
// there is no server-side revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *AuthHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewUsername     string `json:"new_username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	if err := h.svc.ChangeUsername(r.Context(), id.Username, req.CurrentPassword, strings.TrimSpace(req.NewUsername)); err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	// The old token still names the old username and would no longer
	// resolve; drop the cookie so the client re-authenticates.
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	if err := h.svc.ChangePassword(r.Context(), id.Username, req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) DisableOTP(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	var req struct {
		CurrentPassword string `json:"current_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	if err := h.svc.DisableOTP(r.Context(), id.Username, req.CurrentPassword); err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) RegenerateOTP(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	var req struct {
		CurrentPassword string `json:"current_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}
	enr, err := h.svc.RegenerateOTP(r.Context(), id.Username, req.CurrentPassword)
	if err != nil {
		writeAuthError(w, h.logger, err)
		return
	}
	h.writeEnrollment(w, enr)
}
