package http

import (
	"net/http"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/service"
)

type AuthHandler struct {
	auth    service.AuthService
	cookies *cookieWriter
}

func NewAuthHandler(auth service.AuthService, cookies *cookieWriter) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginGateData accompanies 401 gate failures so the frontend can route the
// user to the verification or waiting screen.
type loginGateData struct {
	IsVerified        bool                     `json:"is_verified"`
	ApplicationStatus domain.ApplicationStatus `json:"application_status"`
	RejectionReason   string                   `json:"rejection_reason,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if user != nil {
			respondErrorData(w, r, err, loginGateData{
				IsVerified:        user.IsVerified,
				ApplicationStatus: user.ApplicationStatus,
				RejectionReason:   user.RejectionReason,
			})
			return
		}
		respondError(w, r, err)
		return
	}

	h.cookies.setAuth(w, token, string(user.Role))
	respondData(w, http.StatusOK, "login successful", map[string]any{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clearAuth(w)
	respondMessage(w, http.StatusOK, "logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", CurrentUser(r))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	user := CurrentUser(r)
	if err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "password changed")
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "if an account exists for this email, a reset link has been sent")
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "password has been reset; you can now log in")
}
