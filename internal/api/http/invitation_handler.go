package http

import (
	"net/http"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/service"

	"github.com/gorilla/mux"
)

type InvitationHandler struct {
	invitations service.InvitationService
	cookies     *cookieWriter
}

func NewInvitationHandler(invitations service.InvitationService, cookies *cookieWriter) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, cookies: cookies}
}

type issueInvitationRequest struct {
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	FormID string      `json:"form_id"`
}

func (h *InvitationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.invitations.Issue(r.Context(), service.IssueInvitationInput{
		Email:  req.Email,
		Role:   req.Role,
		FormID: req.FormID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	message := "invitation issued and emailed"
	if !result.EmailDelivered {
		message = "invitation issued but the email could not be delivered"
	}
	respondData(w, http.StatusCreated, message, result.Invitation)
}

type verifyInvitationRequest struct {
	Code string `json:"code"`
}

// Verify checks a code and, on success, sets the short-lived gate cookie that
// unlocks the registration form.
func (h *InvitationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.invitations.Verify(r.Context(), req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.cookies.setGate(w, result.GateToken)
	respondData(w, http.StatusOK, "invitation code is valid", result)
}

func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	inv, err := h.invitations.Cancel(r.Context(), code)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "invitation cancelled", inv)
}

func (h *InvitationHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	inv, err := h.invitations.Get(r.Context(), code)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", inv)
}
