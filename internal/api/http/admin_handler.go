package http

import (
	"net/http"

	"memberhub-backend/internal/service"
)

type AdminHandler struct {
	admin     service.AdminService
	dashboard service.DashboardService
}

func NewAdminHandler(admin service.AdminService, dashboard service.DashboardService) *AdminHandler {
	return &AdminHandler{admin: admin, dashboard: dashboard}
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	admin := CurrentUser(r)
	user, err := h.admin.Approve(r.Context(), admin.ID, targetID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "application approved", user)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	admin := CurrentUser(r)
	user, err := h.admin.Reject(r.Context(), admin.ID, targetID, req.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "application rejected", user)
}

func (h *AdminHandler) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListPendingApplications(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", users)
}

func (h *AdminHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListMembers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", users)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.AdminStats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", stats)
}

func (h *AdminHandler) MemberDashboard(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	dash, err := h.dashboard.MemberDashboard(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", dash)
}
