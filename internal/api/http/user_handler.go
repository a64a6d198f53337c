package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/service"

	"github.com/gorilla/mux"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type UserHandler struct {
	users        service.UserService
	verification service.VerificationService
	cookies      *cookieWriter
}

func NewUserHandler(users service.UserService, verification service.VerificationService, cookies *cookieWriter) *UserHandler {
	return &UserHandler{users: users, verification: verification, cookies: cookies}
}

type registerPayload struct {
	InvitationCode string             `json:"invitation_code"`
	Email          string             `json:"email"`
	Password       string             `json:"password"`
	FullName       string             `json:"full_name"`
	StudentID      string             `json:"student_id"`
	Session        string             `json:"session"`
	Batch          string             `json:"batch"`
	Department     string             `json:"department"`
	IsGraduated    bool               `json:"is_graduated"`
	PassingYear    *int32             `json:"passing_year"`
	ContactNumber  string             `json:"contact_number"`
	Address        string             `json:"address"`
	Bio            string             `json:"bio"`
	SocialLinks    domain.SocialLinks `json:"social_links"`
}

// Register accepts a multipart form: a "data" part with the JSON payload and
// an "image" part with the profile photo. Reached only through the
// invitation gate.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, domain.Validation("invalid multipart form", nil))
		return
	}

	var payload registerPayload
	if err := json.Unmarshal([]byte(r.FormValue("data")), &payload); err != nil {
		respondError(w, r, domain.Validation("invalid registration payload", nil))
		return
	}

	in := service.RegisterInput{
		InvitationCode: payload.InvitationCode,
		Email:          payload.Email,
		Password:       payload.Password,
		FullName:       payload.FullName,
		StudentID:      payload.StudentID,
		Session:        payload.Session,
		Batch:          payload.Batch,
		Department:     payload.Department,
		IsGraduated:    payload.IsGraduated,
		PassingYear:    payload.PassingYear,
		ContactNumber:  payload.ContactNumber,
		Address:        payload.Address,
		Bio:            payload.Bio,
		SocialLinks:    payload.SocialLinks,
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		in.Image = file
		in.ImageFilename = header.Filename
		in.ImageContentType = header.Header.Get("Content-Type")
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// The gate cookie is single-purpose; drop it once registration lands.
	h.cookies.clearGate(w)
	respondData(w, http.StatusCreated, "registration successful; check your email for the verification link", user)
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Code  string `json:"code"`
}

func (h *UserHandler) VerifyEmailToken(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.verification.VerifyByToken(r.Context(), req.Email, req.Token)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "email verified; your application is now awaiting review", user)
}

func (h *UserHandler) VerifyEmailCode(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.verification.VerifyByCode(r.Context(), req.Email, req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "email verified; your application is now awaiting review", user)
}

func (h *UserHandler) RequestFastVerification(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	updated, err := h.verification.RequestFastVerification(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "fast verification requested; an admin has been notified", updated)
}

// GetProfile resolves a user by numeric ID, email, or student ID.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["identifier"]
	user, err := h.users.GetProfile(r.Context(), identifier)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", user)
}

func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var updates map[string]any
	if err := decodeJSON(r, &updates); err != nil {
		respondError(w, r, err)
		return
	}

	actor := actorOf(r)
	user, err := h.users.Patch(r.Context(), actor, targetID, updates)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "profile updated", user)
}

func (h *UserHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, domain.Validation("invalid multipart form", nil))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, r, domain.Validation("image file is required", map[string]string{"image": "required"}))
		return
	}
	defer file.Close()

	actor := actorOf(r)
	user, err := h.users.UpdateImage(r.Context(), actor, targetID,
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "profile image updated", user)
}

type updateRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), targetID, req.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "role updated", user)
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, domain.Validation("invalid user ID", map[string]string{"id": "must be a positive integer"})
	}
	return int32(id), nil
}

func actorOf(r *http.Request) service.Actor {
	user := CurrentUser(r)
	return service.Actor{ID: user.ID, Role: user.Role}
}
