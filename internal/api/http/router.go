package http

import (
	"net/http"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/security"
	"memberhub-backend/internal/service"
	"memberhub-backend/internal/storage"

	"github.com/gorilla/mux"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Auth          service.AuthService
	Users         service.UserService
	Invitations   service.InvitationService
	Verification  service.VerificationService
	Admin         service.AdminService
	Dashboard     service.DashboardService
	Files         storage.Storage
	Tokens        security.TokenManager
	SecureCookies bool
}

func NewRouter(deps RouterDeps) *mux.Router {
	cookies := &cookieWriter{
		secure:  deps.SecureCookies,
		authTTL: deps.Tokens.AuthTTL(),
		gateTTL: deps.Tokens.GateTTL(),
	}
	mw := NewMiddleware(deps.Auth, deps.Tokens, cookies)

	authH := NewAuthHandler(deps.Auth, cookies)
	userH := NewUserHandler(deps.Users, deps.Verification, cookies)
	invH := NewInvitationHandler(deps.Invitations, cookies)
	adminH := NewAdminHandler(deps.Admin, deps.Dashboard)
	fileH := NewFileHandler(deps.Files)

	r := mux.NewRouter()
	r.Use(RequestLogger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)
	r.HandleFunc("/files/{key}", fileH.Serve).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public surface.
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authH.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/password/request", authH.RequestPasswordReset).Methods(http.MethodPost)
	api.HandleFunc("/auth/password/reset", authH.ResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/invitations/verify", invH.Verify).Methods(http.MethodPost)
	api.HandleFunc("/users/verify/token", userH.VerifyEmailToken).Methods(http.MethodPost)
	api.HandleFunc("/users/verify/code", userH.VerifyEmailCode).Methods(http.MethodPost)

	// Registration sits behind the invitation gate, not behind auth.
	api.Handle("/users/register",
		mw.RequireGate(http.HandlerFunc(userH.Register))).Methods(http.MethodPost)

	// Authenticated surface.
	authed := api.NewRoute().Subrouter()
	authed.Use(mw.Authenticate)
	authed.HandleFunc("/auth/me", authH.Me).Methods(http.MethodGet)
	authed.HandleFunc("/auth/change-password", authH.ChangePassword).Methods(http.MethodPost)
	authed.HandleFunc("/users/profile/{identifier}", userH.GetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/users/request-fast-verification", userH.RequestFastVerification).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id:[0-9]+}", userH.Patch).Methods(http.MethodPatch)
	authed.HandleFunc("/users/{id:[0-9]+}/image", userH.UpdateImage).Methods(http.MethodPatch)
	authed.HandleFunc("/dashboard/me", adminH.MemberDashboard).Methods(http.MethodGet)

	// Admin surface.
	admin := api.NewRoute().Subrouter()
	admin.Use(mw.Authenticate, mw.RequireRoles(domain.RoleAdmin))
	admin.HandleFunc("/invitations", invH.Issue).Methods(http.MethodPost)
	admin.HandleFunc("/invitations/{code}", invH.Get).Methods(http.MethodGet)
	admin.HandleFunc("/invitations/{code}", invH.Cancel).Methods(http.MethodDelete)
	admin.HandleFunc("/admin/users/{id:[0-9]+}/approve", adminH.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/admin/users/{id:[0-9]+}/reject", adminH.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/admin/users/{id:[0-9]+}/role", userH.UpdateRole).Methods(http.MethodPatch)
	admin.HandleFunc("/admin/applications", adminH.ListPendingApplications).Methods(http.MethodGet)
	admin.HandleFunc("/admin/members", adminH.ListMembers).Methods(http.MethodGet)
	admin.HandleFunc("/admin/stats", adminH.Stats).Methods(http.MethodGet)

	return r
}

// NewServer wraps the router in an http.Server with sane timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
