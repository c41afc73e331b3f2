package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/eggledger/pkg/auth"
	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	"github.com/ghuser/eggledger/pkg/logger"
	pkgvalidator "github.com/ghuser/eggledger/pkg/validator"
	appsvcs "github.com/ghuser/eggledger/services/account/application/services"
)

// LoginRequest is the request body for POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"mary"`
	Password string `json:"password" validate:"required" example:"correct horse battery"`
} // @name LoginRequest

// LoginResponse is returned on successful login; the session travels in a cookie.
type LoginResponse struct {
	Username string `json:"username" example:"mary"`
	Role     string `json:"role"     example:"operator"`
} // @name LoginResponse

// PostLoginHandler handles POST /login requests.
type PostLoginHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

// NewPostLoginHandler returns a PostLoginHandler backed by the given services and session store.
func NewPostLoginHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *PostLoginHandler {
	return &PostLoginHandler{svc: svc, store: store, log: log}
}

// Execute verifies credentials and establishes a Redis-backed session.
//
//	@Summary	Login
//	@Tags		account
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Login request"
//	@Success	200		{object}	LoginResponse
//	@Failure	401		{object}	handlers.errorBody
//	@Router		/login [post]
func (h *PostLoginHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}

	user, err := h.svc.Account.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	session, err := h.store.Get(r, auth.SessionName)
	if err != nil {
		h.log.WarnContext(r.Context(), "stale session cookie on login", "error", err)
	}
	session.Values[auth.SessionUserIDKey] = user.ID.String()
	if err := session.Save(r, w); err != nil {
		h.log.ErrorContext(r.Context(), "failed to save session", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	httpx.JSON(w, http.StatusOK, LoginResponse{Username: user.Username, Role: user.Role})
}
