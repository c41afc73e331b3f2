package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/eggledger/pkg/errhttp"
	"github.com/ghuser/eggledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/eggledger/pkg/validator"
	appsvcs "github.com/ghuser/eggledger/services/account/application/services"
)

// RegisterRequest is the request body for POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"  example:"mary"`
	Password string `json:"password" validate:"required,min=8,max=128" example:"correct horse battery"`
	Role     string `json:"role"     validate:"omitempty,max=32"       example:"operator"`
} // @name RegisterRequest

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	ID        uuid.UUID `json:"id"         example:"123e4567-e89b-12d3-a456-426614174000"`
	Username  string    `json:"username"   example:"mary"`
	Role      string    `json:"role"       example:"operator"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name RegisterResponse

// PostRegisterHandler handles POST /register requests.
type PostRegisterHandler struct {
	svc *appsvcs.Services
}

// NewPostRegisterHandler returns a PostRegisterHandler backed by the given services.
func NewPostRegisterHandler(svc *appsvcs.Services) *PostRegisterHandler {
	return &PostRegisterHandler{svc: svc}
}

// Execute registers a new operator account.
//
//	@Summary	Register
//	@Tags		account
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RegisterRequest	true	"Registration request"
//	@Success	201		{object}	RegisterResponse
//	@Failure	409		{object}	handlers.errorBody
//	@Failure	422		{object}	handlers.errorBody
//	@Router		/register [post]
func (h *PostRegisterHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RegisterRequest](w, r)
	if !ok {
		return
	}

	role := req.Role
	if role == "" {
		role = "operator"
	}

	user, err := h.svc.Account.Register(r.Context(), req.Username, req.Password, role)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, RegisterResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}

// errorBody documents the error envelope for swagger.
type errorBody struct {
	Error string `json:"error" example:"username already taken"`
}
