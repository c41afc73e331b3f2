package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/eggledger/pkg/auth"
	"github.com/ghuser/eggledger/pkg/httpx"
	"github.com/ghuser/eggledger/pkg/logger"
)

// PostLogoutHandler handles POST /logout requests.
type PostLogoutHandler struct {
	store sessions.Store
	log   logger.Logger
}

// NewPostLogoutHandler returns a PostLogoutHandler backed by the given session store.
func NewPostLogoutHandler(store sessions.Store, log logger.Logger) *PostLogoutHandler {
	return &PostLogoutHandler{store: store, log: log}
}

// Execute destroys the current session. Idempotent: logging out without a
// session still succeeds.
//
//	@Summary	Logout
//	@Tags		account
//	@Produce	json
//	@Success	200	{object}	handlers.successBody
//	@Router		/logout [post]
func (h *PostLogoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, auth.SessionName)
	if err == nil {
		session.Options.MaxAge = -1
		if err := session.Save(r, w); err != nil {
			h.log.WarnContext(r.Context(), "failed to destroy session", "error", err)
		}
	}
	httpx.JSON(w, http.StatusOK, successBody{Success: true})
}

// successBody documents the success envelope for swagger.
type successBody struct {
	Success bool `json:"success" example:"true"`
}
