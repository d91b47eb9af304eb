package http

import (
	"net/http"

	"github.com/aussiebroadwan/trivia/internal/credentials/service"
)

type ConfirmationHandler struct {
	Confirmations *service.ConfirmationService
	PortalURL     string
}

// ServeHTTP godoc
//
//	@Summary		Email Confirmation Endpoint
//	@Description	Redeems the token from a confirmation email and redirects the browser to the portal
//	@Description	Only the most recently issued token of an identity is accepted, and only once
//	@Tags			Credentials
//	@Produce		json
//	@Param			token	path		string				true	"Confirmation token"
//	@Success		302		{string}	string				"redirect to the portal"
//	@Failure		404		{object}	authsdk.Response	"rejected"
//	@Failure		500		{object}	authsdk.Response	"exception"
//	@Router			/confirmation/{token} [get].
func (h *ConfirmationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Confirmations.Redeem(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeRejected(w, r, msgTokenNotFound)
		return
	}

	http.Redirect(w, r, h.PortalURL, http.StatusFound)
}
