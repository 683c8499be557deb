package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
	"github.com/r3e-network/metasearch/internal/platform/httputil"
)

type mintMagicLinkRequest struct {
	Purpose string `json:"purpose"`
}

// handleMintMagicLink serves POST /api/magiclink (internal listener only):
// mints a fresh single-use token for the given purpose. It is an
// operator-facing endpoint, never exposed on the external listener.
func (s *Server) handleMintMagicLink(w http.ResponseWriter, r *http.Request) {
	if s.magicLinks == nil {
		httputil.WriteError(w, apierrors.Unavailable("magic link store not configured"))
		return
	}

	var body mintMagicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Purpose == "" {
		httputil.WriteError(w, apierrors.InvalidQuery("purpose is required"))
		return
	}

	token, err := s.magicLinks.Mint(body.Purpose)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.log.LogAudit(r.Context(), "mint_magic_link", body.Purpose, "success")
	httputil.WriteJSON(w, http.StatusCreated, MagicLinkResponseDTO{
		Token:     token,
		ExpiresIn: s.magicLinkTTLSeconds,
	})
}
