package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	searchapp "github.com/turtacn/aether-intel/internal/application/search"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
)

// KeywordsHandler serves the built-in keyword vocabulary.
type KeywordsHandler struct {
	svc *searchapp.Service
	log logging.Logger
}

// NewKeywordsHandler creates a KeywordsHandler.
func NewKeywordsHandler(svc *searchapp.Service, log logging.Logger) *KeywordsHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &KeywordsHandler{svc: svc, log: log.Named("handler.keywords")}
}

type keywordsIndex struct {
	Languages []string `json:"languages"`
	History   []string `json:"history,omitempty"`
}

// List handles GET /api/v1/keywords: the supported languages and the
// cached keyword-set history, newest first.
func (h *KeywordsHandler) List(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, keywordsIndex{
		Languages: h.svc.Languages(),
		History:   h.svc.KeywordHistory(),
	})
}

// Get handles GET /api/v1/keywords/{lang}: the built-in set for one
// language, accepting names or ISO codes.
func (h *KeywordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.svc.KeywordSet(chi.URLParam(r, "lang"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, set)
}
