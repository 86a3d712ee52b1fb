package handlers

import (
	"net/http"

	searchapp "github.com/turtacn/aether-intel/internal/application/search"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/common"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// SearchHandler serves the end-to-end intelligence run endpoint.
type SearchHandler struct {
	svc *searchapp.Service
	log logging.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(svc *searchapp.Service, log logging.Logger) *SearchHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SearchHandler{svc: svc, log: log.Named("handler.search")}
}

// searchRequestBody is the wire form of a run request.
type searchRequestBody struct {
	Provider      string             `json:"provider,omitempty"`
	Jurisdictions []string           `json:"jurisdictions,omitempty"`
	Languages     []string           `json:"languages,omitempty"`
	Keywords      *patent.KeywordSet `json:"keywords,omitempty"`
	DateRange     common.DateRange   `json:"date_range,omitempty"`
	Limit         int                `json:"limit,omitempty"`
	BypassCache   bool               `json:"bypass_cache,omitempty"`
}

// Search handles POST /api/v1/search: it runs the full pipeline and
// returns the report with records, stats, and the query audit trail.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	provider := patent.Provider(body.Provider)
	if body.Provider != "" && !provider.IsValid() {
		respondError(w, r, errors.InvalidParam("unknown provider "+body.Provider))
		return
	}
	if err := body.DateRange.Validate(); err != nil {
		respondError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid date range"))
		return
	}

	report, err := h.svc.Run(r.Context(), searchapp.Request{
		Provider:      provider,
		Jurisdictions: body.Jurisdictions,
		Languages:     body.Languages,
		Keywords:      body.Keywords,
		From:          body.DateRange.From,
		To:            body.DateRange.To,
		Limit:         body.Limit,
		BypassCache:   body.BypassCache,
	})
	if err != nil {
		h.log.Error("search run failed", logging.Err(err))
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, report)
}
