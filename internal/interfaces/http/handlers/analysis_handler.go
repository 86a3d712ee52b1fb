package handlers

import (
	"net/http"

	searchapp "github.com/turtacn/aether-intel/internal/application/search"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// AnalysisHandler serves the ad-hoc analysis endpoints: decoding a legal
// status history and scoring a single record, both without touching any
// upstream provider.
type AnalysisHandler struct {
	svc *searchapp.Service
	log logging.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(svc *searchapp.Service, log logging.Logger) *AnalysisHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AnalysisHandler{svc: svc, log: log.Named("handler.analysis")}
}

type analyzeStatusRequest struct {
	Jurisdiction string              `json:"jurisdiction"`
	LegalStatus  *patent.LegalStatus `json:"legal_status"`
}

// AnalyzeStatus handles POST /api/v1/status/analyze: it decodes one
// INPADOC history into a severity verdict.
func (h *AnalysisHandler) AnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	var body analyzeStatusRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if body.Jurisdiction == "" {
		respondError(w, r, errors.InvalidParam("jurisdiction is required"))
		return
	}
	respond(w, r, http.StatusOK, h.svc.Analyze(body.Jurisdiction, body.LegalStatus))
}

// ScoreRecord handles POST /api/v1/score: it runs the keyword scorer,
// status decoder, and classifier over one submitted record.
func (h *AnalysisHandler) ScoreRecord(w http.ResponseWriter, r *http.Request) {
	var rec patent.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		respondError(w, r, err)
		return
	}
	if rec.Text() == "" {
		respondError(w, r, errors.InvalidParam("record needs a title, abstract or claims to score"))
		return
	}
	respond(w, r, http.StatusOK, h.svc.Score(&rec))
}
