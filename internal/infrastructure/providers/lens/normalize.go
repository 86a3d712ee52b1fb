package lens

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// searchResponse is the Lens API response envelope.
type searchResponse struct {
	Total int          `json:"total"`
	Data  []lensPatent `json:"data"`
}

type lensPatent struct {
	LensID        string           `json:"lens_id"`
	Jurisdiction  string           `json:"jurisdiction"`
	DocNumber     string           `json:"doc_number"`
	DatePublished string           `json:"date_published"`
	Biblio        lensBiblio       `json:"biblio"`
	Abstract      []lensText       `json:"abstract"`
	Claims        lensClaims       `json:"claims"`
	LegalStatus   *lensLegalStatus `json:"legal_status"`
}

// lensClaims tolerates both claims shapes the API returns: a plain string
// or a list of {lang, text} objects.
type lensClaims string

func (c *lensClaims) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = lensClaims(s)
		return nil
	}
	var items []lensText
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	var parts []string
	for _, item := range items {
		if t := strings.TrimSpace(item.Text); t != "" {
			parts = append(parts, t)
		}
	}
	*c = lensClaims(strings.Join(parts, " "))
	return nil
}

type lensBiblio struct {
	InventionTitle []lensText  `json:"invention_title"`
	Parties        lensParties `json:"parties"`
	IPCR           lensSymbols `json:"classifications_ipcr"`
	CPC            lensSymbols `json:"classifications_cpc"`
}

type lensText struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

type lensParties struct {
	Applicants []lensParty `json:"applicants"`
	Inventors  []lensParty `json:"inventors"`
}

type lensParty struct {
	ExtractedName struct {
		Value string `json:"value"`
	} `json:"extracted_name"`
}

type lensSymbols struct {
	Classifications []struct {
		Symbol string `json:"symbol"`
	} `json:"classifications"`
}

type lensLegalStatus struct {
	PatentStatus string           `json:"patent_status"`
	Events       []lensLegalEvent `json:"events"`
}

type lensLegalEvent struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// pickText prefers the English entry, then the first non-empty one.
func pickText(items []lensText) (text, lang string) {
	for _, item := range items {
		s := strings.TrimSpace(item.Text)
		if s == "" {
			continue
		}
		if strings.EqualFold(item.Lang, "en") {
			return s, "en"
		}
		if text == "" {
			text, lang = s, strings.ToLower(item.Lang)
		}
	}
	return text, lang
}

func normalizePatent(p lensPatent) patent.Record {
	title, lang := pickText(p.Biblio.InventionTitle)
	abstract, _ := pickText(p.Abstract)

	rec := patent.Record{
		ID:                p.LensID,
		Provider:          patent.ProviderLens,
		Jurisdiction:      p.Jurisdiction,
		Title:             title,
		Abstract:          abstract,
		Claims:            strings.TrimSpace(string(p.Claims)),
		Language:          lang,
		PublicationNumber: strings.TrimSpace(p.Jurisdiction + p.DocNumber),
	}

	if d, err := time.Parse("2006-01-02", p.DatePublished); err == nil {
		rec.PublicationDate = d
	}

	for _, party := range p.Biblio.Parties.Applicants {
		if v := strings.TrimSpace(party.ExtractedName.Value); v != "" {
			rec.Applicants = append(rec.Applicants, v)
		}
	}
	for _, party := range p.Biblio.Parties.Inventors {
		if v := strings.TrimSpace(party.ExtractedName.Value); v != "" {
			rec.Inventors = append(rec.Inventors, v)
		}
	}
	for _, c := range p.Biblio.IPCR.Classifications {
		if s := strings.TrimSpace(c.Symbol); s != "" {
			rec.Classifications = append(rec.Classifications, s)
		}
	}
	for _, c := range p.Biblio.CPC.Classifications {
		if s := strings.TrimSpace(c.Symbol); s != "" {
			rec.Classifications = append(rec.Classifications, s)
		}
	}

	if p.LegalStatus != nil {
		status := &patent.LegalStatus{StatusText: p.LegalStatus.PatentStatus}
		for _, ev := range p.LegalStatus.Events {
			code := strings.TrimSpace(ev.Code)
			if code == "" {
				continue
			}
			event := patent.LegalEvent{Code: code, Description: strings.TrimSpace(ev.Description)}
			if d, err := time.Parse("2006-01-02", ev.Date); err == nil {
				event.Date = d
			}
			status.Events = append(status.Events, event)
		}
		status.SortEvents()
		rec.LegalStatus = status
	}

	return rec
}
