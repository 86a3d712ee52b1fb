package epo

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// OPS returns biblio search results as exchange-document elements inside
// a world-patent-data envelope.  encoding/xml matches local names across
// the ops/exchange namespaces, so the structs below carry no namespace
// qualifiers.

type opsWorldPatentData struct {
	XMLName      xml.Name        `xml:"world-patent-data"`
	BiblioSearch opsBiblioSearch `xml:"biblio-search"`
}

type opsBiblioSearch struct {
	TotalResultCount string `xml:"total-result-count,attr"`
	SearchResult     struct {
		ExchangeDocuments []opsExchangeDocuments `xml:"exchange-documents"`
	} `xml:"search-result"`
}

type opsExchangeDocuments struct {
	Documents []opsExchangeDocument `xml:"exchange-document"`
}

type opsExchangeDocument struct {
	Country   string        `xml:"country,attr"`
	DocNumber string        `xml:"doc-number,attr"`
	Kind      string        `xml:"kind,attr"`
	Biblio    opsBiblioData `xml:"bibliographic-data"`
	Abstracts []opsAbstract `xml:"abstract"`
}

type opsBiblioData struct {
	PublicationReference struct {
		DocumentIDs []opsDocumentID `xml:"document-id"`
	} `xml:"publication-reference"`
	InventionTitles []opsInventionTitle `xml:"invention-title"`
	Parties         struct {
		Applicants []opsParty `xml:"applicants>applicant"`
		Inventors  []opsParty `xml:"inventors>inventor"`
	} `xml:"parties"`
	IPCR []opsIPCRClassification   `xml:"classifications-ipcr>classification-ipcr"`
	CPC  []opsPatentClassification `xml:"patent-classifications>patent-classification"`
}

type opsDocumentID struct {
	Type      string `xml:"document-id-type,attr"`
	Country   string `xml:"country"`
	DocNumber string `xml:"doc-number"`
	Kind      string `xml:"kind"`
	Date      string `xml:"date"`
}

type opsInventionTitle struct {
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

type opsAbstract struct {
	Lang       string   `xml:"lang,attr"`
	Paragraphs []string `xml:"p"`
}

type opsParty struct {
	ApplicantName string `xml:"applicant-name>name"`
	InventorName  string `xml:"inventor-name>name"`
}

func (p opsParty) name() string {
	if s := strings.TrimSpace(p.ApplicantName); s != "" {
		return s
	}
	return strings.TrimSpace(p.InventorName)
}

type opsIPCRClassification struct {
	Text string `xml:"text"`
}

type opsPatentClassification struct {
	Section   string `xml:"section"`
	Class     string `xml:"class"`
	Subclass  string `xml:"subclass"`
	MainGroup string `xml:"main-group"`
	Subgroup  string `xml:"subgroup"`
}

// symbol renders the CPC components as a single "H05H 1/00" style string.
func (c opsPatentClassification) symbol() string {
	head := strings.TrimSpace(c.Section + c.Class + c.Subclass)
	if head == "" {
		return ""
	}
	if c.MainGroup == "" {
		return head
	}
	tail := c.MainGroup
	if c.Subgroup != "" {
		tail += "/" + c.Subgroup
	}
	return head + " " + tail
}

// searchPage is one parsed OPS search response.
type searchPage struct {
	Records []patent.Record
	Total   int
}

// parseSearchResponse decodes an OPS biblio-search XML payload into
// canonical records.  Documents missing both a number and a title are
// dropped rather than propagated as empty shells.
func parseSearchResponse(body []byte) (*searchPage, error) {
	var envelope opsWorldPatentData
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceParseError,
			"failed to parse EPO search XML")
	}

	page := &searchPage{}
	if n, err := strconv.Atoi(envelope.BiblioSearch.TotalResultCount); err == nil {
		page.Total = n
	}

	for _, docs := range envelope.BiblioSearch.SearchResult.ExchangeDocuments {
		for _, doc := range docs.Documents {
			rec := normalizeDocument(doc)
			if rec.ID == "" && rec.Title == "" {
				continue
			}
			page.Records = append(page.Records, rec)
		}
	}
	if page.Total < len(page.Records) {
		page.Total = len(page.Records)
	}
	return page, nil
}

func normalizeDocument(doc opsExchangeDocument) patent.Record {
	country := doc.Country
	number := doc.DocNumber
	kind := doc.Kind
	var published time.Time

	for _, id := range doc.Biblio.PublicationReference.DocumentIDs {
		if country == "" {
			country = strings.TrimSpace(id.Country)
		}
		if number == "" {
			number = strings.TrimSpace(id.DocNumber)
		}
		if kind == "" {
			kind = strings.TrimSpace(id.Kind)
		}
		if published.IsZero() {
			if d, err := time.Parse(dateLayoutCQL, strings.TrimSpace(id.Date)); err == nil {
				published = d
			}
		}
	}

	title, lang := pickTitle(doc.Biblio.InventionTitles)

	var abstract string
	for _, a := range doc.Abstracts {
		text := strings.TrimSpace(strings.Join(a.Paragraphs, " "))
		if text == "" {
			continue
		}
		if abstract == "" || strings.EqualFold(a.Lang, "en") {
			abstract = text
		}
		if strings.EqualFold(a.Lang, "en") {
			break
		}
	}

	rec := patent.Record{
		ID:                country + number + kind,
		Provider:          patent.ProviderEPO,
		Jurisdiction:      country,
		Title:             title,
		Abstract:          abstract,
		Language:          lang,
		PublicationDate:   published,
		PublicationNumber: country + number,
	}

	for _, p := range doc.Biblio.Parties.Applicants {
		if name := p.name(); name != "" {
			rec.Applicants = append(rec.Applicants, name)
		}
	}
	for _, p := range doc.Biblio.Parties.Inventors {
		if name := p.name(); name != "" {
			rec.Inventors = append(rec.Inventors, name)
		}
	}

	for _, c := range doc.Biblio.IPCR {
		if s := strings.TrimSpace(c.Text); s != "" {
			rec.Classifications = append(rec.Classifications, s)
		}
	}
	for _, c := range doc.Biblio.CPC {
		if s := c.symbol(); s != "" {
			rec.Classifications = append(rec.Classifications, s)
		}
	}

	return rec
}

// pickTitle prefers the English invention title, falling back to the
// first non-empty one.
func pickTitle(titles []opsInventionTitle) (text, lang string) {
	for _, t := range titles {
		s := strings.TrimSpace(t.Text)
		if s == "" {
			continue
		}
		if strings.EqualFold(t.Lang, "en") {
			return s, "en"
		}
		if text == "" {
			text, lang = s, strings.ToLower(t.Lang)
		}
	}
	return text, lang
}

// Legal-status responses use a flat list of legal elements attached to
// family members.

type opsLegalData struct {
	XMLName      xml.Name `xml:"world-patent-data"`
	PatentFamily struct {
		Members []struct {
			Events []opsLegalEvent `xml:"legal"`
		} `xml:"family-member"`
	} `xml:"patent-family"`
}

type opsLegalEvent struct {
	Code string `xml:"code,attr"`
	Desc string `xml:"desc,attr"`
	Date string `xml:"date,attr"`
}

// parseLegalResponse decodes an OPS legal constituent payload.  Events
// come back sorted newest first.
func parseLegalResponse(body []byte) (*patent.LegalStatus, error) {
	var envelope opsLegalData
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceParseError,
			"failed to parse EPO legal XML")
	}

	status := &patent.LegalStatus{}
	for _, member := range envelope.PatentFamily.Members {
		for _, ev := range member.Events {
			code := strings.TrimSpace(ev.Code)
			if code == "" {
				continue
			}
			event := patent.LegalEvent{
				Code:        code,
				Description: strings.TrimSpace(ev.Desc),
			}
			if d, err := time.Parse(dateLayoutCQL, strings.TrimSpace(ev.Date)); err == nil {
				event.Date = d
			}
			status.Events = append(status.Events, event)
		}
	}
	status.SortEvents()
	return status, nil
}
