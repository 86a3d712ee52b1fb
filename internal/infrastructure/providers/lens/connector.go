package lens

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/turtacn/aether-intel/internal/config"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

const strategyBool = "lens_bool"

var _ providers.Connector = (*Connector)(nil)

// Connector talks to the Lens.org patent search API.
type Connector struct {
	cfg    config.LensConfig
	client *resty.Client
	log    logging.Logger

	// newBackOff produces the 429 retry policy; replaced in tests to
	// avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// NewConnector builds a Lens connector from configuration.  A nil
// logger is replaced by a no-op logger.
func NewConnector(cfg config.LensConfig, log logging.Logger) *Connector {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("lens")
	if cfg.APIToken == "" {
		log.Warn("Lens API token not configured, requests will fail authentication")
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIToken).
		SetHeader("Content-Type", "application/json")

	return &Connector{
		cfg:        cfg,
		client:     client,
		log:        log,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// Provider identifies this connector.
func (c *Connector) Provider() patent.Provider { return patent.ProviderLens }

// SearchByJurisdiction executes one combined boolean query.  There is
// no fallback ladder here; the audit trail carries a single attempt.
func (c *Connector) SearchByJurisdiction(ctx context.Context, req providers.SearchRequest) (*patent.SearchResult, error) {
	size := req.Limit
	if size <= 0 {
		size = 50
	}
	query := buildQuery(req.Keywords, req.Jurisdiction, req.From, req.To, size)

	attempt := patent.StrategyAttempt{Strategy: strategyBool, Query: compactJSON(query)}

	resp, err := c.post(ctx, query)
	if err != nil {
		attempt.Error = err.Error()
		return &patent.SearchResult{
			QueryStrategy:    strategyBool,
			StrategyAttempts: []patent.StrategyAttempt{attempt},
		}, err
	}

	records := make([]patent.Record, 0, len(resp.Data))
	for _, p := range resp.Data {
		records = append(records, normalizePatent(p))
	}
	attempt.ResultCount = len(records)

	filtered := applyExcludeFilter(records, req.Keywords.Exclude)

	c.log.Info("completed jurisdiction search",
		logging.String("jurisdiction", req.Jurisdiction),
		logging.Int("results", len(records)),
		logging.Int("after_exclude_filter", len(filtered)),
	)

	return &patent.SearchResult{
		Data:             filtered,
		Total:            resp.Total,
		QueryStrategy:    strategyBool,
		StrategyAttempts: []patent.StrategyAttempt{attempt},
		PreFilterTotal:   len(records),
		FilteredTotal:    len(filtered),
	}, nil
}

// FetchLegalStatus returns the record's inline legal status when the
// search already delivered it, otherwise refetches the record by ID.
func (c *Connector) FetchLegalStatus(ctx context.Context, rec *patent.Record) (*patent.LegalStatus, error) {
	if rec == nil || rec.ID == "" {
		return nil, errors.InvalidParam("record has no Lens identifier")
	}
	if rec.LegalStatus != nil && len(rec.LegalStatus.Events) > 0 {
		return rec.LegalStatus, nil
	}

	resp, err := c.post(ctx, buildIdentifierQuery(rec.ID))
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New(errors.ErrCodeRecordNotFound, "no Lens record for identifier").
			WithDetail(rec.ID)
	}
	refreshed := normalizePatent(resp.Data[0])
	if refreshed.LegalStatus == nil {
		return &patent.LegalStatus{}, nil
	}
	return refreshed.LegalStatus, nil
}

// GetByIdentifier fetches a single record by its Lens ID.
func (c *Connector) GetByIdentifier(ctx context.Context, id string) (*patent.Record, error) {
	if id == "" {
		return nil, errors.InvalidParam("empty Lens identifier")
	}
	resp, err := c.post(ctx, buildIdentifierQuery(id))
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New(errors.ErrCodeRecordNotFound, "no Lens record for identifier").
			WithDetail(id)
	}
	rec := normalizePatent(resp.Data[0])
	return &rec, nil
}

// Healthy probes the API with a minimal identifier query.
func (c *Connector) Healthy(ctx context.Context) error {
	_, err := c.post(ctx, buildIdentifierQuery("connectivity-probe"))
	return err
}

// post executes one query, retrying on 429 with exponential backoff
// bounded by MaxRetries.  A Retry-After header is honored before the
// backoff interval applies.
func (c *Connector) post(ctx context.Context, query clause) (*searchResponse, error) {
	var result searchResponse

	op := func() error {
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(query).
			SetResult(&result).
			Post("")
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, errors.ErrCodeSourceUnavailable,
				"Lens request failed"))
		}

		switch {
		case resp.StatusCode() == 200:
			return nil
		case resp.StatusCode() == 429:
			if wait := retryAfter(resp.Header().Get("Retry-After")); wait > 0 {
				if err := sleepContext(ctx, wait); err != nil {
					return backoff.Permanent(errors.Wrap(err, errors.ErrCodeCanceled,
						"retry wait aborted"))
				}
			}
			c.log.Warn("Lens rate limit hit, retrying")
			return errors.New(errors.ErrCodeSourceRateLimited, "Lens rate limit exceeded")
		case resp.StatusCode() == 401, resp.StatusCode() == 403:
			return backoff.Permanent(errors.New(errors.ErrCodeSourceAuthFailed,
				"Lens rejected API token").WithDetail(resp.Status()))
		default:
			return backoff.Permanent(errors.New(errors.ErrCodeSourceUnavailable,
				fmt.Sprintf("Lens API error %d", resp.StatusCode())).
				WithDetail(strings.TrimSpace(string(resp.Body()))))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(c.newBackOff(), uint64(c.cfg.MaxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return &result, nil
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// containsAnyTerm and applyExcludeFilter mirror the client-side safety
// net the EPO connector applies: query-language NOT semantics differ
// across providers, so merged records get a literal re-scan locally.
func containsAnyTerm(text string, terms []string) bool {
	if text == "" || len(terms) == 0 {
		return false
	}
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func applyExcludeFilter(records []patent.Record, exclude []string) []patent.Record {
	if len(exclude) == 0 {
		return records
	}
	filtered := make([]patent.Record, 0, len(records))
	for _, rec := range records {
		if !containsAnyTerm(rec.Text(), exclude) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func compactJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
