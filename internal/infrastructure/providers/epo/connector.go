package epo

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/aether-intel/internal/config"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// cqlSyntaxMarker appears in OPS error bodies when a query is rejected
// by the CQL parser rather than by matching zero documents.
const cqlSyntaxMarker = "CLIENT.CQLSyntax"

var _ providers.Connector = (*Connector)(nil)

// Connector talks to EPO Open Patent Services.  All outbound calls pass
// through the shared rate limiter and carry a cached OAuth2 token.
type Connector struct {
	cfg     config.EPOConfig
	client  *resty.Client
	auth    *tokenSource
	limiter *rateLimiter
	log     logging.Logger
}

// NewConnector builds an OPS connector from configuration.  A nil logger
// is replaced by a no-op logger.
func NewConnector(cfg config.EPOConfig, rl config.RateLimitConfig, log logging.Logger) *Connector {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("epo")
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		log.Warn("EPO consumer key/secret not configured, OPS requests will fail authentication")
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/xml")

	return &Connector{
		cfg:     cfg,
		client:  client,
		auth:    newTokenSource(resty.New().SetTimeout(cfg.Timeout), cfg.AuthURL, cfg.ConsumerKey, cfg.ConsumerSecret),
		limiter: newRateLimiter(rl.MaxRequestsPerMinute),
		log:     log,
	}
}

// Provider identifies this connector.
func (c *Connector) Provider() patent.Provider { return patent.ProviderEPO }

// SearchByJurisdiction runs the full query ladder for one jurisdiction
// and applies the client-side exclude filter to whatever rung produced
// records.  The returned result always carries the complete attempt
// audit trail, including on the all-rungs-empty path.
func (c *Connector) SearchByJurisdiction(ctx context.Context, req providers.SearchRequest) (*patent.SearchResult, error) {
	params := QueryParams{
		Include:      req.Keywords.Include,
		Exclude:      req.Keywords.Exclude,
		Jurisdiction: req.Jurisdiction,
		From:         req.From,
		To:           req.To,
	}
	limit := req.Limit
	if limit <= 0 || limit > c.cfg.MaxRecords {
		limit = c.cfg.MaxRecords
	}

	run := newLadderRun(c, params, limit)
	records, strategy, err := run.execute(ctx)
	if err != nil {
		return nil, err
	}

	preFilter := len(records)
	filtered := applyExcludeFilter(records, req.Keywords.Exclude)

	c.log.Info("completed jurisdiction search",
		logging.String("jurisdiction", req.Jurisdiction),
		logging.String("strategy", strategy),
		logging.Int("results", preFilter),
		logging.Int("after_exclude_filter", len(filtered)),
	)

	return &patent.SearchResult{
		Data:             filtered,
		Total:            preFilter,
		QueryStrategy:    strategy,
		StrategyAttempts: run.attempts,
		PreFilterTotal:   preFilter,
		FilteredTotal:    len(filtered),
	}, nil
}

// FetchLegalStatus retrieves the INPADOC legal events for one record via
// the OPS legal constituent endpoint.
func (c *Connector) FetchLegalStatus(ctx context.Context, rec *patent.Record) (*patent.LegalStatus, error) {
	if rec == nil || rec.ID == "" {
		return nil, errors.InvalidParam("record has no EPO identifier")
	}

	path := fmt.Sprintf("/published-data/publication/docdb/%s/legal", rec.ID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return parseLegalResponse(body)
}

// GetByIdentifier fetches a single record by its DOCDB-style identifier.
func (c *Connector) GetByIdentifier(ctx context.Context, id string) (*patent.Record, error) {
	if id == "" {
		return nil, errors.InvalidParam("empty EPO identifier")
	}
	page, err := c.searchRaw(ctx, fmt.Sprintf(`pn="%s"`, sanitizeTerm(id)), 1)
	if err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, errors.New(errors.ErrCodeRecordNotFound, "no EPO record for identifier").WithDetail(id)
	}
	return &page.Records[0], nil
}

// Healthy probes the OPS auth endpoint by ensuring a token can be
// obtained.
func (c *Connector) Healthy(ctx context.Context) error {
	_, err := c.auth.Token(ctx)
	return err
}

// searchRaw executes one CQL query against the published-data search
// endpoint.  A 401 triggers exactly one forced token refresh and retry.
func (c *Connector) searchRaw(ctx context.Context, cql string, limit int) (*searchPage, error) {
	if strings.TrimSpace(cql) == "" {
		return nil, errors.InvalidParam("empty CQL query")
	}
	if limit < 1 {
		limit = 1
	}

	query := map[string]string{
		"q":     cql,
		"Range": fmt.Sprintf("1-%d", limit),
	}
	body, err := c.get(ctx, "/published-data/search", query)
	if err != nil {
		return nil, err
	}

	c.log.Debug("executed OPS query", logging.String("cql", cql))
	return parseSearchResponse(body)
}

func (c *Connector) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCanceled, "rate limit wait aborted")
	}
	token, err := c.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.doGet(ctx, path, query, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == 401 {
		token, err = c.auth.ForceRefresh(ctx)
		if err != nil {
			return nil, err
		}
		resp, err = c.doGet(ctx, path, query, token)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case resp.StatusCode() == 200:
		return resp.Body(), nil
	case resp.StatusCode() == 401, resp.StatusCode() == 403:
		return nil, errors.New(errors.ErrCodeSourceAuthFailed, "EPO rejected credentials").
			WithDetail(resp.Status())
	case resp.StatusCode() == 429:
		return nil, errors.New(errors.ErrCodeSourceRateLimited, "EPO OPS fair-use limit exceeded")
	case resp.StatusCode() == 404:
		return nil, errors.New(errors.ErrCodeRecordNotFound, "EPO resource not found").
			WithDetail(path)
	default:
		detail := strings.TrimSpace(string(resp.Body()))
		if strings.Contains(detail, cqlSyntaxMarker) {
			return nil, errors.QuerySyntax("EPO rejected CQL syntax").WithDetail(detail)
		}
		return nil, errors.New(errors.ErrCodeSourceUnavailable,
			fmt.Sprintf("EPO search error %d", resp.StatusCode())).WithDetail(detail)
	}
}

func (c *Connector) doGet(ctx context.Context, path string, query map[string]string, token string) (*resty.Response, error) {
	req := c.client.R().
		SetContext(ctx).
		SetAuthToken(token)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "EPO request failed")
	}
	return resp, nil
}
