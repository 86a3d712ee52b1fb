// Package search orchestrates the end-to-end intelligence pipeline:
// keyword resolution and translation, provider searches per jurisdiction
// and language, legal-status enrichment, and per-record assessment.
package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/aether-intel/internal/config"
	"github.com/turtacn/aether-intel/internal/domain/keywords"
	"github.com/turtacn/aether-intel/internal/domain/scoring"
	"github.com/turtacn/aether-intel/internal/domain/status"
	"github.com/turtacn/aether-intel/internal/infrastructure/cache"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/aether-intel/internal/infrastructure/providers"
	"github.com/turtacn/aether-intel/internal/infrastructure/translation"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

const baseLanguage = "en"

// Service runs the search pipeline.  It owns no upstream details: the
// connectors hide auth, rate limits, and query ladders, and the domain
// packages hide scoring and status decoding.
type Service struct {
	cfg        config.SearchConfig
	connectors map[patent.Provider]providers.Connector
	translator translation.Translator
	keywords   *cache.KeywordCache
	results    *cache.SearchCache
	scorer     *scoring.Scorer
	log        logging.Logger
	metrics    *prometheus.AppMetrics
	now        func() time.Time
}

// NewService wires the pipeline.  At least one connector and both caches
// are required; a nil translator, logger, or metrics falls back to the
// no-op implementation.
func NewService(
	cfg config.SearchConfig,
	connectors []providers.Connector,
	translator translation.Translator,
	keywordCache *cache.KeywordCache,
	searchCache *cache.SearchCache,
	log logging.Logger,
	metrics *prometheus.AppMetrics,
) (*Service, error) {
	if len(connectors) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "search service requires at least one connector")
	}
	if keywordCache == nil || searchCache == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "search service requires keyword and search caches")
	}
	if translator == nil {
		translator = translation.NopTranslator{}
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	byProvider := make(map[patent.Provider]providers.Connector, len(connectors))
	for _, c := range connectors {
		if c == nil {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "search service given a nil connector")
		}
		byProvider[c.Provider()] = c
	}
	return &Service{
		cfg:        cfg,
		connectors: byProvider,
		translator: translator,
		keywords:   keywordCache,
		results:    searchCache,
		scorer:     scoring.NewScorer(scoring.DefaultKeywordConfig()),
		log:        log.Named("search"),
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

// Run executes one full intelligence run.  Languages are processed
// sequentially; legal-status enrichment inside a run fans out under a
// bounded semaphore.  A provider failure aborts only that
// jurisdiction/language leg; the failure is recorded on the report's
// audit trail and the remaining legs continue.  Cancellation aborts the
// whole run.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	started := s.now()

	provider := req.Provider
	if provider == "" {
		provider = patent.ProviderEPO
	}
	conn, ok := s.connectors[provider]
	if !ok {
		return nil, errors.InvalidParam(fmt.Sprintf("no connector configured for provider %q", provider))
	}

	langs := req.Languages
	if len(langs) == 0 {
		langs = s.cfg.Languages
	}
	if len(langs) == 0 {
		langs = []string{baseLanguage}
	}
	jurisdictions := req.Jurisdictions
	if len(jurisdictions) == 0 {
		jurisdictions = s.cfg.Jurisdictions
	}
	if len(jurisdictions) == 0 {
		return nil, errors.InvalidParam("no jurisdictions requested and none configured")
	}

	from, to := req.From, req.To
	if to.IsZero() {
		to = started
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -s.cfg.WindowDays)
	}

	base, err := s.baseSet(req.Keywords)
	if err != nil {
		return nil, err
	}
	baseID, err := s.keywords.Put(base)
	if err != nil {
		s.log.Warn("failed to persist base keyword set", logging.Err(err))
		baseID = base.ID()
	}

	report := &Report{StartedAt: started}
	var records []patent.Record
	seen := make(map[string]int)

	for _, rawLang := range langs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCanceled, "search run canceled")
		}
		lang := keywords.Normalize(rawLang)

		set, source := s.resolveSet(ctx, base, baseID, lang)
		if req.Keywords != nil && lang == base.Language {
			source = "request"
		}
		report.Languages = append(report.Languages, LanguageRun{
			Language: lang,
			SetID:    set.ID(),
			Keywords: set,
			Source:   source,
		})

		for _, jur := range jurisdictions {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeCanceled, "search run canceled")
			}
			result, fromCache, err := s.search(ctx, conn, provider, set, jur, lang, from, to, req)
			if err != nil {
				if ctx.Err() != nil || errors.IsCode(err, errors.ErrCodeCanceled) {
					return nil, errors.Wrap(err, errors.ErrCodeCanceled, "search run canceled")
				}
				s.log.Warn("search leg failed, continuing run",
					logging.String("provider", string(provider)),
					logging.String("jurisdiction", jur),
					logging.String("language", lang),
					logging.Err(err))
				report.Searches = append(report.Searches, SearchRun{
					Provider:     provider,
					Jurisdiction: jur,
					Language:     lang,
					Error:        err.Error(),
				})
				continue
			}

			report.Searches = append(report.Searches, SearchRun{
				Provider:     provider,
				Jurisdiction: jur,
				Language:     lang,
				Strategy:     result.QueryStrategy,
				Attempts:     result.StrategyAttempts,
				Total:        result.Total,
				Returned:     len(result.Data),
				FromCache:    fromCache,
			})
			report.Fetched += len(result.Data)

			for _, rec := range result.Data {
				key := rec.Key()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = len(records)
				records = append(records, rec)
			}
		}
	}

	s.enrich(ctx, conn, provider, records)

	analyses := make([]status.Analysis, 0, len(records))
	for i := range records {
		assessment, ok := s.assess(&records[i])
		if !ok {
			continue
		}
		s.metrics.RecordsAnalyzedTotal.WithLabelValues(string(assessment.Value)).Inc()
		if assessment.Status.Severity == status.SeverityHigh {
			s.metrics.HighSeverityHitsTotal.WithLabelValues(records[i].Jurisdiction).Inc()
		}
		analyses = append(analyses, assessment.Status)
		report.Records = append(report.Records, AnalyzedRecord{
			Record:     records[i],
			Assessment: assessment,
		})
	}

	sort.SliceStable(report.Records, func(i, j int) bool {
		a, b := report.Records[i].Assessment, report.Records[j].Assessment
		if a.Value.Rank() != b.Value.Rank() {
			return a.Value.Rank() > b.Value.Rank()
		}
		return a.Score > b.Score
	})

	report.Stats = status.Stats(analyses)
	report.Duration = s.now().Sub(started)
	s.metrics.SearchRunDuration.WithLabelValues(string(provider)).Observe(report.Duration.Seconds())

	s.log.Info("search run complete",
		logging.String("provider", string(provider)),
		logging.Int("fetched", report.Fetched),
		logging.Int("records", len(report.Records)),
		logging.Int("refused", report.Stats.Refused),
		logging.Duration("duration", report.Duration))

	return report, nil
}

// baseSet picks the run's base keyword set: the caller's override when
// present, otherwise the built-in English set.
func (s *Service) baseSet(override *patent.KeywordSet) (patent.KeywordSet, error) {
	if override != nil {
		if override.IsEmpty() {
			return patent.KeywordSet{}, errors.New(errors.ErrCodeKeywordSetEmpty,
				"request keyword set has no include terms")
		}
		set := *override
		if set.Language == "" {
			set.Language = baseLanguage
		} else {
			set.Language = keywords.Normalize(set.Language)
		}
		return set, nil
	}
	set, ok := keywords.DefaultSet(baseLanguage)
	if !ok {
		return patent.KeywordSet{}, errors.Internal("built-in english keyword set missing")
	}
	return set, nil
}

// resolveSet finds the keyword set for one language: the base set for
// its own language, then the cached translation, then a fresh machine
// translation, then the built-in table.  The base set is the last
// resort, so a translation outage degrades to an untranslated search
// rather than a skipped language.
func (s *Service) resolveSet(ctx context.Context, base patent.KeywordSet, baseID, lang string) (patent.KeywordSet, string) {
	if lang == base.Language {
		return base, "base"
	}
	if set, ok := s.keywords.GetTranslation(baseID, lang); ok {
		s.metrics.CacheHitsTotal.WithLabelValues("keywords").Inc()
		return set, "cache"
	}
	s.metrics.CacheMissesTotal.WithLabelValues("keywords").Inc()

	set, err := s.translator.TranslateKeywords(ctx, base, lang)
	if err == nil && set.Language == lang {
		s.metrics.TranslationsTotal.WithLabelValues(lang, "ok").Inc()
		if perr := s.keywords.PutTranslation(baseID, lang, set); perr != nil {
			s.log.Warn("failed to cache translated keyword set",
				logging.String("language", lang), logging.Err(perr))
		}
		return set, "translated"
	}
	if err != nil {
		s.metrics.TranslationsTotal.WithLabelValues(lang, "error").Inc()
		s.log.Warn("keyword translation failed, falling back",
			logging.String("language", lang), logging.Err(err))
	}
	if set, ok := keywords.DefaultSet(lang); ok {
		return set, "builtin"
	}
	s.log.Warn("no keyword set available for language, using base terms",
		logging.String("language", lang))
	return base, "base"
}

// search runs one jurisdiction search, consulting the result cache first.
func (s *Service) search(
	ctx context.Context,
	conn providers.Connector,
	provider patent.Provider,
	set patent.KeywordSet,
	jurisdiction, lang string,
	from, to time.Time,
	req Request,
) (*patent.SearchResult, bool, error) {
	key := cache.SearchKey(provider, set.ID(), jurisdiction, lang, from, to)
	if !req.BypassCache {
		if cached, ok := s.results.Get(key); ok {
			s.metrics.CacheHitsTotal.WithLabelValues("search").Inc()
			s.log.Debug("search cache hit", logging.String("key", key))
			return cached, true, nil
		}
		s.metrics.CacheMissesTotal.WithLabelValues("search").Inc()
	}

	begin := s.now()
	result, err := conn.SearchByJurisdiction(ctx, providers.SearchRequest{
		Jurisdiction: jurisdiction,
		Keywords:     set,
		From:         from,
		To:           to,
		Limit:        req.Limit,
	})
	s.metrics.ProviderRequestDuration.WithLabelValues(string(provider)).Observe(s.now().Sub(begin).Seconds())
	if result != nil {
		for _, att := range result.StrategyAttempts {
			s.metrics.StrategyAttemptsTotal.WithLabelValues(string(provider), att.Strategy).Inc()
		}
	}
	if err != nil {
		s.metrics.ProviderRequestsTotal.WithLabelValues(string(provider), "error").Inc()
		return nil, false, err
	}
	s.metrics.ProviderRequestsTotal.WithLabelValues(string(provider), "ok").Inc()

	if perr := s.results.Put(key, result); perr != nil {
		s.log.Warn("failed to cache search result", logging.String("key", key), logging.Err(perr))
	}
	return result, false, nil
}

// enrich fetches legal-status histories for records that arrived without
// one.  Fetches run concurrently under a semaphore; a failed fetch logs
// and leaves the record's status nil so the decoder grades it UNKNOWN.
func (s *Service) enrich(ctx context.Context, conn providers.Connector, provider patent.Provider, records []patent.Record) {
	concurrency := s.cfg.EnrichmentConcurrency
	if concurrency < 1 {
		concurrency = 5
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range records {
		if records[i].LegalStatus != nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(rec *patent.Record) {
			defer wg.Done()
			defer func() { <-sem }()
			ls, err := conn.FetchLegalStatus(ctx, rec)
			if err != nil {
				s.metrics.EnrichmentFailures.WithLabelValues(string(provider)).Inc()
				s.log.Warn("legal-status enrichment failed",
					logging.String("record", rec.Key()), logging.Err(err))
				return
			}
			rec.LegalStatus = ls
		}(&records[i])
	}
	wg.Wait()
}

// assess scores one record, converting a scorer panic into a skipped
// record instead of a dead run.
func (s *Service) assess(rec *patent.Record) (assessment scoring.Assessment, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("record assessment panicked",
				logging.String("record", rec.Key()), logging.Any("panic", r))
			ok = false
		}
	}()
	return s.scorer.Assess(rec), true
}

// Analyze decodes one legal-status history outside a full run, for the
// ad-hoc analysis endpoint and CLI.
func (s *Service) Analyze(jurisdiction string, ls *patent.LegalStatus) status.Analysis {
	return status.Analyze(jurisdiction, ls)
}

// Score runs the keyword scorer and classifier over one record.
func (s *Service) Score(rec *patent.Record) scoring.Assessment {
	return s.scorer.Assess(rec)
}

// KeywordSet returns the built-in keyword set for a language.
func (s *Service) KeywordSet(lang string) (patent.KeywordSet, error) {
	set, ok := keywords.DefaultSet(lang)
	if !ok {
		return patent.KeywordSet{}, errors.New(errors.ErrCodeKeywordLangUnknown,
			fmt.Sprintf("no built-in keyword set for language %q", lang))
	}
	return set, nil
}

// Languages lists the language codes with built-in keyword sets.
func (s *Service) Languages() []string {
	return keywords.Languages()
}

// KeywordHistory lists cached keyword-set IDs, newest first.
func (s *Service) KeywordHistory() []string {
	return s.keywords.History()
}

// Healthy probes every configured connector and returns the first failure.
func (s *Service) Healthy(ctx context.Context) error {
	for p, conn := range s.connectors {
		if err := conn.Healthy(ctx); err != nil {
			return errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("provider %s unhealthy", p))
		}
	}
	return nil
}
