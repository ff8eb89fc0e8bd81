// Package service orchestrates the understanding pass: normalize and tag the
// language up front, then run classification, extraction, and sentiment
// concurrently and join before anything touches the session
package service

import (
	"context"
	"sync"
	"time"

	"vassist/internal/core/entity"
	"vassist/internal/core/intent"
	"vassist/internal/core/langhint"
	"vassist/internal/core/normalize"
	"vassist/internal/core/sentiment"
	"vassist/internal/core/skillpack"
	perr "vassist/internal/platform/errors"
	"vassist/internal/services/nlu/domain"
	sdom "vassist/internal/services/sessions/domain"
)

// Options tunes the pipeline
type Options struct {
	DefaultLang  string        // used when detection is inconclusive
	RetryTimeout time.Duration // per-attempt budget for classify/extract
}

// Service implements domain.PipelinePort
type Service struct {
	norm       *normalize.Normalizer
	pack       *skillpack.Pack
	classifier domain.ClassifierPort
	extractor  domain.ExtractorPort
	analyzer   domain.AnalyzerPort
	opts       Options
}

// New constructs the pipeline service
func New(
	norm *normalize.Normalizer,
	pack *skillpack.Pack,
	classifier domain.ClassifierPort,
	extractor domain.ExtractorPort,
	analyzer domain.AnalyzerPort,
	opts Options,
) *Service {
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en"
	}
	if opts.RetryTimeout <= 0 {
		opts.RetryTimeout = 2 * time.Second
	}
	return &Service{
		norm:       norm,
		pack:       pack,
		classifier: classifier,
		extractor:  extractor,
		analyzer:   analyzer,
		opts:       opts,
	}
}

// Understand runs the full pass. Classification, extraction, and sentiment
// have no data dependency and run concurrently; extraction runs schema-free
// and the classified intent narrows the entity set after the join.
// Backend failures are retried once with a per-attempt timeout
func (s *Service) Understand(
	ctx context.Context,
	raw, locale, sessionID string,
	now time.Time,
) (sdom.Utterance, sdom.NLUResult, error) {
	normalized, err := s.norm.Normalize(raw, locale)
	if err != nil {
		return sdom.Utterance{}, sdom.NLUResult{}, err
	}
	lang, ok := langhint.Detect(normalized)
	if !ok {
		lang = s.opts.DefaultLang
	}

	utt := sdom.Utterance{
		SessionID:  sessionID,
		Raw:        raw,
		Normalized: normalized,
		Lang:       lang,
		At:         now,
	}

	var (
		wg   sync.WaitGroup
		ires intent.Result
		ierr error
		ents []entity.Entity
		eerr error
		sc   sentiment.Score
		serr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		ires, ierr = retryOnce(ctx, s.opts.RetryTimeout, func(c context.Context) (intent.Result, error) {
			return s.classifier.Classify(c, normalized, lang)
		})
	}()
	go func() {
		defer wg.Done()
		ents, eerr = retryOnce(ctx, s.opts.RetryTimeout, func(c context.Context) ([]entity.Entity, error) {
			return s.extractor.Extract(c, normalized, "", now)
		})
	}()
	go func() {
		defer wg.Done()
		sc, serr = s.analyzer.Analyze(ctx, normalized)
	}()
	wg.Wait()

	// the join point: a cancelled turn stops here, before any session mutation
	if err := ctx.Err(); err != nil {
		return utt, sdom.NLUResult{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "turn cancelled at nlu join")
	}
	if ierr != nil {
		return utt, sdom.NLUResult{}, perr.Wrap(ierr, perr.ErrorCodeClassification, "classifier backend")
	}
	if eerr != nil {
		return utt, sdom.NLUResult{}, perr.Wrap(eerr, perr.ErrorCodeExtraction, "extractor backend")
	}
	if serr != nil {
		// sentiment only annotates tone; a broken analyzer degrades to neutral
		sc = sentiment.Score{}
	}

	return utt, sdom.NLUResult{
		Intent:     ires.Name,
		Confidence: ires.Confidence,
		Entities:   s.narrow(ents, ires.Name),
		Polarity:   sc.Polarity,
		Magnitude:  sc.Magnitude,
	}, nil
}

// narrow keeps only entity types the classified intent's schema declares.
// Unknown intents keep everything so clarification fills still work
func (s *Service) narrow(ents []entity.Entity, intentName string) []entity.Entity {
	schema := s.pack.ByName(intentName)
	if schema == nil || len(ents) == 0 {
		return ents
	}
	allowed := make(map[skillpack.SlotType]struct{}, len(schema.Slots))
	for _, sl := range schema.Slots {
		allowed[sl.Type] = struct{}{}
	}
	out := ents[:0]
	for _, e := range ents {
		if _, ok := allowed[e.Type]; ok {
			out = append(out, e)
		}
	}
	return out
}

// retryOnce runs fn with a per-attempt timeout and retries a single time on
// failure, unless the parent context is already done
func retryOnce[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	attempt := func() (T, error) {
		c, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(c)
	}
	v, err := attempt()
	if err == nil || ctx.Err() != nil {
		return v, err
	}
	return attempt()
}
