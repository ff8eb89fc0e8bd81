package service

import (
	"context"
	"time"

	"vassist/internal/core/entity"
	"vassist/internal/core/intent"
	"vassist/internal/core/sentiment"
)

// RuleClassifier adapts the in-process rule classifier to the backend seam
type RuleClassifier struct{ C *intent.Classifier }

// Classify runs the rule classifier; it has no I/O so ctx is only a contract
func (r RuleClassifier) Classify(_ context.Context, normalized, lang string) (intent.Result, error) {
	return r.C.Classify(normalized, lang)
}

// RuleExtractor adapts the in-process rule extractor to the backend seam
type RuleExtractor struct{ E *entity.Extractor }

// Extract runs the rule extractor
func (r RuleExtractor) Extract(_ context.Context, normalized, intentName string, now time.Time) ([]entity.Entity, error) {
	return r.E.Extract(normalized, intentName, now)
}

// LexiconAnalyzer adapts the lexicon sentiment scorer to the backend seam
type LexiconAnalyzer struct{ A *sentiment.Analyzer }

// Analyze runs the lexicon scorer
func (l LexiconAnalyzer) Analyze(_ context.Context, normalized string) (sentiment.Score, error) {
	return l.A.Analyze(normalized), nil
}
