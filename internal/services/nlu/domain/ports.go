// Package domain holds the NLU pipeline ports.
// The backend seams are polymorphic: the shipped implementations are the rule
// engines in internal/core, but a model-backed classifier slots in the same way
package domain

import (
	"context"
	"time"

	"vassist/internal/core/entity"
	"vassist/internal/core/intent"
	"vassist/internal/core/sentiment"
	sdom "vassist/internal/services/sessions/domain"
)

// ClassifierPort is the intent backend seam
type ClassifierPort interface {
	Classify(ctx context.Context, normalized, lang string) (intent.Result, error)
}

// ExtractorPort is the entity backend seam
type ExtractorPort interface {
	Extract(ctx context.Context, normalized, intentName string, now time.Time) ([]entity.Entity, error)
}

// AnalyzerPort is the sentiment backend seam
type AnalyzerPort interface {
	Analyze(ctx context.Context, normalized string) (sentiment.Score, error)
}

// PipelinePort runs the full understanding pass for one utterance
type PipelinePort interface {
	Understand(ctx context.Context, raw, locale, sessionID string, now time.Time) (sdom.Utterance, sdom.NLUResult, error)
}
