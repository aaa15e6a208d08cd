// Package consolidation runs the LLM-driven taxonomy passes: meta-analysis
// groups discovered skills into managed skills, distillation groups managed
// skills into distilled skills. Both passes share one engine parameterized by
// a Pass.
package consolidation

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"skillscope/internal/domain/skill"
	"skillscope/internal/infrastructure/llm"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/llmjson"
	"skillscope/internal/shared/logger"
	"skillscope/internal/shared/prompt"
)

//go:embed default_meta_prompt.txt
var defaultMetaPromptText string

//go:embed default_distill_prompt.txt
var defaultDistillPromptText string

// Outcome classifies one batch attempt.
type Outcome string

const (
	// OutcomeSuccess means groups were parsed and applied.
	OutcomeSuccess Outcome = "SUCCESS"
	// OutcomeDone means no unassociated items remain.
	OutcomeDone Outcome = "DONE"
	// OutcomeNoGroups means the response parsed but produced nothing to
	// apply. The batch is skipped, not retried.
	OutcomeNoGroups Outcome = "NO_GROUPS_GENERATED"
	// OutcomeBatchError means generation, parsing, or the apply failed.
	OutcomeBatchError Outcome = "BATCH_ERROR"
)

// BatchResult is the record of one batch attempt, kept for failure logging.
type BatchResult struct {
	Outcome     Outcome
	LLMResponse string
	ErrorDetail string
}

// RunSummary totals a multi-batch run.
type RunSummary struct {
	BatchesRun int
	Succeeded  int
	Failed     int
	LogPath    string
}

// Pass carries the tier-specific pieces: which names to fetch, how many
// remain, and how to apply the parsed groups.
type Pass struct {
	Name            string
	FailurePrefix   string
	FetchBatch      func(ctx context.Context, batchSize int) ([]string, error)
	RemainingCount  func(ctx context.Context) (int64, error)
	ApplyGroups     func(ctx context.Context, groups []llmjson.Group) error
	DefaultTemplate string
}

// MetaAnalysisPass groups unassociated discovered skills under managed
// skills.
func MetaAnalysisPass(taxonomy skill.TaxonomyRepository) Pass {
	return Pass{
		Name:            "meta_analysis",
		FailurePrefix:   "BadBatches",
		FetchBatch:      taxonomy.UnassociatedBatch,
		RemainingCount:  taxonomy.UnassociatedCount,
		ApplyGroups:     taxonomy.ApplyManagedGroups,
		DefaultTemplate: defaultMetaPromptText,
	}
}

// DistillationPass groups unassociated managed skills under distilled
// skills. Exception skills never appear in its batches.
func DistillationPass(taxonomy skill.TaxonomyRepository) Pass {
	return Pass{
		Name:            "distillation",
		FailurePrefix:   "DistillerBadBatches",
		FetchBatch:      taxonomy.UnassociatedManagedBatch,
		RemainingCount:  taxonomy.UnassociatedManagedCount,
		ApplyGroups:     taxonomy.ApplyDistilledGroups,
		DefaultTemplate: defaultDistillPromptText,
	}
}

type Consolidator struct {
	pass       Pass
	llmClient  llm.Client
	promptTmpl prompt.Template
	cfg        config.ConsolidationConfig
	logger     logger.Interface
}

func NewConsolidator(pass Pass, llmClient llm.Client, cfg config.ConsolidationConfig, log logger.Interface) (*Consolidator, error) {
	tmpl, _, err := prompt.Load(cfg.PromptPath, pass.DefaultTemplate)
	if err != nil {
		return nil, err
	}
	return &Consolidator{
		pass:       pass,
		llmClient:  llmClient,
		promptTmpl: tmpl,
		cfg:        cfg,
		logger:     log.With("component", "consolidation", "pass", pass.Name),
	}, nil
}

// ProcessOneBatch fetches one batch of unassociated names and runs it through
// the model. Failures are contained in the returned BatchResult; the error
// return is reserved for context cancellation.
func (c *Consolidator) ProcessOneBatch(ctx context.Context) (*BatchResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	names, err := c.pass.FetchBatch(ctx, c.cfg.BatchSize)
	if err != nil {
		return &BatchResult{Outcome: OutcomeBatchError, ErrorDetail: err.Error()}, nil
	}
	if len(names) == 0 {
		return &BatchResult{Outcome: OutcomeDone}, nil
	}

	payload, err := json.Marshal(names)
	if err != nil {
		return &BatchResult{Outcome: OutcomeBatchError, ErrorDetail: err.Error()}, nil
	}

	// Custom templates for the distillation pass may use either placeholder.
	rendered := c.promptTmpl.Render(map[string]string{
		"skills_list":         string(payload),
		"managed_skills_list": string(payload),
	})

	raw, err := c.llmClient.Generate(ctx, c.cfg.Model, rendered)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &BatchResult{Outcome: OutcomeBatchError, ErrorDetail: err.Error()}, nil
	}

	groups := llmjson.ParseGroups(raw)
	if len(groups) == 0 {
		return &BatchResult{
			Outcome:     OutcomeNoGroups,
			LLMResponse: raw,
			ErrorDetail: "response could not be parsed into a non-empty group array",
		}, nil
	}

	if err := c.pass.ApplyGroups(ctx, groups); err != nil {
		return &BatchResult{Outcome: OutcomeBatchError, LLMResponse: raw, ErrorDetail: err.Error()}, nil
	}

	return &BatchResult{Outcome: OutcomeSuccess, LLMResponse: raw}, nil
}

// RunBatches processes a fixed number of batches, stopping early when the
// backlog empties.
func (c *Consolidator) RunBatches(ctx context.Context, count int) (*RunSummary, error) {
	return c.run(ctx, count)
}

// RunContinuous sizes the run from the current backlog and processes until it
// is exhausted, logging every failed batch for later inspection.
func (c *Consolidator) RunContinuous(ctx context.Context) (*RunSummary, error) {
	total, err := c.pass.RemainingCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count remaining items: %w", err)
	}
	if total == 0 {
		c.logger.Infow("nothing to consolidate")
		return &RunSummary{}, nil
	}

	batches := int(math.Ceil(float64(total) / float64(c.cfg.BatchSize)))
	c.logger.Infow("starting continuous run", "remaining", total, "batches", batches)
	return c.run(ctx, batches)
}

func (c *Consolidator) run(ctx context.Context, batches int) (*RunSummary, error) {
	failures := NewFailureLog(c.cfg.FailureLogDir, c.pass.FailurePrefix)
	defer failures.Close()

	summary := &RunSummary{}

	for i := 1; i <= batches; i++ {
		result, err := c.ProcessOneBatch(ctx)
		if err != nil {
			return summary, err
		}
		summary.BatchesRun++

		switch result.Outcome {
		case OutcomeSuccess:
			summary.Succeeded++
			c.logger.Infow("batch applied", "batch", i, "of", batches)
		case OutcomeDone:
			summary.BatchesRun--
			c.logger.Infow("backlog exhausted", "batches_run", summary.BatchesRun)
			return summary, nil
		default:
			summary.Failed++
			summary.LogPath = failures.Path()
			c.logger.Warnw("batch failed",
				"batch", i,
				"status", result.Outcome,
				"error", result.ErrorDetail)
			if logErr := failures.Record(i, string(result.Outcome), result.ErrorDetail, result.LLMResponse); logErr != nil {
				c.logger.Errorw("failed to record failed batch", "error", logErr)
			}
		}

		if i < batches && c.cfg.BatchDelaySecs > 0 {
			select {
			case <-time.After(time.Duration(c.cfg.BatchDelaySecs) * time.Second):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}
	}

	c.logger.Infow("run finished",
		"batches", summary.BatchesRun,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
	return summary, nil
}
