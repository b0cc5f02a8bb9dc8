// Package extract turns a rendered product page into review records.
//
// A Strategy holds the selectors for one site family; Dispatch picks one by
// hostname. Pipeline runs the strategy's preparation, expands hidden reviews,
// and extracts at most maxReviews containers.
package extract

import (
	"context"
	"log/slog"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/models"
	"github.com/maltedev/review-scraper/internal/pacing"
)

type NodeOutcome int

const (
	NodeKept NodeOutcome = iota
	NodeRejected
	NodeFailed
)

func (o NodeOutcome) String() string {
	switch o {
	case NodeKept:
		return "kept"
	case NodeRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Result is the outcome of one page extraction.
type Result struct {
	Strategy  string
	Container string
	Expansion Expansion
	// Candidates is the number of containers found after expansion, before
	// the maxReviews bound was applied.
	Candidates int
	Outcomes   []NodeOutcome
	Records    []models.Review
}

func (r *Result) Count(o NodeOutcome) int {
	n := 0
	for _, got := range r.Outcomes {
		if got == o {
			n++
		}
	}
	return n
}

type Pipeline struct {
	expander *Expander
	pauser   pacing.Pauser
	logger   *slog.Logger
}

func NewPipeline(p pacing.Pauser, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		expander: NewExpander(p, logger),
		pauser:   p,
		logger:   logger.With("component", "pipeline"),
	}
}

// WithExpander replaces the expander, mainly to change its selectors.
func (p *Pipeline) WithExpander(e *Expander) *Pipeline {
	c := *p
	c.expander = e
	return &c
}

// Extract runs s against doc and returns at most maxReviews records. Only
// containers within the bound are read. Failures below the page level are
// logged and skipped; the returned error is non-nil only when ctx ends, in
// which case the partial result is still returned.
func (p *Pipeline) Extract(ctx context.Context, doc dom.Document, s *Strategy, maxReviews int) (*Result, error) {
	logger := p.logger.With("strategy", s.Name)
	res := &Result{Strategy: s.Name, Records: []models.Review{}}

	for _, prepare := range s.Prepare {
		if err := prepare(ctx, doc, p.pauser, logger); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			logger.Warn("preparation failed", "error", err)
		}
	}

	exp, err := p.expander.Expand(ctx, doc)
	res.Expansion = exp
	if err != nil {
		return res, err
	}

	nodes, container, err := FirstMatchAll(doc, s.Containers)
	if err != nil {
		logger.Error("failed to find review containers", "error", err)
		return res, nil
	}
	res.Container = container
	res.Candidates = len(nodes)

	if len(nodes) == 0 {
		logger.Info("no review containers found")
		return res, nil
	}
	logger.Info("found review containers", "selector", container, "count", len(nodes))

	if maxReviews < 0 {
		maxReviews = 0
	}
	if len(nodes) > maxReviews {
		nodes = nodes[:maxReviews]
	}

	for i, node := range nodes {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		ext, err := s.ExtractNode(node)
		if err != nil {
			logger.Warn("failed to extract review", "index", i, "error", err)
			res.Outcomes = append(res.Outcomes, NodeFailed)
			continue
		}

		if !s.Admit(ext.Review) {
			logger.Debug("review rejected", "index", i, "text_length", len(ext.Review.Text))
			res.Outcomes = append(res.Outcomes, NodeRejected)
			continue
		}

		if defaults := ext.Defaults(); len(defaults) > 0 {
			logger.Debug("fields defaulted", "index", i, "fields", defaults)
		}
		res.Outcomes = append(res.Outcomes, NodeKept)
		res.Records = append(res.Records, ext.Review)
	}

	logger.Info("extraction finished",
		"kept", res.Count(NodeKept),
		"rejected", res.Count(NodeRejected),
		"failed", res.Count(NodeFailed),
	)

	return res, nil
}
