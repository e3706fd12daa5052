// Package pipeline runs the enrich-then-score flow over a batch of leads.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/enrich"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/score"
	"github.com/sells-group/leadscout/internal/store"
)

// Pipeline enriches and scores leads with a bounded worker pool. The store is
// optional; a nil store disables run archival.
type Pipeline struct {
	orch        *enrich.Orchestrator
	engine      *score.Engine
	store       store.Store
	concurrency int
}

// New creates a Pipeline. concurrency bounds how many leads are enriched in
// parallel.
func New(orch *enrich.Orchestrator, engine *score.Engine, st store.Store, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Pipeline{orch: orch, engine: engine, store: st, concurrency: concurrency}
}

// Result is the outcome of one pipeline invocation.
type Result struct {
	Leads []model.ScoredLead `json:"leads"`
	Tally model.Tally        `json:"tally"`
	Run   *model.Run         `json:"run,omitempty"`
}

// Run enriches and scores every lead. Output order matches input order
// regardless of completion order. A cancelled context does not abort leads
// already in flight; their remaining adapters record cancelled failures and
// the leads are still scored, so a partial run remains usable.
func (p *Pipeline) Run(ctx context.Context, inputPath string, leads []model.RawLead) (*Result, error) {
	log := zap.L().With(zap.String("input", inputPath), zap.Int("leads", len(leads)))
	log.Info("pipeline: starting run")
	start := time.Now()

	var run *model.Run
	if p.store != nil {
		created, err := p.store.CreateRun(ctx, inputPath, len(leads))
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		run = created
	}

	// Each worker writes to its own index, so the slice needs no lock and the
	// output order is the input order.
	scored := make([]model.ScoredLead, len(leads))

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)

	for i, lead := range leads {
		i, lead := i, lead
		g.Go(func() error {
			enriched := p.orch.Process(ctx, lead)
			scored[i] = model.ScoredLead{
				EnrichedLead: enriched,
				Result:       p.engine.Score(enriched),
			}
			return nil
		})
	}
	_ = g.Wait()

	tally := model.Tally{}
	for _, s := range scored {
		tally[s.Result.Classification]++
	}

	status := model.RunStatusComplete
	if ctx.Err() != nil {
		status = model.RunStatusCancelled
	}

	if p.store != nil && run != nil {
		p.archive(run.ID, status, tally, scored, log)
		run.Status = status
		run.Tally = tally
	}

	log.Info("pipeline: run finished",
		zap.String("status", string(status)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("hot", tally[model.ClassHot]),
		zap.Int("warm", tally[model.ClassWarm]),
	)

	return &Result{Leads: scored, Tally: tally, Run: run}, nil
}

// archive persists the run outcome. Archival failures are logged, not fatal:
// the scored leads in memory are the primary output.
func (p *Pipeline) archive(runID string, status model.RunStatus, tally model.Tally, scored []model.ScoredLead, log *zap.Logger) {
	// Fresh context so a cancelled run still archives.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.store.SaveScoredLeads(ctx, runID, scored); err != nil {
		log.Warn("pipeline: save scored leads", zap.Error(err))
	}
	if err := p.store.CompleteRun(ctx, runID, status, tally); err != nil {
		log.Warn("pipeline: complete run", zap.Error(err))
	}
}
