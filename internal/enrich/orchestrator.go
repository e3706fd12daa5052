package enrich

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

// Orchestrator runs the applicable adapters for a lead concurrently and
// merges their signal bundles into an EnrichedLead.
type Orchestrator struct {
	client   *fetch.Client
	adapters []Adapter
	fanout   int
}

// NewOrchestrator creates an Orchestrator. fanout caps how many adapters run
// concurrently within one lead.
func NewOrchestrator(client *fetch.Client, adapters []Adapter, fanout int) *Orchestrator {
	if fanout <= 0 {
		fanout = 4
	}
	return &Orchestrator{client: client, adapters: adapters, fanout: fanout}
}

// Process enriches a single lead. Every adapter that applies to the lead
// contributes exactly one entry to the signals map: a bundle on success, an
// AdapterFailure otherwise. Cancellation records the remaining adapters as
// failed with reason cancelled; the lead is still returned and scoreable.
func (o *Orchestrator) Process(ctx context.Context, lead model.RawLead) model.EnrichedLead {
	var applicable []Adapter
	for _, a := range o.adapters {
		if a.AppliesTo(lead) {
			applicable = append(applicable, a)
		}
	}

	signals := make(map[string]model.SignalBundle, len(applicable))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(o.fanout)

	for _, a := range applicable {
		a := a
		g.Go(func() error {
			bundle := o.runAdapter(ctx, a, lead)
			mu.Lock()
			signals[a.Name()] = bundle
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	enriched := model.EnrichedLead{
		RawLead: lead,
		Signals: signals,
		IsUSA:   IsUSA(lead.Location, lead.Address),
	}

	if failures := enriched.Failures(); len(failures) > 0 {
		zap.L().Debug("enrich: lead partially enriched",
			zap.String("username", lead.Username),
			zap.Int("adapters", len(applicable)),
			zap.Int("failures", len(failures)),
		)
	}

	return enriched
}

// runAdapter invokes one adapter, converting cancellation, nil results, and
// panics into AdapterFailure so nothing escapes the adapter boundary.
func (o *Orchestrator) runAdapter(ctx context.Context, a Adapter, lead model.RawLead) (bundle model.SignalBundle) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("enrich: adapter panic",
				zap.String("adapter", a.Name()),
				zap.Any("panic", r),
			)
			bundle = failure(a.Name(), model.ErrInternal, fmt.Sprintf("panic: %v", r))
		}
	}()

	if ctx.Err() != nil {
		return failure(a.Name(), model.ErrCancelled, ctx.Err().Error())
	}

	bundle = a.Enrich(ctx, lead, o.client)
	if bundle == nil {
		bundle = failure(a.Name(), model.ErrInternal, "adapter returned no bundle")
	}
	return bundle
}
