package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/model"
)

// stubAdapter lets tests control adapter behavior.
type stubAdapter struct {
	name    string
	applies bool
	enrich  func(ctx context.Context) model.SignalBundle
}

func (s *stubAdapter) Name() string                     { return s.name }
func (s *stubAdapter) AppliesTo(model.RawLead) bool     { return s.applies }
func (s *stubAdapter) Enrich(ctx context.Context, _ model.RawLead, _ *fetch.Client) model.SignalBundle {
	return s.enrich(ctx)
}

func TestProcess_OneEntryPerApplicableAdapter(t *testing.T) {
	adapters := []Adapter{
		&stubAdapter{name: "a", applies: true, enrich: func(context.Context) model.SignalBundle {
			return model.ContactSignals{Phones: []string{"5551234567"}}
		}},
		&stubAdapter{name: "b", applies: true, enrich: func(context.Context) model.SignalBundle {
			return model.AdapterFailure{AdapterName: "b", Reason: model.ErrTimeout}
		}},
		&stubAdapter{name: "skipped", applies: false, enrich: func(context.Context) model.SignalBundle {
			t.Fatal("adapter that does not apply must not run")
			return nil
		}},
	}

	o := NewOrchestrator(nil, adapters, 2)
	enriched := o.Process(context.Background(), model.RawLead{Username: "u", Location: "Austin, TX, USA"})

	require.Len(t, enriched.Signals, 2)
	assert.IsType(t, model.ContactSignals{}, enriched.Signals["a"])
	assert.IsType(t, model.AdapterFailure{}, enriched.Signals["b"])
	assert.True(t, enriched.IsUSA)
}

func TestProcess_PanicBecomesInternalFailure(t *testing.T) {
	adapters := []Adapter{
		&stubAdapter{name: "boom", applies: true, enrich: func(context.Context) model.SignalBundle {
			panic("unexpected html shape")
		}},
	}

	o := NewOrchestrator(nil, adapters, 1)
	enriched := o.Process(context.Background(), model.RawLead{Username: "u"})

	f, ok := enriched.Signals["boom"].(model.AdapterFailure)
	require.True(t, ok)
	assert.Equal(t, model.ErrInternal, f.Reason)
	assert.Contains(t, f.Detail, "unexpected html shape")
}

func TestProcess_NilBundleBecomesInternalFailure(t *testing.T) {
	adapters := []Adapter{
		&stubAdapter{name: "nilly", applies: true, enrich: func(context.Context) model.SignalBundle {
			return nil
		}},
	}

	o := NewOrchestrator(nil, adapters, 1)
	enriched := o.Process(context.Background(), model.RawLead{Username: "u"})

	f, ok := enriched.Signals["nilly"].(model.AdapterFailure)
	require.True(t, ok)
	assert.Equal(t, model.ErrInternal, f.Reason)
}

func TestProcess_CancelledContextRecordsCancelledFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapters := []Adapter{
		&stubAdapter{name: "a", applies: true, enrich: func(ctx context.Context) model.SignalBundle {
			return model.ContactSignals{}
		}},
	}

	o := NewOrchestrator(nil, adapters, 1)
	enriched := o.Process(ctx, model.RawLead{Username: "u"})

	f, ok := enriched.Signals["a"].(model.AdapterFailure)
	require.True(t, ok)
	assert.Equal(t, model.ErrCancelled, f.Reason)
}

func TestProcess_NonUSALead(t *testing.T) {
	o := NewOrchestrator(nil, nil, 1)
	enriched := o.Process(context.Background(), model.RawLead{Location: "Toronto, ON, Canada"})
	assert.False(t, enriched.IsUSA)
	assert.Empty(t, enriched.Signals)
}
