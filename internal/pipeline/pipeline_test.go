package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/enrich"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/score"
	"github.com/sells-group/leadscout/internal/store"
)

func testEngine() *score.Engine {
	return score.NewEngine(config.ScoreConfig{
		PhoneWeight:      15,
		IntentPerKeyword: 15,
		IntentCap:        30,
		HotCutoff:        70,
		WarmCutoff:       40,
		ColdCutoff:       15,
	}, config.KeywordConfig{
		BuyerIntent: []string{"cash buyer", "we buy houses"},
	})
}

// testOrchestrator enriches offline, with the contact adapter only.
func testOrchestrator() *enrich.Orchestrator {
	return enrich.NewOrchestrator(nil, []enrich.Adapter{enrich.NewContactAdapter(nil)}, 2)
}

func makeLeads(n int) []model.RawLead {
	leads := make([]model.RawLead, n)
	for i := range leads {
		leads[i] = model.RawLead{
			Username: fmt.Sprintf("lead%03d", i),
			Bio:      "cash buyer, call 555-123-4567",
			Location: "Austin, TX, USA",
		}
	}
	return leads
}

func TestRun_PreservesInputOrder(t *testing.T) {
	p := New(testOrchestrator(), testEngine(), nil, 4)

	leads := makeLeads(25)
	result, err := p.Run(context.Background(), "leads.csv", leads)
	require.NoError(t, err)
	require.Len(t, result.Leads, 25)

	for i, scored := range result.Leads {
		assert.Equal(t, fmt.Sprintf("lead%03d", i), scored.Username)
	}
}

func TestRun_TallyMatchesResults(t *testing.T) {
	p := New(testOrchestrator(), testEngine(), nil, 4)

	leads := makeLeads(10)
	// Leads outside the USA classify UNLIKELY.
	leads[3].Location = "Toronto, ON, Canada"
	leads[7].Location = "Toronto, ON, Canada"

	result, err := p.Run(context.Background(), "leads.csv", leads)
	require.NoError(t, err)

	total := 0
	for _, n := range result.Tally {
		total += n
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 2, result.Tally[model.ClassUnlikely])
}

func TestRun_EveryLeadScored(t *testing.T) {
	p := New(testOrchestrator(), testEngine(), nil, 2)

	result, err := p.Run(context.Background(), "leads.csv", makeLeads(5))
	require.NoError(t, err)

	for _, scored := range result.Leads {
		// phone 15 + intent 15
		assert.Equal(t, 30, scored.Result.Score)
		assert.Equal(t, model.ClassCold, scored.Result.Classification)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	p := New(testOrchestrator(), testEngine(), nil, 2)
	result, err := p.Run(context.Background(), "leads.csv", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Leads)
	assert.Nil(t, result.Run)
}

func TestRun_ArchivesToStore(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	p := New(testOrchestrator(), testEngine(), st, 2)
	result, err := p.Run(context.Background(), "leads.csv", makeLeads(3))
	require.NoError(t, err)
	require.NotNil(t, result.Run)

	run, err := st.GetRun(context.Background(), result.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, 3, run.LeadCount)
	assert.NotNil(t, run.CompletedAt)
	assert.Equal(t, 3, run.Tally[model.ClassCold])

	archived, err := st.ListScoredLeads(context.Background(), run.ID, 0)
	require.NoError(t, err)
	assert.Len(t, archived, 3)
}

func TestRun_CancelledContextStillReturnsLeads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(testOrchestrator(), testEngine(), nil, 2)
	result, err := p.Run(ctx, "leads.csv", makeLeads(4))
	require.NoError(t, err)
	require.Len(t, result.Leads, 4)

	// Cancelled enrichment shows up as cancelled adapter failures.
	for _, scored := range result.Leads {
		failures := scored.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, model.ErrCancelled, failures[0].Reason)
	}
}
