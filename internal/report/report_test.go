package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func scoredLead(username string, score int, class model.Classification) model.ScoredLead {
	return model.ScoredLead{
		EnrichedLead: model.EnrichedLead{
			RawLead: model.RawLead{Username: username, Location: "Austin, TX, USA"},
			Signals: map[string]model.SignalBundle{
				"contact": model.ContactSignals{Phones: []string{"5551234567"}, Emails: []string{"a@b.com", "c@d.com"}},
			},
			IsUSA: true,
		},
		Result: model.ScoreResult{
			Score:          score,
			Classification: class,
			Reasons:        []string{"phone number found", "buyer intent keywords"},
		},
	}
}

func defaultBands() Bands {
	return Bands{Hot: 70, Warm: 40, Cold: 15}
}

func TestProbability(t *testing.T) {
	b := defaultBands()
	assert.Equal(t, "high", Probability(70, b))
	assert.Equal(t, "moderate", Probability(69, b))
	assert.Equal(t, "moderate", Probability(40, b))
	assert.Equal(t, "low", Probability(39, b))
	assert.Equal(t, "low", Probability(15, b))
	assert.Equal(t, "minimal", Probability(14, b))
}

func TestProbability_TunedBands(t *testing.T) {
	b := Bands{Hot: 50, Warm: 30, Cold: 10}
	assert.Equal(t, "high", Probability(50, b))
	assert.Equal(t, "moderate", Probability(49, b))
	assert.Equal(t, "low", Probability(29, b))
	assert.Equal(t, "minimal", Probability(9, b))
}

func TestWriteCSV(t *testing.T) {
	lead := scoredLead("jane", 85, model.ClassHot)
	lead.Signals["website"] = model.AdapterFailure{AdapterName: "website", Reason: model.ErrTimeout}

	var b strings.Builder
	require.NoError(t, WriteCSV(&b, []model.ScoredLead{lead}))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(csvHeader, ","), lines[0])
	assert.Contains(t, lines[1], "jane")
	assert.Contains(t, lines[1], "85,HOT,1")
	assert.Contains(t, lines[1], "a@b.com;c@d.com")
	assert.Contains(t, lines[1], "phone number found; buyer intent keywords")
	assert.Contains(t, lines[1], "website")
}

func TestWriteHotLeads(t *testing.T) {
	leads := []model.ScoredLead{
		scoredLead("hot1", 72, model.ClassHot),
		scoredLead("warm", 50, model.ClassWarm),
		scoredLead("hot2", 90, model.ClassHot),
		scoredLead("cold", 20, model.ClassCold),
	}

	path := filepath.Join(t.TempDir(), "hot.csv")
	count, err := WriteHotLeads(path, leads)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	// Input order is preserved, not score order.
	assert.Less(t, strings.Index(content, "hot1"), strings.Index(content, "hot2"))
	assert.NotContains(t, content, "warm")
	assert.NotContains(t, content, "cold")
}

func TestFormatReport(t *testing.T) {
	leads := []model.ScoredLead{
		scoredLead("hot1", 90, model.ClassHot),
		scoredLead("cold", 20, model.ClassCold),
	}
	tally := model.Tally{model.ClassHot: 1, model.ClassCold: 1}

	out := FormatReport("leads.csv", leads, tally, defaultBands())
	assert.Contains(t, out, "Input: leads.csv")
	assert.Contains(t, out, "- Leads analyzed: 2")
	assert.Contains(t, out, "- HOT: 1")
	assert.Contains(t, out, "- COLD: 1")
	assert.Contains(t, out, "**hot1** (90 points, high response probability)")
	assert.Contains(t, out, "- phone number found")
}

func TestFormatReport_NoHotLeads(t *testing.T) {
	out := FormatReport("leads.csv", nil, model.Tally{}, defaultBands())
	assert.Contains(t, out, "None.")
}

func TestSummary(t *testing.T) {
	leads := []model.ScoredLead{
		scoredLead("hot1", 90, model.ClassHot),
		scoredLead("warm", 50, model.ClassWarm),
	}
	tally := model.Tally{model.ClassHot: 1, model.ClassWarm: 1}

	out := Summary(leads, tally, defaultBands())
	assert.Contains(t, out, "Analyzed 2 leads: 1 hot, 1 warm, 0 cold, 0 unlikely")
	assert.Contains(t, out, "Top leads:")
	assert.Contains(t, out, "hot1")
	assert.NotContains(t, out, "warm ")
}

func TestDisplayName(t *testing.T) {
	withName := scoredLead("jane", 0, model.ClassUnlikely)
	withName.Name = "Jane Doe"
	assert.Equal(t, "Jane Doe", displayName(withName))
	assert.Equal(t, "jane", displayName(scoredLead("jane", 0, model.ClassUnlikely)))
}
