// Package report writes pipeline output: the full results CSV, the hot-leads
// export, and human-readable summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// Bands holds the score cutoffs that map scores to probability wording. They
// mirror the engine's classification cutoffs so reports stay consistent with
// classifications when the cutoffs are tuned.
type Bands struct {
	Hot  int
	Warm int
	Cold int
}

// Probability maps a score to a rough response-probability band used in the
// text report.
func Probability(score int, b Bands) string {
	switch {
	case score >= b.Hot:
		return "high"
	case score >= b.Warm:
		return "moderate"
	case score >= b.Cold:
		return "low"
	default:
		return "minimal"
	}
}

var csvHeader = []string{
	"username", "name", "location", "category", "website",
	"score", "classification", "follow_up_priority",
	"phones", "emails", "reasons", "failed_adapters",
}

// WriteCSV writes all scored leads in input order.
func WriteCSV(w io.Writer, leads []model.ScoredLead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, lead := range leads {
		if err := cw.Write(csvRow(lead)); err != nil {
			return eris.Wrapf(err, "report: write row %s", lead.Username)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush")
}

// WriteCSVFile writes the results CSV to path.
func WriteCSVFile(path string, leads []model.ScoredLead) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close()
	return WriteCSV(f, leads)
}

// WriteHotLeads writes only HOT-classified leads, preserving the pipeline's
// input order.
func WriteHotLeads(path string, leads []model.ScoredLead) (int, error) {
	var hot []model.ScoredLead
	for _, lead := range leads {
		if lead.Result.Classification == model.ClassHot {
			hot = append(hot, lead)
		}
	}
	if err := WriteCSVFile(path, hot); err != nil {
		return 0, err
	}
	return len(hot), nil
}

func csvRow(lead model.ScoredLead) []string {
	var phones, emails []string
	for _, bundle := range lead.Signals {
		if c, ok := bundle.(model.ContactSignals); ok {
			phones = c.Phones
			emails = c.Emails
		}
	}

	failures := lead.Failures()
	failed := make([]string, len(failures))
	for i, f := range failures {
		failed[i] = f.AdapterName
	}

	return []string{
		lead.Username,
		lead.Name,
		lead.Location,
		lead.Category,
		lead.Website,
		strconv.Itoa(lead.Result.Score),
		string(lead.Result.Classification),
		strconv.Itoa(lead.Result.Classification.FollowUpPriority()),
		strings.Join(phones, ";"),
		strings.Join(emails, ";"),
		strings.Join(lead.Result.Reasons, "; "),
		strings.Join(failed, ";"),
	}
}

// FormatReport generates a human-readable run report.
func FormatReport(inputPath string, leads []model.ScoredLead, tally model.Tally, bands Bands) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Lead Analysis Report\n")
	fmt.Fprintf(&b, "Input: %s\n\n", inputPath)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Leads analyzed: %d\n", len(leads))
	fmt.Fprintf(&b, "- HOT: %d\n", tally[model.ClassHot])
	fmt.Fprintf(&b, "- WARM: %d\n", tally[model.ClassWarm])
	fmt.Fprintf(&b, "- COLD: %d\n", tally[model.ClassCold])
	fmt.Fprintf(&b, "- UNLIKELY: %d\n\n", tally[model.ClassUnlikely])

	b.WriteString("## Hot Leads\n")
	anyHot := false
	for _, lead := range leads {
		if lead.Result.Classification != model.ClassHot {
			continue
		}
		anyHot = true
		fmt.Fprintf(&b, "- **%s** (%d points, %s response probability)\n",
			displayName(lead), lead.Result.Score, Probability(lead.Result.Score, bands))
		for _, reason := range lead.Result.Reasons {
			fmt.Fprintf(&b, "  - %s\n", reason)
		}
	}
	if !anyHot {
		b.WriteString("None.\n")
	}
	b.WriteString("\n")

	failures := 0
	for _, lead := range leads {
		failures += len(lead.Failures())
	}
	b.WriteString("## Enrichment\n")
	fmt.Fprintf(&b, "- Adapter failures: %d\n", failures)

	return b.String()
}

// Summary returns the one-screen console summary printed after a run.
func Summary(leads []model.ScoredLead, tally model.Tally, bands Bands) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d leads: %d hot, %d warm, %d cold, %d unlikely\n",
		len(leads),
		tally[model.ClassHot], tally[model.ClassWarm],
		tally[model.ClassCold], tally[model.ClassUnlikely])

	shown := 0
	for _, lead := range leads {
		if lead.Result.Classification != model.ClassHot {
			continue
		}
		if shown == 0 {
			b.WriteString("\nTop leads:\n")
		}
		fmt.Fprintf(&b, "  %-24s %3d  %s\n", displayName(lead), lead.Result.Score, Probability(lead.Result.Score, bands))
		shown++
		if shown >= 10 {
			break
		}
	}
	return b.String()
}

func displayName(lead model.ScoredLead) string {
	if lead.Name != "" {
		return lead.Name
	}
	return lead.Username
}
