package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/enrich"
	"github.com/sells-group/leadscout/internal/model"
)

var (
	scoreUsername string
	scoreName     string
	scoreBio      string
	scoreCategory string
	scoreLocation string
	scoreAddress  string
)

// scoreCmd scores a single lead from its own fields only, without network
// enrichment. Useful for checking rule weights against a known lead.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single lead offline",
	RunE: func(cmd *cobra.Command, args []string) error {
		lead := model.RawLead{
			Username: scoreUsername,
			Name:     scoreName,
			Bio:      scoreBio,
			Category: scoreCategory,
			Location: scoreLocation,
			Address:  scoreAddress,
		}

		contact := enrich.NewContactAdapter(cfg.Keywords.DisposableDomains)
		signals := make(map[string]model.SignalBundle)
		if contact.AppliesTo(lead) {
			signals[contact.Name()] = contact.Enrich(context.Background(), lead, nil)
		}

		enriched := model.EnrichedLead{
			RawLead: lead,
			Signals: signals,
			IsUSA:   enrich.IsUSA(lead.Location, lead.Address),
		}

		scored := model.ScoredLead{
			EnrichedLead: enriched,
			Result:       buildEngine(cfg).Score(enriched),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scored)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreUsername, "username", "", "lead username")
	scoreCmd.Flags().StringVar(&scoreName, "name", "", "lead full name")
	scoreCmd.Flags().StringVar(&scoreBio, "bio", "", "lead bio text")
	scoreCmd.Flags().StringVar(&scoreCategory, "category", "", "business category")
	scoreCmd.Flags().StringVar(&scoreLocation, "location", "", "lead location")
	scoreCmd.Flags().StringVar(&scoreAddress, "address", "", "lead address")
	rootCmd.AddCommand(scoreCmd)
}
