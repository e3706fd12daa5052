package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/leadfile"
	"github.com/sells-group/leadscout/internal/pipeline"
	"github.com/sells-group/leadscout/internal/report"
)

var (
	analyzeInput       string
	analyzeOutput      string
	analyzeDelimiter   string
	analyzeHotLeads    string
	analyzeReport      string
	analyzeLimit       int
	analyzeConcurrency int
	analyzeKeywords    string
	analyzeNoStore     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Enrich and score a lead file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if analyzeKeywords != "" {
			if err := config.LoadKeywordFile(analyzeKeywords, &cfg.Keywords); err != nil {
				return err
			}
		}

		var delimiter rune
		if analyzeDelimiter != "" {
			delimiter = []rune(analyzeDelimiter)[0]
		}

		leads, err := leadfile.Read(ctx, analyzeInput, leadfile.Options{
			Delimiter: delimiter,
			Limit:     analyzeLimit,
		})
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			return eris.Errorf("no usable leads in %s", analyzeInput)
		}
		zap.L().Info("leads loaded", zap.String("input", analyzeInput), zap.Int("count", len(leads)))

		st := initStore(ctx, analyzeNoStore)
		if st != nil {
			defer st.Close()
		}

		concurrency := analyzeConcurrency
		if concurrency == 0 {
			concurrency = cfg.Pipeline.Concurrency
		}

		p := pipeline.New(buildOrchestrator(cfg), buildEngine(cfg), st, concurrency)
		result, err := p.Run(ctx, analyzeInput, leads)
		if err != nil {
			return err
		}

		if err := report.WriteCSVFile(analyzeOutput, result.Leads); err != nil {
			return err
		}

		if analyzeHotLeads != "" {
			n, err := report.WriteHotLeads(analyzeHotLeads, result.Leads)
			if err != nil {
				return err
			}
			zap.L().Info("hot leads written", zap.String("path", analyzeHotLeads), zap.Int("count", n))
		}

		bands := report.Bands{
			Hot:  cfg.Score.HotCutoff,
			Warm: cfg.Score.WarmCutoff,
			Cold: cfg.Score.ColdCutoff,
		}

		if analyzeReport != "" {
			if err := writeTextFile(analyzeReport, report.FormatReport(analyzeInput, result.Leads, result.Tally, bands)); err != nil {
				return err
			}
		}

		fmt.Print(report.Summary(result.Leads, result.Tally, bands))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "lead file: CSV or XLSX, local path or ftp:// URL (required)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "scored_leads.csv", "results CSV path")
	analyzeCmd.Flags().StringVar(&analyzeDelimiter, "delimiter", "", "CSV field delimiter (default comma)")
	analyzeCmd.Flags().StringVar(&analyzeHotLeads, "hot-leads", "", "write HOT leads to this CSV")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "write a markdown run report to this path")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "analyze at most this many leads (0 = all)")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "worker pool size (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeKeywords, "keywords", "", "YAML file overlaying the keyword lists")
	analyzeCmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "skip archiving the run")
	_ = analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}
