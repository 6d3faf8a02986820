package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hfarrukh/solaradvisor/internal/advisor"
	"github.com/hfarrukh/solaradvisor/internal/config"
	"github.com/hfarrukh/solaradvisor/internal/llm"
	"github.com/hfarrukh/solaradvisor/internal/solar"
	"github.com/hfarrukh/solaradvisor/internal/tariff"
)

func analyzeCmd() *cobra.Command {
	var (
		fieldsJSON string
		budget     float64
		noLLM      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [bill-text-file]",
		Short: "Analyze a bill from the command line and print the recommendation",
		Long: `Analyze reads bill text from the given file (or stdin when omitted)
and prints the resulting analysis as JSON. With --fields the text is
skipped and the calculator runs directly on the supplied values.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			ctx := context.Background()

			market := solar.MarketFromEnv()
			if err := market.Validate(); err != nil {
				return err
			}

			var client llm.Client
			if !noLLM {
				client = llm.FromConfig(cfg)
			}
			svc := advisor.New(market, nil, client, tariff.DefaultSchedule(), cfg.LLMModel)

			var a *advisor.Analysis
			var err error
			if fieldsJSON != "" {
				var fields solar.BillFields
				if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
					return fmt.Errorf("parse --fields: %w", err)
				}
				a, err = svc.AnalyzeFields(ctx, fields, budget)
			} else {
				text, rerr := readBillText(args)
				if rerr != nil {
					return rerr
				}
				a, err = svc.AnalyzeText(ctx, text, nil, budget)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		},
	}

	cmd.Flags().StringVar(&fieldsJSON, "fields", "", "bill fields as JSON, bypassing the language model")
	cmd.Flags().Float64Var(&budget, "budget", 0, "installation budget in PKR, 0 for none")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "fail instead of calling the language model")
	return cmd
}

func readBillText(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no bill text on stdin, pass a file or use --fields")
	}
	return string(data), nil
}
