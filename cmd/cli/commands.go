package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/aggregate"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/config"
	"github.com/iho/loanledger/internal/infrastructure/logger"
	"github.com/iho/loanledger/internal/infrastructure/postgres"
	"github.com/iho/loanledger/internal/report"
	"github.com/iho/loanledger/internal/usecase"
)

type runFlags struct {
	asOf     string
	strategy string
	maxDays  int
	csv      bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.asOf, "as-of", "", "Simulate up to this day (YYYY-MM-DD); overrides the file")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Accrual strategy: daily or closed_form; overrides the file")
	cmd.Flags().IntVar(&f.maxDays, "max-days", usecase.DefaultSimulationMaxDays, "Largest span to simulate; 0 means unbounded")
	cmd.Flags().BoolVar(&f.csv, "csv", false, "Write CSV instead of JSON")
}

func simulateCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "simulate <events.json>",
		Short: "Run the accrual engine on a loan described in a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runFile(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}
			if flags.csv {
				return report.WriteSimulationCSV(cmd.OutOrStdout(), out.Result)
			}
			return printJSON(cmd.OutOrStdout(), dto.SimulationFromResult(out.Result, out.AsOf, out.Strategy))
		},
	}
	flags.register(cmd)
	return cmd
}

func summaryCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "summary <events.json>",
		Short: "Aggregate a simulated loan into calendar periods",
		Long: "Aggregate a simulated loan into calendar periods. The granularity follows the loan's age\n" +
			"and the GRANULARITY_DAILY_MAX_DAYS / GRANULARITY_MONTHLY_MAX_DAYS settings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := reportingPolicy()
			if err != nil {
				return err
			}
			out, err := runFile(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			age := 0
			if first, ok := domain.FirstDisbursalDate(out.Events); ok {
				age = first.DaysUntil(out.AsOf)
			}
			rep := aggregate.Aggregate(aggregate.FromRows(out.Result.Rows), policy.Choose(age), out.AsOf)
			if flags.csv {
				return report.WritePeriodsCSV(cmd.OutOrStdout(), rep)
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
	flags.register(cmd)
	return cmd
}

// reportingPolicy reads the granularity thresholds the server uses.
func reportingPolicy() (aggregate.Policy, error) {
	cfg, err := config.Load()
	if err != nil {
		return aggregate.Policy{}, err
	}
	policy := aggregate.Policy{
		DailyMaxDays:   cfg.GranularityDailyMaxDays,
		MonthlyMaxDays: cfg.GranularityMonthlyMaxDays,
	}
	if err := policy.Validate(); err != nil {
		return aggregate.Policy{}, err
	}
	return policy, nil
}

func importCmd() *cobra.Command {
	var (
		granularity string
		until       string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "import <ledger.csv>",
		Short: "Aggregate a legacy ledger CSV export into calendar periods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := calendar.ParseGranularity(granularity)
			if err != nil {
				return err
			}
			var untilDay calendar.Day
			if until != "" {
				if untilDay, err = calendar.Parse(until); err != nil {
					return err
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := report.ReadLedgerCSV(f)
			if err != nil {
				return err
			}

			log := logger.New(logger.Config{Level: "warn", Format: "console", Output: cmd.ErrOrStderr()})
			lines, skipped := aggregate.FromLedger(entries, log)
			rep := aggregate.Aggregate(lines, g, untilDay)
			rep.Skipped = skipped

			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			return report.WritePeriodsCSV(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", "monthly", "daily, monthly or quarterly")
	cmd.Flags().StringVar(&until, "until", "", "Extend periods through this day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of CSV")
	return cmd
}

func previewCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "preview <loan-id>",
		Short: "Ask a running server for the interest owed on a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(map[string]string{"as_of": asOf})
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: timeout}
			resp, err := client.Post(
				baseURL+"/api/v1/loans/"+url.PathEscape(args[0])+"/interest-preview",
				"application/json",
				bytes.NewReader(body),
			)
			if err != nil {
				return fmt.Errorf("error making request: %w", err)
			}
			defer resp.Body.Close()

			payload, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("preview failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(payload))
			}

			var result map[string]any
			if err := json.Unmarshal(payload, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Preview as of this day (YYYY-MM-DD); today when empty")
	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations against a running server",
	}
	cmd.AddCommand(consistencyCmd())
	return cmd
}

func consistencyCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "consistency <loan-id>",
		Short: "Check that a loan's detailed and aggregated ledgers agree with the engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := baseURL + "/api/v1/loans/" + url.PathEscape(args[0]) + "/consistency"
			if asOf != "" {
				endpoint += "?as_of=" + url.QueryEscape(asOf)
			}

			client := &http.Client{Timeout: timeout}
			resp, err := client.Get(endpoint)
			if err != nil {
				return fmt.Errorf("error making request: %w", err)
			}
			defer resp.Body.Close()

			payload, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
				return fmt.Errorf("consistency check failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(payload))
			}

			var result usecase.ReconciliationResult
			if err := json.Unmarshal(payload, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, c := range result.Checks {
				mark := "ok"
				if !c.OK {
					mark = "MISMATCH"
				}
				fmt.Fprintf(out, "%-26s %-8s expected=%s actual=%s\n", c.Name, mark, c.Expected, c.Actual)
			}
			if !result.Consistent {
				return fmt.Errorf("consistency check FAILED for loan %s as of %s", result.LoanID, result.AsOf)
			}
			fmt.Fprintf(out, "Consistency check PASSED for loan %s as of %s\n", result.LoanID, result.AsOf)
			return nil
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Check as of this day (YYYY-MM-DD); today when empty")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})
			m := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log)
			if args[0] == "down" {
				return m.Down()
			}
			return m.Up()
		},
	}
	return cmd
}

type fileRun struct {
	*usecase.SimulationOutput
	Events []domain.Event
}

// runFile runs the engine on the loan described by a playground JSON file.
func runFile(ctx context.Context, path string, flags runFlags) (*fileRun, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var req dto.PlaygroundRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if flags.asOf != "" {
		if req.AsOf, err = calendar.Parse(flags.asOf); err != nil {
			return nil, err
		}
	}
	if flags.strategy != "" {
		req.Strategy = flags.strategy
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		return nil, err
	}

	cfg := usecase.DefaultSimulationConfig()
	cfg.Engine = usecase.EngineConfig{Strategy: accrual.DayStepped, MaxDays: flags.maxDays}
	uc := usecase.NewSimulationUseCase(nil, nil, nil, nil, calendar.SystemClock{}, cfg, nil, zerolog.Nop())

	out, err := uc.Playground(ctx, input)
	if err != nil {
		return nil, err
	}
	return &fileRun{SimulationOutput: out, Events: input.Events}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
