package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phasewin/adapters/agedata"
	"phasewin/adapters/postgres"
	"phasewin/adapters/rng"
	"phasewin/app"
	"phasewin/internal"
	"phasewin/internal/config"
	"phasewin/ports"
)

func main() {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "phasewin",
		Short: "Evaluate phase-window timing models against observed event ages",
	}

	rootCmd.AddCommand(
		newWindowsCmd(),
		newCoverageCmd(),
		newBaselinesCmd(),
		newScanCmd(),
		newCompareCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env wires config, age source, and service for one command invocation.
type env struct {
	cfg     *config.Config
	svc     *app.EvaluationService
	records []ports.AgeRecord
	cleanup func()
}

func setup(ctx context.Context, agesFile string, store bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if agesFile != "" {
		cfg.Data.AgesFile = agesFile
	}

	records, err := agedata.NewFileSource(cfg.Data.AgesFile).Ages(ctx)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, cleanup: func() {}}
	var runs ports.RunRepository
	if store {
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("--store requires DATABASE_URL")
		}
		repo, db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		runs = repo
		e.cleanup = func() { db.Close() }
	}

	e.svc = app.NewEvaluationService(rng.New(), runs, cfg.Sim.Workers)
	e.records = records
	return e, nil
}

func modelParams(cfg *config.Config) app.ModelParams {
	return app.ModelParams{
		Anchor: cfg.Model.Anchor,
		Ratio:  cfg.Model.Ratio,
		Phases: cfg.Model.Phases,
		W0:     cfg.Model.W0,
		G:      cfg.Model.G,
	}
}

func newWindowsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Print the configured phase-window definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			windows, err := modelParams(cfg).Windows()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(windows)
			}
			for _, w := range windows {
				fmt.Printf("P%d: centre=%.2f years, window=[%.1f, %.1f], half-width=%.2f\n",
					w.Index, w.Centre, w.Lower, w.Upper, w.HalfWidth)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newCoverageCmd() *cobra.Command {
	var asJSON bool
	var agesFile string

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Score the empirical ages against the configured windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), agesFile, false)
			if err != nil {
				return err
			}
			defer e.cleanup()

			report, err := e.svc.EvaluateCoverage(cmd.Context(), modelParams(e.cfg), e.records)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(report)
			}

			for _, row := range report.Rows {
				phase := "-"
				if row.Phase > 0 {
					phase = fmt.Sprintf("P%d", row.Phase)
				}
				fmt.Printf("%-16s age=%6.2f  phase=%-3s covered=%v\n",
					row.Dataset, row.Age, phase, row.Covered)
			}
			covered := int(report.Result.Coverage*float64(len(report.Rows)) + 0.5)
			fmt.Printf("\nCoverage = %.4f (%d of %d ages covered)\n",
				report.Result.Coverage, covered, len(report.Rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	cmd.Flags().StringVar(&agesFile, "ages", "", "Path to the age table (csv or xlsx)")
	return cmd
}

func newBaselinesCmd() *cobra.Command {
	var asJSON, store bool
	var agesFile string
	var iterations int

	cmd := &cobra.Command{
		Use:   "baselines",
		Short: "Run both Monte Carlo null baselines and report significance",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), agesFile, store)
			if err != nil {
				return err
			}
			defer e.cleanup()

			req := app.BaselinesRequest{
				Params:       modelParams(e.cfg),
				Records:      e.records,
				MaxAge:       e.cfg.Sim.MaxAge,
				Iterations:   e.cfg.Sim.Iterations,
				AgesPerTrial: e.cfg.Sim.Ages,
				SeedAges:     e.cfg.Sim.SeedAges,
				SeedWindows:  e.cfg.Sim.SeedWindows,
				Store:        store,
			}
			if iterations > 0 {
				req.Iterations = iterations
			}

			internal.DefaultLogger.Info("running %d trials per baseline (seeds %d, %d)",
				req.Iterations, req.SeedAges, req.SeedWindows)

			report, err := e.svc.RunBaselines(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(report)
			}

			fmt.Printf("Observed coverage = %.4f\n\n", report.Observed)
			printOutcome("Random-age baseline", report.RandomAges)
			printOutcome("Random-window baseline", report.RandomWindows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	cmd.Flags().BoolVar(&store, "store", false, "Persist run summaries (requires DATABASE_URL)")
	cmd.Flags().StringVar(&agesFile, "ages", "", "Path to the age table (csv or xlsx)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Override trial count")
	return cmd
}

func printOutcome(name string, out app.BaselineOutcome) {
	fmt.Printf("--- %s ---\n", name)
	fmt.Printf("mean coverage = %.4f +/- %.4f\n", out.Summary.Mean, out.Summary.Std)
	fmt.Printf("P(C >= observed) = %.4f\n", out.PValue)
	if out.ZScore != nil {
		fmt.Printf("z = %.2f (normal approx p = %.4g)\n", *out.ZScore, *out.NormalP)
	}
	fmt.Println()
}

func newScanCmd() *cobra.Command {
	var asJSON, store bool
	var agesFile string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Sweep the scaling ratio and report the coverage response curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), agesFile, store)
			if err != nil {
				return err
			}
			defer e.cleanup()

			report, err := e.svc.ScanRatios(cmd.Context(), app.ScanRequest{
				Params:  modelParams(e.cfg),
				Records: e.records,
				RMin:    e.cfg.Scan.RMin,
				RMax:    e.cfg.Scan.RMax,
				Points:  e.cfg.Scan.Points,
				Store:   store,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(report)
			}

			fmt.Printf("Reference coverage = %.4f\n", report.Reference)
			fmt.Printf("Best ratio r = %.4f with coverage %.4f\n",
				report.Result.BestR, report.Result.BestCoverage)
			if report.Band != nil {
				fmt.Printf("Effective band (coverage >= reference): [%.3f, %.3f]\n",
					report.Band.Min, report.Band.Max)
			} else {
				fmt.Println("No ratio reached the reference coverage in the scanned range.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	cmd.Flags().BoolVar(&store, "store", false, "Persist run summaries (requires DATABASE_URL)")
	cmd.Flags().StringVar(&agesFile, "ages", "", "Path to the age table (csv or xlsx)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var asJSON bool
	var agesFile string
	var linearStart, linearStep, expStart, expEnd float64

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare geometric, linear, and exponential spacing models",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), agesFile, false)
			if err != nil {
				return err
			}
			defer e.cleanup()

			models, err := e.svc.CompareModels(cmd.Context(), app.CompareRequest{
				Params:      modelParams(e.cfg),
				Records:     e.records,
				LinearStart: linearStart,
				LinearStep:  linearStep,
				ExpStart:    expStart,
				ExpEnd:      expEnd,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(models)
			}

			for _, m := range models {
				fmt.Printf("%-12s coverage = %.4f\n", m.Name, m.Coverage)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	cmd.Flags().StringVar(&agesFile, "ages", "", "Path to the age table (csv or xlsx)")
	cmd.Flags().Float64Var(&linearStart, "linear-start", 10, "First linear centre (years)")
	cmd.Flags().Float64Var(&linearStep, "linear-step", 15, "Linear centre spacing (years)")
	cmd.Flags().Float64Var(&expStart, "exp-start", 10, "First exponential centre (years)")
	cmd.Flags().Float64Var(&expEnd, "exp-end", 66, "Last exponential centre (years)")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
