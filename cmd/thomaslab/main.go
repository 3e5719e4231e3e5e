package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/thomaslab/internal/config"
	"github.com/san-kum/thomaslab/internal/engine"
	"github.com/san-kum/thomaslab/internal/flower"
	"github.com/san-kum/thomaslab/internal/storage"
	"github.com/san-kum/thomaslab/internal/sweep"
	"github.com/san-kum/thomaslab/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	bParam    float64
	dt        float64
	steps     int
	transient int
	randSeed  int64

	approx    bool
	gridN     int
	halfRange float64

	sweepMin    float64
	sweepMax    float64
	sweepValues int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "thomaslab",
		Short: "Thomas attractor analysis lab",
		Long:  "Simulates the Thomas attractor and computes its Lyapunov spectrum,\nfractal dimensions, field topology and floral symmetry.",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".thomaslab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "named regime preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().Float64Var(&bParam, "b", 0, "dissipation parameter (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&dt, "dt", 0, "timestep (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&randSeed, "rand-seed", 0, "rng seed (overrides config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the flow and save the run",
		RunE:  runTrajectory,
	}
	runCmd.Flags().IntVar(&steps, "steps", 0, "integration steps (overrides config)")
	runCmd.Flags().IntVar(&transient, "transient", -1, "transient steps to discard (overrides config)")

	lyapCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "compute the full Lyapunov spectrum",
		RunE:  runLyapunov,
	}
	lyapCmd.Flags().IntVar(&steps, "steps", 0, "accumulating steps (overrides config)")
	lyapCmd.Flags().IntVar(&transient, "transient", -1, "transient steps to skip (overrides config)")

	chaosCmd := &cobra.Command{
		Use:   "chaos",
		Short: "compute the composite chaos metric",
		RunE:  runChaos,
	}

	fieldCmd := &cobra.Command{
		Use:   "field",
		Short: "run one spatial field analysis pass",
		RunE:  runField,
	}
	fieldCmd.Flags().BoolVar(&approx, "approx", false, "use the stochastic density path")
	fieldCmd.Flags().IntVar(&gridN, "grid", 0, "grid resolution per axis (overrides config)")
	fieldCmd.Flags().Float64Var(&halfRange, "half-range", 0, "grid half range (overrides config)")
	fieldCmd.Flags().IntVar(&steps, "steps", 0, "integration steps before the pass")

	flowerCmd := &cobra.Command{
		Use:   "flower",
		Short: "fit the rhodonea curve and compute the Flower Index",
		RunE:  runFlower,
	}
	flowerCmd.Flags().IntVar(&steps, "steps", 0, "integration steps (overrides config)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "characterize the family across b values",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.05, "sweep start")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.45, "sweep end")
	sweepCmd.Flags().IntVar(&sweepValues, "values", 21, "sweep points")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live view",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := buildEngine()
			if err != nil {
				return err
			}
			return tui.Run(eng)
		},
	}

	rootCmd.AddCommand(runCmd, lyapCmd, chaosCmd, fieldCmd, flowerCmd, sweepCmd, listCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if preset != "" {
		p, ok := config.Preset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if bParam > 0 {
		cfg.B = bParam
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if randSeed != 0 {
		cfg.RandSeed = randSeed
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if transient >= 0 {
		cfg.TransientSteps = transient
	}
	if gridN > 1 {
		cfg.Grid.N = gridN
	}
	if halfRange > 0 {
		cfg.Grid.HalfRange = halfRange
	}
	if approx {
		cfg.Approx = true
	}
	return cfg, cfg.Validate()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func buildEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ec := cfg.EngineConfig()
	ec.Logger = newLogger()
	eng, err := engine.New(ec)
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	// Burn the transient, drop it from the store, then sample.
	eng.Step(cfg.TransientSteps)
	eng.Store().Reset()
	eng.Step(cfg.Steps)

	p := eng.Parameters()
	store := storage.New(dataDir, newLogger())
	if err := store.Init(); err != nil {
		return err
	}
	id, err := store.Save(storage.RunMetadata{
		B: p.B, Dt: p.Dt,
		Seed:  [3]float64{p.Seed.X, p.Seed.Y, p.Seed.Z},
		Steps: cfg.Steps,
		Metrics: map[string]float64{
			"quick_lambda1": eng.QuickLyapunov(),
		},
	}, eng.Store())
	if err != nil {
		return err
	}

	fmt.Printf("run %s: b=%.4f dt=%.3f steps=%d samples=%d\n",
		id, p.B, p.Dt, cfg.Steps, eng.Store().Len())
	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	spec, err := eng.ComputeLyapunovSpectrum(cfg.Steps, cfg.TransientSteps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "lambda 1\t%+.6f\n", spec.Exponents[0])
	fmt.Fprintf(w, "lambda 2\t%+.6f\n", spec.Exponents[1])
	fmt.Fprintf(w, "lambda 3\t%+.6f\n", spec.Exponents[2])
	fmt.Fprintf(w, "sum\t%+.6f (analytic -3b = %+.6f)\n", spec.Sum(), -3*cfg.B)
	fmt.Fprintf(w, "kaplan-yorke\t%.4f\n", spec.KaplanYorke)
	fmt.Fprintf(w, "steps\t%d (dt=%.3f)\n", spec.Steps, spec.Dt)
	return w.Flush()
}

func runChaos(cmd *cobra.Command, args []string) error {
	eng, _, err := buildEngine()
	if err != nil {
		return err
	}

	m, err := eng.ComputeChaosMetric()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ctm\t%.4f\n", m.CTM)
	fmt.Fprintf(w, "unpredictability\t%.4f\n", m.Unpredictability)
	fmt.Fprintf(w, "complexity\t%.4f\n", m.Complexity)
	fmt.Fprintf(w, "lambda1\t%+.6f\n", m.Lambda1)
	fmt.Fprintf(w, "kaplan-yorke\t%.4f\n", m.KaplanYorke)
	return w.Flush()
}

func runField(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	n := cfg.Steps
	if n > 10000 {
		n = 10000
	}
	eng.Step(n)
	res := eng.AnalyzeSpatialField(nil)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "samples\t%d\n", res.Stats.SampleCount)
	fmt.Fprintf(w, "occupied cells\t%d / %d\n", res.Stats.OccupiedCells, res.Density.Spec.Cells())
	fmt.Fprintf(w, "entropy\t%.4f\n", res.Stats.Entropy)
	fmt.Fprintf(w, "correlation dim\t%.4f\n", res.Stats.CorrelationDim)
	fmt.Fprintf(w, "information dim\t%.4f\n", res.Stats.InformationDim)
	fmt.Fprintf(w, "critical points\t%d\n", len(res.CriticalPoints))
	fmt.Fprintf(w, "density path\t%s\n", densityPath(res.Approx))
	fmt.Fprintf(w, "elapsed\t%s\n", res.Elapsed)
	if err := w.Flush(); err != nil {
		return err
	}

	for i, cp := range res.CriticalPoints {
		if i >= 10 {
			fmt.Printf("  ... %d more\n", len(res.CriticalPoints)-10)
			break
		}
		fmt.Printf("  %-13s (%+.2f, %+.2f, %+.2f)  λ=(%+.3f, %+.3f, %+.3f)\n",
			cp.Class, cp.Pos.X, cp.Pos.Y, cp.Pos.Z,
			cp.Values[0], cp.Values[1], cp.Values[2])
	}
	return nil
}

func densityPath(approx bool) string {
	if approx {
		return "stochastic rbf"
	}
	return "exact kde"
}

func runFlower(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	eng.Step(cfg.TransientSteps)
	eng.Store().Reset()
	eng.Step(cfg.Steps)
	spec, err := eng.ComputeLyapunovSpectrum(cfg.Steps, 0)
	if err != nil {
		return err
	}

	store := eng.Store()
	polar := flower.PolarSamples(store, store.Len(), cfg.FlowerProjection())
	fit := flower.Fit(polar, cfg.FlowerGuess())

	lam := spec.Exponents[0]
	if lam < 0 {
		lam = 0
	}
	fi := flower.Index(fit.RMSError, lam)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "rhodonea\tr(θ) = %.4f·cos(%.4f·%.0f·θ %+.4f)\n",
		fit.Curve.A, fit.Curve.K, fit.Curve.M, fit.Curve.Phi)
	fmt.Fprintf(w, "E_flower\t%.4f\n", fit.RMSError)
	fmt.Fprintf(w, "lambda_max\t%.4f\n", lam)
	fmt.Fprintf(w, "flower index\t%.4f\n", fi)
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sc := sweep.DefaultConfig()
	sc.BMin, sc.BMax, sc.Values = sweepMin, sweepMax, sweepValues
	sc.Dt = cfg.Dt
	points, err := sweep.Run(context.Background(), sc, newLogger())
	if err != nil {
		return err
	}

	lambdas := make([]float64, len(points))
	for i, pt := range points {
		lambdas[i] = pt.Exponents[0]
	}
	fmt.Println("λ₁ over b ∈ [", sc.BMin, ",", sc.BMax, "]")
	fmt.Println(asciigraph.Plot(lambdas, asciigraph.Height(10), asciigraph.Width(60)))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "b\tλ₁\tD_KY\tctm\tE_flower\tFI")
	for _, pt := range points {
		fmt.Fprintf(w, "%.4f\t%+.4f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			pt.B, pt.Exponents[0], pt.KaplanYorke, pt.Chaos.CTM, pt.EFlower, pt.FlowerIndex)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir, newLogger())
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\ttimestamp\tb\tdt\tsteps")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.3f\t%d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.B, r.Dt, r.Steps)
	}
	return w.Flush()
}
