package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/uepsim/pkg/channel"
	"github.com/ja7ad/uepsim/pkg/simulation"
	"github.com/ja7ad/uepsim/pkg/store"
	"github.com/ja7ad/uepsim/pkg/uep"
)

var (
	pretty  bool
	verbose bool
)

type opts struct {
	configPath string

	// code
	ks    []int
	rfs   []int
	ef    int
	c     float64
	delta float64

	// run
	nblocks      int
	nblocksMin   int
	nblocksMax   int
	wantedErrors int
	workers      int
	seed         int64

	// sweep
	overheads     []float64
	overheadMin   float64
	overheadMax   float64
	overheadSteps int

	// channel
	iidPer    float64
	markovPGB float64
	markovPBG float64
	avgPER    float64
	avgBadRun float64

	// outputs
	csvPath   string
	jsonPath  string
	htmlPath  string
	dbPath    string
	keyPrefix string
	revision  string
}

func main() {
	var o opts
	if err := newRootCmd(&o).Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd(o *opts) *cobra.Command {
	root := &cobra.Command{
		Use:   "uepsim",
		Short: "UEP fountain-code Monte Carlo simulator",
		Long: `The uepsim tool estimates the per-class decoding error rate of an
unequal-error-protection LT code over a lossy channel (none, i.i.d. or
Gilbert-Elliott) by running many independent blocks in parallel, optionally
sweeping the reception overhead.

* GitHub: https://github.com/ja7ad/uepsim

Examples:
  uepsim --ks 100,900 --rfs 3,1 --ef 4 --nblocks 1000 --overhead 0.25
  uepsim --config run.yaml --overhead-min 0 --overhead-max 0.4 --overhead-steps 9 --csv out.csv
  uepsim --ks 100,900 --rfs 3,1 --avg-per 0.1 --avg-bad-run 4 --db results.db`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, overheads, err := resolve(cmd, *o)
			if err != nil {
				return err
			}
			return run(cmd.Context(), *o, cfg, overheads)
		},
	}

	f := root.Flags()
	f.BoolVar(&pretty, "pretty", true, "format output as a table instead of CSV-like lines")
	f.BoolVarP(&verbose, "verbose", "v", false, "log per-worker progress")
	f.StringVar(&o.configPath, "config", "", "YAML file with the simulation configuration (flags override it)")

	f.IntSliceVar(&o.ks, "ks", nil, "source symbols per class, most important first")
	f.IntSliceVar(&o.rfs, "rfs", nil, "repetition factor per class (default 1 each)")
	f.IntVar(&o.ef, "ef", 1, "expansion factor")
	f.Float64VarP(&o.c, "c", "c", 0.1, "robust soliton c")
	f.Float64Var(&o.delta, "delta", 0.5, "robust soliton delta")

	f.IntVarP(&o.nblocks, "nblocks", "n", 1, "blocks per overhead (0 = stop on wanted errors)")
	f.IntVar(&o.nblocksMin, "nblocks-min", 0, "minimum blocks when nblocks is 0")
	f.IntVar(&o.nblocksMax, "nblocks-max", 0, "maximum blocks when nblocks is 0")
	f.IntVar(&o.wantedErrors, "wanted-errors", 0, "errors per class to stop at when nblocks is 0")
	f.IntVarP(&o.workers, "workers", "w", 0, "parallel workers (0 = number of CPUs)")
	f.Int64Var(&o.seed, "seed", 1, "root RNG seed")

	f.Float64SliceVar(&o.overheads, "overhead", nil, "reception overhead, repeatable")
	f.Float64Var(&o.overheadMin, "overhead-min", 0, "first overhead of a linear sweep")
	f.Float64Var(&o.overheadMax, "overhead-max", 0, "last overhead of a linear sweep")
	f.IntVar(&o.overheadSteps, "overhead-steps", 0, "points of a linear sweep")

	f.Float64Var(&o.iidPer, "iid-per", 0, "i.i.d. erasure probability")
	f.Float64Var(&o.markovPGB, "markov-pgb", 0, "Gilbert-Elliott good to bad probability")
	f.Float64Var(&o.markovPBG, "markov-pbg", 0, "Gilbert-Elliott bad to good probability")
	f.Float64Var(&o.avgPER, "avg-per", 0, "Gilbert-Elliott average loss rate (with --avg-bad-run)")
	f.Float64Var(&o.avgBadRun, "avg-bad-run", 0, "Gilbert-Elliott average burst length")

	f.StringVar(&o.csvPath, "csv", "", "write one row per overhead to a CSV file")
	f.StringVar(&o.jsonPath, "json", "", "write the sweep to a JSON file")
	f.StringVar(&o.htmlPath, "html", "", "write the sweep to an HTML report")
	f.StringVar(&o.dbPath, "db", "", "save the sweep to a SQLite database")
	f.StringVar(&o.keyPrefix, "key-prefix", "uep_", "key prefix for --db")
	f.StringVar(&o.revision, "revision", buildRevision(), "source revision recorded with saved results")

	return root
}

func run(ctx context.Context, o opts, cfg simulation.Config, overheads []float64) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	host, _ := os.Hostname()
	fmt.Printf(_console, host, runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), cfg.Ks, cfg.RFs, cfg.EF,
		cfg.C, cfg.Delta, describeChannel(cfg.Config), time.Now().Format("2006-01-02 15:04:05"))

	out, err := openOutputs(o, len(cfg.Ks))
	if err != nil {
		return err
	}
	defer out.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pack := store.NewPack(cfg, o.revision)

	tw := newTable()
	if pretty {
		printTableHeader(tw, len(cfg.Ks))
	} else {
		fmt.Println(csvLikeHeader(len(cfg.Ks)))
	}

	for _, oh := range overheads {
		c := cfg.Clone()
		c.Overhead = oh

		r, err := simulation.NewRunner(c, simulation.WithLogger(logger))
		if err != nil {
			return err
		}
		start := time.Now()
		res, err := r.Run(ctx)
		if errors.Is(err, context.Canceled) {
			slog.Info("interrupted")
			break
		}
		if err != nil {
			return err
		}
		logger.Info("overhead done", "overhead", oh, "blocks", res.NBlocks, "elapsed", time.Since(start).Round(time.Millisecond))

		p := newPoint(oh, res)
		if pretty {
			printTableRow(tw, p)
		} else {
			printCsvLike(p)
		}
		if err := out.write(p); err != nil {
			slog.Warn("write output", "err", err)
		}
		pack.Add(oh, res)
	}

	if err := out.finish(pack); err != nil {
		slog.Error("finalize outputs", "err", err)
	}

	if o.dbPath != "" && len(pack.Points) > 0 {
		key, err := save(o.dbPath, o.keyPrefix, pack)
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		fmt.Printf("\nsaved as %s in %s\n", key, o.dbPath)
	}
	fmt.Println()
	return nil
}

func save(path, prefix string, pack *store.Pack) (string, error) {
	s, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer s.Close()

	key := store.NewKey(prefix)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return key, s.Put(ctx, key, pack)
}

// resolve merges the config file, the defaults and the flags the user set,
// then validates the result.
func resolve(cmd *cobra.Command, o opts) (simulation.Config, []float64, error) {
	cfg := simulation.DefaultConfig()
	if o.configPath != "" {
		f, err := os.Open(o.configPath)
		if err != nil {
			return cfg, nil, err
		}
		cfg, err = simulation.ReadConfig(f)
		f.Close()
		if err != nil {
			return cfg, nil, fmt.Errorf("%s: %w", o.configPath, err)
		}
	}

	fs := cmd.Flags()
	if fs.Changed("ks") {
		cfg.Ks = o.ks
	}
	if fs.Changed("rfs") {
		cfg.RFs = o.rfs
	}
	if len(cfg.RFs) != len(cfg.Ks) && !fs.Changed("rfs") {
		cfg.RFs = uep.DefaultRFs(cfg.Ks)
	}
	if fs.Changed("ef") {
		cfg.EF = o.ef
	}
	if fs.Changed("c") {
		cfg.C = o.c
	}
	if fs.Changed("delta") {
		cfg.Delta = o.delta
	}
	if fs.Changed("nblocks") {
		cfg.NBlocks = o.nblocks
	}
	if fs.Changed("nblocks-min") {
		cfg.NBlocksMin = o.nblocksMin
	}
	if fs.Changed("nblocks-max") {
		cfg.NBlocksMax = o.nblocksMax
	}
	if fs.Changed("wanted-errors") {
		cfg.WantedErrors = o.wantedErrors
	}
	if fs.Changed("workers") {
		cfg.Workers = o.workers
	}
	if fs.Changed("seed") {
		cfg.Seed = o.seed
	}

	ch, err := channelFlags(fs.Changed, o, cfg.Config)
	if err != nil {
		return cfg, nil, err
	}
	cfg.Config = ch

	overheads, err := sweep(o, fs.Changed, cfg.Overhead)
	if err != nil {
		return cfg, nil, err
	}
	for _, oh := range overheads {
		c := cfg.Clone()
		c.Overhead = oh
		if err := c.Validate(); err != nil {
			return cfg, nil, err
		}
	}
	cfg.Overhead = overheads[0]
	return cfg, overheads, nil
}

// channelFlags applies the channel flags on top of base. Setting any
// channel flag replaces the channel of the config file.
func channelFlags(changed func(string) bool, o opts, base channel.Config) (channel.Config, error) {
	burst := changed("avg-per") || changed("avg-bad-run")
	direct := changed("markov-pgb") || changed("markov-pbg")
	iid := changed("iid-per")

	switch {
	case burst && (direct || iid):
		return base, errors.New("--avg-per/--avg-bad-run exclude the other channel flags")
	case iid && direct:
		return base, errors.New("--iid-per and --markov-pgb/--markov-pbg are mutually exclusive")
	case burst:
		if !changed("avg-bad-run") {
			return base, errors.New("--avg-per needs --avg-bad-run")
		}
		pGB, pBG, err := channel.MarkovFromBurst(o.avgPER, o.avgBadRun)
		if err != nil {
			return base, err
		}
		return channel.Config{MarkovPGB: pGB, MarkovPBG: pBG}, nil
	case direct:
		return channel.Config{MarkovPGB: o.markovPGB, MarkovPBG: o.markovPBG}, nil
	case iid:
		return channel.Config{IIDPer: o.iidPer, MarkovPBG: base.MarkovPBG}, nil
	default:
		return base, nil
	}
}

func describeChannel(c channel.Config) string {
	switch c.Kind() {
	case channel.IID:
		return fmt.Sprintf("iid per=%g", c.IIDPer)
	case channel.Markov:
		return fmt.Sprintf("markov pGB=%g pBG=%g", c.MarkovPGB, c.MarkovPBG)
	default:
		return c.Kind().String()
	}
}

func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

const _console = `UEPSim - UEP Fountain Code Simulator

* GitHub: https://github.com/ja7ad/uepsim

       Host: %s (%s/%s, %d CPUs)
       Ks: %v
       RFs: %v
       EF: %d  c: %g  delta: %g
       Channel: %s

Simulation report as of %s:

`
