// Command wer scores speech-to-text output against reference transcripts.
//
// Reference and hypothesis are files with one utterance per line (optionally
// .xz-compressed), or literal strings with --text.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/chaz8081/wer"
	"github.com/chaz8081/wer/internal/config"
	"github.com/chaz8081/wer/internal/corpus"
	"github.com/chaz8081/wer/internal/metrics"
	"github.com/chaz8081/wer/internal/report"
)

// CLI defines the command-line interface for wer.
type CLI struct {
	Config      string        `short:"c" help:"Path to config file (default: ~/.config/wer/config.yaml)" type:"path"`
	Normalize   bool          `short:"n" help:"Strip punctuation, lower-case and collapse whitespace before scoring"`
	Format      string        `short:"f" help:"Output format: ${formats}"`
	Workers     int           `short:"w" help:"Goroutines aligning a batch (default: GOMAXPROCS)"`
	Timeout     time.Duration `help:"Deadline for the whole evaluation, e.g. 30s"`
	MetricsFile string        `name:"metrics-file" help:"Write Prometheus metrics to this file on exit" type:"path"`
	Text        bool          `short:"t" help:"Treat arguments as literal text instead of file paths"`

	WER      WERCmd       `cmd:"" name:"wer" help:"Corpus word error rate"`
	WERs     WERsCmd      `cmd:"" name:"wers" help:"Word error rate of each pair"`
	WERP     WERPCmd      `cmd:"" name:"werp" help:"Weighted corpus word error rate"`
	WERPs    WERPsCmd     `cmd:"" name:"werps" help:"Weighted word error rate of each pair"`
	Summary  SummaryCmd   `cmd:"" help:"Per-pair table of rates and edited words"`
	SummaryP SummaryPCmd  `cmd:"" name:"summaryp" help:"Summary with a weighted rate column"`
	Norm     NormalizeCmd `cmd:"" name:"normalize" help:"Print normalized text"`
}

// env carries what every command needs once flags and config are merged.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	format report.Format
	text   bool
	out    io.Writer
	logger *slog.Logger
}

func (e *env) evaluator(opts ...wer.Option) *wer.Evaluator {
	base := []wer.Option{
		wer.WithWorkers(e.cfg.Workers),
		wer.WithTimeout(e.cfg.Timeout),
		wer.WithLogger(e.logger),
		wer.WithWeights(e.cfg.Weights),
		wer.WithNormalize(e.cfg.Normalize),
	}
	return wer.New(append(base, opts...)...)
}

// noResult reports a failed evaluation and returns the error that sets the
// exit status.
func (e *env) noResult(ev *wer.Evaluator, operation string, err error) error {
	ev.NoResult(operation, err)
	return fmt.Errorf("%s: no result: %w", operation, err)
}

// PairArgs are the positional reference and hypothesis inputs.
type PairArgs struct {
	Reference  string `arg:"" help:"Reference transcript file (or text with --text)"`
	Hypothesis string `arg:"" help:"Hypothesis transcript file (or text with --text)"`
}

func (p PairArgs) load(e *env) (reference, hypothesis any, err error) {
	if e.text {
		return p.Reference, p.Hypothesis, nil
	}
	refs, hyps, err := corpus.ReadPair(p.Reference, p.Hypothesis)
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("corpus loaded", "reference", p.Reference, "hypothesis", p.Hypothesis, "pairs", len(refs))
	return refs, hyps, nil
}

// WeightArgs override the configured weights when set.
type WeightArgs struct {
	Insertions    *float64 `name:"ins" help:"Weight of an inserted word"`
	Deletions     *float64 `name:"del" help:"Weight of a deleted word"`
	Substitutions *float64 `name:"sub" help:"Weight of a substituted word"`
}

func (w WeightArgs) apply(base wer.Weights) wer.Weights {
	if w.Insertions != nil {
		base.Insertions = *w.Insertions
	}
	if w.Deletions != nil {
		base.Deletions = *w.Deletions
	}
	if w.Substitutions != nil {
		base.Substitutions = *w.Substitutions
	}
	return base
}

type WERCmd struct {
	Pair PairArgs `embed:""`
}

func (c *WERCmd) Run(e *env) error {
	ev := e.evaluator()
	ref, hyp, err := c.Pair.load(e)
	if err != nil {
		return e.noResult(ev, "wer", err)
	}
	rate, err := ev.WER(e.ctx, ref, hyp)
	if err != nil {
		return e.noResult(ev, "wer", err)
	}
	return report.Scalar(rate).Render(e.out, e.format)
}

type WERsCmd struct {
	Pair PairArgs `embed:""`
}

func (c *WERsCmd) Run(e *env) error {
	ev := e.evaluator()
	ref, hyp, err := c.Pair.load(e)
	if err != nil {
		return e.noResult(ev, "wers", err)
	}
	rates, err := ev.WERs(e.ctx, ref, hyp)
	if err != nil {
		return e.noResult(ev, "wers", err)
	}
	return rates.Render(e.out, e.format)
}

type WERPCmd struct {
	Pair    PairArgs   `embed:""`
	Weights WeightArgs `embed:""`
}

func (c *WERPCmd) Run(e *env) error {
	ev := e.evaluator(wer.WithWeights(c.Weights.apply(e.cfg.Weights)))
	e.logger.Debug("weights", "operation", "werp", "weights", ev.Weights())
	ref, hyp, err := c.Pair.load(e)
	if err != nil {
		return e.noResult(ev, "werp", err)
	}
	rate, err := ev.WERP(e.ctx, ref, hyp)
	if err != nil {
		return e.noResult(ev, "werp", err)
	}
	return report.Scalar(rate).Render(e.out, e.format)
}

type WERPsCmd struct {
	Pair    PairArgs   `embed:""`
	Weights WeightArgs `embed:""`
}

func (c *WERPsCmd) Run(e *env) error {
	ev := e.evaluator(wer.WithWeights(c.Weights.apply(e.cfg.Weights)))
	e.logger.Debug("weights", "operation", "werps", "weights", ev.Weights())
	ref, hyp, err := c.Pair.load(e)
	if err != nil {
		return e.noResult(ev, "werps", err)
	}
	rates, err := ev.WERPs(e.ctx, ref, hyp)
	if err != nil {
		return e.noResult(ev, "werps", err)
	}
	return rates.Render(e.out, e.format)
}

type SummaryCmd struct {
	Pair PairArgs `embed:""`
}

func (c *SummaryCmd) Run(e *env) error {
	ev := e.evaluator()
	ref, hyp, err := c.Pair.load(e)
	if err != nil {
		return e.noResult(ev, "summary", err)
	}
	table, err := ev.Summary(e.ctx, ref, hyp)
	if err != nil {
		return e.noResult(ev, "summary", err)
	}
	return table.Render(e.out, e.format)
}

type SummaryPCmd struct {
	Pair    PairArgs   `embed:""`
	Weights WeightArgs `embed:""`
}

func (c *SummaryPCmd) Run(e *env) error {
	ev := e.evaluator(wer.WithWeights(c.Weights.apply(e.cfg.Weights)))
	e.logger.Debug("weights", "operation", "summaryp", "weights", ev.Weights())
	ref, hyp, err := c.Pair.load(e)
	if err != nil {
		return e.noResult(ev, "summaryp", err)
	}
	table, err := ev.SummaryP(e.ctx, ref, hyp)
	if err != nil {
		return e.noResult(ev, "summaryp", err)
	}
	return table.Render(e.out, e.format)
}

type NormalizeCmd struct {
	Inputs []string `arg:"" help:"Files to normalize (or text with --text)"`
}

func (c *NormalizeCmd) Run(e *env) error {
	ev := e.evaluator()
	var lines []string
	if e.text {
		lines = c.Inputs
	} else {
		for _, path := range c.Inputs {
			l, err := corpus.ReadLines(path)
			if err != nil {
				return e.noResult(ev, "normalize", err)
			}
			lines = append(lines, l...)
		}
	}
	out, err := ev.Normalize(lines)
	if err != nil {
		return e.noResult(ev, "normalize", err)
	}
	for _, line := range out.([]string) {
		if _, err := fmt.Fprintln(e.out, line); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit
// status: 0 on success, 1 when the command produced no result, 2 on
// usage or configuration errors and 130 when interrupted.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("wer"),
		kong.Description("Word error rate metrics for speech-to-text transcripts"),
		kong.UsageOnError(),
		kong.Vars{"formats": report.FormatNames()},
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "wer: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "wer: %v\n", err)
		return 2
	}

	cfg, source, err := loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "wer: config: %v\n", err)
		return 2
	}
	cli.override(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "wer: config validation: %v\n", err)
		return 2
	}
	format, _ := report.ParseFormat(cfg.Output)

	logger := newLogger(cfg, stderr)
	logger.Debug("config loaded", "source", source, "workers", cfg.Workers, "timeout", cfg.Timeout, "output", format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	runErr := kctx.Run(&env{
		ctx:    ctx,
		cfg:    cfg,
		format: format,
		text:   cli.Text,
		out:    stdout,
		logger: logger,
	})
	logger.Debug("command finished", "command", kctx.Command(), "elapsed", time.Since(start).Round(time.Microsecond))

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("writing metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "wer: %v\n", runErr)
		if errors.Is(runErr, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}

// override applies flags given on the command line over the config file.
func (c *CLI) override(cfg *config.Config) {
	if c.Normalize {
		cfg.Normalize = true
	}
	if c.Format != "" {
		cfg.Output = c.Format
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.MetricsFile != "" {
		cfg.MetricsFile = c.MetricsFile
	}
}

// newLogger builds the process logger and tags every record with a run id.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.LogLevel)}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h).With("run_id", uuid.NewString())
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults. The second return
// names where the config came from.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, defaultPath, nil
	}

	// No config file, use defaults
	return config.Default(), "defaults", nil
}
