// Package main implements the httpeek command line tool: flag parsing,
// target loading, scan assembly, and exit-code mapping around the pkg
// probing engine.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/httpeek/httpeek/pkg/cli"
	"github.com/httpeek/httpeek/pkg/config"
	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/input"
	"github.com/httpeek/httpeek/pkg/probe"
	"github.com/httpeek/httpeek/pkg/scan"
	"github.com/httpeek/httpeek/pkg/ui"
)

func main() {
	os.Exit(run())
}

// run carries the full scan lifecycle and returns the process exit
// code. It lives apart from main so cleanup finishes before os.Exit.
func run() int {
	cfg, err := config.ParseFlags()
	if err != nil {
		ui.PrintError(err.Error())
		return cli.ExitUsage
	}

	if cfg.ShowVersion {
		ui.PrintVersion()
		return cli.ExitOK
	}

	applyUISettings(cfg)

	ctx, cancel := cli.SignalContext(duration.DrainGrace)
	defer cancel()

	source := &input.TargetSource{
		URLs:     cfg.TargetURLs,
		ListFile: cfg.ListFile,
		Stdin:    cfg.StdinInput,
	}
	targets, err := source.GetTargets(ctx)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to load targets: %v", err))
		return cli.ExitUsage
	}
	if len(targets) == 0 {
		ui.PrintError("No targets to probe")
		return cli.ExitUsage
	}

	spec, err := buildFilter(cfg)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Invalid filter: %v", err))
		return cli.ExitUsage
	}

	out, err := buildOutput(cfg, os.Stdout)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Output setup failed: %v", err))
		return cli.ExitUsage
	}

	ui.PrintBanner()
	ui.PrintConfigBanner(configBannerOptions(cfg, len(targets)))

	scanID := uuid.New().String()
	out.Start(ctx, scanID, len(targets))

	progress := ui.NewProgress(ui.ProgressConfig{
		Total: len(targets),
		Mode:  progressMode(cfg),
	})

	prober := probe.New(probe.Config{
		Method:             cfg.Method,
		Timeout:            cfg.Timeout,
		MaxRetries:         cfg.Retries,
		NoRedirect:         cfg.NoRedirect,
		MaxHops:            cfg.MaxHops,
		Headers:            cfg.Headers.Header(),
		UserAgent:          cfg.UserAgent,
		RandomAgent:        cfg.RandomAgent,
		Proxy:              cfg.Proxy,
		InsecureSkipVerify: cfg.Insecure,
		TLSInfo:            cfg.TLSInfo,
	})

	engine := scan.New(prober, scan.Config{
		Concurrency:    cfg.Concurrency,
		RateLimit:      cfg.RateLimit,
		Filter:         spec,
		Normalizer:     input.NewNormalizer(),
		SkipFlakyHosts: cfg.SkipFlakyHosts,
		ScanID:         scanID,
		Sinks:          out.Sinks(),
		OnProgress: func(completed, total int64, res *probe.Result) {
			progress.Increment(string(res.Outcome))
		},
	})

	progress.Start()
	sum := engine.RunList(ctx, targets)
	progress.Stop()

	// Close before the summary so the final table lands above it.
	out.Finish(sum)
	if err := out.Close(); err != nil {
		ui.PrintWarning(fmt.Sprintf("Closing output: %v", err))
	}

	ui.PrintRunSummary(sum.Total, sum.Elapsed,
		sum.ByOutcome[probe.OutcomeSuccess],
		sum.ByOutcome[probe.OutcomeFilteredOut],
		sum.ByOutcome[probe.OutcomeTransientExhausted],
		sum.ByOutcome[probe.OutcomeFatalError])

	if ctx.Err() != nil {
		return cli.ExitInterrupted
	}
	return cli.ExitOK
}

// machineOutput reports whether stdout carries a machine format.
// Machine runs silence every decorative stream so pipes stay clean.
func machineOutput(cfg *config.Config) bool {
	return cfg.JSON || cfg.CSV
}

// applyUISettings maps the output flags onto shared ui state before
// anything prints.
func applyUISettings(cfg *config.Config) {
	ui.SetSilent(cfg.Silent || machineOutput(cfg))
	ui.SetNoColor(cfg.NoColor)
}

// progressMode picks how progress renders: silent runs and machine
// formats drop the meter, everything else follows terminal detection.
func progressMode(cfg *config.Config) ui.OutputMode {
	if cfg.Silent || machineOutput(cfg) {
		return ui.OutputModeSilent
	}
	return ui.DefaultOutputMode()
}

// configBannerOptions assembles the settings map for the pre-scan
// banner. The printer drops empty values and orders the known keys.
func configBannerOptions(cfg *config.Config, targetCount int) map[string]string {
	opts := map[string]string{
		"Method":         cfg.Method,
		"Threads":        strconv.Itoa(cfg.Concurrency),
		"Timeout":        cfg.Timeout.String(),
		"Retries":        strconv.Itoa(cfg.Retries),
		"Match Codes":    cfg.MatchStatus,
		"Proxy":          cfg.Proxy,
		"Exclude Codes":  cfg.ExcludeStatus,
		"Match Length":   cfg.MatchLength,
		"Exclude Length": cfg.ExcludeLength,
		"Title Match":    cfg.TitleMatch,
		"Body Match":     cfg.BodyMatch,
		"Output":         cfg.OutputFile,
	}

	if len(cfg.TargetURLs) == 1 {
		opts["Target"] = cfg.TargetURLs[0]
	} else {
		opts["Target"] = fmt.Sprintf("%d targets", targetCount)
	}
	if cfg.ListFile != "" {
		opts["Target List"] = cfg.ListFile
	}
	switch {
	case cfg.RandomAgent:
		opts["User-Agent"] = "random"
	case cfg.UserAgent != "":
		opts["User-Agent"] = cfg.UserAgent
	}
	if cfg.RateLimit > 0 {
		opts["Rate Limit"] = fmt.Sprintf("%d req/s", cfg.RateLimit)
	}
	if cfg.NoRedirect {
		opts["Max Hops"] = "redirects off"
	} else {
		opts["Max Hops"] = strconv.Itoa(cfg.MaxHops)
	}
	if cfg.TLSInfo {
		opts["TLS Info"] = "enabled"
	}
	if cfg.HTMLReport != "" {
		opts["Report"] = cfg.HTMLReport
	}
	if cfg.ProfileFile != "" {
		opts["Profile"] = cfg.ProfileFile
	}
	if cfg.OTelEndpoint != "" {
		opts["OTel"] = cfg.OTelEndpoint
	}
	if cfg.MetricsPort > 0 {
		opts["Metrics"] = fmt.Sprintf(":%d", cfg.MetricsPort)
	}
	return opts
}
