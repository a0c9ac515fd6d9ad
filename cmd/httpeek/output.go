package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/httpeek/httpeek/pkg/config"
	"github.com/httpeek/httpeek/pkg/defaults"
	"github.com/httpeek/httpeek/pkg/duration"
	"github.com/httpeek/httpeek/pkg/output"
	"github.com/httpeek/httpeek/pkg/output/hooks"
	"github.com/httpeek/httpeek/pkg/probe"
	"github.com/httpeek/httpeek/pkg/scan"
	"github.com/httpeek/httpeek/pkg/ui"
)

// scanOutput bundles every destination a scan writes to: the stdout
// writer, the optional append file and HTML report, and the telemetry
// hooks. All of them feed from the same result stream.
type scanOutput struct {
	multi  *output.Multi
	report *output.TemplateWriter
	otel   *hooks.OTelHook
	prom   *hooks.PrometheusHook

	console bool // stdout carries the human console format
}

// buildOutput assembles the writer fan-out the flags ask for. Exactly
// one writer owns stdout; files and hooks stack on top of it.
func buildOutput(cfg *config.Config, stdout io.Writer) (*scanOutput, error) {
	so := &scanOutput{}
	var writers []output.Writer

	switch {
	case cfg.JSON:
		writers = append(writers, output.NewJSONL(stdout, output.JSONLOptions{
			OnlyActive: cfg.OnlyActive,
		}))
	case cfg.CSV:
		writers = append(writers, output.NewCSV(stdout, output.CSVOptions{
			Header:           true,
			SanitizeFormulas: true,
			TruncateAt:       defaults.TitleMaxRunes,
			OnlyActive:       cfg.OnlyActive,
		}))
	default:
		writers = append(writers, output.NewConsole(stdout, output.ConsoleOptions{
			OnlyActive: cfg.OnlyActive,
			FinalTable: progressMode(cfg) == ui.OutputModeInteractive,
		}))
		so.console = true
	}

	if cfg.OutputFile != "" {
		f, err := os.OpenFile(cfg.OutputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening output file: %w", err)
		}
		writers = append(writers, output.NewPlain(f, output.PlainOptions{
			OnlyActive: cfg.OnlyActive,
		}))
	}

	if cfg.HTMLReport != "" {
		f, err := os.Create(cfg.HTMLReport)
		if err != nil {
			return nil, fmt.Errorf("creating report file: %w", err)
		}
		report, err := output.NewTemplate(f, output.TemplateConfig{
			BuiltIn:    "report",
			OnlyActive: cfg.OnlyActive,
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("report template: %w", err)
		}
		so.report = report
		writers = append(writers, report)
	}

	// Telemetry failures degrade to warnings so a dead collector never
	// blocks a scan.
	if cfg.OTelEndpoint != "" {
		otel, err := hooks.NewOTelHook(hooks.OTelOptions{
			Endpoint:          cfg.OTelEndpoint,
			Insecure:          true,
			ShutdownTimeout:   duration.ExporterShutdown,
			ConnectionTimeout: duration.ExporterConnect,
		})
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("OTel export disabled: %v", err))
		} else {
			so.otel = otel
			writers = append(writers, otel)
		}
	}

	if cfg.MetricsPort > 0 {
		prom, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{
			Port: cfg.MetricsPort,
		})
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("Metrics server disabled: %v", err))
		} else {
			so.prom = prom
			writers = append(writers, prom)
		}
	}

	so.multi = output.NewMulti(writers...)
	return so, nil
}

// Sinks adapts the fan-out to the scan engine.
func (so *scanOutput) Sinks() []scan.Sink {
	return []scan.Sink{so.multi}
}

// Start announces the scan to destinations that model it as a whole.
func (so *scanOutput) Start(ctx context.Context, scanID string, totalTargets int) {
	if so.otel != nil {
		so.otel.Start(ctx, scanID, totalTargets)
	}
	if so.prom != nil {
		ui.PrintInfo(fmt.Sprintf("Prometheus metrics on %s", so.prom.MetricsAddr()))
	}
}

// Finish lands the end-of-scan summary in every destination that
// records one.
func (so *scanOutput) Finish(sum *scan.Summary) {
	if so.report != nil {
		so.report.SetSummary(sum.ScanID, sum.Elapsed)
	}
	if so.otel != nil {
		so.otel.Finish(sum.Total,
			sum.ByOutcome[probe.OutcomeSuccess],
			sum.ByOutcome[probe.OutcomeFilteredOut],
			sum.ByOutcome[probe.OutcomeTransientExhausted],
			sum.ByOutcome[probe.OutcomeFatalError],
			sum.Elapsed)
	}
	if so.prom != nil {
		so.prom.Finish(sum.Total, sum.Elapsed)
	}
}

// Close flushes and closes every writer, files and exporters included.
func (so *scanOutput) Close() error {
	if err := so.multi.Flush(); err != nil {
		return err
	}
	return so.multi.Close()
}
