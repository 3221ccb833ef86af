// Package main provides the fleetcore command line: contract closeout,
// fiscal QR payloads and arrears reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/closeout"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/application/collections"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/arrears"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/fiscal"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/settlement"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/domain/shared/valueobject"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/infrastructure/config"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/infrastructure/export"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/infrastructure/logger"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/infrastructure/telemetry"
	"github.com/alduraibi1/smart-fleet-oasis-sub010/internal/interfaces/cli"
)

// Version information (populated at build time)
var (
	version   = "dev"
	buildTime = "unknown"
)

// errUsage marks a bad invocation; usage has already been printed
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "fleetcore: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `fleetcore - rental settlement and fiscal compliance engine

USAGE:
    fleetcore <command> [options]

COMMANDS:
    settle     Settle a returned contract and issue its invoice QR payload
    qr         Encode invoice fields into a QR payload, or decode one
    arrears    Classify customer arrears and build collection plans
    version    Show version information

COMMON OPTIONS:
    -config <path>    TOML configuration file (default: ./config.toml if present)
    -in <path>        Input document, YAML or JSON ("-" for stdin, the default)

EXAMPLES:
    fleetcore settle -in contract.yaml
    fleetcore qr -in invoice.json
    fleetcore qr -decode AQhGbGVldCBDbw...
    fleetcore arrears -in customers.yaml -lang ar -as-of 2024-06-30 -xlsx arrears.xlsx

Results are written to stdout as JSON; logs go to the configured output.
`)
}

// command is the shared state of one invocation
type command struct {
	cfg     *config.Config
	log     *zap.Logger
	tel     *telemetry.Providers
	metrics *telemetry.EngineMetrics
	stdout  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}

	name, args := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	configPath := fs.String("config", "", "TOML configuration file")
	inPath := fs.String("in", "-", "input document (YAML or JSON)")

	var exec func(context.Context, *command) error
	switch name {
	case "settle":
		exec = func(ctx context.Context, c *command) error {
			return c.settle(ctx, *inPath)
		}
	case "qr":
		decode := fs.Bool("decode", false, "decode the payload given as argument instead of encoding")
		exec = func(ctx context.Context, c *command) error {
			if *decode {
				return c.decodeQR(fs.Arg(0))
			}
			return c.encodeQR(ctx, *inPath)
		}
	case "arrears":
		lang := fs.String("lang", "", "collection plan language (overrides arrears.language)")
		asOf := fs.String("as-of", "", "evaluation date YYYY-MM-DD (default: document asOf, then today)")
		xlsxPath := fs.String("xlsx", "", "also write the report as an XLSX workbook")
		exec = func(ctx context.Context, c *command) error {
			return c.arrears(ctx, *inPath, *lang, *asOf, *xlsxPath)
		}
	case "version":
		fmt.Fprintf(stdout, "fleetcore %s (built %s)\n", version, buildTime)
		return nil
	case "help", "-h", "-help", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return errUsage
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	c, err := newCommand(ctx, *configPath, stdout)
	if err != nil {
		return err
	}
	defer c.close()

	return exec(ctx, c)
}

func newCommand(ctx context.Context, configPath string, stdout io.Writer) (*command, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.ExportInterval,
	}, log)
	if err != nil {
		_ = logger.Sync(log)
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := telemetry.NewEngineMetrics(tel.EngineMeter())
	if err != nil {
		_ = tel.Shutdown(ctx)
		_ = logger.Sync(log)
		return nil, err
	}

	log.Debug("fleetcore started",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	return &command{cfg: cfg, log: log, tel: tel, metrics: metrics, stdout: stdout}, nil
}

func (c *command) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.tel.Shutdown(ctx); err != nil {
		c.log.Warn("telemetry shutdown failed", zap.Error(err))
	}
	_ = logger.Sync(c.log)
}

func (c *command) closeoutService() (*closeout.Service, error) {
	loc, err := c.cfg.Settlement.Location()
	if err != nil {
		return nil, fmt.Errorf("settlement timezone: %w", err)
	}
	calc := settlement.NewCalculator(
		settlement.WithTariff(settlement.Tariff{
			PricePerFuelQuarter: c.cfg.Settlement.PricePerFuelQuarter,
			PricePerExcessKm:    c.cfg.Settlement.PricePerExcessKm,
		}),
		settlement.WithLocation(loc),
	)
	return closeout.NewService(
		closeout.Seller{Name: c.cfg.Fiscal.SellerName, VATNumber: c.cfg.Fiscal.VATNumber},
		closeout.WithCalculator(calc),
		closeout.WithVATRate(c.cfg.Fiscal.VATRate),
		closeout.WithCurrency(valueobject.Currency(c.cfg.Settlement.Currency)),
		closeout.WithLogger(c.log.Named("closeout")),
		closeout.WithTracer(c.tel.EngineTracer()),
		closeout.WithMetrics(c.metrics),
	), nil
}

func (c *command) settle(ctx context.Context, inPath string) error {
	var doc cli.SettleDocument
	if err := cli.DecodeFile(inPath, &doc); err != nil {
		return err
	}
	req, err := doc.Request()
	if err != nil {
		return err
	}

	svc, err := c.closeoutService()
	if err != nil {
		return err
	}
	st, err := svc.Close(ctx, req)
	if err != nil {
		return err
	}
	return cli.WriteJSON(c.stdout, cli.NewStatementView(st))
}

func (c *command) encodeQR(ctx context.Context, inPath string) error {
	var doc cli.InvoiceDocument
	if err := cli.DecodeFile(inPath, &doc); err != nil {
		return err
	}

	svc, err := c.closeoutService()
	if err != nil {
		return err
	}
	payload := svc.EncodeInvoice(ctx, doc.Fields())
	decoded, err := fiscal.Decode(payload)
	if err != nil {
		return err
	}
	return cli.WriteJSON(c.stdout, cli.QRView{Payload: string(payload), Fallback: decoded.Fallback})
}

func (c *command) decodeQR(payload string) error {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return fmt.Errorf("%w: qr -decode needs a payload argument", cli.ErrEmptyDocument)
	}
	decoded, err := fiscal.Decode(fiscal.Payload(payload))
	if err != nil {
		return err
	}
	return cli.WriteJSON(c.stdout, cli.QRView{Fields: &decoded.Fields, Fallback: decoded.Fallback})
}

func (c *command) arrears(ctx context.Context, inPath, lang, asOf, xlsxPath string) error {
	var doc cli.ArrearsDocument
	if err := cli.DecodeFile(inPath, &doc); err != nil {
		return err
	}
	summaries, err := doc.Summaries()
	if err != nil {
		return err
	}

	if lang == "" {
		lang = c.cfg.Arrears.Language
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}
	titles, err := arrears.NewCatalogTitles(tag)
	if err != nil {
		return err
	}

	loc, err := c.cfg.Settlement.Location()
	if err != nil {
		return fmt.Errorf("settlement timezone: %w", err)
	}
	now := time.Now().In(loc)
	evaluatedAt := doc.AsOfDate(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	if asOf != "" {
		if evaluatedAt, err = time.Parse("2006-01-02", asOf); err != nil {
			return fmt.Errorf("invalid -as-of %q: %w", asOf, err)
		}
	}

	svc := collections.NewService(
		collections.WithPolicy(arrears.RiskPolicy{
			Threshold:     c.cfg.Arrears.RiskThreshold,
			HighThreshold: c.cfg.Arrears.HighRiskThreshold,
		}),
		collections.WithTitles(titles),
		collections.WithLogger(c.log.Named("collections")),
		collections.WithTracer(c.tel.EngineTracer()),
		collections.WithMetrics(c.metrics),
	)
	report := svc.Evaluate(ctx, summaries, evaluatedAt)

	if xlsxPath != "" {
		if err := writeWorkbook(xlsxPath, report); err != nil {
			return err
		}
		c.log.Info("arrears workbook written", zap.String("path", xlsxPath))
	}
	return cli.WriteJSON(c.stdout, cli.NewReportView(report))
}

func writeWorkbook(path string, report collections.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteArrearsXLSX(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
