package api

import (
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/extractor"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/handler"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/header"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/pdftext"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/service"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/sheet"
	"github.com/FACorreiaa/invoice-converter/pkg/config"
	"github.com/FACorreiaa/invoice-converter/pkg/cron"
	"github.com/FACorreiaa/invoice-converter/pkg/metrics"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Infrastructure
	Spool     storage.Storage
	Scheduler *cron.Scheduler

	// Extraction
	Registry *extractor.Registry
	Reader   *pdftext.Reader

	// Services
	ConvertService *service.ConvertService

	// Handlers
	ConvertHandler *handler.ConvertHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize spool and sweeper
	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// Initialize extraction pipeline
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage initializes the upload spool and its sweeper
func (d *Dependencies) initStorage() error {
	if d.Config.Observability.MetricsEnabled {
		d.Metrics = metrics.New()
	}

	spool, err := storage.New(&storage.Config{LocalPath: d.Config.Storage.SpoolPath})
	if err != nil {
		return err
	}
	d.Spool = spool
	d.Scheduler = cron.NewScheduler(d.Spool, d.Config.Storage.MaxAge, d.Metrics, d.Logger)

	d.Logger.Info("spool initialized", slog.String("path", d.Config.Storage.SpoolPath))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	policy, err := header.ParseSuffixPolicy(d.Config.Extraction.SuffixPolicy)
	if err != nil {
		return err
	}

	templates, err := extractor.LoadTemplates(d.Config.Extraction.TemplatesPath)
	if err != nil {
		return err
	}

	d.Registry, err = extractor.NewDefaultRegistry(d.Logger, templates)
	if err != nil {
		return err
	}

	readerCfg := pdftext.DefaultConfig()
	readerCfg.Validate = d.Config.Extraction.ValidatePDF
	readerCfg.MaxPages = d.Config.Extraction.MaxPages
	d.Reader = pdftext.NewReader(readerCfg, d.Logger)

	d.ConvertService = service.NewConvertService(d.Reader, d.Registry, header.New(policy), d.Metrics, d.Logger)

	d.Logger.Info("services initialized",
		slog.String("suffix_policy", string(policy)),
		slog.Any("strategies", d.Registry.Names()),
	)
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.ConvertHandler = handler.NewConvertHandler(
		d.ConvertService,
		d.Spool,
		sheet.NewWriter(d.Config.Extraction.Currency),
		d.Config.Server.MaxUploadBytes,
		d.Logger,
	)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
