package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ipcli/internal/algorithms"
	cannyop "ipcli/internal/algorithms/canny"
	"ipcli/internal/gui"
	"ipcli/internal/logger"
	"ipcli/internal/opencv/memory"
	"ipcli/internal/pipeline"
)

const (
	AppName    = "ipcli"
	AppVersion = "1.0.0"
)

type shutdownHandler interface {
	Shutdown()
}

// OperationInfo describes one registered operation for listings.
type OperationInfo struct {
	Name       string
	ValueHint  string
	Parameters map[string]interface{}
}

type Application struct {
	config           Config
	coordinator      *pipeline.Coordinator
	algorithmManager *algorithms.Manager
	memoryManager    *memory.Manager
	logger           logger.Logger
	out              io.Writer
	shutdownables    []shutdownHandler
	ctx              context.Context
	cancel           context.CancelFunc
	shutdown         chan struct{}
}

// NewApplication wires the logger, the Mat ledger, the operation registry
// and the pipeline. Operation output is written to out.
func NewApplication(cfg Config, out io.Writer) (*Application, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return NewApplicationWithLogger(cfg, out, logger.NewConsoleLogger(level))
}

func NewApplicationWithLogger(cfg Config, out io.Writer, log logger.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	log.Debug("Application", "starting application", map[string]interface{}{
		"version":      AppVersion,
		"log_level":    cfg.LogLevel,
		"jpeg_quality": cfg.JPEGQuality,
		"preview":      cfg.Preview,
	})

	memoryManager := memory.NewManager(log)
	algorithmManager := algorithms.NewManager(log)

	if err := applyCannyDefaults(algorithmManager, cfg.Canny); err != nil {
		cancel()
		memoryManager.Shutdown()
		return nil, err
	}

	coordinator := pipeline.NewCoordinator(memoryManager, algorithmManager, log, cfg.JPEGQuality)

	application := &Application{
		config:           cfg,
		coordinator:      coordinator,
		algorithmManager: algorithmManager,
		memoryManager:    memoryManager,
		logger:           log,
		out:              out,
		ctx:              ctx,
		cancel:           cancel,
		shutdown:         make(chan struct{}),
		shutdownables: []shutdownHandler{
			memoryManager,
			coordinator,
		},
	}

	application.setupSignalHandling()
	return application, nil
}

func applyCannyDefaults(m *algorithms.Manager, c CannyConfig) error {
	values := map[string]interface{}{
		cannyop.ParamSigma:         c.Sigma,
		cannyop.ParamLowThreshold:  c.LowThreshold,
		cannyop.ParamHighThreshold: c.HighThreshold,
		cannyop.ParamConnectivity:  c.Connectivity,
		cannyop.ParamWorkers:       c.Workers,
	}
	for name, v := range values {
		if err := m.SetParameter("canny", name, v); err != nil {
			return err
		}
	}
	return nil
}

func (a *Application) setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			a.logger.Warning("Application", "interrupt received, cancelling", map[string]interface{}{
				"signal": sig.String(),
			})
			a.cancel()
		case <-a.ctx.Done():
		}
	}()
}

// Run executes one operation on imagePath. rawValue is the operation's
// -v argument and may be empty.
func (a *Application) Run(operation, imagePath, rawValue string) error {
	params, err := a.algorithmManager.ResolveParameters(operation, rawValue, nil)
	if err != nil {
		return err
	}

	result, err := a.coordinator.Run(a.ctx, operation, imagePath, params)
	if err != nil {
		return err
	}

	if result.Report != "" {
		fmt.Fprintln(a.out, result.Report)
	}
	if result.OutputPath != "" {
		fmt.Fprintf(a.out, "Output path: %s\n", result.OutputPath)
	}

	if a.config.Preview {
		a.showPreview(result)
	}

	return nil
}

func (a *Application) showPreview(result *pipeline.Result) {
	original := a.coordinator.GetOriginalImage()
	if original == nil {
		return
	}

	status := result.Report
	resultTitle := "Result"
	var resultImage image.Image

	if processed := a.coordinator.GetProcessedImage(); processed != nil && result.OutputPath != "" {
		resultImage = processed.Image
		resultTitle = result.Operation
		status = result.OutputPath
	}

	preview := gui.NewPreview(fmt.Sprintf("%s: %s", AppName, result.Operation), a.logger)
	closed := make(chan struct{})
	go func() {
		select {
		case <-a.ctx.Done():
			preview.Close()
		case <-closed:
		}
	}()
	preview.Show(original.Image, resultImage, resultTitle, status)
	close(closed)
}

// Operations lists every registered operation in name order.
func (a *Application) Operations() []OperationInfo {
	names := a.algorithmManager.GetAvailableAlgorithms()
	infos := make([]OperationInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, OperationInfo{
			Name:       name,
			ValueHint:  a.algorithmManager.ValueHint(name),
			Parameters: a.algorithmManager.GetParameters(name),
		})
	}
	return infos
}

func (a *Application) Config() Config {
	return a.config
}

func (a *Application) initiateShutdown() {
	select {
	case <-a.shutdown:
		return
	default:
		close(a.shutdown)
	}

	a.cancel()

	for i := len(a.shutdownables) - 1; i >= 0; i-- {
		component := a.shutdownables[i]

		done := make(chan struct{})
		go func() {
			defer close(done)
			component.Shutdown()
		}()

		select {
		case <-done:
		case <-time.After(10 * time.Second):
			a.logger.Warning("Application", "component shutdown timeout", map[string]interface{}{
				"component_index": i,
			})
		}
	}

	a.logger.Debug("Application", "shutdown sequence completed", nil)
}

// Shutdown releases every component. It is safe to call more than once.
func (a *Application) Shutdown() {
	a.initiateShutdown()
}
