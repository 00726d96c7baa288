package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

var _ integration.PDFRenderer = (*ChromedpRenderer)(nil)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// RemoteURL is the DevTools websocket of a running Chrome. Empty launches a local browser.
	RemoteURL      string
	DefaultTimeout time.Duration
	// NoSandbox is required when Chrome runs as root in a container
	NoSandbox bool
	Options   RenderOptions
	Logger    *zap.Logger
}

// ConfigFromSettings maps the printing section of the application config
func ConfigFromSettings(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpConfig {
	return &ChromedpConfig{
		RemoteURL:      cfg.ChromeRemoteURL,
		DefaultTimeout: cfg.Timeout,
		NoSandbox:      true,
		Logger:         logger,
	}
}

// ChromedpRenderer renders HTML to PDF using the Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewChromedpRenderer creates a new chromedp-based PDF renderer. The browser
// is started lazily on the first render.
func NewChromedpRenderer(cfg *ChromedpConfig) (*ChromedpRenderer, error) {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultChromeTimeout
	}
	if cfg.Options.Paper == (PaperSize{}) {
		cfg.Options.Paper = PaperLetter
	}
	if cfg.Options.Margins == (Margins{}) {
		cfg.Options.Margins = DefaultMargins()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{config: cfg, logger: logger}
	r.allocCtx, r.allocCancel = r.newAllocator()
	return r, nil
}

func (r *ChromedpRenderer) newAllocator() (context.Context, context.CancelFunc) {
	if r.config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return chromedp.NewExecAllocator(context.Background(), opts...)
}

// RenderPDF renders a complete HTML document with the default options
func (r *ChromedpRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	return r.Render(ctx, html, r.config.Options)
}

// Render renders html to PDF with explicit layout options
func (r *ChromedpRenderer) Render(ctx context.Context, html string, opts RenderOptions) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, NewRenderError(ErrCodeClosed, "renderer is closed", nil)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// tie the tab's lifetime to the caller's deadline
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, wrapDocument(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := printParams(opts).Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	r.logger.Info("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

func printParams(opts RenderOptions) *page.PrintToPDFParams {
	paper := opts.Paper
	if paper == (PaperSize{}) {
		paper = PaperLetter
	}
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(paper.Width).
		WithPaperHeight(paper.Height).
		WithMarginTop(opts.Margins.Top).
		WithMarginRight(opts.Margins.Right).
		WithMarginBottom(opts.Margins.Bottom).
		WithMarginLeft(opts.Margins.Left).
		WithLandscape(opts.Landscape)
}

// wrapDocument adds a document shell to HTML fragments
func wrapDocument(html string) string {
	lower := strings.ToLower(html)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return html
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body>`)
	b.WriteString(html)
	b.WriteString("</body></html>")
	return b.String()
}

// Close shuts down the browser allocator
func (r *ChromedpRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
