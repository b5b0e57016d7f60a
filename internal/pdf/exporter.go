// Package pdf prints rendered HTML documents to PDF through headless Chrome.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ErrChromeNotFound means no Chrome binary could be located. Install Google
// Chrome or point CHROME_PATH (or pdf.chrome_path) at one.
var ErrChromeNotFound = errors.New("chrome binary not found. Install Google Chrome and/or set CHROME_PATH.")

// Exporter launches headless Chrome sessions for PDF export.
type Exporter struct {
	chromePath string
	timeout    time.Duration
	log        *zap.Logger
}

// New returns an Exporter. An empty chromePath means the system browser is
// discovered at export time.
func New(chromePath string, timeout time.Duration, log *zap.Logger) *Exporter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Exporter{chromePath: chromePath, timeout: timeout, log: log}
}

// Browser is one launched Chrome instance. Callers print any number of
// documents through it, then Close it to reap the process.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	log      *zap.Logger
}

// Start launches headless Chrome and connects to it. The context bounds the
// browser's lifetime, not just the launch.
func (e *Exporter) Start(ctx context.Context) (*Browser, error) {
	bin := e.chromePath
	if bin == "" {
		path, ok := launcher.LookPath()
		if !ok {
			return nil, ErrChromeNotFound
		}
		bin = path
	}

	l := launcher.New().Bin(bin).Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	e.log.Debug("chrome session started", zap.String("bin", bin))
	return &Browser{browser: browser, launcher: l, timeout: e.timeout, log: e.log}, nil
}

// Print loads the HTML into a fresh tab and writes the printed PDF to
// outPath, creating parent directories as needed.
func (b *Browser) Print(ctx context.Context, html, outPath string) error {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(b.timeout)
	if err := page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("set page content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for page load: %w", err)
	}

	stream, err := page.PDF(printOptions())
	if err != nil {
		return fmt.Errorf("print to pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("read pdf stream: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	b.log.Info("pdf written", zap.String("path", outPath), zap.Int("bytes", len(data)))
	return nil
}

// Close shuts the browser down and cleans up the launched process.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

// printOptions is an A4 page with background colors kept, so the theme's
// accent rules survive printing.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      f64(8.27),
		PaperHeight:     f64(11.69),
		MarginTop:       f64(0.4),
		MarginBottom:    f64(0.4),
		MarginLeft:      f64(0.4),
		MarginRight:     f64(0.4),
		PrintBackground: true,
	}
}

func f64(v float64) *float64 { return &v }
