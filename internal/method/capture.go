package method

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Paper sizes in inches.
var paperSizes = map[string][2]float64{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"ledger":  {17, 11},
	"a0":      {33.1, 46.8},
	"a1":      {23.4, 33.1},
	"a2":      {16.54, 23.4},
	"a3":      {11.7, 16.54},
	"a4":      {8.27, 11.7},
	"a5":      {5.83, 8.27},
	"a6":      {4.13, 5.83},
}

// PaperSize returns width and height in inches for a named paper format.
func PaperSize(format string) (float64, float64, error) {
	size, ok := paperSizes[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return 0, 0, fmt.Errorf("unknown paper format %q", format)
	}
	return size[0], size[1], nil
}

// CaptureScreenshot returns a PNG of the current viewport.
func (m *Method) CaptureScreenshot() ([]byte, error) {
	return m.CaptureScreenshotContext(context.Background())
}

// CaptureScreenshotContext is CaptureScreenshot stopped early when ctx ends.
func (m *Method) CaptureScreenshotContext(ctx context.Context) ([]byte, error) {
	runCtx, cancel := linkContexts(m.session.GetContext(), ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("error capturing screenshot: %w", err)
	}
	return buf, nil
}

// Screenshot writes a PNG of the current viewport to path.
func (m *Method) Screenshot(path string) error {
	buf, err := m.CaptureScreenshot()
	if err != nil {
		return err
	}
	if err = writeArtifact(path, buf); err != nil {
		return err
	}
	log.Infof("Screenshot saved to %s", path)
	return nil
}

// PDFOptions selects paper and rendering for PrintToPDF. The zero value of
// PrintBackground leaves backgrounds out, as browsers do when printing.
type PDFOptions struct {
	Format          string
	Landscape       bool
	PrintBackground bool
}

func (o PDFOptions) params() (*page.PrintToPDFParams, error) {
	width, height, err := PaperSize(o.Format)
	if err != nil {
		return nil, err
	}
	return page.PrintToPDF().
		WithPaperWidth(width).
		WithPaperHeight(height).
		WithLandscape(o.Landscape).
		WithPrintBackground(o.PrintBackground), nil
}

// RenderPDF prints the current page with opts. It stops when ctx or the
// session ends.
func (m *Method) RenderPDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	params, err := opts.params()
	if err != nil {
		return nil, err
	}
	runCtx, cancel := linkContexts(m.session.GetContext(), ctx)
	defer cancel()

	var buf []byte
	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var errPrint error
		buf, _, errPrint = params.Do(ctx)
		return errPrint
	}))
	if err != nil {
		return nil, fmt.Errorf("error printing pdf: %w", err)
	}
	return buf, nil
}

// PrintPDF writes the current page as a PDF to path.
func (m *Method) PrintPDF(path, format string, landscape, printBackground bool) error {
	buf, err := m.RenderPDF(context.Background(), PDFOptions{
		Format:          format,
		Landscape:       landscape,
		PrintBackground: printBackground,
	})
	if err != nil {
		return err
	}
	if err = writeArtifact(path, buf); err != nil {
		return err
	}
	log.Infof("PDF saved to %s", path)
	return nil
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}
