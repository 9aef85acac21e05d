package pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/application/ordenes"
)

var _ ordenes.GeneradorPDF = (*ChromedpGenerator)(nil)

// ChromedpConfig parámetros del navegador.
type ChromedpConfig struct {
	RemoteURL string // ws://host:9222; vacío lanza un Chrome local
	NoSandbox bool   // necesario en Docker como root
	Timeout   time.Duration
}

// ChromedpGenerator imprime la plantilla HTML de la orden a PDF A4 con Chrome headless.
// Las opciones del navegador se fijan una vez; cada PDF corre en su propio contexto de chromedp.
type ChromedpGenerator struct {
	cfg         ChromedpConfig
	log         zerolog.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpGenerator prepara el allocator; el navegador se lanza al generar.
func NewChromedpGenerator(cfg ChromedpConfig, log zerolog.Logger) *ChromedpGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	g := &ChromedpGenerator{cfg: cfg, log: log}
	if cfg.RemoteURL != "" {
		g.allocCtx, g.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return g
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	g.allocCtx, g.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return g
}

// GenerarOrdenPDF renderiza la orden y devuelve los bytes del PDF.
func (g *ChromedpGenerator) GenerarOrdenPDF(ctx context.Context, doc *ordenes.DocumentoOrden) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	tabCtx, tabCancel := chromedp.NewContext(g.allocCtx)
	defer tabCancel()
	// la pestaña hereda el allocator; el plazo lo pone ctx
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	inicio := time.Now()
	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(mmToInches(210)).
				WithPaperHeight(mmToInches(297)).
				WithMarginTop(mmToInches(18)).
				WithMarginBottom(mmToInches(18)).
				WithMarginLeft(mmToInches(10)).
				WithMarginRight(mmToInches(10)).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(encabezadoHTML(doc.Orden.Codigo)).
				WithFooterTemplate(pieHTML()).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("chromedp: tiempo agotado tras %v: %w", g.cfg.Timeout, err)
		}
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("chromedp: PDF vacío")
	}
	g.log.Debug().Str("codigo", doc.Orden.Codigo).Int("bytes", len(pdf)).
		Dur("duracion", time.Since(inicio)).Msg("PDF renderizado con chromedp")
	return pdf, nil
}

// Close libera el navegador.
func (g *ChromedpGenerator) Close() {
	if g.allocCancel != nil {
		g.allocCancel()
	}
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
