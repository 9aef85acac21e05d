package ordenes

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// PDFRetryWorker reintenta periódicamente los PDFs de órdenes que quedaron sin generar.
type PDFRetryWorker struct {
	repo        repository.OrdenRepository
	pdf         *PDFUseCase
	intervalo   time.Duration
	maxIntentos int
	lote        int
	log         zerolog.Logger
}

// NewPDFRetryWorker construye el worker.
func NewPDFRetryWorker(repo repository.OrdenRepository, pdf *PDFUseCase, intervalo time.Duration, maxIntentos int, log zerolog.Logger) *PDFRetryWorker {
	if intervalo <= 0 {
		intervalo = time.Minute
	}
	if maxIntentos <= 0 {
		maxIntentos = 5
	}
	return &PDFRetryWorker{repo: repo, pdf: pdf, intervalo: intervalo, maxIntentos: maxIntentos, lote: 20, log: log}
}

// Run ejecuta pasadas hasta que ctx se cancele.
func (w *PDFRetryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.intervalo)
	defer ticker.Stop()
	w.log.Info().Dur("intervalo", w.intervalo).Int("max_intentos", w.maxIntentos).Msg("worker de PDF iniciado")
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker de PDF detenido")
			return
		case <-ticker.C:
			w.Ejecutar(ctx)
		}
	}
}

// Ejecutar hace una pasada y devuelve cuántos PDFs quedaron generados.
func (w *PDFRetryWorker) Ejecutar(ctx context.Context) int {
	ids, err := w.repo.ListPendientesPDF(ctx, w.maxIntentos, w.lote)
	if err != nil {
		w.log.Error().Err(err).Msg("listar órdenes sin PDF")
		return 0
	}
	ok := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.pdf.GenerarYGuardar(ctx, id); err != nil {
			w.log.Warn().Err(err).Int64("orden_id", id).Msg("reintento de PDF fallido")
			continue
		}
		ok++
	}
	if len(ids) > 0 {
		w.log.Info().Int("pendientes", len(ids)).Int("generados", ok).Msg("pasada de PDFs pendientes")
	}
	return ok
}
