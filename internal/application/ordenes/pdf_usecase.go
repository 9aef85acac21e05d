package ordenes

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica de una orden ya confirmada, la sube al
// almacenamiento y guarda la ruta. Cada paso es idempotente: reintentar es seguro.
// Un fallo nunca afecta a la orden; queda registrado en pdf_intentos / pdf_ultimo_error.
type PDFUseCase struct {
	ordenRepo     repository.OrdenRepository
	solicitudRepo repository.SolicitudRepository
	catalogoRepo  repository.CatalogoRepository
	generador     GeneradorPDF
	blobs         ports.BlobStore
	timeout       time.Duration
	log           zerolog.Logger
	wg            sync.WaitGroup
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	ordenRepo repository.OrdenRepository,
	solicitudRepo repository.SolicitudRepository,
	catalogoRepo repository.CatalogoRepository,
	generador GeneradorPDF,
	blobs ports.BlobStore,
	timeout time.Duration,
	log zerolog.Logger,
) *PDFUseCase {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PDFUseCase{
		ordenRepo:     ordenRepo,
		solicitudRepo: solicitudRepo,
		catalogoRepo:  catalogoRepo,
		generador:     generador,
		blobs:         blobs,
		timeout:       timeout,
		log:           log,
	}
}

// ProcessAsync genera el PDF en una goroutine independiente con su propio
// context.Background() + timeout, desacoplada del ciclo HTTP.
func (uc *PDFUseCase) ProcessAsync(ordenID int64) {
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), uc.timeout)
		defer cancel()
		if _, err := uc.GenerarYGuardar(ctx, ordenID); err != nil {
			uc.log.Warn().Err(err).Int64("orden_id", ordenID).Msg("PDF de orden pendiente")
		}
	}()
}

// Esperar bloquea hasta que terminen las generaciones en curso (apagado ordenado).
func (uc *PDFUseCase) Esperar() { uc.wg.Wait() }

// GenerarYGuardar produce el PDF de la orden y devuelve su URL.
//
// Retorna:
//   - domain.ErrNotFound   si la orden no existe.
//   - domain.ErrDownstream si falló el render, la subida o el registro de la ruta.
func (uc *PDFUseCase) GenerarYGuardar(ctx context.Context, ordenID int64) (string, error) {
	orden, err := uc.ordenRepo.GetByID(ctx, ordenID)
	if err != nil {
		return "", fmt.Errorf("pdf: obtener orden: %w", err)
	}
	if orden == nil || orden.Eliminada {
		return "", domain.ErrNotFound
	}
	if orden.TienePDF() {
		return *orden.RutaPDF, nil
	}

	// ── 1. Armar documento ────────────────────────────────────────────────────
	doc, err := uc.armarDocumento(ctx, orden)
	if err != nil {
		return "", uc.fallo(ctx, ordenID, "armar documento", err)
	}

	// ── 2. Renderizar ─────────────────────────────────────────────────────────
	pdf, err := uc.generador.GenerarOrdenPDF(ctx, doc)
	if err != nil {
		return "", uc.fallo(ctx, ordenID, "generar", err)
	}

	// ── 3. Subir y registrar ──────────────────────────────────────────────────
	url, err := uc.blobs.Subir(ctx, ClavePDF(orden.Codigo), "application/pdf", pdf)
	if err != nil {
		return "", uc.fallo(ctx, ordenID, "subir", err)
	}
	if err := uc.ordenRepo.UpdatePDF(ctx, ordenID, url); err != nil {
		return "", uc.fallo(ctx, ordenID, "registrar ruta", err)
	}

	uc.log.Info().Int64("orden_id", ordenID).Str("ruta_pdf", url).Int("bytes", len(pdf)).Msg("PDF de orden generado")
	return url, nil
}

// ClavePDF clave del PDF de una orden en el almacenamiento.
func ClavePDF(codigo string) string {
	return "ordenes/" + codigo + ".pdf"
}

func (uc *PDFUseCase) fallo(ctx context.Context, ordenID int64, paso string, err error) error {
	if rErr := uc.ordenRepo.RegistrarFalloPDF(ctx, ordenID, paso+": "+err.Error()); rErr != nil {
		uc.log.Error().Err(rErr).Int64("orden_id", ordenID).Msg("no se pudo registrar el fallo del PDF")
	}
	return fmt.Errorf("%w: pdf %s: %w", domain.ErrDownstream, paso, err)
}

// armarDocumento resuelve los nombres de catálogo; si alguno falta usa "#id" en su lugar.
func (uc *PDFUseCase) armarDocumento(ctx context.Context, o *entity.Orden) (*DocumentoOrden, error) {
	detalles, err := uc.ordenRepo.GetDetalles(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("obtener detalles: %w", err)
	}
	doc := &DocumentoOrden{
		Orden:       o,
		Proveedor:   uc.nombre(ctx, entity.CatalogoProveedores, o.ProveedorID),
		Empresa:     uc.nombre(ctx, entity.CatalogoEmpresas, o.EmpresaID),
		Banco:       uc.nombre(ctx, entity.CatalogoBancos, o.BancoID),
		CentroCosto: uc.nombre(ctx, entity.CatalogoCentrosCosto, o.CentroCostoID),
		TipoOrden:   uc.nombre(ctx, entity.CatalogoTiposOrden, o.TipoOrdenID),
		Cuenta:      uc.nombre(ctx, entity.CatalogoCuentas, o.CuentaID),
	}
	if sol, err := uc.solicitudRepo.GetByID(ctx, o.SolicitudID); err == nil && sol != nil {
		doc.Asunto = sol.Asunto
	}
	doc.Moneda, err = uc.catalogoRepo.GetMoneda(ctx, o.MonedaID)
	if err != nil {
		return nil, fmt.Errorf("obtener moneda: %w", err)
	}
	if doc.Moneda == nil {
		doc.Moneda = &entity.Moneda{ID: o.MonedaID, Codigo: "#" + strconv.FormatInt(o.MonedaID, 10), Decimales: 2}
	}
	doc.Plazo, err = uc.catalogoRepo.GetPlazoPago(ctx, o.PlazoPagoID)
	if err != nil {
		return nil, fmt.Errorf("obtener plazo: %w", err)
	}
	for _, d := range detalles {
		doc.Detalles = append(doc.Detalles, DetalleDocumento{
			DetalleOrden:   *d,
			ProductoNombre: uc.nombre(ctx, entity.CatalogoProductos, d.ProductoID),
		})
	}
	return doc, nil
}

func (uc *PDFUseCase) nombre(ctx context.Context, cat entity.Catalogo, id int64) string {
	item, err := uc.catalogoRepo.ObtenerItem(ctx, cat, id)
	if err != nil || item == nil {
		return "#" + strconv.FormatInt(id, 10)
	}
	return item.Nombre
}
