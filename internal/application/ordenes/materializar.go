package ordenes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/solicitudes"
	"github.com/jhoicas/ordenes-api/internal/application/validacion"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/compras"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// Config parámetros de la materialización.
type Config struct {
	Zona      *time.Location // zona de la empresa para código y vencimiento
	TxTimeout time.Duration
}

// MaterializarUseCase convierte una solicitud en proceso en una orden de compra:
// valida, calcula tarifas, persiste cabecera + código + detalles en una transacción,
// pasa la solicitud a ordenada y dispara el PDF.
type MaterializarUseCase struct {
	tx     OrdenTxRunner
	leases *solicitudes.LeaseManager
	clock  solicitudes.Clock
	pdf    DespachadorPDF
	cfg    Config
	log    zerolog.Logger
}

// NewMaterializarUseCase construye el caso de uso. pdf puede ser nil (no se genera PDF).
func NewMaterializarUseCase(
	tx OrdenTxRunner,
	leases *solicitudes.LeaseManager,
	clock solicitudes.Clock,
	pdf DespachadorPDF,
	cfg Config,
	log zerolog.Logger,
) *MaterializarUseCase {
	if cfg.Zona == nil {
		cfg.Zona = time.UTC
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = 30 * time.Second
	}
	return &MaterializarUseCase{tx: tx, leases: leases, clock: clock, pdf: pdf, cfg: cfg, log: log}
}

// referencia FK de la cabecera que debe existir y estar activa.
type referencia struct {
	campo    string
	catalogo entity.Catalogo
	id       int64
}

// Materializar crea la orden de la solicitud. El usuario debe tener el lease de proceso vigente.
//
// Retorna:
//   - *domain.ValidationError si la entrada o una referencia no es válida (sin escrituras).
//   - domain.ErrLeaseNotHeld si el usuario no tiene el lease de proceso.
//   - domain.ErrConflict si la solicitud ya tiene una orden.
//   - domain.ErrTransaccion si la transacción falló (revertida por completo; se puede reintentar).
func (uc *MaterializarUseCase) Materializar(
	ctx context.Context,
	solicitudID int64,
	usuario entity.Usuario,
	in dto.MaterializarRequest,
) (*dto.OrdenCreadaResponse, error) {
	// ── 1. Validación de forma (sin tocar la base) ───────────────────────────
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	if err := validarItems(in.Items); err != nil {
		return nil, err
	}
	if usuario.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	// Una vez iniciada, la transacción no se cancela con la petición; sólo con su propio timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.TxTimeout)
	defer cancel()

	now, err := uc.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: leer reloj: %w", domain.ErrTransaccion, err)
	}

	// ── 2. Transacción: cabecera + código + detalles ─────────────────────────
	var orden *entity.Orden
	err = uc.tx.RunOrden(ctx, func(
		solicitudRepo repository.SolicitudRepository,
		ordenRepo repository.OrdenRepository,
		catalogoRepo repository.CatalogoRepository,
		reglaRepo repository.ReglaTarifaRepository,
	) error {
		sol, err := solicitudRepo.GetForUpdate(ctx, solicitudID)
		if err != nil {
			return fmt.Errorf("bloquear solicitud: %w", err)
		}
		if sol == nil {
			return domain.ErrNotFound
		}
		if err := uc.leases.VerificarLease(sol, entity.EstadoProcesando, usuario.ID, now); err != nil {
			return err
		}
		existe, err := ordenRepo.ExistsBySolicitud(ctx, solicitudID)
		if err != nil {
			return fmt.Errorf("verificar orden existente: %w", err)
		}
		if existe {
			return fmt.Errorf("%w: la solicitud %d ya tiene una orden", domain.ErrConflict, solicitudID)
		}

		plazo, moneda, local, err := uc.resolverReferencias(ctx, catalogoRepo, in)
		if err != nil {
			return err
		}

		detalles := make([]entity.DetalleOrden, 0, len(in.Items))
		for _, it := range in.Items {
			detalles = append(detalles, entity.DetalleOrden{
				SolicitudID:        solicitudID,
				ProductoID:         it.ProductoID,
				PrecioUnitario:     it.PrecioUnitario,
				Cantidad:           it.Cantidad,
				Total:              it.PrecioUnitario.Mul(decimal.NewFromInt(it.Cantidad)),
				CantidadPorRecibir: it.Cantidad,
			})
		}

		reglas, err := reglaRepo.ListByTipoOrden(ctx, in.TipoOrdenID)
		if err != nil {
			return fmt.Errorf("cargar reglas de tarifa: %w", err)
		}
		subtotal := moneda.Redondear(compras.Subtotal(detalles))
		tarifas := compras.EvaluarTarifas(subtotal, reglas).Redondear(subtotal, moneda)

		orden = &entity.Orden{
			SolicitudID:      solicitudID,
			ProveedorID:      in.ProveedorID,
			BancoID:          in.BancoID,
			MonedaID:         in.MonedaID,
			EmpresaID:        in.EmpresaID,
			CentroCostoID:    in.CentroCostoID,
			PlazoPagoID:      in.PlazoPagoID,
			TipoOrdenID:      in.TipoOrdenID,
			CuentaID:         in.CuentaID,
			Subtotal:         subtotal,
			Impuesto:         tarifas.Impuesto,
			Retencion:        tarifas.Retencion,
			Propina:          tarifas.Propina,
			Total:            tarifas.Total,
			TotalLocal:       compras.NormalizarTotal(tarifas.Total, moneda, local),
			TipoCambio:       compras.TipoCambioEfectivo(moneda, local),
			Nota:             in.Nota,
			Cotizaciones:     in.Cotizaciones,
			NivelAprobacion:  entity.NivelAprobacionPendiente,
			UsuarioCreador:   nombreUsuario(usuario),
			CreadoPor:        usuario.ID,
			CorreoCreador:    usuario.Correo,
			FechaVencimiento: compras.FechaVencimiento(now, uc.cfg.Zona, plazo.Dias),
			CreadoEn:         now,
			UpdatedAt:        now,
		}
		if err := ordenRepo.Create(ctx, orden); err != nil {
			return fmt.Errorf("insertar orden: %w", err)
		}
		orden.Codigo = compras.GenerarCodigo(orden.ID, now.In(uc.cfg.Zona))
		if err := ordenRepo.SetCodigo(ctx, orden.ID, orden.Codigo); err != nil {
			return fmt.Errorf("asignar código: %w", err)
		}
		for i := range detalles {
			detalles[i].OrdenID = orden.ID
			if err := ordenRepo.CreateDetalle(ctx, &detalles[i]); err != nil {
				return fmt.Errorf("insertar detalle %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.clasificarError(solicitudID, err)
	}

	// ── 3. Post-commit: la orden ya existe pase lo que pase ──────────────────
	if err := uc.leases.Transicionar(ctx, solicitudID, entity.EstadoOrdenada); err != nil {
		uc.log.Error().Err(err).
			Int64("solicitud_id", solicitudID).Int64("orden_id", orden.ID).Str("codigo", orden.Codigo).
			Msg("orden confirmada pero la solicitud no quedó ordenada")
	}
	if uc.pdf != nil {
		uc.pdf.ProcessAsync(orden.ID)
	}

	uc.log.Info().Int64("solicitud_id", solicitudID).Int64("orden_id", orden.ID).
		Str("codigo", orden.Codigo).Str("total", orden.Total.String()).Msg("orden creada")

	return &dto.OrdenCreadaResponse{
		ID:          orden.ID,
		Codigo:      orden.Codigo,
		SolicitudID: solicitudID,
		Subtotal:    orden.Subtotal,
		Impuesto:    orden.Impuesto,
		Retencion:   orden.Retencion,
		Propina:     orden.Propina,
		Total:       orden.Total,
		TotalLocal:  orden.TotalLocal,
	}, nil
}

// resolverReferencias comprueba, con datos actuales, que cada FK exista y esté activa.
// Devuelve el plazo, la moneda de la orden y la moneda local.
func (uc *MaterializarUseCase) resolverReferencias(
	ctx context.Context,
	repo repository.CatalogoRepository,
	in dto.MaterializarRequest,
) (*entity.PlazoPago, *entity.Moneda, *entity.Moneda, error) {
	refs := []referencia{
		{"proveedor_id", entity.CatalogoProveedores, in.ProveedorID},
		{"banco_id", entity.CatalogoBancos, in.BancoID},
	}
	if err := verificarReferencias(ctx, repo, refs); err != nil {
		return nil, nil, nil, err
	}

	plazo, err := repo.GetPlazoPago(ctx, in.PlazoPagoID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("obtener plazo de pago: %w", err)
	}
	if plazo == nil || !plazo.Activo {
		return nil, nil, nil, domain.NewValidationError("plazo_pago_id", "no existe o está inactivo")
	}

	refs = []referencia{
		{"empresa_id", entity.CatalogoEmpresas, in.EmpresaID},
		{"centro_costo_id", entity.CatalogoCentrosCosto, in.CentroCostoID},
		{"tipo_orden_id", entity.CatalogoTiposOrden, in.TipoOrdenID},
	}
	if err := verificarReferencias(ctx, repo, refs); err != nil {
		return nil, nil, nil, err
	}

	moneda, err := repo.GetMoneda(ctx, in.MonedaID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("obtener moneda: %w", err)
	}
	if moneda == nil || !moneda.Activa {
		return nil, nil, nil, domain.NewValidationError("moneda_id", "no existe o está inactiva")
	}
	local, err := repo.GetMonedaLocal(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("obtener moneda local: %w", err)
	}
	if local == nil {
		return nil, nil, nil, fmt.Errorf("%w: no hay moneda local configurada", domain.ErrConfiguracion)
	}
	if !moneda.EsLocal && moneda.ID != local.ID && !moneda.TipoCambio.IsPositive() {
		return nil, nil, nil, domain.NewValidationError("moneda_id", "la moneda no tiene tipo de cambio")
	}

	refs = []referencia{{"cuenta_id", entity.CatalogoCuentas, in.CuentaID}}
	for i, it := range in.Items {
		refs = append(refs, referencia{fmt.Sprintf("items[%d].producto_id", i), entity.CatalogoProductos, it.ProductoID})
	}
	if err := verificarReferencias(ctx, repo, refs); err != nil {
		return nil, nil, nil, err
	}
	return plazo, moneda, local, nil
}

func verificarReferencias(ctx context.Context, repo repository.CatalogoRepository, refs []referencia) error {
	for _, r := range refs {
		item, err := repo.ObtenerItem(ctx, r.catalogo, r.id)
		if err != nil {
			return fmt.Errorf("verificar %s: %w", r.campo, err)
		}
		if item == nil || !item.Activo {
			return domain.NewValidationError(r.campo, "no existe o está inactivo")
		}
	}
	return nil
}

func validarItems(items []dto.ItemOrdenRequest) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "la orden debe tener al menos una línea")
	}
	for i, it := range items {
		switch {
		case it.ProductoID <= 0:
			return domain.NewValidationError(fmt.Sprintf("items[%d].producto_id", i), "es obligatorio")
		case it.Cantidad < 1:
			return domain.NewValidationError(fmt.Sprintf("items[%d].cantidad", i), "debe ser al menos 1")
		case !it.PrecioUnitario.IsPositive():
			return domain.NewValidationError(fmt.Sprintf("items[%d].precio_unitario", i), "debe ser mayor que 0")
		}
	}
	return nil
}

// clasificarError deja pasar los errores de negocio y envuelve el resto como ErrTransaccion.
func (uc *MaterializarUseCase) clasificarError(solicitudID int64, err error) error {
	for _, negocio := range []error{
		domain.ErrInvalidInput, domain.ErrLeaseNotHeld, domain.ErrNotFound,
		domain.ErrConflict, domain.ErrEstadoTerminal, domain.ErrConfiguracion,
	} {
		if errors.Is(err, negocio) {
			return err
		}
	}
	uc.log.Error().Err(err).Int64("solicitud_id", solicitudID).Msg("transacción de orden revertida")
	return fmt.Errorf("%w: %w", domain.ErrTransaccion, err)
}

func nombreUsuario(u entity.Usuario) string {
	if u.Nombre != "" {
		return u.Nombre
	}
	return u.ID
}
