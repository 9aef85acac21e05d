// Package testutil dobles en memoria de los puertos de persistencia, reloj y almacenamiento
// para probar los casos de uso sin base de datos.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

var (
	_ repository.SolicitudRepository   = (*SolicitudRepo)(nil)
	_ repository.OrdenRepository       = (*OrdenRepo)(nil)
	_ repository.CatalogoRepository    = (*CatalogoRepo)(nil)
	_ repository.ReglaTarifaRepository = (*CatalogoRepo)(nil)
)

// ErrFalla error inyectado por FallarEn cuando no se indica otro.
var ErrFalla = errors.New("falla inyectada")

// MemStore guarda todas las tablas en memoria y expone un repo por agregado.
// RunOrden serializa las transacciones y revierte órdenes y detalles si fn falla.
// Las filas de órdenes se reemplazan (copy-on-write) para que la reversión sea un simple cambio de mapas.
type MemStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	solicitudes map[int64]*entity.Solicitud
	ordenes     map[int64]*entity.Orden
	detalles    map[int64][]*entity.DetalleOrden
	items       map[entity.Catalogo]map[int64]entity.ItemCatalogo
	plazos      map[int64]entity.PlazoPago
	monedas     map[int64]entity.Moneda
	reglas      map[int64][]entity.ReglaTarifa

	seqSolicitud int64
	seqOrden     int64
	seqDetalle   int64

	fallas map[string]error
}

// NewMemStore crea un almacén vacío.
func NewMemStore() *MemStore {
	return &MemStore{
		solicitudes: map[int64]*entity.Solicitud{},
		ordenes:     map[int64]*entity.Orden{},
		detalles:    map[int64][]*entity.DetalleOrden{},
		items:       map[entity.Catalogo]map[int64]entity.ItemCatalogo{},
		plazos:      map[int64]entity.PlazoPago{},
		monedas:     map[int64]entity.Moneda{},
		reglas:      map[int64][]entity.ReglaTarifa{},
		fallas:      map[string]error{},
	}
}

// Solicitudes repo de solicitudes.
func (s *MemStore) Solicitudes() *SolicitudRepo { return &SolicitudRepo{s: s} }

// Ordenes repo de órdenes.
func (s *MemStore) Ordenes() *OrdenRepo { return &OrdenRepo{s: s} }

// Catalogos repo de catálogos y reglas de tarifa.
func (s *MemStore) Catalogos() *CatalogoRepo { return &CatalogoRepo{s: s} }

// FallarEn hace que la operación op ("Repo.Metodo") devuelva err. err nil usa ErrFalla.
func (s *MemStore) FallarEn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrFalla
	}
	s.fallas[op] = err
}

// NoFallar quita la falla inyectada en op.
func (s *MemStore) NoFallar(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fallas, op)
}

// ── Transacción ──────────────────────────────────────────────────────────────

// RunOrden ejecuta fn con los repos en memoria. Si fn falla restaura órdenes y detalles.
// Las secuencias no retroceden, igual que en PostgreSQL.
func (s *MemStore) RunOrden(ctx context.Context, fn func(
	solicitudRepo repository.SolicitudRepository,
	ordenRepo repository.OrdenRepository,
	catalogoRepo repository.CatalogoRepository,
	reglaRepo repository.ReglaTarifaRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	if err := s.fallas["RunOrden"]; err != nil {
		s.mu.Unlock()
		return err
	}
	ordenes := make(map[int64]*entity.Orden, len(s.ordenes))
	for k, v := range s.ordenes {
		ordenes[k] = v
	}
	detalles := make(map[int64][]*entity.DetalleOrden, len(s.detalles))
	for k, v := range s.detalles {
		detalles[k] = append([]*entity.DetalleOrden(nil), v...)
	}
	s.mu.Unlock()

	err := fn(s.Solicitudes(), s.Ordenes(), s.Catalogos(), s.Catalogos())
	if err == nil {
		err = s.fallaSinLock("Commit")
	}
	if err != nil {
		s.mu.Lock()
		s.ordenes, s.detalles = ordenes, detalles
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemStore) fallaSinLock(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallas[op]
}

// ── Solicitudes ──────────────────────────────────────────────────────────────

// SolicitudRepo implementa repository.SolicitudRepository sobre MemStore.
type SolicitudRepo struct{ s *MemStore }

func (r *SolicitudRepo) Create(ctx context.Context, sol *entity.Solicitud) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Solicitud.Create"]; err != nil {
		return err
	}
	r.s.seqSolicitud++
	sol.ID = r.s.seqSolicitud
	r.s.solicitudes[sol.ID] = copiarSolicitud(sol)
	return nil
}

func (r *SolicitudRepo) GetByID(ctx context.Context, id int64) (*entity.Solicitud, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Solicitud.GetByID"]; err != nil {
		return nil, err
	}
	sol, ok := r.s.solicitudes[id]
	if !ok {
		return nil, nil
	}
	return copiarSolicitud(sol), nil
}

func (r *SolicitudRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Solicitud, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Solicitud.GetForUpdate"]; err != nil {
		return nil, err
	}
	sol, ok := r.s.solicitudes[id]
	if !ok {
		return nil, nil
	}
	return copiarSolicitud(sol), nil
}

func (r *SolicitudRepo) List(ctx context.Context, f repository.FiltroSolicitudes) ([]*entity.Solicitud, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var todas []*entity.Solicitud
	for _, sol := range r.s.solicitudes {
		if f.Estado == "" && sol.Eliminado {
			continue
		}
		if f.Estado != "" && sol.Estado != f.Estado {
			continue
		}
		todas = append(todas, copiarSolicitud(sol))
	}
	sort.Slice(todas, func(i, j int) bool { return todas[i].ID > todas[j].ID })
	return paginar(todas, f.Limit, f.Offset), len(todas), nil
}

func (r *SolicitudRepo) UpdateContenido(ctx context.Context, sol *entity.Solicitud, titular string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	actual, ok := r.s.solicitudes[sol.ID]
	if !ok || actual.Estado != entity.EstadoEditando || actual.LeasedBy != titular {
		return false, nil
	}
	actual.Asunto = sol.Asunto
	actual.Descripcion = sol.Descripcion
	actual.Adjuntos = append([]entity.Adjunto(nil), sol.Adjuntos...)
	actual.UpdatedAt = sol.UpdatedAt
	return true, nil
}

func (r *SolicitudRepo) CompareAndSwapLease(ctx context.Context, id int64, esperado, nuevo entity.Lease) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Solicitud.CompareAndSwapLease"]; err != nil {
		return false, err
	}
	actual, ok := r.s.solicitudes[id]
	if !ok || !MismoLease(actual.LeaseActual(), esperado) {
		return false, nil
	}
	actual.AplicarLease(copiarLease(nuevo))
	return true, nil
}

func (r *SolicitudRepo) ForzarLease(ctx context.Context, id int64, nuevo entity.Lease) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Solicitud.ForzarLease"]; err != nil {
		return false, err
	}
	actual, ok := r.s.solicitudes[id]
	if !ok || actual.Estado.EsTerminal() {
		return false, nil
	}
	actual.AplicarLease(copiarLease(nuevo))
	return true, nil
}

func (r *SolicitudRepo) Eliminar(ctx context.Context, id int64, esperado entity.Lease, justificacion string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	actual, ok := r.s.solicitudes[id]
	if !ok || actual.Estado.EsTerminal() || !MismoLease(actual.LeaseActual(), esperado) {
		return false, nil
	}
	actual.AplicarLease(entity.LeaseLibre(entity.EstadoEliminada))
	actual.Eliminado = true
	actual.JustificacionEliminacion = justificacion
	return true, nil
}

// Solicitud devuelve una copia de la solicitud almacenada (nil si no existe).
func (s *MemStore) Solicitud(id int64) *entity.Solicitud {
	s.mu.Lock()
	defer s.mu.Unlock()
	sol, ok := s.solicitudes[id]
	if !ok {
		return nil
	}
	return copiarSolicitud(sol)
}

// ── Órdenes ──────────────────────────────────────────────────────────────────

// OrdenRepo implementa repository.OrdenRepository sobre MemStore.
type OrdenRepo struct{ s *MemStore }

func (r *OrdenRepo) Create(ctx context.Context, o *entity.Orden) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Orden.Create"]; err != nil {
		return err
	}
	for _, otra := range r.s.ordenes {
		if otra.SolicitudID == o.SolicitudID {
			return errors.New("violación de unicidad: ordenes.solicitud_id")
		}
	}
	r.s.seqOrden++
	o.ID = r.s.seqOrden
	r.s.ordenes[o.ID] = copiarOrden(o)
	return nil
}

func (r *OrdenRepo) SetCodigo(ctx context.Context, id int64, codigo string) error {
	return r.modificar("Orden.SetCodigo", id, func(o *entity.Orden) { o.Codigo = codigo })
}

func (r *OrdenRepo) CreateDetalle(ctx context.Context, d *entity.DetalleOrden) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Orden.CreateDetalle"]; err != nil {
		return err
	}
	r.s.seqDetalle++
	d.ID = r.s.seqDetalle
	c := *d
	r.s.detalles[d.OrdenID] = append(r.s.detalles[d.OrdenID], &c)
	return nil
}

func (r *OrdenRepo) GetByID(ctx context.Context, id int64) (*entity.Orden, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.ordenes[id]
	if !ok {
		return nil, nil
	}
	return copiarOrden(o), nil
}

func (r *OrdenRepo) GetDetalles(ctx context.Context, ordenID int64) ([]*entity.DetalleOrden, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.DetalleOrden, 0, len(r.s.detalles[ordenID]))
	for _, d := range r.s.detalles[ordenID] {
		c := *d
		out = append(out, &c)
	}
	return out, nil
}

func (r *OrdenRepo) ExistsBySolicitud(ctx context.Context, solicitudID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.ordenes {
		if o.SolicitudID == solicitudID {
			return true, nil
		}
	}
	return false, nil
}

func (r *OrdenRepo) List(ctx context.Context, f repository.FiltroOrdenes) ([]*entity.Orden, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var todas []*entity.Orden
	for _, o := range r.s.ordenes {
		if o.Eliminada {
			continue
		}
		if f.SolicitudID > 0 && o.SolicitudID != f.SolicitudID {
			continue
		}
		if f.ProveedorID > 0 && o.ProveedorID != f.ProveedorID {
			continue
		}
		todas = append(todas, copiarOrden(o))
	}
	sort.Slice(todas, func(i, j int) bool { return todas[i].ID > todas[j].ID })
	return paginar(todas, f.Limit, f.Offset), len(todas), nil
}

func (r *OrdenRepo) UpdatePDF(ctx context.Context, id int64, ruta string) error {
	return r.modificar("Orden.UpdatePDF", id, func(o *entity.Orden) { o.RutaPDF = &ruta })
}

func (r *OrdenRepo) RegistrarFalloPDF(ctx context.Context, id int64, msg string) error {
	return r.modificar("Orden.RegistrarFalloPDF", id, func(o *entity.Orden) {
		o.PDFIntentos++
		o.PDFUltimoError = msg
	})
}

func (r *OrdenRepo) ListPendientesPDF(ctx context.Context, maxIntentos, limit int) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []int64
	for id, o := range r.s.ordenes {
		if !o.TienePDF() && !o.Eliminada && o.PDFIntentos < maxIntentos {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *OrdenRepo) Aprobar(ctx context.Context, id int64, nivelActual int, at time.Time) (bool, error) {
	return r.siCumple("Orden.Aprobar", id, func(o *entity.Orden) bool {
		return o.NivelAprobacion == nivelActual && !o.AprobacionFinal() && !o.Rechazada() && !o.Eliminada
	}, func(o *entity.Orden) {
		o.NivelAprobacion++
		o.UpdatedAt = at
	})
}

func (r *OrdenRepo) Rechazar(ctx context.Context, id int64, justificacion string, at time.Time) (bool, error) {
	return r.siCumple("Orden.Rechazar", id, func(o *entity.Orden) bool {
		return !o.Rechazada() && !o.Eliminada
	}, func(o *entity.Orden) {
		o.JustificacionRechazo = justificacion
		o.UpdatedAt = at
	})
}

func (r *OrdenRepo) ActualizarNota(ctx context.Context, id int64, nota string, at time.Time) (bool, error) {
	return r.siCumple("Orden.ActualizarNota", id, func(o *entity.Orden) bool {
		return o.NivelAprobacion == entity.NivelAprobacionPendiente && !o.Rechazada() && !o.Eliminada
	}, func(o *entity.Orden) {
		o.Nota = nota
		o.UpdatedAt = at
	})
}

func (r *OrdenRepo) Eliminar(ctx context.Context, id int64, justificacion string, at time.Time) (bool, error) {
	return r.siCumple("Orden.Eliminar", id, func(o *entity.Orden) bool {
		return !o.Eliminada
	}, func(o *entity.Orden) {
		o.Eliminada = true
		o.JustificacionEliminacion = justificacion
		o.UpdatedAt = at
	})
}

// siCumple aplica fn sólo si la orden existe y cumple cond, como un UPDATE ... WHERE.
func (r *OrdenRepo) siCumple(op string, id int64, cond func(*entity.Orden) bool, fn func(*entity.Orden)) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas[op]; err != nil {
		return false, err
	}
	o, ok := r.s.ordenes[id]
	if !ok || !cond(o) {
		return false, nil
	}
	c := copiarOrden(o)
	fn(c)
	r.s.ordenes[id] = c
	return true, nil
}

func (r *OrdenRepo) ListInconsistencias(ctx context.Context) ([]entity.Inconsistencia, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Inconsistencia
	for _, o := range r.s.ordenes {
		sol, ok := r.s.solicitudes[o.SolicitudID]
		if !ok || sol.Estado == entity.EstadoOrdenada {
			continue
		}
		out = append(out, entity.Inconsistencia{
			SolicitudID: sol.ID,
			Estado:      sol.Estado,
			OrdenID:     o.ID,
			Codigo:      o.Codigo,
			CreadoEn:    o.CreadoEn,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrdenID < out[j].OrdenID })
	return out, nil
}

func (r *OrdenRepo) modificar(op string, id int64, fn func(*entity.Orden)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas[op]; err != nil {
		return err
	}
	o, ok := r.s.ordenes[id]
	if !ok {
		return errors.New("orden inexistente")
	}
	c := copiarOrden(o)
	fn(c)
	r.s.ordenes[id] = c
	return nil
}

// CantidadOrdenes número de órdenes confirmadas.
func (s *MemStore) CantidadOrdenes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ordenes)
}

// CantidadDetalles número total de líneas de detalle.
func (s *MemStore) CantidadDetalles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.detalles {
		n += len(d)
	}
	return n
}

// ── Catálogos ────────────────────────────────────────────────────────────────

// CatalogoRepo implementa CatalogoRepository y ReglaTarifaRepository sobre MemStore.
type CatalogoRepo struct{ s *MemStore }

func (r *CatalogoRepo) Listar(ctx context.Context, cat entity.Catalogo) ([]entity.ItemCatalogo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Catalogo.Listar"]; err != nil {
		return nil, err
	}
	out := make([]entity.ItemCatalogo, 0, len(r.s.items[cat]))
	for _, it := range r.s.items[cat] {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *CatalogoRepo) ObtenerItem(ctx context.Context, cat entity.Catalogo, id int64) (*entity.ItemCatalogo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[cat][id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *CatalogoRepo) CrearItem(ctx context.Context, cat entity.Catalogo, item *entity.ItemCatalogo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Catalogo.CrearItem"]; err != nil {
		return err
	}
	if r.s.items[cat] == nil {
		r.s.items[cat] = map[int64]entity.ItemCatalogo{}
	}
	var maxID int64
	for id := range r.s.items[cat] {
		maxID = max(maxID, id)
	}
	item.ID = maxID + 1
	r.s.items[cat][item.ID] = *item
	return nil
}

func (r *CatalogoRepo) ActualizarItem(ctx context.Context, cat entity.Catalogo, item entity.ItemCatalogo) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Catalogo.ActualizarItem"]; err != nil {
		return false, err
	}
	if _, ok := r.s.items[cat][item.ID]; !ok {
		return false, nil
	}
	r.s.items[cat][item.ID] = item
	return true, nil
}

func (r *CatalogoRepo) GetPlazoPago(ctx context.Context, id int64) (*entity.PlazoPago, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plazos[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *CatalogoRepo) GetMoneda(ctx context.Context, id int64) (*entity.Moneda, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.monedas[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *CatalogoRepo) GetMonedaLocal(ctx context.Context) (*entity.Moneda, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.monedas {
		if m.EsLocal {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *CatalogoRepo) ListByTipoOrden(ctx context.Context, tipoOrdenID int64) ([]entity.ReglaTarifa, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fallas["Regla.ListByTipoOrden"]; err != nil {
		return nil, err
	}
	return append([]entity.ReglaTarifa(nil), r.s.reglas[tipoOrdenID]...), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// MismoLease compara dos leases campo a campo (instantes con Equal).
func MismoLease(a, b entity.Lease) bool {
	if a.Estado != b.Estado || a.LeasedBy != b.LeasedBy {
		return false
	}
	if a.LeasedAt == nil || b.LeasedAt == nil {
		return a.LeasedAt == nil && b.LeasedAt == nil
	}
	return a.LeasedAt.Equal(*b.LeasedAt)
}

func copiarLease(l entity.Lease) entity.Lease {
	if l.LeasedAt != nil {
		t := *l.LeasedAt
		l.LeasedAt = &t
	}
	return l
}

func copiarSolicitud(s *entity.Solicitud) *entity.Solicitud {
	c := *s
	c.Adjuntos = append([]entity.Adjunto(nil), s.Adjuntos...)
	if s.LeasedAt != nil {
		t := *s.LeasedAt
		c.LeasedAt = &t
	}
	return &c
}

func copiarOrden(o *entity.Orden) *entity.Orden {
	c := *o
	c.Cotizaciones = append([]string(nil), o.Cotizaciones...)
	if o.RutaPDF != nil {
		r := *o.RutaPDF
		c.RutaPDF = &r
	}
	return &c
}

func paginar[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
