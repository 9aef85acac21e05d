package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// IDs del juego de catálogos que carga SembrarCatalogos.
const (
	MonedaCLP  int64 = 1
	MonedaUSD  int64 = 2
	TipoOrden  int64 = 1
	TipoSinIVA int64 = 2
	Plazo30    int64 = 1
)

// AgregarItem registra una fila en el catálogo cat.
func (s *MemStore) AgregarItem(cat entity.Catalogo, item entity.ItemCatalogo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[cat] == nil {
		s.items[cat] = map[int64]entity.ItemCatalogo{}
	}
	s.items[cat][item.ID] = item
}

// AgregarPlazo registra un plazo de pago.
func (s *MemStore) AgregarPlazo(p entity.PlazoPago) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plazos[p.ID] = p
	if s.items[entity.CatalogoPlazosPago] == nil {
		s.items[entity.CatalogoPlazosPago] = map[int64]entity.ItemCatalogo{}
	}
	s.items[entity.CatalogoPlazosPago][p.ID] = entity.ItemCatalogo{ID: p.ID, Nombre: p.Descripcion, Activo: p.Activo}
}

// AgregarMoneda registra una moneda.
func (s *MemStore) AgregarMoneda(m entity.Moneda) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monedas[m.ID] = m
	if s.items[entity.CatalogoMonedas] == nil {
		s.items[entity.CatalogoMonedas] = map[int64]entity.ItemCatalogo{}
	}
	s.items[entity.CatalogoMonedas][m.ID] = entity.ItemCatalogo{ID: m.ID, Nombre: m.Codigo, Activo: m.Activa}
}

// AgregarRegla asocia una regla de tarifa a su tipo de orden.
func (s *MemStore) AgregarRegla(r entity.ReglaTarifa) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reglas[r.TipoOrdenID] = append(s.reglas[r.TipoOrdenID], r)
}

// SembrarCatalogos carga un juego mínimo de referencias, todas con ID 1:
// CLP local sin decimales, USD a 950.37 con 2 decimales, plazo de 30 días,
// productos 1 y 2, y para el tipo de orden 1 las reglas IVA 16 %, retención 5 % y propina fija 50.
func (s *MemStore) SembrarCatalogos() {
	for _, cat := range []entity.Catalogo{
		entity.CatalogoProveedores, entity.CatalogoBancos, entity.CatalogoEmpresas,
		entity.CatalogoCentrosCosto, entity.CatalogoCuentas, entity.CatalogoCategorias,
	} {
		s.AgregarItem(cat, entity.ItemCatalogo{ID: 1, Nombre: string(cat) + " uno", Activo: true})
	}
	s.AgregarItem(entity.CatalogoTiposOrden, entity.ItemCatalogo{ID: TipoOrden, Nombre: "Compra nacional", Activo: true})
	s.AgregarItem(entity.CatalogoTiposOrden, entity.ItemCatalogo{ID: TipoSinIVA, Nombre: "Servicios exentos", Activo: true})
	s.AgregarItem(entity.CatalogoProductos, entity.ItemCatalogo{ID: 1, Nombre: "Resma carta", Activo: true})
	s.AgregarItem(entity.CatalogoProductos, entity.ItemCatalogo{ID: 2, Nombre: "Tóner negro", Activo: true})
	s.AgregarPlazo(entity.PlazoPago{ID: Plazo30, Descripcion: "30 días", Dias: 30, Activo: true})
	s.AgregarMoneda(entity.Moneda{
		ID: MonedaCLP, Codigo: "CLP", Nombre: "Peso chileno", Simbolo: "$",
		Decimales: 0, EsLocal: true, TipoCambio: decimal.NewFromInt(1), Activa: true,
	})
	s.AgregarMoneda(entity.Moneda{
		ID: MonedaUSD, Codigo: "USD", Nombre: "Dólar", Simbolo: "US$",
		Decimales: 2, TipoCambio: decimal.RequireFromString("950.37"), Activa: true,
	})
	s.AgregarRegla(entity.ReglaTarifa{ID: 1, TipoOrdenID: TipoOrden, Nombre: entity.ReglaImpuesto, NombreOriginal: "IVA",
		Clase: entity.ClasePorcentaje, Magnitud: decimal.NewFromInt(16), Activa: true})
	s.AgregarRegla(entity.ReglaTarifa{ID: 2, TipoOrdenID: TipoOrden, Nombre: entity.ReglaRetencion, NombreOriginal: "Retención",
		Clase: entity.ClasePorcentaje, Magnitud: decimal.NewFromInt(5), Activa: true})
	s.AgregarRegla(entity.ReglaTarifa{ID: 3, TipoOrdenID: TipoOrden, Nombre: entity.ReglaPropina, NombreOriginal: "Propina",
		Clase: entity.ClaseFijo, Magnitud: decimal.NewFromInt(50), Activa: true})
}

// NuevaSolicitud inserta una solicitud abierta y devuelve su ID.
func (s *MemStore) NuevaSolicitud(asunto, solicitante string, creada time.Time) int64 {
	sol := &entity.Solicitud{
		Asunto:             asunto,
		Descripcion:        "descripción de " + asunto,
		UsuarioSolicitante: solicitante,
		Estado:             entity.EstadoAbierta,
		CreatedAt:          creada,
		UpdatedAt:          creada,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqSolicitud++
	sol.ID = s.seqSolicitud
	s.solicitudes[sol.ID] = sol
	return sol.ID
}

// FijarLease sobrescribe el lease de la solicitud id sin condiciones.
func (s *MemStore) FijarLease(id int64, l entity.Lease) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sol, ok := s.solicitudes[id]; ok {
		sol.AplicarLease(copiarLease(l))
	}
}

// QuitarMonedaLocal desmarca la moneda local, si la hay.
func (s *MemStore) QuitarMonedaLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.monedas {
		m.EsLocal = false
		s.monedas[id] = m
	}
}
