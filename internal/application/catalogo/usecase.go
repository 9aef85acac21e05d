package catalogo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/validacion"
	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
	"github.com/jhoicas/ordenes-api/internal/domain/repository"
)

// Cache puerto de caché clave/valor con expiración.
type Cache interface {
	// Get devuelve (nil, false, nil) si la clave no existe.
	Get(ctx context.Context, clave string) ([]byte, bool, error)
	Set(ctx context.Context, clave string, valor []byte, ttl time.Duration) error
	Delete(ctx context.Context, clave string) error
}

// NoopCache caché que nunca guarda nada.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, string) error                     { return nil }

// CatalogoUseCase listados de tablas de referencia para los formularios.
type CatalogoUseCase struct {
	repo  repository.CatalogoRepository
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCatalogoUseCase construye el caso de uso; cache nil desactiva la caché.
func NewCatalogoUseCase(repo repository.CatalogoRepository, cache Cache, ttl time.Duration, log zerolog.Logger) *CatalogoUseCase {
	if cache == nil {
		cache = NoopCache{}
	}
	return &CatalogoUseCase{repo: repo, cache: cache, ttl: ttl, log: log}
}

// Listar devuelve los registros activos del catálogo tipo.
// Un fallo de la caché no corta la consulta: se degrada a leer de la base.
func (uc *CatalogoUseCase) Listar(ctx context.Context, tipo string) (*dto.CatalogoResponse, error) {
	cat := entity.Catalogo(tipo)
	if !cat.Valido() {
		return nil, domain.NewValidationError("tipo", fmt.Sprintf("catálogo desconocido: %q", tipo))
	}

	clave := claveCatalogo(cat)
	if raw, ok, err := uc.cache.Get(ctx, clave); err != nil {
		uc.log.Warn().Err(err).Str("catalogo", tipo).Msg("caché de catálogos no disponible")
	} else if ok {
		var out dto.CatalogoResponse
		if err := json.Unmarshal(raw, &out); err == nil {
			return &out, nil
		}
	}

	items, err := uc.repo.Listar(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("listar catálogo %s: %w", tipo, err)
	}
	out := &dto.CatalogoResponse{Tipo: tipo, Items: make([]dto.ItemCatalogoDTO, 0, len(items))}
	for _, it := range items {
		if !it.Activo {
			continue
		}
		out.Items = append(out.Items, dto.ItemCatalogoDTO{ID: it.ID, Nombre: it.Nombre})
	}

	if uc.ttl > 0 {
		if raw, err := json.Marshal(out); err == nil {
			if err := uc.cache.Set(ctx, clave, raw, uc.ttl); err != nil {
				uc.log.Warn().Err(err).Str("catalogo", tipo).Msg("no se pudo cachear el catálogo")
			}
		}
	}
	return out, nil
}

// Crear agrega una fila a un catálogo administrable e invalida su listado en caché.
func (uc *CatalogoUseCase) Crear(ctx context.Context, tipo string, in dto.GuardarItemCatalogoRequest) (*dto.ItemCatalogoGuardadoResponse, error) {
	cat, err := administrable(tipo)
	if err != nil {
		return nil, err
	}
	in.Nombre = strings.TrimSpace(in.Nombre)
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	item := entity.ItemCatalogo{Nombre: in.Nombre, Activo: in.Activo == nil || *in.Activo}
	if err := uc.repo.CrearItem(ctx, cat, &item); err != nil {
		return nil, fmt.Errorf("crear en catálogo %s: %w", tipo, err)
	}
	uc.invalidar(ctx, cat)
	uc.log.Info().Str("catalogo", tipo).Int64("id", item.ID).Msg("registro de catálogo creado")
	return &dto.ItemCatalogoGuardadoResponse{ID: item.ID, Nombre: item.Nombre, Activo: item.Activo}, nil
}

// Actualizar renombra o activa/desactiva una fila. Activo omitido conserva el valor actual.
func (uc *CatalogoUseCase) Actualizar(ctx context.Context, tipo string, id int64, in dto.GuardarItemCatalogoRequest) (*dto.ItemCatalogoGuardadoResponse, error) {
	cat, err := administrable(tipo)
	if err != nil {
		return nil, err
	}
	in.Nombre = strings.TrimSpace(in.Nombre)
	if err := validacion.Struct(in); err != nil {
		return nil, err
	}
	actual, err := uc.repo.ObtenerItem(ctx, cat, id)
	if err != nil {
		return nil, fmt.Errorf("obtener de catálogo %s: %w", tipo, err)
	}
	if actual == nil {
		return nil, domain.ErrNotFound
	}
	item := entity.ItemCatalogo{ID: id, Nombre: in.Nombre, Activo: actual.Activo}
	if in.Activo != nil {
		item.Activo = *in.Activo
	}
	ok, err := uc.repo.ActualizarItem(ctx, cat, item)
	if err != nil {
		return nil, fmt.Errorf("actualizar catálogo %s: %w", tipo, err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	uc.invalidar(ctx, cat)
	uc.log.Info().Str("catalogo", tipo).Int64("id", id).Bool("activo", item.Activo).Msg("registro de catálogo actualizado")
	return &dto.ItemCatalogoGuardadoResponse{ID: item.ID, Nombre: item.Nombre, Activo: item.Activo}, nil
}

// invalidar borra el listado cacheado; si la caché falla, el TTL acota cuánto dura el listado viejo.
func (uc *CatalogoUseCase) invalidar(ctx context.Context, cat entity.Catalogo) {
	if err := uc.cache.Delete(ctx, claveCatalogo(cat)); err != nil {
		uc.log.Warn().Err(err).Str("catalogo", string(cat)).Msg("no se pudo invalidar la caché del catálogo")
	}
}

func administrable(tipo string) (entity.Catalogo, error) {
	cat := entity.Catalogo(tipo)
	if !cat.Valido() {
		return "", domain.NewValidationError("tipo", fmt.Sprintf("catálogo desconocido: %q", tipo))
	}
	if !cat.Administrable() {
		return "", domain.NewValidationError("tipo", fmt.Sprintf("el catálogo %q no se administra por la API", tipo))
	}
	return cat, nil
}

func claveCatalogo(cat entity.Catalogo) string {
	return "catalogo:" + string(cat)
}
