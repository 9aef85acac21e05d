// Package cache implementa la caché de catálogos sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/ordenes-api/internal/application/catalogo"
	"github.com/jhoicas/ordenes-api/pkg/config"
)

var _ catalogo.Cache = (*RedisCache)(nil)

const prefijo = "ordenes-api:"

// RedisCache caché clave/valor con expiración; todas las claves llevan el prefijo de la aplicación.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache conecta y verifica con PING.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: conectar %s: %w", cfg.Addr, err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCacheWithClient usa un cliente existente.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get devuelve (nil, false, nil) si la clave no existe.
func (c *RedisCache) Get(ctx context.Context, clave string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, prefijo+clave).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get %s: %w", clave, err)
	}
	return raw, true, nil
}

// Set guarda valor con expiración ttl.
func (c *RedisCache) Set(ctx context.Context, clave string, valor []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, prefijo+clave, valor, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", clave, err)
	}
	return nil
}

// Delete borra la clave; no existir no es error.
func (c *RedisCache) Delete(ctx context.Context, clave string) error {
	if err := c.client.Del(ctx, prefijo+clave).Err(); err != nil {
		return fmt.Errorf("redis: del %s: %w", clave, err)
	}
	return nil
}

// Ping verifica la conexión (health check).
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
