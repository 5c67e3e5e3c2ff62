// Package cache caché de lectura de disponibilidad sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ stock.LevelCache = (*RedisLevelCache)(nil)

const keyPrefix = "stock-ledger:level:"

// generationTTL debe superar con holgura el TTL de las entradas: si el contador expira
// vuelve a 0 y solo puede reencontrar entradas de esa generación ya vencidas.
const generationTTL = 24 * time.Hour

// RedisLevelCache guarda filas del ledger con TTL corto bajo la generación vigente de cada clave.
// Los fallos de Redis se registran y se tratan como miss: la base de datos sigue siendo la fuente de verdad.
type RedisLevelCache struct {
	rdb redis.Cmdable
	ttl time.Duration
	log *logger.Logger
}

// NewClient abre el cliente y comprueba la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedisLevelCache construye la caché; ttl <= 0 usa 30s.
func NewRedisLevelCache(rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *RedisLevelCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLevelCache{rdb: rdb, ttl: ttl, log: log.Component("level_cache")}
}

type cachedLevel struct {
	ProductID        string          `json:"product_id"`
	LocationID       string          `json:"location_id"`
	LotID            string          `json:"lot_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func levelKey(companyID string, key entity.StockKey) string {
	return keyPrefix + companyID + ":" + key.ProductID + ":" + key.LocationID + ":" + key.LotID
}

func generationKey(companyID string, key entity.StockKey) string {
	return levelKey(companyID, key) + "#gen"
}

func entryKey(companyID string, key entity.StockKey, generation int64) string {
	return levelKey(companyID, key) + "#" + strconv.FormatInt(generation, 10)
}

func encodeLevel(l *entity.StockLevel) ([]byte, error) {
	return json.Marshal(cachedLevel{
		ProductID:        l.ProductID,
		LocationID:       l.LocationID,
		LotID:            l.LotID,
		Quantity:         l.Quantity,
		ReservedQuantity: l.ReservedQuantity,
		UpdatedAt:        l.UpdatedAt,
	})
}

func decodeLevel(companyID string, raw []byte) (*entity.StockLevel, error) {
	var c cachedLevel
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &entity.StockLevel{
		CompanyID:        companyID,
		StockKey:         entity.StockKey{ProductID: c.ProductID, LocationID: c.LocationID, LotID: c.LotID},
		Quantity:         c.Quantity,
		ReservedQuantity: c.ReservedQuantity,
		UpdatedAt:        c.UpdatedAt,
	}, nil
}

// Get lee la generación de la clave y la entrada guardada bajo ella. Con Redis caído
// devuelve generación -1 y Set no escribe.
func (c *RedisLevelCache) Get(ctx context.Context, companyID string, key entity.StockKey) (*entity.StockLevel, int64, bool) {
	gen, err := c.rdb.Get(ctx, generationKey(companyID, key)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		gen = 0
	case err != nil:
		c.log.Warn().Err(err).Str("key", key.String()).Msg("lectura de generación fallida")
		return nil, -1, false
	}
	raw, err := c.rdb.Get(ctx, entryKey(companyID, key, gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key.String()).Msg("lectura de caché fallida")
		}
		return nil, gen, false
	}
	lvl, err := decodeLevel(companyID, raw)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key.String()).Msg("entrada de caché inválida")
		return nil, gen, false
	}
	return lvl, gen, true
}

func (c *RedisLevelCache) Set(ctx context.Context, level *entity.StockLevel, generation int64) {
	if generation < 0 {
		return
	}
	raw, err := encodeLevel(level)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, entryKey(level.CompanyID, level.StockKey, generation), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", level.StockKey.String()).Msg("escritura de caché fallida")
	}
}

// Invalidate avanza la generación de las claves tocadas por una transacción confirmada.
func (c *RedisLevelCache) Invalidate(ctx context.Context, companyID string, keys ...entity.StockKey) {
	if len(keys) == 0 {
		return
	}
	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			name := generationKey(companyID, k)
			pipe.Incr(ctx, name)
			pipe.Expire(ctx, name, generationTTL)
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Int("keys", len(keys)).Msg("invalidación de caché fallida")
	}
}
