package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/infrastructure/config"
)

// Source yields the per-framework requirement catalogs and the catalog
// version label they were published under.
type Source interface {
	Load(ctx context.Context) (map[requirement.Framework][]*requirement.Requirement, string, error)
}

// BuildStore loads every framework catalog from the source and validates
// the set into an immutable store. Validation failures (missing
// frameworks, duplicate IDs, mixed embedding dimensions) abort startup.
func BuildStore(ctx context.Context, logger *zap.Logger, src Source) (*requirement.Store, error) {
	catalogs, version, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading requirement catalogs: %w", err)
	}

	store, err := requirement.NewStore(catalogs, version)
	if err != nil {
		return nil, fmt.Errorf("validating requirement catalogs: %w", err)
	}

	logger.Info("requirement catalogs loaded",
		zap.String("version", store.Version().Version),
		zap.String("checksum", store.Version().Checksum),
		zap.Int("requirements", store.Count()),
		zap.Int("dimension", store.Dimension()),
	)
	return store, nil
}

// NewSource picks the catalog source the configuration asks for. The
// postgres source needs a live pool; pass nil for the yaml source.
func NewSource(cfg config.CatalogConfig, pool PgxPool, logger *zap.Logger) (Source, error) {
	switch cfg.Source {
	case "yaml":
		return NewYAMLSource(cfg.Dir, logger), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("postgres catalog source requires a database pool")
		}
		return NewPostgresSource(pool, cfg.Table, logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
