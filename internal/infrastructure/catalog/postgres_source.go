package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// PgxPool is the slice of pgxpool.Pool the catalog reader needs
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource loads requirement catalogs from a relational table,
// one row per requirement. Row order within a framework follows the
// position column so catalog tie-breaking matches the published order.
type PostgresSource struct {
	pool   PgxPool
	table  string
	logger *zap.Logger
}

// NewPostgresSource creates a PostgresSource reading the given table
func NewPostgresSource(pool PgxPool, table string, logger *zap.Logger) *PostgresSource {
	if table == "" {
		table = "requirements"
	}
	return &PostgresSource{pool: pool, table: table, logger: logger}
}

// Load implements Source
func (s *PostgresSource) Load(ctx context.Context) (map[requirement.Framework][]*requirement.Requirement, string, error) {
	query := fmt.Sprintf(`
		SELECT id, framework, text, category, accepted_types, keywords,
		       mandatory, risk_weight, embedding, version
		FROM %s
		ORDER BY framework, position
	`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, "", fmt.Errorf("querying requirement catalogs: %w", err)
	}
	defer rows.Close()

	catalogs := make(map[requirement.Framework][]*requirement.Requirement)
	versionSet := make(map[string]struct{})

	for rows.Next() {
		var (
			id, frameworkLabel, text, category, version string
			acceptedTypes, keywords                     []string
			mandatory                                   bool
			riskWeight                                  float64
			vector                                      []float64
		)
		if err := rows.Scan(&id, &frameworkLabel, &text, &category, &acceptedTypes, &keywords,
			&mandatory, &riskWeight, &vector, &version); err != nil {
			return nil, "", fmt.Errorf("scanning requirement row: %w", err)
		}

		fw, err := requirement.ParseFramework(frameworkLabel)
		if err != nil {
			return nil, "", fmt.Errorf("requirement %q: %w", id, err)
		}

		embedding, err := values.NewEmbedding(vector)
		if err != nil {
			return nil, "", fmt.Errorf("requirement %q: %w", id, err)
		}

		req, err := requirement.New(id, fw, text, category, mandatory, embedding, riskWeight)
		if err != nil {
			return nil, "", fmt.Errorf("requirement %q: %w", id, err)
		}
		req.AcceptedTypes = acceptedTypes
		req.Keywords = keywords

		catalogs[fw] = append(catalogs[fw], req)
		versionSet[fmt.Sprintf("%s:%s", fw, version)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("reading requirement rows: %w", err)
	}

	versions := make([]string, 0, len(versionSet))
	for v := range versionSet {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	s.logger.Debug("requirement catalogs fetched",
		zap.String("table", s.table),
		zap.Int("frameworks", len(catalogs)),
	)
	return catalogs, strings.Join(versions, ","), nil
}
