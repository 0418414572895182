package requirement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
)

// CatalogVersion identifies the loaded catalog set
type CatalogVersion struct {
	Version  string    `json:"version"`
	Checksum string    `json:"checksum"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Store holds the versioned requirement catalogs, one per framework.
// It is immutable after construction and safe for concurrent reads;
// no mutation operations are exposed.
type Store struct {
	catalogs  map[Framework][]*Requirement
	mandatory map[Framework][]*Requirement
	dimension int
	version   CatalogVersion
}

// NewStore validates and freezes the given catalogs. Every supported
// framework must have a non-empty catalog with unique requirement IDs and
// a uniform embedding dimension across all frameworks.
func NewStore(catalogs map[Framework][]*Requirement, version string) (*Store, error) {
	dimension := 0
	seen := make(map[string]struct{})
	hash := sha256.New()

	frozen := make(map[Framework][]*Requirement, len(catalogs))
	mandatory := make(map[Framework][]*Requirement, len(catalogs))

	for _, fw := range AllFrameworks() {
		reqs, ok := catalogs[fw]
		if !ok || len(reqs) == 0 {
			return nil, errors.ErrEmptyCatalog.WithDetails(map[string]interface{}{
				"framework": fw.String(),
			})
		}

		catalog := make([]*Requirement, len(reqs))
		for i, req := range reqs {
			if req == nil {
				return nil, fmt.Errorf("nil requirement at index %d of %s catalog", i, fw)
			}
			if req.Framework != fw {
				return nil, fmt.Errorf("requirement %s declares framework %s but sits in the %s catalog", req.ID, req.Framework, fw)
			}
			if _, dup := seen[req.ID]; dup {
				return nil, fmt.Errorf("duplicate requirement id %s", req.ID)
			}
			seen[req.ID] = struct{}{}

			if req.ReferenceEmbedding.IsZero() {
				return nil, fmt.Errorf("requirement %s has no reference embedding", req.ID)
			}
			if dimension == 0 {
				dimension = req.ReferenceEmbedding.Dimension()
			} else if req.ReferenceEmbedding.Dimension() != dimension {
				return nil, errors.ErrDimensionMismatch.WithDetails(map[string]interface{}{
					"requirement_id": req.ID,
					"expected":       dimension,
					"actual":         req.ReferenceEmbedding.Dimension(),
				})
			}

			clone := *req
			clone.CatalogIndex = i
			catalog[i] = &clone
			fmt.Fprintf(hash, "%s|%s|%t|%.4f\n", clone.ID, clone.Category, clone.Mandatory, clone.RiskWeight)

			if clone.Mandatory {
				mandatory[fw] = append(mandatory[fw], catalog[i])
			}
		}
		frozen[fw] = catalog
	}

	return &Store{
		catalogs:  frozen,
		mandatory: mandatory,
		dimension: dimension,
		version: CatalogVersion{
			Version:  version,
			Checksum: hex.EncodeToString(hash.Sum(nil))[:16],
			LoadedAt: time.Now().UTC(),
		},
	}, nil
}

// Requirements returns the catalog for a framework in catalog order
func (s *Store) Requirements(fw Framework) ([]*Requirement, error) {
	catalog, ok := s.catalogs[fw]
	if !ok {
		return nil, errors.ErrUnknownFramework.WithDetails(map[string]interface{}{
			"framework": fw.String(),
		})
	}
	return catalog, nil
}

// Mandatory returns only the mandatory requirements for a framework
func (s *Store) Mandatory(fw Framework) ([]*Requirement, error) {
	if _, ok := s.catalogs[fw]; !ok {
		return nil, errors.ErrUnknownFramework.WithDetails(map[string]interface{}{
			"framework": fw.String(),
		})
	}
	return s.mandatory[fw], nil
}

// Frameworks lists the loaded frameworks in canonical order
func (s *Store) Frameworks() []Framework {
	frameworks := make([]Framework, 0, len(s.catalogs))
	for fw := range s.catalogs {
		frameworks = append(frameworks, fw)
	}
	sort.Slice(frameworks, func(i, j int) bool { return frameworks[i] < frameworks[j] })
	return frameworks
}

// Dimension returns the embedding dimensionality of the catalog set
func (s *Store) Dimension() int {
	return s.dimension
}

// Version returns the catalog version descriptor
func (s *Store) Version() CatalogVersion {
	return s.version
}

// Count returns the total number of requirements across all catalogs
func (s *Store) Count() int {
	total := 0
	for _, catalog := range s.catalogs {
		total += len(catalog)
	}
	return total
}
