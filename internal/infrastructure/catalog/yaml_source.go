package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/requirement"
	"github.com/clauseguard/compliance-engine-backend/internal/domain/values"
)

// YAMLSource loads one catalog bundle per framework from a directory of
// YAML files. File order inside a bundle fixes the catalog order used
// for deterministic tie-breaking.
type YAMLSource struct {
	dir    string
	logger *zap.Logger
}

// NewYAMLSource creates a YAMLSource reading *.yaml and *.yml bundles
func NewYAMLSource(dir string, logger *zap.Logger) *YAMLSource {
	return &YAMLSource{dir: dir, logger: logger}
}

type bundleFile struct {
	Framework    string              `yaml:"framework"`
	Version      string              `yaml:"version"`
	Requirements []bundleRequirement `yaml:"requirements"`
}

type bundleRequirement struct {
	ID            string    `yaml:"id"`
	Text          string    `yaml:"text"`
	Category      string    `yaml:"category"`
	AcceptedTypes []string  `yaml:"accepted_types"`
	Keywords      []string  `yaml:"keywords"`
	Mandatory     *bool     `yaml:"mandatory"`
	RiskWeight    *float64  `yaml:"risk_weight"`
	Embedding     []float64 `yaml:"embedding"`
}

// Load implements Source
func (s *YAMLSource) Load(ctx context.Context) (map[requirement.Framework][]*requirement.Requirement, string, error) {
	paths, err := bundlePaths(s.dir)
	if err != nil {
		return nil, "", err
	}
	if len(paths) == 0 {
		return nil, "", fmt.Errorf("no catalog bundles found in %s", s.dir)
	}

	catalogs := make(map[requirement.Framework][]*requirement.Requirement)
	versions := make([]string, 0, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		bundle, err := readBundle(path)
		if err != nil {
			return nil, "", err
		}

		fw, err := requirement.ParseFramework(bundle.Framework)
		if err != nil {
			return nil, "", fmt.Errorf("bundle %s: %w", path, err)
		}
		if _, dup := catalogs[fw]; dup {
			return nil, "", fmt.Errorf("bundle %s: framework %s already loaded", path, fw)
		}

		reqs, err := buildRequirements(fw, bundle.Requirements)
		if err != nil {
			return nil, "", fmt.Errorf("bundle %s: %w", path, err)
		}
		catalogs[fw] = reqs

		version := bundle.Version
		if version == "" {
			version = "dev"
		}
		versions = append(versions, fmt.Sprintf("%s:%s", fw, version))

		s.logger.Debug("catalog bundle loaded",
			zap.String("path", path),
			zap.String("framework", fw.String()),
			zap.Int("requirements", len(reqs)),
		)
	}

	sort.Strings(versions)
	return catalogs, strings.Join(versions, ","), nil
}

func bundlePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func readBundle(path string) (*bundleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle %s: %w", path, err)
	}

	var bundle bundleFile
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing bundle %s: %w", path, err)
	}
	return &bundle, nil
}

func buildRequirements(fw requirement.Framework, entries []bundleRequirement) ([]*requirement.Requirement, error) {
	reqs := make([]*requirement.Requirement, 0, len(entries))
	for i, entry := range entries {
		embedding, err := values.NewEmbedding(entry.Embedding)
		if err != nil {
			return nil, fmt.Errorf("requirement %q: %w", entry.ID, err)
		}

		mandatory := true
		if entry.Mandatory != nil {
			mandatory = *entry.Mandatory
		}
		riskWeight := 1.0
		if entry.RiskWeight != nil {
			riskWeight = *entry.RiskWeight
		}

		req, err := requirement.New(entry.ID, fw, entry.Text, entry.Category, mandatory, embedding, riskWeight)
		if err != nil {
			return nil, fmt.Errorf("requirement %d (%q): %w", i, entry.ID, err)
		}
		req.AcceptedTypes = entry.AcceptedTypes
		req.Keywords = entry.Keywords
		reqs = append(reqs, req)
	}
	return reqs, nil
}
