// Package catalog loads the level and path catalogs from YAML. A built-in
// default is embedded for installs without a catalog file.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/rapport/internal/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog bundles the two immutable catalogs the engine reads.
type Catalog struct {
	Levels *domain.LevelCatalog
	Paths  *domain.PathCatalog
}

type catalogFile struct {
	Levels []levelEntry `yaml:"levels" validate:"required,min=1,dive"`
	Paths  []pathEntry  `yaml:"paths" validate:"dive"`
}

type levelEntry struct {
	Level       int    `yaml:"level" validate:"required,min=1"`
	Label       string `yaml:"label" validate:"required"`
	Icon        string `yaml:"icon" validate:"required"`
	Description string `yaml:"description"`
}

type pathEntry struct {
	ID          string      `yaml:"id" validate:"required"`
	Tier        int         `yaml:"tier" validate:"required,min=1"`
	Name        string      `yaml:"name" validate:"required"`
	Description string      `yaml:"description"`
	Steps       []stepEntry `yaml:"steps" validate:"required,min=1,dive"`
}

type stepEntry struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

var validate = validator.New()

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		logger.Debug("using embedded catalog")
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	logger.Info("catalog loaded", "path", path,
		"levels", len(c.Levels.Levels()), "max_level", c.Levels.Max())
	return c, nil
}

// Parse decodes and validates a YAML catalog. Icon names are resolved here,
// so an unknown icon fails the whole catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", describeValidation(err))
	}

	levels := make([]domain.Level, 0, len(f.Levels))
	for _, l := range f.Levels {
		icon, err := domain.ParseIcon(l.Icon)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", l.Level, err)
		}
		levels = append(levels, domain.Level{
			Level:       l.Level,
			Label:       l.Label,
			Icon:        icon,
			Description: strings.TrimSpace(l.Description),
		})
	}
	levelCatalog, err := domain.NewLevelCatalog(levels)
	if err != nil {
		return nil, err
	}

	paths := make([]domain.Path, 0, len(f.Paths))
	for _, p := range f.Paths {
		steps := make([]domain.Step, len(p.Steps))
		for i, s := range p.Steps {
			steps[i] = domain.Step{ID: s.ID, Name: s.Name, Index: i}
		}
		paths = append(paths, domain.Path{
			ID:          p.ID,
			Tier:        p.Tier,
			Name:        p.Name,
			Description: strings.TrimSpace(p.Description),
			Steps:       steps,
		})
	}
	pathCatalog, err := domain.NewPathCatalog(paths, levelCatalog)
	if err != nil {
		return nil, err
	}

	return &Catalog{Levels: levelCatalog, Paths: pathCatalog}, nil
}

// describeValidation flattens validator errors into one readable message.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
