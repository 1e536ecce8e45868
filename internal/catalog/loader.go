package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/thad75/questday/internal/domain"
)

// Loader reads and validates the quest template pool from JSON config.
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a loader with struct-tag validation wired up.
func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// Load reads the pool file at path and returns a ready catalog.
func (l *Loader) Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template pool %s: %w", path, err)
	}
	return l.LoadBytes(data)
}

// LoadBytes parses and validates raw pool config bytes.
func (l *Loader) LoadBytes(data []byte) (*Catalog, error) {
	var cfg domain.QuestPoolConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse template pool: %w", err)
	}

	if err := l.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("template pool failed validation: %w", err)
	}

	for _, t := range cfg.Templates {
		if err := validateTemplate(t); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
	}

	return New(cfg.Templates)
}

// validateTemplate covers the cross-field rules struct tags cannot express.
func validateTemplate(t domain.QuestTemplate) error {
	if !t.Category.Valid() {
		return fmt.Errorf("unknown category %q", t.Category)
	}
	for _, g := range t.AllowedGranularities {
		if !g.Valid() {
			return fmt.Errorf("unknown granularity %q", g)
		}
	}
	for _, m := range t.SeasonalAvailability {
		if m < 1 || m > 12 {
			return fmt.Errorf("seasonal month %d out of range", m)
		}
	}
	for i, v := range t.Variations {
		if v.XPModifier < 0 {
			return fmt.Errorf("variation %d has negative xp modifier", i)
		}
	}
	if t.EventWindow != nil && !t.EventWindow.End.After(t.EventWindow.Start) {
		return fmt.Errorf("event window end must be after start")
	}
	if err := validateMarkers(t); err != nil {
		return err
	}
	return nil
}

var markerPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// validateMarkers checks that every {{name}} marker in quest text is a
// declared personalized field, so materialization never ships raw markers.
func validateMarkers(t domain.QuestTemplate) error {
	declared := make(map[string]struct{}, len(t.PersonalizedFields))
	for _, f := range t.PersonalizedFields {
		declared[f] = struct{}{}
	}

	texts := []string{t.Title, t.Description}
	for _, v := range t.Variations {
		texts = append(texts, v.Title, v.Description)
	}

	for _, text := range texts {
		for _, m := range markerPattern.FindAllStringSubmatch(text, -1) {
			if _, ok := declared[m[1]]; !ok {
				return fmt.Errorf("marker {{%s}} is not a declared personalized field", m[1])
			}
		}
	}
	return nil
}
