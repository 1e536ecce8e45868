// Package catalog provides read-only access to the quest template pool.
// The engine only queries it; templates are never mutated after load.
package catalog

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/thad75/questday/internal/domain"
)

const (
	// filterCacheSize bounds the number of distinct filter combinations
	// kept hot. The combination space is small (granularity x category x
	// level band x month), so this rarely evicts.
	filterCacheSize = 128
	filterCacheTTL  = 5 * time.Minute
)

// Filter narrows a template listing. Zero values mean "no constraint".
type Filter struct {
	Granularity domain.Granularity
	Category    domain.Category
	MaxLevel    int        // include templates with LevelRequirement <= MaxLevel; 0 = no cap
	Month       time.Month // seasonal availability check; 0 = skip
}

func (f Filter) cacheKey() string {
	return fmt.Sprintf("%s|%s|%d|%d", f.Granularity, f.Category, f.MaxLevel, int(f.Month))
}

// Catalog is an indexed, immutable template collection with an LRU cache
// over filtered listings.
type Catalog struct {
	templates []domain.QuestTemplate
	byID      map[string]domain.QuestTemplate
	cache     *expirable.LRU[string, []domain.QuestTemplate]
}

// New builds a catalog from validated templates. Duplicate ids are rejected;
// template order is preserved so selection stays deterministic.
func New(templates []domain.QuestTemplate) (*Catalog, error) {
	byID := make(map[string]domain.QuestTemplate, len(templates))
	for _, t := range templates {
		if _, exists := byID[t.ID]; exists {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		byID[t.ID] = t
	}

	return &Catalog{
		templates: templates,
		byID:      byID,
		cache:     expirable.NewLRU[string, []domain.QuestTemplate](filterCacheSize, nil, filterCacheTTL),
	}, nil
}

// ListTemplates returns templates matching the filter, in catalog order.
// The returned slice is shared via the cache; callers must not mutate it.
func (c *Catalog) ListTemplates(f Filter) []domain.QuestTemplate {
	key := f.cacheKey()
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	var out []domain.QuestTemplate
	for _, t := range c.templates {
		if f.Granularity != "" && !t.AllowsGranularity(f.Granularity) {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.MaxLevel > 0 && t.LevelRequirement > f.MaxLevel {
			continue
		}
		if f.Month != 0 && !t.AvailableInMonth(f.Month) {
			continue
		}
		out = append(out, t)
	}

	c.cache.Add(key, out)
	return out
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (domain.QuestTemplate, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Len returns the total template count.
func (c *Catalog) Len() int {
	return len(c.templates)
}
