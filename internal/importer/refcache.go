package importer

import (
	"context"
	"fmt"
	"strings"
)

// Reference is one row of a name lookup table.
type Reference struct {
	ID   int64
	Name string
}

// References is the wholesale snapshot of the lookup tables for one import.
type References struct {
	Makers     []Reference
	Series     []Reference
	Categories []Reference
}

// SeriesCreator persists a series that the file names but the store lacks.
type SeriesCreator interface {
	CreateSeries(ctx context.Context, name string, categoryID, makerID *int64) (int64, error)
}

// ReferenceCache maps maker, series and category names to ids for a single
// import. Lookups are case-insensitive. It is not safe for concurrent use;
// each import builds its own.
type ReferenceCache struct {
	makers     map[string]int64
	series     map[string]int64
	categories map[string]int64
	creator    SeriesCreator
	created    []Reference
}

// NewReferenceCache builds a cache from a snapshot. creator may be nil, in
// which case unknown series names stay unresolved.
func NewReferenceCache(refs References, creator SeriesCreator) *ReferenceCache {
	return &ReferenceCache{
		makers:     index(refs.Makers),
		series:     index(refs.Series),
		categories: index(refs.Categories),
		creator:    creator,
	}
}

func index(refs []Reference) map[string]int64 {
	m := make(map[string]int64, len(refs))
	for _, r := range refs {
		m[normalizeName(r.Name)] = r.ID
	}
	return m
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MakerID looks up a maker by name.
func (c *ReferenceCache) MakerID(name string) (int64, bool) {
	id, ok := c.makers[normalizeName(name)]
	return id, ok
}

// CategoryID looks up a category by name.
func (c *ReferenceCache) CategoryID(name string) (int64, bool) {
	id, ok := c.categories[normalizeName(name)]
	return id, ok
}

// SeriesID looks up a series by name without creating it.
func (c *ReferenceCache) SeriesID(name string) (int64, bool) {
	id, ok := c.series[normalizeName(name)]
	return id, ok
}

// ResolveSeries returns the id for a series name, creating the series when the
// cache does not know it. A created series is added to the cache so later rows
// reuse it. Created series are never rolled back.
func (c *ReferenceCache) ResolveSeries(ctx context.Context, name string, categoryID, makerID *int64) (int64, error) {
	key := normalizeName(name)
	if key == "" {
		return 0, fmt.Errorf("empty series name")
	}
	if id, ok := c.series[key]; ok {
		return id, nil
	}
	if c.creator == nil {
		return 0, fmt.Errorf("unknown series %q", strings.TrimSpace(name))
	}

	id, err := c.creator.CreateSeries(ctx, strings.TrimSpace(name), categoryID, makerID)
	if err != nil {
		return 0, fmt.Errorf("create series %q: %w", strings.TrimSpace(name), err)
	}
	c.series[key] = id
	c.created = append(c.created, Reference{ID: id, Name: strings.TrimSpace(name)})
	return id, nil
}

// Created returns the series this cache created, in creation order.
func (c *ReferenceCache) Created() []Reference {
	out := make([]Reference, len(c.created))
	copy(out, c.created)
	return out
}
