package web

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
	"github.com/JonMunkholm/virex/internal/store"
)

// memStore is an in-memory core.Store keyed by table, then part number.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[string]map[string]int64
	downloads []store.Download
	audit     []store.AuditRecord
	lastQuery store.ProductFilter
}

func newMemStore() *memStore {
	return &memStore{nextID: 100, rows: map[string]map[string]int64{}}
}

func (m *memStore) LoadReferences(context.Context) (importer.References, error) {
	return importer.References{
		Makers:     []importer.Reference{{ID: 1, Name: "Basler"}},
		Categories: []importer.Reference{{ID: 4, Name: "CIS"}, {ID: 9, Name: "Area Scan"}},
	}, nil
}

func (m *memStore) CreateSeries(context.Context, string, *int64, *int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

func (m *memStore) existing(table string, partNumbers []string) []importer.ExistingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []importer.ExistingRecord
	for _, pn := range partNumbers {
		if id, ok := m.rows[table][pn]; ok {
			out = append(out, importer.ExistingRecord{ID: id, PartNumber: pn, Specifications: map[string]any{}})
		}
	}
	return out
}

func (m *memStore) insert(table, partNumber string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[table] == nil {
		m.rows[table] = map[string]int64{}
	}
	m.nextID++
	m.rows[table][partNumber] = m.nextID
	return m.nextID, nil
}

func (m *memStore) count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[table])
}

func (m *memStore) ExistingProducts(_ context.Context, pns []string) ([]importer.ExistingRecord, error) {
	return m.existing("products", pns), nil
}

func (m *memStore) InsertProduct(_ context.Context, pn string, _ map[string]any) (int64, error) {
	return m.insert("products", pn)
}

func (m *memStore) UpdateProduct(context.Context, int64, map[string]any) error { return nil }

func (m *memStore) AttachDefaultImage(context.Context, int64, int64) error { return nil }

func (m *memStore) ExistingCategoryProducts(_ context.Context, t catalog.CategoryTable, pns []string) ([]importer.ExistingRecord, error) {
	return m.existing(t.Table, pns), nil
}

func (m *memStore) InsertCategoryProduct(_ context.Context, t catalog.CategoryTable, pn string, _ map[string]any) (int64, error) {
	return m.insert(t.Table, pn)
}

func (m *memStore) UpdateCategoryProduct(context.Context, catalog.CategoryTable, int64, map[string]any) error {
	return nil
}

func (m *memStore) GetCategory(_ context.Context, id int64) (store.Category, error) {
	switch id {
	case 4:
		return store.Category{ID: 4, Name: "CIS", Slug: "cis"}, nil
	case 9:
		return store.Category{ID: 9, Name: "Area Scan", Slug: "area-scan"}, nil
	}
	return store.Category{}, store.ErrNotFound
}

func (m *memStore) ListCategories(context.Context) ([]store.Category, error) {
	return []store.Category{{ID: 4, Name: "CIS", Slug: "cis"}, {ID: 9, Name: "Area Scan", Slug: "area-scan"}}, nil
}

func (m *memStore) SearchProducts(_ context.Context, f store.ProductFilter) (*store.ProductPage, error) {
	m.mu.Lock()
	m.lastQuery = f
	m.mu.Unlock()
	return &store.ProductPage{Products: []store.Product{{ID: 1, PartNumber: "ABC-100"}}, TotalRows: 1, Page: f.Page, PageSize: f.PageSize, TotalPages: 1}, nil
}

func (m *memStore) GetProduct(_ context.Context, pn string) (store.Product, error) {
	if pn == "ABC-100" {
		return store.Product{ID: 1, PartNumber: pn}, nil
	}
	return store.Product{}, store.ErrNotFound
}

func (m *memStore) InsertDownload(_ context.Context, d store.Download) (store.Download, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d.ID = m.nextID
	m.downloads = append(m.downloads, d)
	return d, nil
}

func (m *memStore) ListDownloads(context.Context) ([]store.Download, error) {
	return m.downloads, nil
}

func (m *memStore) InsertAudit(_ context.Context, rec store.AuditRecord) (store.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, rec)
	return rec, nil
}

func (m *memStore) ListAudit(context.Context, int) ([]store.AuditRecord, error) {
	return m.audit, nil
}

func (m *memStore) PurgeAuditBefore(context.Context, time.Time) (int64, error) { return 0, nil }

// memObjects is an in-memory core.ObjectStore.
type memObjects struct {
	mu   sync.Mutex
	keys []string
}

func (o *memObjects) Put(_ context.Context, key string, _ []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.keys = append(o.keys, key)
	return nil
}

func (o *memObjects) URL(key string) string { return "https://files.example.com/" + key }
