package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/virex/internal/catalog"
	"github.com/JonMunkholm/virex/internal/importer"
	"github.com/JonMunkholm/virex/internal/store"
)

// fakeStore is an in-memory Store. Products are keyed by table name, then
// part number.
type fakeStore struct {
	mu sync.Mutex

	refs       importer.References
	categories map[int64]store.Category
	products   map[string]map[string]*fakeProduct
	nextID     int64

	series    []string
	images    []int64
	downloads []store.Download
	audit     []store.AuditRecord
	purgedAt  time.Time

	failInsert map[string]error // part number -> error
	failImage  error
	failRefs   error
}

type fakeProduct struct {
	id   int64
	data map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		refs: importer.References{
			Makers:     []importer.Reference{{ID: 1, Name: "Basler"}},
			Series:     []importer.Reference{{ID: 10, Name: "ace 2"}},
			Categories: []importer.Reference{{ID: 4, Name: "CIS"}, {ID: 9, Name: "Area Scan"}},
		},
		categories: map[int64]store.Category{
			4:  {ID: 4, Name: "CIS", Slug: "cis"},
			9:  {ID: 9, Name: "Area Scan", Slug: "area-scan"},
			77: {ID: 77, Name: "Accessories", Slug: "accessories"},
		},
		products:   map[string]map[string]*fakeProduct{},
		nextID:     1000,
		failInsert: map[string]error{},
	}
}

func (f *fakeStore) seed(table, partNumber string, specs map[string]any) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	data := map[string]any{"specifications": specs}
	if table != "products" {
		data = specs
	}
	f.tableLocked(table)[partNumber] = &fakeProduct{id: f.nextID, data: data}
	return f.nextID
}

func (f *fakeStore) tableLocked(name string) map[string]*fakeProduct {
	t, ok := f.products[name]
	if !ok {
		t = map[string]*fakeProduct{}
		f.products[name] = t
	}
	return t
}

func (f *fakeStore) product(table, partNumber string) (*fakeProduct, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[table][partNumber]
	return p, ok
}

func (f *fakeStore) LoadReferences(context.Context) (importer.References, error) {
	if f.failRefs != nil {
		return importer.References{}, f.failRefs
	}
	return f.refs, nil
}

func (f *fakeStore) CreateSeries(_ context.Context, name string, _, _ *int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.series = append(f.series, name)
	return f.nextID, nil
}

func (f *fakeStore) existing(table string, partNumbers []string) []importer.ExistingRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []importer.ExistingRecord
	for _, pn := range partNumbers {
		p, ok := f.products[table][pn]
		if !ok {
			continue
		}
		specs := p.data
		if table == "products" {
			specs, _ = p.data["specifications"].(map[string]any)
		} else {
			specs = map[string]any{}
			for k, v := range p.data {
				if !catalog.IsBaseColumn(k) && k != "category_id" {
					specs[k] = v
				}
			}
		}
		out = append(out, importer.ExistingRecord{ID: p.id, PartNumber: pn, Specifications: specs})
	}
	return out
}

func (f *fakeStore) ExistingProducts(_ context.Context, partNumbers []string) ([]importer.ExistingRecord, error) {
	return f.existing("products", partNumbers), nil
}

func (f *fakeStore) insert(table, partNumber string, data map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failInsert[partNumber]; err != nil {
		return 0, err
	}
	if _, dup := f.tableLocked(table)[partNumber]; dup {
		return 0, fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)")
	}
	f.nextID++
	f.tableLocked(table)[partNumber] = &fakeProduct{id: f.nextID, data: data}
	return f.nextID, nil
}

func (f *fakeStore) update(table string, id int64, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products[table] {
		if p.id == id {
			p.data = data
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) InsertProduct(_ context.Context, partNumber string, data map[string]any) (int64, error) {
	return f.insert("products", partNumber, data)
}

func (f *fakeStore) UpdateProduct(_ context.Context, id int64, data map[string]any) error {
	return f.update("products", id, data)
}

func (f *fakeStore) AttachDefaultImage(_ context.Context, productID, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failImage != nil {
		return f.failImage
	}
	f.images = append(f.images, productID)
	return nil
}

// ExistingCategoryProducts reads only the columns listed in table, like the
// column list of the real query.
func (f *fakeStore) ExistingCategoryProducts(_ context.Context, table catalog.CategoryTable, partNumbers []string) ([]importer.ExistingRecord, error) {
	out := f.existing(table.Table, partNumbers)
	for i, rec := range out {
		specs := map[string]any{}
		for _, name := range table.ColumnNames() {
			if v, ok := rec.Specifications[name]; ok {
				specs[name] = v
			}
		}
		out[i].Specifications = specs
	}
	return out, nil
}

func (f *fakeStore) InsertCategoryProduct(_ context.Context, table catalog.CategoryTable, partNumber string, data map[string]any) (int64, error) {
	return f.insert(table.Table, partNumber, data)
}

// UpdateCategoryProduct sets the columns listed in table and keeps the rest
// of the stored row.
func (f *fakeStore) UpdateCategoryProduct(_ context.Context, table catalog.CategoryTable, id int64, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products[table.Table] {
		if p.id != id {
			continue
		}
		merged := make(map[string]any, len(p.data))
		for k, v := range p.data {
			merged[k] = v
		}
		for _, name := range table.ColumnNames() {
			if v, ok := data[name]; ok {
				merged[name] = v
			} else {
				delete(merged, name)
			}
		}
		p.data = merged
		return nil
	}
	return store.ErrNotFound
}

func (f *fakeStore) GetCategory(_ context.Context, id int64) (store.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return store.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListCategories(context.Context) ([]store.Category, error) {
	out := make([]store.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) SearchProducts(_ context.Context, filter store.ProductFilter) (*store.ProductPage, error) {
	return &store.ProductPage{Products: []store.Product{}, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeStore) GetProduct(_ context.Context, partNumber string) (store.Product, error) {
	p, ok := f.product("products", partNumber)
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return store.Product{ID: p.id, PartNumber: partNumber}, nil
}

func (f *fakeStore) InsertDownload(_ context.Context, d store.Download) (store.Download, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	d.ID = f.nextID
	f.downloads = append(f.downloads, d)
	return d, nil
}

func (f *fakeStore) ListDownloads(context.Context) ([]store.Download, error) {
	return f.downloads, nil
}

func (f *fakeStore) InsertAudit(_ context.Context, rec store.AuditRecord) (store.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audit = append(f.audit, rec)
	return rec, nil
}

func (f *fakeStore) ListAudit(_ context.Context, limit int) ([]store.AuditRecord, error) {
	return f.audit, nil
}

func (f *fakeStore) PurgeAuditBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgedAt = cutoff
	return 3, nil
}

func (f *fakeStore) auditActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.audit))
	for i, a := range f.audit {
		out[i] = a.Action
	}
	return out
}

// fakeObjects is an in-memory ObjectStore.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	failFor string // object keys ending in this name fail
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (o *fakeObjects) Put(_ context.Context, key string, body []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failFor != "" && strings.HasSuffix(key, o.failFor) {
		return errors.New("s3: access denied")
	}
	o.objects[key] = body
	return nil
}

func (o *fakeObjects) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func (o *fakeObjects) keys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.objects))
	for k := range o.objects {
		out = append(out, k)
	}
	return out
}

func storeFilter(page, size int) store.ProductFilter {
	return store.ProductFilter{Page: page, PageSize: size}
}
