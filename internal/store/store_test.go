package store

import (
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/virex/internal/catalog"
)

func testTable() catalog.CategoryTable {
	return catalog.CategoryTable{
		Key:      "area_scan",
		Category: "Area Scan",
		Table:    "products_area_scan",
		Columns: []catalog.Column{
			{Name: "frame_rate", Type: catalog.ColumnNumeric},
			{Name: "stages", Type: catalog.ColumnInteger},
			{Name: "color", Type: catalog.ColumnBool},
			{Name: "sensor", Type: catalog.ColumnText},
		},
	}
}

func TestBuildCategoryInsert(t *testing.T) {
	data := map[string]any{
		"part_number": "AS-1",
		"maker_id":    float64(3),
		"frame_rate":  30.5,
		"stages":      float64(64),
		"color":       true,
	}

	query, args := buildCategoryInsert(testTable(), "AS-1", data)

	wantQuery := `INSERT INTO "products_area_scan" ("part_number", "maker_id", "series_id", "is_active", "is_new", "frame_rate", "stages", "color", "sensor") ` +
		`VALUES ($1, $2, $3, COALESCE($4, TRUE), COALESCE($5, FALSE), $6, $7, $8, $9) RETURNING id`
	if query != wantQuery {
		t.Errorf("query =\n%s\nwant\n%s", query, wantQuery)
	}

	if len(args) != 9 {
		t.Fatalf("len(args) = %d, want 9", len(args))
	}
	if got := args[1].(pgtype.Int8); !got.Valid || got.Int64 != 3 {
		t.Errorf("maker_id arg = %+v, want 3", got)
	}
	if got := args[2].(pgtype.Int8); got.Valid {
		t.Errorf("series_id arg should be NULL, got %+v", got)
	}
	if args[5] != 30.5 {
		t.Errorf("frame_rate arg = %v, want 30.5", args[5])
	}
	if args[6] != int64(64) {
		t.Errorf("stages arg = %#v, want int64(64)", args[6])
	}
	if args[7] != true {
		t.Errorf("color arg = %v, want true", args[7])
	}
	if args[8] != nil {
		t.Errorf("sensor arg = %v, want nil", args[8])
	}
}

func TestBuildCategoryUpdate(t *testing.T) {
	query, args := buildCategoryUpdate(testTable(), 42, map[string]any{"is_active": false, "sensor": "IMX"})

	for _, want := range []string{
		`UPDATE "products_area_scan" SET`,
		`is_active = COALESCE($4, is_active)`,
		`"sensor" = $9`,
		`updated_at = now()`,
		`WHERE id = $1`,
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
	if args[0] != int64(42) {
		t.Errorf("id arg = %v, want 42", args[0])
	}
	if got := args[3].(pgtype.Bool); !got.Valid || got.Bool {
		t.Errorf("is_active arg = %+v, want valid false", got)
	}
	if args[8] != "IMX" {
		t.Errorf("sensor arg = %v, want IMX", args[8])
	}
}

func TestExistingCategoryQuery(t *testing.T) {
	got := existingCategoryQuery(testTable())
	want := `SELECT id, part_number, jsonb_strip_nulls(jsonb_build_object('frame_rate', "frame_rate", 'stages', "stages", 'color', "color", 'sensor', "sensor")) ` +
		`FROM "products_area_scan" WHERE part_number = ANY($1)`
	if got != want {
		t.Errorf("existingCategoryQuery() =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildCategoryUpdate_OnlyListedColumns(t *testing.T) {
	table := testTable().Subset([]string{"frame_rate"})
	query, args := buildCategoryUpdate(table, 7, map[string]any{"frame_rate": 60.0})

	if !strings.Contains(query, `"frame_rate" = $6`) {
		t.Errorf("query missing frame_rate set:\n%s", query)
	}
	for _, col := range []string{`"stages"`, `"color"`, `"sensor"`} {
		if strings.Contains(query, col) {
			t.Errorf("query sets %s, which the file did not carry:\n%s", col, query)
		}
	}
	if len(args) != 6 || args[5] != 60.0 {
		t.Errorf("args = %#v", args)
	}

	got := existingCategoryQuery(table)
	want := `SELECT id, part_number, jsonb_strip_nulls(jsonb_build_object('frame_rate', "frame_rate")) ` +
		`FROM "products_area_scan" WHERE part_number = ANY($1)`
	if got != want {
		t.Errorf("existingCategoryQuery() =\n%s\nwant\n%s", got, want)
	}
}

func TestColumnArg(t *testing.T) {
	tests := []struct {
		name string
		col  catalog.Column
		in   any
		want any
	}{
		{"nil", catalog.Column{Type: catalog.ColumnNumeric}, nil, nil},
		{"numeric from int", catalog.Column{Type: catalog.ColumnNumeric}, int64(5), 5.0},
		{"integer from float", catalog.Column{Type: catalog.ColumnInteger}, 7.0, int64(7)},
		{"integer from fraction", catalog.Column{Type: catalog.ColumnInteger}, 7.5, nil},
		{"bool", catalog.Column{Type: catalog.ColumnBool}, false, false},
		{"bool mismatch", catalog.Column{Type: catalog.ColumnBool}, "yes", nil},
		{"text from number", catalog.Column{Type: catalog.ColumnText}, 12.5, "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := columnArg(tt.col, tt.in); got != tt.want {
				t.Errorf("columnArg(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProductWhere(t *testing.T) {
	cat := int64(9)
	where, args := productWhere(ProductFilter{Query: " 50%_off ", CategoryID: &cat})

	want := " WHERE is_active AND part_number ILIKE $1 AND category_id = $2"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 2 || args[0] != `%50\%\_off%` || args[1] != int64(9) {
		t.Errorf("args = %#v", args)
	}

	where, args = productWhere(ProductFilter{})
	if where != " WHERE is_active" || len(args) != 0 {
		t.Errorf("empty filter: where = %q args = %v", where, args)
	}
}
