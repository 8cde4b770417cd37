package catalog

import (
	"strings"
	"testing"
)

func TestEmbeddedTablesRegistered(t *testing.T) {
	tables := All()
	if len(tables) != 6 {
		t.Fatalf("All() returned %d tables, want 6", len(tables))
	}

	for _, key := range []string{"cis", "tdi", "line_scan", "area_scan", "telecentric", "fa_lens"} {
		if _, ok := Get(key); !ok {
			t.Errorf("Get(%q) not found", key)
		}
	}
}

func TestByCategoryName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTable string
		wantOK    bool
	}{
		{"exact", "Area Scan", "products_area_scan", true},
		{"case insensitive", "area scan", "products_area_scan", true},
		{"padded", "  FA Lens ", "products_fa_lens", true},
		{"unknown", "Lighting", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := ByCategoryName(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ByCategoryName(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if def.Table != tt.wantTable {
				t.Errorf("ByCategoryName(%q).Table = %q, want %q", tt.input, def.Table, tt.wantTable)
			}
		})
	}
}

func TestParseTables_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad table name",
			yaml: "tables:\n  - {key: x, category: X, table: \"x; drop\", columns: []}\n",
			want: "invalid table name",
		},
		{
			name: "unknown column type",
			yaml: "tables:\n  - {key: x, category: X, table: x, columns: [{name: a, type: blob}]}\n",
			want: "unknown type",
		},
		{
			name: "base column collision",
			yaml: "tables:\n  - {key: x, category: X, table: x, columns: [{name: part_number, type: text}]}\n",
			want: "collides",
		},
		{
			name: "missing key",
			yaml: "tables:\n  - {category: X, table: x, columns: []}\n",
			want: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTables([]byte(tt.yaml))
			if err == nil {
				t.Fatal("ParseTables() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestDDL(t *testing.T) {
	def, _ := Get("area_scan")
	ddl := def.DDL()

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS products_area_scan",
		"part_number TEXT NOT NULL UNIQUE",
		"frame_rate NUMERIC",
		"color BOOLEAN",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("DDL missing %q:\n%s", want, ddl)
		}
	}
}

func TestSubset(t *testing.T) {
	table, ok := Get("cis")
	if !ok {
		t.Fatal("cis table not registered")
	}

	sub := table.Subset([]string{"DPI", "scan_width", "unknown"})
	if got := sub.ColumnNames(); strings.Join(got, ",") != "scan_width,dpi" {
		t.Errorf("Subset columns = %v, want [scan_width dpi]", got)
	}
	if sub.Table != table.Table {
		t.Errorf("Subset table = %q, want %q", sub.Table, table.Table)
	}
	if len(table.Columns) != 6 {
		t.Errorf("Subset changed the source table: %d columns", len(table.Columns))
	}
	if got := table.Subset(nil).Columns; len(got) != 0 {
		t.Errorf("Subset(nil) = %v, want no columns", got)
	}
}

func TestCoerceColumn(t *testing.T) {
	tests := []struct {
		name    string
		col     Column
		raw     string
		want    any
		wantErr bool
	}{
		{"numeric decimal", Column{"frame_rate", ColumnNumeric}, "30.5", 30.5, false},
		{"numeric thousands", Column{"frame_rate", ColumnNumeric}, "1,200", 1200.0, false},
		{"numeric parenthesised rejected", Column{"offset", ColumnNumeric}, "(2.5)", nil, true},
		{"numeric negative", Column{"offset", ColumnNumeric}, "-2.5", -2.5, false},
		{"numeric invalid", Column{"frame_rate", ColumnNumeric}, "fast", nil, true},
		{"integer", Column{"dpi", ColumnInteger}, "600", int64(600), false},
		{"integer invalid", Column{"dpi", ColumnInteger}, "6.5", nil, true},
		{"bool yes", Column{"color", ColumnBool}, "Yes", true, false},
		{"bool zero", Column{"color", ColumnBool}, "0", false, false},
		{"bool invalid", Column{"color", ColumnBool}, "maybe", nil, true},
		{"text trimmed", Column{"interface", ColumnText}, "  GigE  ", "GigE", false},
		{"excel formula prefix", Column{"interface", ColumnText}, `="CXP-12"`, "CXP-12", false},
		{"empty is nil", Column{"frame_rate", ColumnNumeric}, "   ", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceColumn(tt.col, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CoerceColumn(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CoerceColumn(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestToPgBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantBool  bool
	}{
		{"true", true, true},
		{"Y", true, true},
		{"no", true, false},
		{"F", true, false},
		{"", false, false},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		got := ToPgBool(tt.input)
		if got.Valid != tt.wantValid || got.Bool != tt.wantBool {
			t.Errorf("ToPgBool(%q) = {%v %v}, want {%v %v}", tt.input, got.Bool, got.Valid, tt.wantBool, tt.wantValid)
		}
	}
}

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantValue float64
	}{
		{"123", true, 123},
		{"-45.5", true, -45.5},
		{".5", true, 0.5},
		{"1,234.5", true, 1234.5},
		{"1,024", true, 1024},
		{"(9.75)", false, 0},
		{"", false, 0},
		{"abc", false, 0},
		{"1.2.3", false, 0},
	}

	for _, tt := range tests {
		n := ToPgNumeric(tt.input)
		if n.Valid != tt.wantValid {
			t.Errorf("ToPgNumeric(%q).Valid = %v, want %v", tt.input, n.Valid, tt.wantValid)
			continue
		}
		if !tt.wantValid {
			continue
		}
		f, ok := NumericToFloat(n)
		if !ok || f != tt.wantValue {
			t.Errorf("ToPgNumeric(%q) = %v, want %v", tt.input, f, tt.wantValue)
		}
	}
}
