package importer

import (
	"context"
	"fmt"
	"strings"
)

// specRule decides which columns are specifications and how their values are
// typed. The generic and category formats each supply their own.
type specRule interface {
	match(header string) (string, bool)
	coerce(key, raw string) (any, bool, error)
}

// Processor runs files through the parsing half of the pipeline.
type Processor struct {
	refs       *ReferenceCache
	rule       specRule
	categoryID *int64 // fills category_id when a row has none
	detect     func(keys []string) (string, bool)
}

// Process parses, resolves, coerces and validates one file. File-level
// problems produce a single diagnostic and no rows. Row problems are
// collected and never stop the batch.
func (p *Processor) Process(ctx context.Context, data []byte) *ProcessingResult {
	records, err := ParseCSV(DecodeText(data))
	if err != nil {
		return fileError(err)
	}

	header := records[0]
	bindings := Classify(header, p.rule.match)
	if !hasBinding(bindings, "part_number") {
		return fileError(fmt.Errorf("missing required column %q", "part_number"))
	}

	result := &ProcessingResult{
		Header:   header,
		SpecKeys: SpecKeys(bindings),
		Data:     make([]ParsedRow, 0, len(records)-1),
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}

	for i, record := range records[1:] {
		if isEmptyRow(record) {
			continue
		}
		row, diags := p.buildRow(ctx, header, bindings, record, i+2)
		for _, d := range diags {
			result.add(d)
		}
		for _, d := range ValidateRow(row) {
			result.add(d)
		}
		result.Data = append(result.Data, row)
	}

	if len(result.Data) == 0 {
		return fileError(ErrTooFewLines)
	}

	if p.detect != nil {
		if category, ok := p.detect(SpecKeys(bindings)); ok {
			result.DetectedCategory = category
		}
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (p *Processor) buildRow(ctx context.Context, header []string, bindings []ColumnBinding, record []string, rowIndex int) (ParsedRow, []Diagnostic) {
	row := ParsedRow{
		BasicFields:    make(map[string]any),
		Specifications: make(map[string]any),
		OriginalRow:    make(map[string]string, len(header)),
		RowIndex:       rowIndex,
	}
	for i, h := range header {
		row.OriginalRow[strings.ToLower(strings.TrimSpace(h))] = cell(record, i)
	}

	var diags []Diagnostic
	refNames := make(map[string]string)

	for _, b := range bindings {
		raw := cell(record, b.Index)
		switch b.Kind {
		case KindBasic:
			row.BasicFields[b.Key] = CoerceBasicValue(b.Key, raw)
		case KindReference:
			refNames[b.Key] = strings.TrimSpace(raw)
		case KindSpec:
			v, ok, err := p.rule.coerce(b.Key, raw)
			if err != nil {
				diags = append(diags, Diagnostic{RowIndex: rowIndex, Field: b.Key, Message: err.Error(), Severity: SeverityError})
				continue
			}
			if ok {
				row.Specifications[b.Key] = v
			}
		}
	}

	if row.BasicFields["category_id"] == nil && refNames["category"] == "" && p.categoryID != nil && strings.TrimSpace(row.OriginalRow["category_id"]) == "" {
		row.BasicFields["category_id"] = *p.categoryID
	}

	diags = append(diags, p.resolveReferences(ctx, &row, refNames)...)
	return row, diags
}

// resolveReferences fills ids from name columns. Makers and categories must
// already exist; series are created on demand.
func (p *Processor) resolveReferences(ctx context.Context, row *ParsedRow, names map[string]string) []Diagnostic {
	var diags []Diagnostic
	warn := func(field, msg string) {
		diags = append(diags, Diagnostic{RowIndex: row.RowIndex, Field: field, Message: msg, Severity: SeverityWarning})
	}

	if name := names["maker"]; name != "" && row.BasicFields["maker_id"] == nil {
		if id, ok := p.refs.MakerID(name); ok {
			row.BasicFields["maker_id"] = id
		} else {
			warn("maker", fmt.Sprintf("unknown maker %q", name))
		}
	}

	if name := names["category"]; name != "" && row.BasicFields["category_id"] == nil {
		if id, ok := p.refs.CategoryID(name); ok {
			row.BasicFields["category_id"] = id
		} else {
			warn("category", fmt.Sprintf("unknown category %q", name))
		}
	}

	if name := names["series"]; name != "" && row.BasicFields["series_id"] == nil {
		id, err := p.refs.ResolveSeries(ctx, name, optionalID(row.BasicFields["category_id"]), optionalID(row.BasicFields["maker_id"]))
		if err != nil {
			warn("series", err.Error())
		} else {
			row.BasicFields["series_id"] = id
		}
	}

	return diags
}

func optionalID(v any) *int64 {
	id, ok := AsInt64(v)
	if !ok || id <= 0 {
		return nil
	}
	return &id
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
