package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OperationType is the planned action for one row.
type OperationType string

const (
	OpInsert OperationType = "INSERT"
	OpUpdate OperationType = "UPDATE"
	OpSkip   OperationType = "SKIP"
)

// TargetKind distinguishes the two persistence shapes.
type TargetKind string

const (
	// TargetProducts is the products table with a JSON specifications column.
	TargetProducts TargetKind = "products"
	// TargetCategory is a per-category table with flat typed columns.
	TargetCategory TargetKind = "category"
)

// Target names where an operation writes.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Table string     `json:"table"`
}

// GenericProductsTable is the target of the products importer.
func GenericProductsTable() Target {
	return Target{Kind: TargetProducts, Table: "products"}
}

// CategoryTable is the target of the category importer for one table.
func CategoryTable(table string) Target {
	return Target{Kind: TargetCategory, Table: table}
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.Table)
}

// SyncOperation is one planned write. Data holds the row as it would be
// persisted: basic fields plus specifications, nested under "specifications"
// for the products table and flattened for category tables.
type SyncOperation struct {
	ID         string         `json:"id"`
	Type       OperationType  `json:"type"`
	Target     Target         `json:"target"`
	PartNumber string         `json:"part_number"`
	Data       map[string]any `json:"data"`
	Reason     string         `json:"reason"`
	Selected   bool           `json:"selected"`
	SourceRow  int            `json:"sourceRow"`
	ExistingID int64          `json:"existingId,omitempty"`
}

// ExistingRecord is the persisted state a row is compared against.
type ExistingRecord struct {
	ID             int64
	PartNumber     string
	Specifications map[string]any
}

// Planner classifies parsed rows against persisted records.
// With Strict set, rows that carry an error diagnostic are left out of the
// plan; otherwise any row with a part number is planned.
type Planner struct {
	Strict bool
}

// Plan builds one operation per plannable row. Rows without a part number
// never produce an operation. For the same inputs the result is identical,
// operation ids included.
func (p Planner) Plan(result *ProcessingResult, existing []ExistingRecord, target Target) []SyncOperation {
	byPart := make(map[string]ExistingRecord, len(existing))
	for _, rec := range existing {
		byPart[rec.PartNumber] = rec
	}

	var rejected map[int]bool
	if p.Strict {
		rejected = result.RowsWithErrors()
	}

	ops := make([]SyncOperation, 0, len(result.Data))
	for _, row := range result.Data {
		pn := row.PartNumber()
		if pn == "" || rejected[row.RowIndex] {
			continue
		}

		op := SyncOperation{
			ID:         operationID(target, row.RowIndex, pn),
			Target:     target,
			PartNumber: pn,
			Data:       rowData(row, target),
			SourceRow:  row.RowIndex,
		}

		rec, found := byPart[pn]
		switch {
		case !found:
			op.Type, op.Reason, op.Selected = OpInsert, "New product", true
		case !sameSpecifications(rec.Specifications, row.Specifications):
			op.Type, op.Reason, op.Selected = OpUpdate, "Specifications updated", true
			op.ExistingID = rec.ID
		default:
			op.Type, op.Reason, op.Selected = OpSkip, "No changes detected", false
			op.ExistingID = rec.ID
		}
		ops = append(ops, op)
	}
	return ops
}

func operationID(target Target, rowIndex int, partNumber string) string {
	name := fmt.Sprintf("%s/%d/%s", target, rowIndex, partNumber)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func rowData(row ParsedRow, target Target) map[string]any {
	data := make(map[string]any, len(row.BasicFields)+len(row.Specifications)+1)
	for k, v := range row.BasicFields {
		data[k] = v
	}
	if target.Kind == TargetProducts {
		specs := make(map[string]any, len(row.Specifications))
		for k, v := range row.Specifications {
			specs[k] = v
		}
		data["specifications"] = specs
		return data
	}
	for k, v := range row.Specifications {
		data[k] = v
	}
	return data
}

// sameSpecifications compares by serialized value. encoding/json writes map
// keys in sorted order, and 600 and 600.0 serialize alike.
func sameSpecifications(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

// Summary counts the plan by operation type.
type Summary struct {
	Inserts int `json:"inserts"`
	Updates int `json:"updates"`
	Skips   int `json:"skips"`
}

// Summarize counts operations by type.
func Summarize(ops []SyncOperation) Summary {
	var s Summary
	for _, op := range ops {
		switch op.Type {
		case OpInsert:
			s.Inserts++
		case OpUpdate:
			s.Updates++
		case OpSkip:
			s.Skips++
		}
	}
	return s
}
