package importer

import "strings"

// BasicColumns are the entity fields recognized in every import file.
var BasicColumns = []string{"part_number", "category_id", "maker_id", "series_id", "is_active", "is_new"}

// ReferenceColumns carry human-readable names the resolver maps to ids.
var ReferenceColumns = []string{"maker", "series", "category"}

// SpecPrefix marks a specification column in the generic import format.
const SpecPrefix = "spec_"

// ColumnKind says how a header column is consumed.
type ColumnKind int

const (
	KindBasic ColumnKind = iota + 1
	KindSpec
	KindReference
)

// ColumnBinding ties a header position to the key it feeds.
type ColumnBinding struct {
	Index  int
	Header string
	Kind   ColumnKind
	Key    string
}

// SpecMatcher maps a header to a specification key.
type SpecMatcher func(header string) (key string, ok bool)

// PrefixedSpec matches "spec_" headers and strips the prefix.
func PrefixedSpec(header string) (string, bool) {
	h := strings.TrimSpace(header)
	if len(h) <= len(SpecPrefix) || !strings.EqualFold(h[:len(SpecPrefix)], SpecPrefix) {
		return "", false
	}
	return h[len(SpecPrefix):], true
}

// Classify partitions a header row. Unrecognized columns are left out.
func Classify(header []string, spec SpecMatcher) []ColumnBinding {
	var bindings []ColumnBinding
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case contains(BasicColumns, name):
			bindings = append(bindings, ColumnBinding{Index: i, Header: h, Kind: KindBasic, Key: name})
		case contains(ReferenceColumns, name):
			bindings = append(bindings, ColumnBinding{Index: i, Header: h, Kind: KindReference, Key: name})
		default:
			if key, ok := spec(h); ok {
				bindings = append(bindings, ColumnBinding{Index: i, Header: h, Kind: KindSpec, Key: key})
			}
		}
	}
	return bindings
}

// SpecKeys returns the specification keys among bindings, in header order.
func SpecKeys(bindings []ColumnBinding) []string {
	var keys []string
	for _, b := range bindings {
		if b.Kind == KindSpec {
			keys = append(keys, b.Key)
		}
	}
	return keys
}

func hasBinding(bindings []ColumnBinding, key string) bool {
	for _, b := range bindings {
		if b.Kind != KindSpec && b.Key == key {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
