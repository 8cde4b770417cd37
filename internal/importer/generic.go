package importer

// genericRule reads "spec_" columns and types them by key-name heuristics.
type genericRule struct{}

func (genericRule) match(header string) (string, bool) {
	return PrefixedSpec(header)
}

func (genericRule) coerce(key, raw string) (any, bool, error) {
	v, ok := CoerceSpecValue(key, raw)
	return v, ok, nil
}

// NewGenericProcessor returns the processor for the products import format:
// basic columns plus "spec_" specification columns.
func NewGenericProcessor(refs *ReferenceCache) *Processor {
	return &Processor{
		refs:   refs,
		rule:   genericRule{},
		detect: DetectCategory,
	}
}

// WithDefaultCategory makes rows without a category take categoryID.
func (p *Processor) WithDefaultCategory(categoryID int64) *Processor {
	p.categoryID = &categoryID
	return p
}
