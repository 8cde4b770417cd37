package importer

import "strings"

type detectionRule struct {
	category string
	keywords []string
}

// detectionRules are tried in order; the first rule with a matching key wins.
var detectionRules = []detectionRule{
	{"CIS", []string{"scan_width", "dpi"}},
	{"TDI", []string{"stages", "tdi"}},
	{"Line Scan", []string{"line_rate"}},
	{"Area Scan", []string{"frame_rate", "fps"}},
	{"Telecentric", []string{"magnification", "telecentric"}},
	{"FA Lens", []string{"focal_length", "aperture"}},
}

// DetectCategory guesses a category from specification keys. It is
// informational only.
func DetectCategory(keys []string) (string, bool) {
	lowered := make([]string, len(keys))
	for i, k := range keys {
		lowered[i] = strings.ToLower(k)
	}

	for _, rule := range detectionRules {
		for _, kw := range rule.keywords {
			for _, k := range lowered {
				if strings.Contains(k, kw) {
					return rule.category, true
				}
			}
		}
	}
	return "", false
}
