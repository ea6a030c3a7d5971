package nutrition

import "math"

// MacroProgress is how far one nutrient is towards its goal.
type MacroProgress struct {
	Consumed float64 `json:"consumed"`
	Goal     float64 `json:"goal"`
	Ratio    float64 `json:"ratio"`
	// Percent is capped at 100 for progress bars; Ratio is not.
	Percent float64 `json:"percent"`
	Unit    string  `json:"unit"`
}

// ProgressReport is keyed like the JSON nutrient record.
type ProgressReport map[string]MacroProgress

// Progress compares consumed totals against goals. A goal of zero or less
// yields a zero ratio instead of dividing by it.
func Progress(consumed, goals Nutrients) ProgressReport {
	report := make(ProgressReport, 5)
	gf := goals.Fields()
	for i, c := range consumed.Fields() {
		g := gf[i].Value
		var ratio float64
		if g > 0 {
			ratio = c.Value / g
		}
		report[c.Name] = MacroProgress{
			Consumed: c.Value,
			Goal:     g,
			Ratio:    ratio,
			Percent:  math.Min(ratio*100, 100),
			Unit:     c.Unit,
		}
	}
	return report
}
