// Package nutrition holds the nutrient record shared by food items, meals,
// daily totals and goals, and the reductions over it.
package nutrition

import (
	"errors"
	"fmt"
	"math"
)

// Nutrients is the five tracked macros. Calories are kcal, the rest grams.
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Nutritional is anything that carries a nutrient record.
type Nutritional interface {
	NutrientValues() Nutrients
}

// NutrientValues lets a bare record take part in Sum.
func (n Nutrients) NutrientValues() Nutrients {
	return n
}

// Add returns the field-wise sum of n and o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
	}
}

// Sum folds items into one record. An empty slice yields the zero record.
func Sum[T Nutritional](items []T) Nutrients {
	var total Nutrients
	for _, item := range items {
		total = total.Add(item.NutrientValues())
	}
	return total
}

// Fields returns the record as ordered (name, value) pairs.
func (n Nutrients) Fields() []Field {
	return []Field{
		{Name: "calories", Unit: "kcal", Value: n.Calories},
		{Name: "protein", Unit: "g", Value: n.Protein},
		{Name: "carbs", Unit: "g", Value: n.Carbs},
		{Name: "fat", Unit: "g", Value: n.Fat},
		{Name: "fiber", Unit: "g", Value: n.Fiber},
	}
}

// Field is one named nutrient value.
type Field struct {
	Name  string
	Unit  string
	Value float64
}

// Validate rejects negative or non-finite values.
func (n Nutrients) Validate() error {
	var errs []error
	for _, f := range n.Fields() {
		switch {
		case math.IsNaN(f.Value) || math.IsInf(f.Value, 0):
			errs = append(errs, fmt.Errorf("%s must be a finite number", f.Name))
		case f.Value < 0:
			errs = append(errs, fmt.Errorf("%s must not be negative", f.Name))
		}
	}
	return errors.Join(errs...)
}

// Round rounds every field to the given number of decimal places.
func (n Nutrients) Round(places int) Nutrients {
	p := math.Pow(10, float64(places))
	r := func(v float64) float64 { return math.Round(v*p) / p }
	return Nutrients{
		Calories: r(n.Calories),
		Protein:  r(n.Protein),
		Carbs:    r(n.Carbs),
		Fat:      r(n.Fat),
		Fiber:    r(n.Fiber),
	}
}

// IsZero reports whether all fields are zero.
func (n Nutrients) IsZero() bool {
	return n == Nutrients{}
}
