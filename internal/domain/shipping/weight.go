package shipping

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	gramsToPounds     = 0.00220462
	kilogramsToPounds = 2.20462
	ouncesToPounds    = 0.0625
)

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// ParseWeight converts labels like "800g", "1.6kg", "16 oz" or "5 lb" to pounds.
// A bare number is taken as pounds; anything unparseable counts as 1 lb.
func ParseWeight(s string) float64 {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	n, ok := leadingNumber(cleaned)
	switch {
	case strings.Contains(cleaned, "kg"):
		return n * kilogramsToPounds
	case strings.Contains(cleaned, "g") && !strings.Contains(cleaned, "kg"):
		return n * gramsToPounds
	case strings.Contains(cleaned, "oz"):
		return n * ouncesToPounds
	case strings.Contains(cleaned, "lb"):
		return n
	}
	if !ok {
		return 1
	}
	return n
}

func leadingNumber(s string) (float64, bool) {
	digits := nonNumeric.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	// "1.2.3" keeps its first valid prefix
	for end := len(digits); end > 0; end-- {
		if n, err := strconv.ParseFloat(digits[:end], 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// WeightedItem is anything with a weight label and a quantity
type WeightedItem struct {
	Weight   string
	Quantity int
}

// TotalWeight sums item weights in pounds. Items without a weight count as
// 1 lb each and the result is never below 1 lb.
func TotalWeight(items []WeightedItem) float64 {
	total := 0.0
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		w := 1.0
		if strings.TrimSpace(it.Weight) != "" {
			w = ParseWeight(it.Weight)
		}
		total += w * float64(qty)
	}
	if total < 1 {
		total = 1
	}
	return total
}
