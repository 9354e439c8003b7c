package core

import (
	"math"
	"strconv"
)

// FormatAmount renders an amount with two decimals for display.
// Stored amounts keep their full float precision.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(math.Round(amount*100)/100, 'f', 2, 64)
}
