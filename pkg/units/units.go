package units

import (
	"fmt"
	"math"
)

var (
	decimalUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB"}
	binaryUnits  = []string{"B", "K", "M", "G", "T", "P", "E", "Z"}
)

const (
	decimalTerminalUnit = "YB"
	binaryTerminalUnit  = "YiB"
)

// HumanReadable renders a byte count for display.
//
// Decimal mode scales by 1000 and separates number and unit with a space
// ("1.00 KB"); binary mode scales by 1024 with single-letter suffixes and no
// space ("1.50K"). Values below one step are printed as integers. Scaled
// values get two decimals below 10 and one decimal otherwise; anything past
// zetta is expressed in the terminal unit without further scaling.
func HumanReadable(value int64, binary bool) string {
	step := 1000.0
	unitList := decimalUnits
	terminal := decimalTerminalUnit
	sep := " "
	if binary {
		step = 1024.0
		unitList = binaryUnits
		terminal = binaryTerminalUnit
		sep = ""
	}

	if math.Abs(float64(value)) < step {
		return fmt.Sprintf("%d%sB", value, sep)
	}

	num := float64(value)
	for _, unit := range unitList {
		if math.Abs(num) < 10.0 {
			return fmt.Sprintf("%.2f%s%s", num, sep, unit)
		}
		if math.Abs(num) < step {
			return fmt.Sprintf("%.1f%s%s", num, sep, unit)
		}
		num /= step
	}
	return fmt.Sprintf("%.1f%s%s", num, sep, terminal)
}
