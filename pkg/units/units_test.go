package units

import (
	"math"
	"testing"
)

func TestHumanReadableDecimal(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		want  string
	}{
		{name: "zero", value: 0, want: "0 B"},
		{name: "below one kilobyte", value: 999, want: "999 B"},
		{name: "exactly one kilobyte", value: 1000, want: "1.00 KB"},
		{name: "two decimals below ten", value: 9994, want: "9.99 KB"},
		{name: "one decimal from ten", value: 10000, want: "10.0 KB"},
		{name: "rounds up to next order", value: 999999, want: "1000.0 KB"},
		{name: "megabytes", value: 1500000, want: "1.50 MB"},
		{name: "gigabytes", value: 250000000000, want: "250.0 GB"},
		{name: "exabytes", value: math.MaxInt64, want: "9.22 EB"},
		{name: "negative small", value: -5, want: "-5 B"},
		{name: "negative scaled", value: -2500, want: "-2.50 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanReadable(tt.value, false); got != tt.want {
				t.Errorf("HumanReadable(%d, false) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestHumanReadableBinary(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		want  string
	}{
		{name: "zero", value: 0, want: "0B"},
		{name: "below one kibibyte", value: 1023, want: "1023B"},
		{name: "exactly one kibibyte", value: 1024, want: "1.00K"},
		{name: "one and a half", value: 1536, want: "1.50K"},
		{name: "ten kibibytes", value: 10240, want: "10.0K"},
		{name: "just under a mebibyte", value: 1048575, want: "1024.0K"},
		{name: "one mebibyte", value: 1 << 20, want: "1.00M"},
		{name: "gibibytes", value: 300 << 30, want: "300.0G"},
		{name: "tebibytes", value: 5 << 40, want: "5.00T"},
		{name: "largest int64", value: math.MaxInt64, want: "8.00E"},
		{name: "negative small", value: -12, want: "-12B"},
		{name: "negative scaled", value: -2048, want: "-2.00K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanReadable(tt.value, true); got != tt.want {
				t.Errorf("HumanReadable(%d, true) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestHumanReadableDeterministic(t *testing.T) {
	for _, v := range []int64{0, 1, 1023, 1024, 123456789, 98765432101} {
		for _, binary := range []bool{false, true} {
			first := HumanReadable(v, binary)
			second := HumanReadable(v, binary)
			if first != second {
				t.Errorf("HumanReadable(%d, %v) not deterministic: %q != %q", v, binary, first, second)
			}
		}
	}
}
