package calculator

import "testing"

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount    float64
		showCents bool
		want      string
	}{
		{5_000_000, false, "$5.0M"},
		{12_345_678, false, "$12.3M"},
		{1_250_000, false, "$1.3M"},
		{1_450_000, false, "$1.4M"},
		{1_050_000, false, "$1.1M"},
		{-2_000_000, false, "$-2.0M"},
		{500_000, false, "$500K"},
		{5_000, false, "$5K"},
		{2_500, false, "$3K"},
		{-2_500, false, "$-3K"},
		{1_000, false, "$1K"},
		{500, false, "$500"},
		{12.5, false, "$12.5"},
		{0, false, "$0"},
		{500, true, "$500.00"},
		{12.5, true, "$12.50"},
	}

	for _, tt := range tests {
		if got := FormatCurrency(tt.amount, tt.showCents); got != tt.want {
			t.Errorf("FormatCurrency(%v, %v) = %q, want %q", tt.amount, tt.showCents, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		want     string
	}{
		{0.35, 1, "35.0%"},
		{0.51, 0, "51%"},
		{0.125, 1, "12.5%"},
		{0.2225, 2, "22.25%"},
		{1, 1, "100.0%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.value, tt.decimals); got != tt.want {
			t.Errorf("FormatPercent(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
		}
	}
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"stored below the tie", 1.45, 1, "1.4"},
		{"stored above the tie", 1.05, 1, "1.1"},
		{"exact tie rounds up", 2.5, 0, "3"},
		{"exact tie with decimals", 0.125, 2, "0.13"},
		{"negative tie rounds away from zero", -2.5, 0, "-3"},
		{"below tie at two decimals", 1.005, 2, "1.00"},
		{"carry into integer part", 99.95, 1, "100.0"},
		{"carry adds a digit", 9.5, 0, "10"},
		{"zero", 0, 2, "0.00"},
		{"negative decimals treated as zero", 7.4, -1, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toFixed(tt.value, tt.decimals); got != tt.want {
				t.Errorf("toFixed(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}
