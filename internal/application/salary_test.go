package application

import "testing"

func TestParseSalaryLPA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "lpa", text: "12 LPA", want: 12},
		{name: "decimal lpa", text: "4.5 lpa", want: 4.5},
		{name: "monthly slash", text: "50000/month", want: 6},
		{name: "monthly words", text: "25,000 per month", want: 3},
		{name: "plain number", text: "800000", want: 800000},
		{name: "no number", text: "competitive", want: 0},
		{name: "empty", text: "", want: 0},
		{name: "stray dots", text: "..", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseSalaryLPA(tt.text); got != tt.want {
				t.Fatalf("ParseSalaryLPA(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
