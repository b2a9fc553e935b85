package domain

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:      "₱0.00",
		18.5:   "₱18.50",
		1234.5: "₱1234.50",
		2.005:  "₱2.00",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Fatalf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
