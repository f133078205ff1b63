package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	// day 0 of a month is the last day of the previous month
	if got := New(2023, time.March, 0); got != New(2023, time.February, 28) {
		t.Errorf("New(2023, 3, 0) = %s, want 2023-02-28", got)
	}
	// month 13 rolls over to january
	if got := New(2023, 13, 1); got != New(2024, time.January, 1) {
		t.Errorf("New(2023, 13, 1) = %s, want 2024-01-01", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2023-01-31", New(2023, time.January, 31)},
		{"2023-1-3", New(2023, time.January, 3)},
	}
	for _, test := range tests {
		got, err := Parse(test.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", test.in, err)
		}
		if got != test.want {
			t.Errorf("Parse(%q) = %s, want %s", test.in, got, test.want)
		}
	}
	if _, err := Parse("not-a-date"); err == nil {
		t.Errorf("Parse accepted an invalid date")
	}
}

func TestAddMonth(t *testing.T) {
	tests := []struct {
		in   Date
		n    int
		want Date
	}{
		{MustParse("2023-02-28"), 1, MustParse("2023-03-28")},
		{MustParse("2023-12-15"), 1, MustParse("2024-01-15")},
		{MustParse("2023-03-15"), -1, MustParse("2023-02-15")},
		// overflow normalizes like time.Date does
		{MustParse("2023-01-31"), 1, MustParse("2023-03-03")},
	}
	for _, test := range tests {
		if got := test.in.AddMonth(test.n); got != test.want {
			t.Errorf("%s.AddMonth(%d) = %s, want %s", test.in, test.n, got, test.want)
		}
	}
}

func TestStartEndOfMonth(t *testing.T) {
	d := MustParse("2023-02-14")
	if got := d.StartOfMonth(); got != MustParse("2023-02-01") {
		t.Errorf("StartOfMonth = %s, want 2023-02-01", got)
	}
	if got := d.EndOfMonth(); got != MustParse("2023-02-28") {
		t.Errorf("EndOfMonth = %s, want 2023-02-28", got)
	}
	if got := MustParse("2024-02-10").EndOfMonth(); got != MustParse("2024-02-29") {
		t.Errorf("EndOfMonth leap = %s, want 2024-02-29", got)
	}
}

func TestMin(t *testing.T) {
	a, b := MustParse("2023-01-01"), MustParse("2023-06-01")
	if got := Min(a, b); got != a {
		t.Errorf("Min = %s, want %s", got, a)
	}
	if got := Min(b, a); got != a {
		t.Errorf("Min = %s, want %s", got, a)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("2021-01-02")
	raw, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"2021-01-02"` {
		t.Errorf("MarshalJSON = %s", raw)
	}
	var back Date
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}
