package returns

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
	}{
		{"2025-07-01", NewDate(2025, time.July, 1)},
		{"2025-7-1", NewDate(2025, time.July, 1)},
		{" 2025-07-01 ", NewDate(2025, time.July, 1)},
		{"0d", Today()},
		{"-1y", NewDate(Today().Year()-1, Today().Month(), Today().Day())},
		{"+2w", Today().Add(14)},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDate(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "1y", "yesterday", "2025/07/01"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) expected an error", in)
		}
	}
}

func TestDate_Normalization(t *testing.T) {
	// Out-of-range components roll over like time.Date.
	if got, want := NewDate(2025, time.January, 32), NewDate(2025, time.February, 1); got != want {
		t.Errorf("NewDate(2025, 1, 32) = %s, want %s", got, want)
	}
	if got, want := NewDate(2025, time.March, 0), NewDate(2025, time.February, 28); got != want {
		t.Errorf("NewDate(2025, 3, 0) = %s, want %s", got, want)
	}
}

func TestDate_Sub(t *testing.T) {
	cases := []struct {
		a, b Date
		want int
	}{
		{NewDate(2021, time.January, 1), NewDate(2020, time.January, 1), 366}, // leap year
		{NewDate(2020, time.January, 2), NewDate(2020, time.January, 1), 1},
		{NewDate(2020, time.January, 1), NewDate(2020, time.January, 2), -1},
		{NewDate(2020, time.January, 1), NewDate(2020, time.January, 1), 0},
	}
	for _, c := range cases {
		if got := c.a.Sub(c.b); got != c.want {
			t.Errorf("%s.Sub(%s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestDate_StartEndOf(t *testing.T) {
	d := NewDate(2025, time.August, 14) // a Thursday
	cases := []struct {
		period     Period
		start, end Date
	}{
		{Daily, d, d},
		{Weekly, NewDate(2025, time.August, 11), NewDate(2025, time.August, 17)},
		{Monthly, NewDate(2025, time.August, 1), NewDate(2025, time.August, 31)},
		{Quarterly, NewDate(2025, time.July, 1), NewDate(2025, time.September, 30)},
		{Yearly, NewDate(2025, time.January, 1), NewDate(2025, time.December, 31)},
	}
	for _, c := range cases {
		if got := d.StartOf(c.period); got != c.start {
			t.Errorf("StartOf(%s) = %s, want %s", c.period, got, c.start)
		}
		if got := d.EndOf(c.period); got != c.end {
			t.Errorf("EndOf(%s) = %s, want %s", c.period, got, c.end)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.July, 1)
	raw, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if got, want := string(raw), `"2025-07-01"`; got != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
	var back Date
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if back != d {
		t.Errorf("roundtrip = %s, want %s", back, d)
	}
}
