package domain

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRange_RejectsInvertedBounds(t *testing.T) {
	_, err := NewDateRange(day(2023, 2, 1), day(2023, 1, 1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}
}

func TestNewDateRange_SingleDay(t *testing.T) {
	dr, err := NewDateRange(day(2023, 1, 2), day(2023, 1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dr.Contains(day(2023, 1, 2)) {
		t.Error("single day range should contain its own day")
	}
}

func TestDateRange_ContainsIsInclusive(t *testing.T) {
	dr, err := NewDateRange(day(2023, 1, 1), day(2023, 1, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{day(2022, 12, 31), false},
		{day(2023, 1, 1), true},
		{day(2023, 1, 15), true},
		{day(2023, 1, 31), true},
		{time.Date(2023, 1, 31, 23, 59, 0, 0, time.UTC), true},
		{day(2023, 2, 1), false},
	}
	for _, c := range cases {
		if got := dr.Contains(c.at); got != c.want {
			t.Errorf("Contains(%s) = %v, want %v", c.at, got, c.want)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	dr, err := ParseDateRange("2010-02-05", "2012-10-26")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dr.String() != "2010-02-05..2012-10-26" {
		t.Errorf("String() = %s", dr.String())
	}

	if _, err := ParseDateRange("05/02/2010", "2012-10-26"); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("bad layout error = %v, want ErrInvalidRange", err)
	}
}
