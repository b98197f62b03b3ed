package lunar

import (
	"errors"
	"testing"

	"github.com/vdhoang/botui/internal/apperr"
)

// Anchors verified against published Vietnamese lunisolar calendars (UTC+7).
func TestToSolar_KnownDates(t *testing.T) {
	tests := []struct {
		name       string
		year       int
		lunarMonth int
		lunarDay   int
		wantMonth  int
		wantDay    int
	}{
		{"Tet 2023", 2023, 1, 1, 1, 22},
		{"Tet 2024", 2024, 1, 1, 2, 10},
		{"Tet 2025", 2025, 1, 1, 1, 29},
		{"Mid-Autumn 2024", 2024, 8, 15, 9, 17},
		{"Hung Kings 2024", 2024, 3, 10, 4, 18},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, d, err := ToSolar(tc.year, tc.lunarMonth, tc.lunarDay)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m != tc.wantMonth || d != tc.wantDay {
				t.Errorf("got %d/%d, want %d/%d", d, m, tc.wantDay, tc.wantMonth)
			}
		})
	}
}

func TestToSolar_Deterministic(t *testing.T) {
	m1, d1, err := ToSolar(2024, 8, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		m2, d2, err := ToSolar(2024, 8, 15)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m1 != m2 || d1 != d2 {
			t.Fatalf("conversion not stable: %d/%d vs %d/%d", d1, m1, d2, m2)
		}
	}
}

func TestToSolar_RangeValidation(t *testing.T) {
	cases := []struct{ month, day int }{
		{0, 1},
		{13, 1},
		{1, 0},
		{1, 31},
		{-1, 10},
	}
	for _, tc := range cases {
		if _, _, err := ToSolar(2024, tc.month, tc.day); !errors.Is(err, apperr.ErrInvalidDate) {
			t.Errorf("ToSolar(2024, %d, %d) err = %v, want ErrInvalidDate", tc.month, tc.day, err)
		}
	}
}

func TestToSolar_NonexistentDay(t *testing.T) {
	// Lunar month 1 of 2024 has 29 days; day 30 does not exist and must not
	// silently map into the following month.
	if _, _, err := ToSolar(2024, 1, 30); !errors.Is(err, apperr.ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
}

func TestSolarToLunar_RoundTrip(t *testing.T) {
	// Feb 10 2024 is lunar New Year 1/1.
	ld, lm, ly, leap := solarToLunar(10, 2, 2024)
	if ld != 1 || lm != 1 || ly != 2024 || leap {
		t.Errorf("got %d/%d/%d leap=%v, want 1/1/2024 leap=false", ld, lm, ly, leap)
	}

	// Sep 17 2024 is lunar 15/8.
	ld, lm, ly, leap = solarToLunar(17, 9, 2024)
	if ld != 15 || lm != 8 || ly != 2024 || leap {
		t.Errorf("got %d/%d/%d leap=%v, want 15/8/2024 leap=false", ld, lm, ly, leap)
	}
}

func TestJulianDayRoundTrip(t *testing.T) {
	for _, d := range []struct{ dd, mm, yy int }{
		{1, 1, 2000},
		{29, 2, 2024},
		{31, 12, 1999},
		{10, 2, 2024},
	} {
		jd := jdFromDate(d.dd, d.mm, d.yy)
		dd, mm, yy := jdToDate(jd)
		if dd != d.dd || mm != d.mm || yy != d.yy {
			t.Errorf("round trip %d/%d/%d -> %d/%d/%d", d.dd, d.mm, d.yy, dd, mm, yy)
		}
	}
}
