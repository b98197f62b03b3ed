// Package lunar implements Vietnamese lunisolar calendar conversion and the
// recurring lunar-event projection used by the lunar events panel.
//
// The conversion follows the astronomical method (new-moon instants and
// apparent solar longitude) evaluated for the UTC+7 meridian, which is the
// reference used by the Vietnamese civil lunar calendar. It handles leap
// months and 29/30-day month lengths exactly.
package lunar

import (
	"fmt"
	"math"

	"github.com/vdhoang/botui/internal/apperr"
)

// timeZone is the calendar reference meridian (Indochina Time).
const timeZone = 7.0

// synodicMonth is the mean length of a lunation in days.
const synodicMonth = 29.530588853

// newMoonEpoch is the Julian day of the first new moon of the series (k=0).
const newMoonEpoch = 2415021.076998695

// ToSolar converts a lunar (day, month) pair anchored in referenceYear to the
// solar month and day on which that lunar date falls. The occurrence may land
// in an adjacent solar year for lunar months 11 and 12; only month and day are
// surfaced because recurring anniversaries are re-anchored each year anyway.
//
// Returns apperr.ErrInvalidDate when the inputs are out of range or the lunar
// date does not exist (day 30 of a 29-day month).
func ToSolar(referenceYear, lunarMonth, lunarDay int) (solarMonth, solarDay int, err error) {
	if lunarMonth < 1 || lunarMonth > 12 || lunarDay < 1 || lunarDay > 30 {
		return 0, 0, fmt.Errorf("lunar: %d/%d out of range: %w", lunarDay, lunarMonth, apperr.ErrInvalidDate)
	}

	jd, err := lunarToJD(lunarDay, lunarMonth, referenceYear, false)
	if err != nil {
		return 0, 0, err
	}
	dd, mm, yy := jdToDate(jd)

	// Round-trip check: day 30 in a short month silently lands on day 1 of
	// the following lunar month, which means the requested date never occurs.
	ld, lm, _, _ := solarToLunar(dd, mm, yy)
	if ld != lunarDay || lm != lunarMonth {
		return 0, 0, fmt.Errorf("lunar: %d/%d does not exist in %d: %w",
			lunarDay, lunarMonth, referenceYear, apperr.ErrInvalidDate)
	}
	return mm, dd, nil
}

// jdFromDate returns the Julian day number of a (proleptic Gregorian /
// Julian before 1582-10-15) calendar date at noon.
func jdFromDate(dd, mm, yy int) int {
	a := (14 - mm) / 12
	y := yy + 4800 - a
	m := mm + 12*a - 3
	jd := dd + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	if jd < 2299161 {
		jd = dd + (153*m+2)/5 + 365*y + y/4 - 32083
	}
	return jd
}

// jdToDate is the inverse of jdFromDate.
func jdToDate(jd int) (dd, mm, yy int) {
	var a, b, c int
	if jd > 2299160 {
		a = jd + 32044
		b = (4*a + 3) / 146097
		c = a - (b*146097)/4
	} else {
		b = 0
		c = jd + 32082
	}
	d := (4*c + 3) / 1461
	e := c - (1461*d)/4
	m := (5*e + 2) / 153
	dd = e - (153*m+2)/5 + 1
	mm = m + 2 - 12*(m/10)
	yy = b*100 + d - 4800 + m/10
	return dd, mm, yy
}

// newMoon returns the Julian day (with fraction) of the k-th new moon after
// the epoch, using the truncated series from Astronomical Algorithms.
func newMoon(k int) float64 {
	t := float64(k) / 1236.85
	t2 := t * t
	t3 := t2 * t
	dr := math.Pi / 180

	jd1 := 2415020.75933 + 29.53058868*float64(k) + 0.0001178*t2 - 0.000000155*t3
	jd1 += 0.00033 * math.Sin((166.56+132.87*t-0.009173*t2)*dr)

	m := 359.2242 + 29.10535608*float64(k) - 0.0000333*t2 - 0.00000347*t3
	mpr := 306.0253 + 385.81691806*float64(k) + 0.0107306*t2 + 0.00001236*t3
	f := 21.2964 + 390.67050646*float64(k) - 0.0016528*t2 - 0.00000239*t3

	c1 := (0.1734-0.000393*t)*math.Sin(m*dr) + 0.0021*math.Sin(2*dr*m)
	c1 = c1 - 0.4068*math.Sin(mpr*dr) + 0.0161*math.Sin(dr*2*mpr)
	c1 = c1 - 0.0004*math.Sin(dr*3*mpr)
	c1 = c1 + 0.0104*math.Sin(dr*2*f) - 0.0051*math.Sin(dr*(m+mpr))
	c1 = c1 - 0.0074*math.Sin(dr*(m-mpr)) + 0.0004*math.Sin(dr*(2*f+m))
	c1 = c1 - 0.0004*math.Sin(dr*(2*f-m)) - 0.0006*math.Sin(dr*(2*f+mpr))
	c1 = c1 + 0.0010*math.Sin(dr*(2*f-mpr)) + 0.0005*math.Sin(dr*(2*mpr+m))

	var deltat float64
	if t < -11 {
		deltat = 0.001 + 0.000839*t + 0.0002261*t2 - 0.00000845*t3 - 0.000000081*t*t3
	} else {
		deltat = -0.000278 + 0.000265*t + 0.000262*t2
	}
	return jd1 + c1 - deltat
}

// sunLongitude returns the apparent solar ecliptic longitude, in radians,
// at the instant jdn (Julian day with fraction).
func sunLongitude(jdn float64) float64 {
	t := (jdn - 2451545.0) / 36525
	t2 := t * t
	dr := math.Pi / 180

	m := 357.52910 + 35999.05030*t - 0.0001559*t2 - 0.00000048*t*t2
	l0 := 280.46645 + 36000.76983*t + 0.0003032*t2
	dl := (1.914600 - 0.004817*t - 0.000014*t2) * math.Sin(dr*m)
	dl += (0.019993-0.000101*t)*math.Sin(dr*2*m) + 0.000290*math.Sin(dr*3*m)

	l := (l0 + dl) * dr
	l -= 2 * math.Pi * math.Floor(l/(2*math.Pi))
	return l
}

// sunLongitudeIndex returns which of the twelve 30-degree solar terms the
// sun occupies at local midnight starting the given day.
func sunLongitudeIndex(dayNumber int) int {
	return int(sunLongitude(float64(dayNumber)-0.5-timeZone/24) / math.Pi * 6)
}

// newMoonDay returns the local calendar day of the k-th new moon.
func newMoonDay(k int) int {
	return int(newMoon(k) + 0.5 + timeZone/24)
}

// lunarMonth11 returns the day of the new moon starting lunar month 11
// (the month containing the winter solstice) of the given solar year.
func lunarMonth11(yy int) int {
	off := jdFromDate(31, 12, yy) - 2415021
	k := int(float64(off) / synodicMonth)
	nm := newMoonDay(k)
	if sunLongitudeIndex(nm) >= 9 {
		nm = newMoonDay(k - 1)
	}
	return nm
}

// leapMonthOffset finds the index, counted from the month-11 new moon a11,
// of the first month that does not contain a major solar term. That month
// is the leap month of a 13-month lunar year.
func leapMonthOffset(a11 int) int {
	k := int((float64(a11)-newMoonEpoch)/synodicMonth + 0.5)
	last := 0
	i := 1
	arc := sunLongitudeIndex(newMoonDay(k + i))
	for {
		last = arc
		i++
		arc = sunLongitudeIndex(newMoonDay(k + i))
		if arc == last || i >= 14 {
			break
		}
	}
	return i - 1
}

// lunarToJD returns the Julian day of a lunar date.
func lunarToJD(lunarDay, lunarMonth, lunarYear int, lunarLeap bool) (int, error) {
	var a11, b11 int
	if lunarMonth < 11 {
		a11 = lunarMonth11(lunarYear - 1)
		b11 = lunarMonth11(lunarYear)
	} else {
		a11 = lunarMonth11(lunarYear)
		b11 = lunarMonth11(lunarYear + 1)
	}

	k := int(0.5 + (float64(a11)-newMoonEpoch)/synodicMonth)
	off := lunarMonth - 11
	if off < 0 {
		off += 12
	}
	if b11-a11 > 365 {
		leapOff := leapMonthOffset(a11)
		leapMonth := leapOff - 2
		if leapMonth < 0 {
			leapMonth += 12
		}
		if lunarLeap && lunarMonth != leapMonth {
			return 0, fmt.Errorf("lunar: month %d is not the leap month: %w", lunarMonth, apperr.ErrInvalidDate)
		}
		if lunarLeap || off >= leapOff {
			off++
		}
	}
	monthStart := newMoonDay(k + off)
	return monthStart + lunarDay - 1, nil
}

// solarToLunar converts a solar calendar date to its lunar equivalent.
func solarToLunar(dd, mm, yy int) (lunarDay, lunarMonth, lunarYear int, lunarLeap bool) {
	dayNumber := jdFromDate(dd, mm, yy)
	k := int((float64(dayNumber) - newMoonEpoch) / synodicMonth)
	monthStart := newMoonDay(k + 1)
	if monthStart > dayNumber {
		monthStart = newMoonDay(k)
	}

	a11 := lunarMonth11(yy)
	b11 := a11
	if a11 >= monthStart {
		lunarYear = yy
		a11 = lunarMonth11(yy - 1)
	} else {
		lunarYear = yy + 1
		b11 = lunarMonth11(yy + 1)
	}

	lunarDay = dayNumber - monthStart + 1
	diff := (monthStart - a11) / 29
	lunarMonth = diff + 11
	if b11-a11 > 365 {
		leapDiff := leapMonthOffset(a11)
		if diff >= leapDiff {
			lunarMonth = diff + 10
			if diff == leapDiff {
				lunarLeap = true
			}
		}
	}
	if lunarMonth > 12 {
		lunarMonth -= 12
	}
	if lunarMonth >= 11 && diff < 4 {
		lunarYear--
	}
	return lunarDay, lunarMonth, lunarYear, lunarLeap
}
