// Package calendar maps simulation time onto the Imperial calendar.
// A year has 365 days: day 001 is a holiday, followed by 13 months of
// 28 days starting on days 002, 030, 058 ... 338.
package calendar

import (
	"fmt"
	"math"
)

const (
	DaysPerYear   = 365
	DaysPerMonth  = 28
	MonthsPerYear = 13
	FirstMonthDay = 2
)

// Calendar anchors simulation time 0 to an Imperial date.
type Calendar struct {
	StartYear int
	StartDay  int // 1..365
}

// New returns a calendar starting at the given year and day of year.
func New(year, day int) Calendar {
	if day < 1 || day > DaysPerYear {
		day = 1
	}
	return Calendar{StartYear: year, StartDay: day}
}

// Date is a point on the Imperial calendar.
type Date struct {
	Year     int
	Day      int     // 1..365
	Fraction float64 // 0 <= f < 1
}

// Date converts simulation time (days since start) to a calendar date.
func (c Calendar) Date(t float64) Date {
	abs := float64(c.StartDay-1) + t
	whole := math.Floor(abs)
	idx := int(whole)
	return Date{
		Year:     c.StartYear + idx/DaysPerYear,
		Day:      idx%DaysPerYear + 1,
		Fraction: abs - whole,
	}
}

// Year returns the calendar year at simulation time t.
func (c Calendar) Year(t float64) int {
	return c.Date(t).Year
}

// String formats the date as DDD.FF-YYYY.
func (d Date) String() string {
	frac := int(d.Fraction*100 + 1e-6)
	if frac > 99 {
		frac = 99
	}
	return fmt.Sprintf("%03d.%02d-%d", d.Day, frac, d.Year)
}

// Month returns the month (1..13) of the date, or 0 for the holiday.
func (d Date) Month() int {
	return MonthOf(d.Day)
}

// MonthOf returns the month (1..13) containing a day of year, or 0 for day 1.
func MonthOf(day int) int {
	if day < FirstMonthDay {
		return 0
	}
	return (day-FirstMonthDay)/DaysPerMonth + 1
}

// IsMonthStart reports whether a day of year is the first day of a month.
func IsMonthStart(day int) bool {
	return day >= FirstMonthDay && (day-FirstMonthDay)%DaysPerMonth == 0
}

// DaysUntilNextMonth returns the whole days from a day of year to the next
// month start strictly after it, wrapping into the next year.
func DaysUntilNextMonth(day int) int {
	if day < FirstMonthDay {
		return FirstMonthDay - day
	}
	next := FirstMonthDay + ((day-FirstMonthDay)/DaysPerMonth+1)*DaysPerMonth
	if next > DaysPerYear {
		return DaysPerYear - day + FirstMonthDay
	}
	return next - day
}

// FirstPayday returns the simulation time of the first month start at or
// after time 0.
func (c Calendar) FirstPayday() float64 {
	if IsMonthStart(c.StartDay) {
		return 0
	}
	return float64(DaysUntilNextMonth(c.StartDay))
}

// NextPayday returns the next month start strictly after time t.
func (c Calendar) NextPayday(t float64) float64 {
	d := c.Date(t)
	return t - d.Fraction + float64(DaysUntilNextMonth(d.Day))
}
