package calendar

import "testing"

func TestDateString(t *testing.T) {
	cases := []struct {
		cal  Calendar
		t    float64
		want string
	}{
		{New(1104, 360), 0, "360.00-1104"},
		{New(1104, 360), 0.5, "360.50-1104"},
		{New(1104, 360), 5.25, "365.25-1104"},
		{New(1104, 360), 6, "001.00-1105"},
		{New(1105, 1), 365 + 30, "031.00-1106"},
	}
	for _, tc := range cases {
		if got := tc.cal.Date(tc.t).String(); got != tc.want {
			t.Errorf("Date(%v) = %s, want %s", tc.t, got, tc.want)
		}
	}
}

func TestMonthOf(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 29: 1, 30: 2, 58: 3, 338: 13, 365: 13}
	for day, want := range cases {
		if got := MonthOf(day); got != want {
			t.Errorf("MonthOf(%d) = %d, want %d", day, got, want)
		}
	}
}

func TestDaysUntilNextMonth(t *testing.T) {
	cases := map[int]int{
		1:   1,
		2:   28,
		10:  20,
		30:  28,
		338: 29,
		350: 17,
		365: 2,
	}
	for day, want := range cases {
		if got := DaysUntilNextMonth(day); got != want {
			t.Errorf("DaysUntilNextMonth(%d) = %d, want %d", day, got, want)
		}
	}
}

func TestPaydaysOverNinetyDays(t *testing.T) {
	cal := New(1104, 2)
	count := 0
	for pay := cal.FirstPayday(); pay < 90; pay = cal.NextPayday(pay) {
		if !IsMonthStart(cal.Date(pay).Day) {
			t.Fatalf("payday %.2f is not a month start", pay)
		}
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 paydays (days 0, 28, 56, 84), got %d", count)
	}
}

func TestFirstPaydayMidMonth(t *testing.T) {
	cal := New(1104, 15)
	if got := cal.FirstPayday(); got != 15 {
		t.Fatalf("expected first payday 15 days out (day 030), got %v", got)
	}
}

func TestYearRollover(t *testing.T) {
	cal := New(1104, 350)
	pay := cal.NextPayday(0)
	d := cal.Date(pay)
	if d.Year != 1105 || d.Day != 2 {
		t.Fatalf("expected 002-1105, got %s", d)
	}
}
