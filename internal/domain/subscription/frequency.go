package subscription

import "time"

// Frequency is how often a subscription bills and ships
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	Frequency4Weeks   Frequency = "4-weeks"
	Frequency6Weeks   Frequency = "6-weeks"
	Frequency8Weeks   Frequency = "8-weeks"
)

// ParseFrequency accepts the canonical values plus the "bi-weekly" spelling
func ParseFrequency(s string) (Frequency, bool) {
	if s == "bi-weekly" {
		return FrequencyBiweekly, true
	}
	f := Frequency(s)
	return f, f.IsValid()
}

// IsValid returns true if the frequency is one we bill on
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		Frequency4Weeks, Frequency6Weeks, Frequency8Weeks:
		return true
	default:
		return false
	}
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// Advance returns the billing date one cycle after from.
// Unknown frequencies advance by a calendar month.
func (f Frequency) Advance(from time.Time) time.Time {
	from = DateOf(from)
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return from.AddDate(0, 0, 14)
	case Frequency4Weeks:
		return from.AddDate(0, 0, 28)
	case Frequency6Weeks:
		return from.AddDate(0, 0, 42)
	case Frequency8Weeks:
		return from.AddDate(0, 0, 56)
	default:
		return addMonthClamped(from)
	}
}

// addMonthClamped moves to the same day next month, or the last day of next
// month when it is shorter (Jan 31 -> Feb 28).
func addMonthClamped(from time.Time) time.Time {
	y, m, d := from.Date()
	firstOfNext := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar date in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
