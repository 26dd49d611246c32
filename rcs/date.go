package rcs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InvalidDateError reports an out-of-range year/month/day in a delta's date
// field.
type InvalidDateError struct {
	Year, Month, Day int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("rcs: invalid date %04d-%02d-%02d", e.Year, e.Month, e.Day)
}

// InvalidTimeError reports an out-of-range hour/minute/second.
type InvalidTimeError struct {
	Hour, Minute, Second int
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("rcs: invalid time %02d:%02d:%02d", e.Hour, e.Minute, e.Second)
}

// ParseDate parses an RCS date field: six dot-separated decimals, year
// month day hour minute second. Two-digit years are expanded by adding
// 1900. A seconds field of 60 or more is clamped to 59 and (seconds-59)*1000
// milliseconds are added back, to survive leap-second encoding found in some
// historical RCS files; since time.Time has no leap seconds, the result lies
// past the end of that minute (seconds 61 gives hh:mm+1:01).
func ParseDate(text string) (time.Time, error) {
	fields := strings.Split(text, ".")
	if len(fields) != 6 {
		return time.Time{}, fmt.Errorf("rcs: malformed date %q: want 6 fields, have %d", text, len(fields))
	}
	nums := make([]int, 6)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, fmt.Errorf("rcs: malformed date %q: %w", text, err)
		}
		nums[i] = v
	}
	year, month, day, hour, minute, second := nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]
	if year < 100 {
		year += 1900
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, &InvalidDateError{Year: year, Month: month, Day: day}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, &InvalidTimeError{Hour: hour, Minute: minute, Second: second}
	}
	var millis time.Duration
	if second >= 60 {
		millis = time.Duration(second-59) * 1000 * time.Millisecond
		second = 59
	} else if second < 0 {
		return time.Time{}, &InvalidTimeError{Hour: hour, Minute: minute, Second: second}
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return t.Add(millis), nil
}
