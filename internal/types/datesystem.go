package types

import "time"

// DateSystem selects which epoch a date/time serial number is interpreted
// against. Excel ships two: the default 1900 system (which, for historical
// lotus-123 compatibility, treats 1900 as a leap year and so has a phantom
// Feb 29 1900 that doesn't exist), and the 1904 system used by old Mac
// workbooks.
type DateSystem uint8

const (
	Excel1900 DateSystem = iota
	Excel1904
)

var (
	epoch1900 = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// phantomDay is the serial number Excel's 1900 system assigns to the
// nonexistent Feb 29 1900. Serials at or above this value are one day
// ahead of their true calendar date under naive epoch arithmetic, so
// SerialToTime/TimeToSerial both special-case it.
const phantomDay = 60

// SerialToTime converts a date serial number to a calendar time under ds.
func (ds DateSystem) SerialToTime(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)

	switch ds {
	case Excel1904:
		t := epoch1904.AddDate(0, 0, days)
		return t.Add(time.Duration(frac * float64(24*time.Hour)))
	default:
		if days >= phantomDay {
			days--
		}
		t := epoch1900.AddDate(0, 0, days)
		return t.Add(time.Duration(frac * float64(24*time.Hour)))
	}
}

// TimeToSerial converts a calendar time to a date serial number under ds.
func (ds DateSystem) TimeToSerial(t time.Time) float64 {
	t = t.UTC()
	var epoch time.Time
	switch ds {
	case Excel1904:
		epoch = epoch1904
	default:
		epoch = epoch1900
	}

	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(dayStart.Sub(epoch).Hours() / 24)
	if ds == Excel1900 && days >= phantomDay {
		days++
	}
	frac := float64(t.Sub(dayStart)) / float64(24*time.Hour)
	return float64(days) + frac
}

// IsValidSerial reports whether serial maps to a representable date under
// ds (Excel rejects negative serials and the 1900-system phantom day itself
// is addressable but denotes no real calendar date).
func (ds DateSystem) IsValidSerial(serial float64) bool {
	return serial >= 0
}
