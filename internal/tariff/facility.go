package tariff

import "github.com/shopspring/decimal"

// Facility tariff bands, currency per kVAh. The 03:00-05:00 stretch is
// Normal, not Peak: the Peak band ends at 03:00.
var facilitySchedule = mustSchedule(
	Band{StartHour: 5, EndHour: 10, Label: "Off-Peak", Rate: decimal.RequireFromString("6.035")},
	Band{StartHour: 10, EndHour: 19, Label: "Normal", Rate: decimal.RequireFromString("7.10")},
	Band{StartHour: 19, EndHour: 3, Label: "Peak", Rate: decimal.RequireFromString("8.165")},
	Band{StartHour: 3, EndHour: 5, Label: "Normal", Rate: decimal.RequireFromString("7.10")},
)

// Default returns the facility's fixed time-of-day schedule. It is constant
// for this installation and not editable at runtime.
func Default() Schedule {
	return facilitySchedule
}

func mustSchedule(bands ...Band) Schedule {
	s, err := NewSchedule(bands...)
	if err != nil {
		panic(err)
	}
	return s
}
