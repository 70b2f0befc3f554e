package models

// Zone maps a physical energy meter to a named factory area.
type Zone struct {
	MeterID  int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// zones mirrors the facility's sub-metering plan across blocks C-49 and C-50.
var zones = []Zone{
	{MeterID: 1, Name: "SPRAY+ EPL", Category: "C-49"},
	{MeterID: 2, Name: "PLATING", Category: "C-49"},
	{MeterID: 3, Name: "COMPRESSOR", Category: "C-49"},
	{MeterID: 4, Name: "BUFFING + VIBRATOR + ETP", Category: "C-49"},
	{MeterID: 5, Name: "TERRACE", Category: "C-49"},
	{MeterID: 6, Name: "SPRAY+ EPL", Category: "C-50"},
	{MeterID: 7, Name: "CHINA BUFFING", Category: "C-50"},
	{MeterID: 8, Name: "BUFFING+CASTING M/C", Category: "C-50"},
	{MeterID: 9, Name: "DIE CASTING", Category: "C-50"},
	{MeterID: 10, Name: "RUMBLE", Category: "C-50"},
	{MeterID: 11, Name: "TOOL ROOM", Category: "C-50"},
}

// Zones returns the full meter-to-zone mapping in meter order.
func Zones() []Zone {
	out := make([]Zone, len(zones))
	copy(out, zones)
	return out
}

// ZoneByMeter looks up the zone for a meter id.
func ZoneByMeter(meterID int) (Zone, bool) {
	for _, z := range zones {
		if z.MeterID == meterID {
			return z, true
		}
	}
	return Zone{}, false
}

// ValidMeterID reports whether id addresses one of the facility meters.
func ValidMeterID(id int) bool {
	return id >= 1 && id <= MeterCount
}
