package domain

import "time"

// Coordinate is a WGS-84 latitude/longitude pair. Passed by value everywhere;
// never mutated after creation.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is within WGS-84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Stop is a transit stop returned by nearest-stop resolution. Lifetime is one
// resolution call; nothing is persisted.
type Stop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// VehicleCategory is the canonical vehicle classification for a departure.
type VehicleCategory string

const (
	VehicleBus     VehicleCategory = "Bus"
	VehicleTrain   VehicleCategory = "Train"
	VehicleMetro   VehicleCategory = "Metro"
	VehicleTram    VehicleCategory = "Tram"
	VehicleFerry   VehicleCategory = "Ferry"
	VehicleUnknown VehicleCategory = "Unknown"
)

// Unknown is the sentinel for time fields that could not be computed from
// upstream data.
const Unknown = "unknown"

// CanonicalDeparture is one normalized departure-board entry. Entries keep
// upstream order; no re-sorting, de-duplication, or merging by line.
type CanonicalDeparture struct {
	DepartureStop   string          `json:"departureStop"`
	ArrivalStop     string          `json:"arrivalStop"`
	DepartureTime   string          `json:"departureTime"`           // HH:MM, always present
	ArrivalTime     string          `json:"arrivalTime"`             // HH:MM or "unknown"
	Duration        string          `json:"duration"`                // "M min" / "H h M min" or "unknown"
	DurationMinutes *int            `json:"durationMinutes,omitempty"` // nil when duration is unknown
	VehicleCategory VehicleCategory `json:"vehicleCategory"`
	Icon            string          `json:"icon"`
	DisplayNumber   string          `json:"displayNumber"`
	Operator        string          `json:"operator"`
}

// Severity is the four-valued impact classification of an incident.
type Severity string

const (
	SeverityHigh    Severity = "High"
	SeverityMedium  Severity = "Medium"
	SeverityLow     Severity = "Low"
	SeverityUnknown Severity = "Unknown"
)

// CanonicalIncident is a normalized road incident. Location is always a valid
// coordinate; records that fail geometry extraction are dropped upstream of
// this type, never emitted with a zero location.
type CanonicalIncident struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Location     Coordinate `json:"location"`
	Severity     Severity   `json:"severity"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	RoadNumber   string     `json:"roadNumber"`
	ModifiedTime time.Time  `json:"modifiedTime"`
}
