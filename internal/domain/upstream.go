package domain

// Raw upstream payload shapes. These mirror what the providers actually send
// and are decoded as-is by the adapter clients; all normalization happens in
// the service layer. Every field is optional from the decoder's point of
// view — providers omit fields freely.

// RawStop is one candidate from a nearest-stop query.
type RawStop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// RawDeparture is one unprocessed departure-board entry.
type RawDeparture struct {
	Destination string  `json:"destination"`
	Scheduled   string  `json:"scheduled"` // timetabled departure timestamp
	Expected    string  `json:"expected"`  // realtime estimate, often absent
	Arrival     string  `json:"arrival_at_destination"`
	Line        RawLine `json:"line"`
	StopArea    RawArea `json:"stop_area"`
}

// RawLine describes the line serving a departure.
type RawLine struct {
	Designation   string `json:"designation"`
	TransportMode string `json:"transport_mode"` // provider vehicle code, e.g. "BUS"
	Operator      string `json:"operator"`
}

// RawArea is the stop area a departure leaves from.
type RawArea struct {
	Name string `json:"name"`
}

// RawDeviation is one unprocessed incident record. The incident provider
// nests deviations inside situations; adapters flatten them before handing
// them to the normalizer.
type RawDeviation struct {
	ID          string      `json:"Id"`
	Header      string      `json:"Header"`
	Message     string      `json:"Message"`
	MessageType string      `json:"MessageType"` // provider vocabulary, e.g. "Vägarbete"
	Priority    *int        `json:"Priority"`    // nil when the provider omits it
	RoadNumber  string      `json:"RoadNumber"`
	StartTime   string      `json:"StartTime"`
	EndTime     string      `json:"EndTime"`
	VersionTime string      `json:"VersionTime"`
	Geometry    RawGeometry `json:"Geometry"`
}

// RawGeometry holds the embedded point encoding of a deviation.
type RawGeometry struct {
	Point RawPoint `json:"Point"`
}

// RawPoint carries the WKT-style "POINT (lon lat)" string.
type RawPoint struct {
	WGS84 string `json:"WGS84"`
}
