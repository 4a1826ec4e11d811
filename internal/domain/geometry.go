package domain

import (
	"strconv"
	"strings"
)

// ExtractPoint parses an embedded textual point encoding of the form
// "TAG(longitude latitude)", e.g. "POINT (18.0686 59.3293)". Longitude
// precedes latitude in the encoding.
//
// It returns ok=false on any malformation: missing or empty input, missing
// parentheses, wrong token count, non-numeric tokens, or out-of-range
// values. It never panics.
func ExtractPoint(raw string) (Coordinate, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Coordinate{}, false
	}

	open := strings.Index(raw, "(")
	closing := strings.LastIndex(raw, ")")
	if open < 0 || closing <= open {
		return Coordinate{}, false
	}

	tokens := strings.Fields(raw[open+1 : closing])
	if len(tokens) != 2 {
		return Coordinate{}, false
	}

	lng, errLng := strconv.ParseFloat(tokens[0], 64)
	lat, errLat := strconv.ParseFloat(tokens[1], 64)
	if errLng != nil || errLat != nil {
		return Coordinate{}, false
	}

	c := Coordinate{Lat: lat, Lng: lng}
	// Range check also rejects NaN, which ParseFloat accepts.
	if !c.Valid() {
		return Coordinate{}, false
	}
	return c, true
}
