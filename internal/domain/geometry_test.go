package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPoint_LongitudeFirst(t *testing.T) {
	// The encoding is "POINT(lon lat)". Swapping the order is the classic
	// regression; this test pins lng to the first token and lat to the second.
	c, ok := ExtractPoint("POINT (18.0686 59.3293)")
	require.True(t, ok)
	assert.Equal(t, 18.0686, c.Lng)
	assert.Equal(t, 59.3293, c.Lat)
}

func TestExtractPoint_Valid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		lng  float64
		lat  float64
	}{
		{"no space after tag", "POINT(17.6389 59.8586)", 17.6389, 59.8586},
		{"space after tag", "POINT (13.0038 55.6050)", 13.0038, 55.6050},
		{"negative longitude", "POINT (-0.1276 51.5072)", -0.1276, 51.5072},
		{"southern hemisphere", "POINT (151.2093 -33.8688)", 151.2093, -33.8688},
		{"integer tokens", "POINT(18 59)", 18, 59},
		{"surrounding whitespace", "  POINT (18.06 59.33)  ", 18.06, 59.33},
		{"other tag", "SRID=4326;POINT (18.06 59.33)", 18.06, 59.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ExtractPoint(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.lng, c.Lng)
			assert.Equal(t, tt.lat, c.Lat)
		})
	}
}

func TestExtractPoint_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"no parentheses", "POINT 18.06 59.33"},
		{"unclosed parenthesis", "POINT (18.06 59.33"},
		{"empty parentheses", "POINT ()"},
		{"one token", "POINT (18.06)"},
		{"three tokens", "POINT (18.06 59.33 0)"},
		{"non-numeric longitude", "POINT (east 59.33)"},
		{"non-numeric latitude", "POINT (18.06 north)"},
		{"latitude above 90", "POINT (18.06 92.1)"},
		{"latitude below -90", "POINT (18.06 -90.5)"},
		{"longitude above 180", "POINT (181.0 59.33)"},
		{"longitude below -180", "POINT (-180.5 59.33)"},
		{"NaN token", "POINT (NaN 59.33)"},
		{"comma separated", "POINT (18.06,59.33)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractPoint(tt.raw)
			assert.False(t, ok)
		})
	}
}

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		valid bool
	}{
		{"central stockholm", Coordinate{Lat: 59.33, Lng: 18.06}, true},
		{"origin", Coordinate{}, true},
		{"lat boundary", Coordinate{Lat: 90, Lng: 0}, true},
		{"lng boundary", Coordinate{Lat: 0, Lng: -180}, true},
		{"lat out of range", Coordinate{Lat: 90.01, Lng: 0}, false},
		{"lng out of range", Coordinate{Lat: 0, Lng: 180.01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.coord.Valid())
		})
	}
}
