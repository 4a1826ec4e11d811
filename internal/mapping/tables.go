// Package mapping loads the provider-vocabulary lookup tables used by the
// normalizers. A default table set is compiled in; deployments can override
// it with a YAML file to track provider vocabulary changes without a code
// change.
package mapping

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/viatrafik/nearby/internal/domain"
)

//go:embed tables.yml
var defaultTables []byte

// VehicleMapping is the canonical classification for one provider vehicle code.
type VehicleMapping struct {
	Category domain.VehicleCategory
	Icon     string
}

// unknownVehicle is returned for codes absent from the table.
var unknownVehicle = VehicleMapping{Category: domain.VehicleUnknown, Icon: "circle-question"}

// Tables holds the vehicle-code and incident-type dictionaries.
type Tables struct {
	vehicles      map[string]VehicleMapping
	incidentTypes map[string]string
}

type vehicleEntry struct {
	Category string `yaml:"category"`
	Icon     string `yaml:"icon"`
}

type tablesFile struct {
	Vehicles      map[string]vehicleEntry `yaml:"vehicles"`
	IncidentTypes map[string]string       `yaml:"incident_types"`
}

// Load reads lookup tables from path, or the embedded defaults when path is
// empty.
func Load(path string) (*Tables, error) {
	data := defaultTables
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read mapping file: %w", err)
		}
	}
	return parse(data)
}

// Default returns the compiled-in tables. The embedded YAML is validated by
// tests, so a parse failure here is a build defect.
func Default() *Tables {
	t, err := parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("mapping: embedded tables.yml is invalid: %v", err))
	}
	return t
}

func parse(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse mapping tables: %w", err)
	}
	if len(f.Vehicles) == 0 {
		return nil, fmt.Errorf("mapping tables: no vehicle codes defined")
	}

	t := &Tables{
		vehicles:      make(map[string]VehicleMapping, len(f.Vehicles)),
		incidentTypes: f.IncidentTypes,
	}
	for code, entry := range f.Vehicles {
		category, err := parseCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("mapping tables: vehicle code %q: %w", code, err)
		}
		t.vehicles[normalizeCode(code)] = VehicleMapping{Category: category, Icon: entry.Icon}
	}
	return t, nil
}

func parseCategory(s string) (domain.VehicleCategory, error) {
	switch domain.VehicleCategory(s) {
	case domain.VehicleBus, domain.VehicleTrain, domain.VehicleMetro, domain.VehicleTram, domain.VehicleFerry, domain.VehicleUnknown:
		return domain.VehicleCategory(s), nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Vehicle resolves a provider transport-mode code to its canonical category
// and icon tag. Codes not present in the table map to Unknown, never an error.
func (t *Tables) Vehicle(code string) VehicleMapping {
	if m, ok := t.vehicles[normalizeCode(code)]; ok {
		return m
	}
	return unknownVehicle
}

// IncidentType translates a provider incident-type string to the canonical
// vocabulary. Unmapped types pass through unchanged: type is display-only,
// unlike geometry, so an untranslated string beats a dropped record.
func (t *Tables) IncidentType(raw string) string {
	if canonical, ok := t.incidentTypes[raw]; ok {
		return canonical
	}
	return raw
}
