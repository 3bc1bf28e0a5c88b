// Package standards holds the building-code limits every compliance check is
// evaluated against. The table is decoded once from an embedded YAML document,
// validated against an embedded JSON Schema and never mutated afterwards.
package standards

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed standards.yaml
var defaultYAML []byte

//go:embed schema.json
var schemaJSON []byte

type ClearHeight struct {
	HabitableRooms    float64 `yaml:"habitable_rooms" json:"habitable_rooms"`
	NonHabitableRooms float64 `yaml:"non_habitable_rooms" json:"non_habitable_rooms"`
}

type FloorArea struct {
	HabitableRoomsMin      float64 `yaml:"habitable_rooms_min" json:"habitable_rooms_min"`
	HorizontalDimensionMin float64 `yaml:"horizontal_dimension_min" json:"horizontal_dimension_min"`
	AlcoveMaxPercentage    float64 `yaml:"alcove_max_percentage" json:"alcove_max_percentage"`
}

type DaylightOpenings struct {
	MinPercentage      float64 `yaml:"min_percentage" json:"min_percentage"`
	MinArea            float64 `yaml:"min_area" json:"min_area"`
	MinHeightFromFloor float64 `yaml:"min_height_from_floor" json:"min_height_from_floor"`
}

type Ventilation struct {
	MinPercentage         float64 `yaml:"min_percentage" json:"min_percentage"`
	ExternalWallsRequired bool    `yaml:"external_walls_required" json:"external_walls_required"`
}

type Walls struct {
	FoundationMinThickness   float64 `yaml:"foundation_min_thickness" json:"foundation_min_thickness"`
	BearingWallsMinThickness float64 `yaml:"bearing_walls_min_thickness" json:"bearing_walls_min_thickness"`
	BearingWallsSolid        float64 `yaml:"bearing_walls_solid" json:"bearing_walls_solid"`
	BearingWallsCavity       float64 `yaml:"bearing_walls_cavity" json:"bearing_walls_cavity"`
	PartitionWallsMin        float64 `yaml:"partition_walls_min" json:"partition_walls_min"`
}

type AccessEgress struct {
	MinExitWays                int     `yaml:"min_exit_ways" json:"min_exit_ways"`
	MinDoorwayWidth            float64 `yaml:"min_doorway_width" json:"min_doorway_width"`
	MinPassagewayWidth         float64 `yaml:"min_passageway_width" json:"min_passageway_width"`
	MinSmallBuildingPassageway float64 `yaml:"min_small_building_passageway" json:"min_small_building_passageway"`
	MaxDeadEndPassageway       float64 `yaml:"max_dead_end_passageway" json:"max_dead_end_passageway"`
	MinPassagewayNonStreet     float64 `yaml:"min_passageway_non_street" json:"min_passageway_non_street"`
}

type Stairways struct {
	MinWidth    float64 `yaml:"min_width" json:"min_width"`
	MinHeadroom float64 `yaml:"min_headroom" json:"min_headroom"`
}

type HeightRequirements struct {
	MaxDwellingStoreys    int     `yaml:"max_dwelling_storeys" json:"max_dwelling_storeys"`
	MaxResidentialStoreys int     `yaml:"max_residential_storeys" json:"max_residential_storeys"`
	MaxResidentialHeight  float64 `yaml:"max_residential_height" json:"max_residential_height"`
}

type FireSafety struct {
	ExitWayFireRating           float64 `yaml:"exit_way_fire_rating" json:"exit_way_fire_rating"`
	PartitionBasementFireRating float64 `yaml:"partition_basement_fire_rating" json:"partition_basement_fire_rating"`
	FloorFireRating             float64 `yaml:"floor_fire_rating" json:"floor_fire_rating"`
	RoofFireRating              float64 `yaml:"roof_fire_rating" json:"roof_fire_rating"`
}

type Windows struct {
	MinHeightAbovePavement       float64 `yaml:"min_height_above_pavement" json:"min_height_above_pavement"`
	MinVentilationPerSoilFitting float64 `yaml:"min_ventilation_per_soil_fitting" json:"min_ventilation_per_soil_fitting"`
}

type Structural struct {
	MinimumBeamDepth          float64 `yaml:"minimum_beam_depth" json:"minimum_beam_depth"`
	MinimumColumnDimension    float64 `yaml:"minimum_column_dimension" json:"minimum_column_dimension"`
	MaximumFloorToFloorHeight float64 `yaml:"maximum_floor_to_floor_height" json:"maximum_floor_to_floor_height"`
}

type Accessibility struct {
	WheelchairTurnRadius float64 `yaml:"wheelchair_turn_radius" json:"wheelchair_turn_radius"`
	MinimumDoorWidth     float64 `yaml:"minimum_door_width" json:"minimum_door_width"`
	MaximumRampSlope     float64 `yaml:"maximum_ramp_slope" json:"maximum_ramp_slope"`
}

type LightingLevels struct {
	LivingAreas float64 `yaml:"living_areas" json:"living_areas"`
	Kitchens    float64 `yaml:"kitchens" json:"kitchens"`
	Bathrooms   float64 `yaml:"bathrooms" json:"bathrooms"`
	Hallways    float64 `yaml:"hallways" json:"hallways"`
}

type Electrical struct {
	MinimumOutletsPerRoom int            `yaml:"minimum_outlets_per_room" json:"minimum_outlets_per_room"`
	MinimumLightingLevels LightingLevels `yaml:"minimum_lighting_levels" json:"minimum_lighting_levels"`
}

type FixtureRequirements struct {
	ToiletsPerPersons float64 `yaml:"toilets_per_persons" json:"toilets_per_persons"`
	SinksPerPersons   float64 `yaml:"sinks_per_persons" json:"sinks_per_persons"`
	ShowersPerPersons float64 `yaml:"showers_per_persons" json:"showers_per_persons"`
}

type PipeSizes struct {
	WaterSupply float64 `yaml:"water_supply" json:"water_supply"`
	WastePipe   float64 `yaml:"waste_pipe" json:"waste_pipe"`
}

type Plumbing struct {
	MinimumFixtureRequirements FixtureRequirements `yaml:"minimum_fixture_requirements" json:"minimum_fixture_requirements"`
	MinimumPipeSizes           PipeSizes           `yaml:"minimum_pipe_sizes" json:"minimum_pipe_sizes"`
}

type UValues struct {
	Walls   float64 `yaml:"walls" json:"walls"`
	Roof    float64 `yaml:"roof" json:"roof"`
	Floors  float64 `yaml:"floors" json:"floors"`
	Windows float64 `yaml:"windows" json:"windows"`
}

type EnergyEfficiency struct {
	MaximumUValues             UValues `yaml:"maximum_u_values" json:"maximum_u_values"`
	MinimumInsulationThickness float64 `yaml:"minimum_insulation_thickness" json:"minimum_insulation_thickness"`
}

// Table is the full set of limits. It is passed by value so callers cannot
// alter the process-wide instance returned by Default.
type Table struct {
	ClearHeight        ClearHeight        `yaml:"clear_height" json:"clear_height"`
	FloorArea          FloorArea          `yaml:"floor_area" json:"floor_area"`
	DaylightOpenings   DaylightOpenings   `yaml:"daylight_openings" json:"daylight_openings"`
	Ventilation        Ventilation        `yaml:"ventilation" json:"ventilation"`
	Walls              Walls              `yaml:"walls" json:"walls"`
	AccessEgress       AccessEgress       `yaml:"access_egress" json:"access_egress"`
	Stairways          Stairways          `yaml:"stairways" json:"stairways"`
	HeightRequirements HeightRequirements `yaml:"height_requirements" json:"height_requirements"`
	FireSafety         FireSafety         `yaml:"fire_safety" json:"fire_safety"`
	Windows            Windows            `yaml:"windows" json:"windows"`
	Structural         Structural         `yaml:"structural" json:"structural"`
	Accessibility      Accessibility      `yaml:"accessibility" json:"accessibility"`
	Electrical         Electrical         `yaml:"electrical" json:"electrical"`
	Plumbing           Plumbing           `yaml:"plumbing" json:"plumbing"`
	EnergyEfficiency   EnergyEfficiency   `yaml:"energy_efficiency" json:"energy_efficiency"`
}

var (
	defaultOnce  sync.Once
	defaultTable Table
	defaultErr   error
)

// Default returns the embedded table. It panics if the embedded document is
// invalid, which can only happen with a broken build.
func Default() Table {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(defaultYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("standards: embedded table invalid: %v", defaultErr))
	}
	return defaultTable
}

// Parse decodes a YAML standards document and validates it against the schema.
func Parse(doc []byte) (Table, error) {
	var generic any
	if err := yaml.Unmarshal(doc, &generic); err != nil {
		return Table{}, fmt.Errorf("decode standards yaml: %w", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return Table{}, fmt.Errorf("marshal standards: %w", err)
	}
	if err := validate(asJSON); err != nil {
		return Table{}, err
	}

	var t Table
	if err := json.Unmarshal(asJSON, &t); err != nil {
		return Table{}, fmt.Errorf("decode standards: %w", err)
	}
	return t, nil
}

// JSON serializes the table with the category and limit names used in the
// YAML document. It is embedded verbatim in AI prompts.
func (t Table) JSON() string {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		// Table only holds numbers and booleans.
		panic(err)
	}
	return string(b)
}

func validate(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("standards.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("standards.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("standards do not match schema: %w", err)
	}
	return nil
}
