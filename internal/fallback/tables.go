// Package fallback implements C7: a deterministic, rule-based producer
// of layout/room/validation artifacts for when the AI provider
// dispatcher (C5) is exhausted or the output validator (C6) rejects a
// response. It never calls out to a network service. Ported in
// semantics — not Python idiom — from
// original_source's ArchitecturalFallbackService.
package fallback

import "github.com/archbuilder/orchestrator/internal/types"

// roomDimensionSpec holds width/length pairs (meters) for three size
// tiers, chosen by target area.
type roomDimensionSpec struct {
	Min, Standard, Large [2]float64
}

var standardRoomDimensions = map[string]roomDimensionSpec{
	"bedroom":     {Min: [2]float64{3.0, 3.0}, Standard: [2]float64{3.5, 4.0}, Large: [2]float64{4.0, 5.0}},
	"living_room": {Min: [2]float64{3.5, 4.0}, Standard: [2]float64{4.5, 5.5}, Large: [2]float64{6.0, 7.0}},
	"kitchen":     {Min: [2]float64{2.5, 3.0}, Standard: [2]float64{3.0, 4.0}, Large: [2]float64{3.5, 5.0}},
	"bathroom":    {Min: [2]float64{1.8, 2.0}, Standard: [2]float64{2.2, 2.5}, Large: [2]float64{2.5, 3.0}},
	"dining_room": {Min: [2]float64{3.0, 3.5}, Standard: [2]float64{3.5, 4.5}, Large: [2]float64{4.0, 5.5}},
	"office":      {Min: [2]float64{2.5, 3.0}, Standard: [2]float64{3.0, 3.5}, Large: [2]float64{3.5, 4.5}},
	"corridor":    {Min: [2]float64{1.2, 3.0}, Standard: [2]float64{1.5, 5.0}, Large: [2]float64{2.0, 8.0}},
	"storage":     {Min: [2]float64{1.5, 2.0}, Standard: [2]float64{2.0, 2.5}, Large: [2]float64{2.5, 3.0}},
}

// wallSpec describes one entry in the fixed wall-type catalog.
type wallSpec struct {
	ThicknessMM     types.Millimeters
	Material        string
	FireRatingHours float64
}

var standardWallTypes = map[string]wallSpec{
	"exterior":              {ThicknessMM: 300, Material: "concrete", FireRatingHours: 2},
	"interior_load_bearing": {ThicknessMM: 200, Material: "concrete", FireRatingHours: 1},
	"interior_partition":    {ThicknessMM: 100, Material: "drywall", FireRatingHours: 0.5},
	"bathroom":              {ThicknessMM: 150, Material: "masonry", FireRatingHours: 1},
}

type openingSpec struct {
	WidthMM  types.Millimeters
	HeightMM types.Millimeters
}

var standardDoors = map[string]openingSpec{
	"single":     {WidthMM: 900, HeightMM: 2100},
	"double":     {WidthMM: 1800, HeightMM: 2100},
	"accessible": {WidthMM: 950, HeightMM: 2100},
}

var standardWindows = map[string]openingSpec{
	"standard":         {WidthMM: 1200, HeightMM: 1200},
	"large":            {WidthMM: 1800, HeightMM: 1500},
	"floor_to_ceiling": {WidthMM: 2400, HeightMM: 2400},
}

// RoomRequirement is one entry in a room program: a type and its target
// floor area.
type RoomRequirement struct {
	Type   string
	AreaM2 float64
}

// DefaultRoomProgram splits totalAreaM2 across the spec's default
// program (living 35%, bedroom 25%, kitchen 15%, bathroom 10%,
// corridor 15%) when the caller supplied no room list.
func DefaultRoomProgram(totalAreaM2 float64) []RoomRequirement {
	return []RoomRequirement{
		{Type: "living_room", AreaM2: totalAreaM2 * 0.35},
		{Type: "bedroom", AreaM2: totalAreaM2 * 0.25},
		{Type: "kitchen", AreaM2: totalAreaM2 * 0.15},
		{Type: "bathroom", AreaM2: totalAreaM2 * 0.10},
		{Type: "corridor", AreaM2: totalAreaM2 * 0.15},
	}
}

func wallSpecFor(roomType string) wallSpec {
	if roomType == "bathroom" {
		return standardWallTypes["bathroom"]
	}
	return standardWallTypes["interior_partition"]
}

func roomDimensionSpecFor(roomType string) roomDimensionSpec {
	if spec, ok := standardRoomDimensions[roomType]; ok {
		return spec
	}
	return standardRoomDimensions["bedroom"]
}
