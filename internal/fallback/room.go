package fallback

import (
	"math"

	"github.com/archbuilder/orchestrator/internal/types"
)

// GenerateRoomArtifact wraps GenerateRoom's meter-space computation into
// the orchestrator's typed RoomArtifact (millimeter coordinates).
func GenerateRoomArtifact(roomType string, areaM2 float64) types.RoomArtifact {
	dims, furniture, lighting, materials, confidence := GenerateRoom(roomType, areaM2)

	artifact := types.RoomArtifact{
		Dimensions: types.Dimensions3{W: toMM(dims.WidthM), L: toMM(dims.LengthM), H: toMM(dims.HeightM)},
		Materials:  materials,
		Confidence: confidence,
	}
	for _, f := range furniture {
		artifact.Furniture = append(artifact.Furniture, types.FurnitureItem{
			Name:     f.Type,
			Position: types.Position2{XMM: toMM(f.PositionXM), YMM: toMM(f.PositionYM)},
		})
	}
	for _, l := range lighting {
		artifact.Lighting = append(artifact.Lighting, types.LightingFixture{
			Name:     l.Type,
			Position: types.Position2{XMM: toMM(l.PositionXM), YMM: toMM(l.PositionYM)},
			LumenOut: l.WattageW * 70,
		})
	}
	return artifact
}

const roomFallbackConfidence = 0.6

// GenerateRoom implements spec §4.7's room fallback: pick a standard
// dimension tier by target area, scale it to match areaM2 exactly, and
// populate a fixed furniture/lighting/materials catalog for roomType.
// Unrecognized room types fall back to the bedroom dimension table, as
// the original does.
func GenerateRoom(roomType string, areaM2 float64) (dimensions RoomDimensionsM, furniture []FurnitureItemM, lighting []LightingFixtureM, materials map[string]string, confidence float64) {
	if areaM2 <= 0 {
		areaM2 = 12
	}

	spec := roomDimensionSpecFor(roomType)
	widthM, lengthM := spec.Standard[0], spec.Standard[1]
	switch {
	case areaM2 < 10:
		widthM, lengthM = spec.Min[0], spec.Min[1]
	case areaM2 >= 20:
		widthM, lengthM = spec.Large[0], spec.Large[1]
	}

	scale := math.Sqrt(areaM2 / (widthM * lengthM))
	dimensions = RoomDimensionsM{WidthM: widthM * scale, LengthM: lengthM * scale, HeightM: standardCeilingM}

	furniture = standardFurniture(roomType)
	lighting = []LightingFixtureM{{
		Type:       "ceiling_fixture",
		PositionXM: dimensions.WidthM / 2,
		PositionYM: dimensions.LengthM / 2,
		WattageW:   15,
	}}
	materials = standardMaterials(roomType)
	confidence = roomFallbackConfidence
	return
}

// RoomDimensionsM mirrors types.Dimensions3 in meters, the unit the
// fallback algorithm computes in before the caller converts to
// millimeters for the artifact.
type RoomDimensionsM struct {
	WidthM, LengthM, HeightM float64
}

// FurnitureItemM is a fallback-generated furniture placement in meters.
type FurnitureItemM struct {
	Type             string
	PositionXM, PositionYM float64
	Size             string
}

// LightingFixtureM is a fallback-generated light fixture in meters.
type LightingFixtureM struct {
	Type       string
	PositionXM, PositionYM float64
	WattageW   int
}

func standardFurniture(roomType string) []FurnitureItemM {
	switch roomType {
	case "bedroom":
		return []FurnitureItemM{
			{Type: "bed", PositionXM: 1.0, PositionYM: 1.0, Size: "queen"},
			{Type: "nightstand", PositionXM: 2.5, PositionYM: 1.0, Size: "standard"},
			{Type: "wardrobe", PositionXM: 0.5, PositionYM: 3.0, Size: "large"},
		}
	case "living_room":
		return []FurnitureItemM{
			{Type: "sofa", PositionXM: 2.0, PositionYM: 2.0, Size: "3_seater"},
			{Type: "coffee_table", PositionXM: 2.0, PositionYM: 3.0, Size: "standard"},
			{Type: "tv_stand", PositionXM: 0.5, PositionYM: 2.0, Size: "standard"},
		}
	case "kitchen":
		return []FurnitureItemM{
			{Type: "cabinets", PositionXM: 0.5, PositionYM: 0.5, Size: "linear"},
			{Type: "refrigerator", PositionXM: 0.5, PositionYM: 1.5, Size: "standard"},
			{Type: "stove", PositionXM: 1.5, PositionYM: 0.5, Size: "standard"},
		}
	case "bathroom":
		return []FurnitureItemM{
			{Type: "toilet", PositionXM: 0.5, PositionYM: 1.5, Size: "standard"},
			{Type: "sink", PositionXM: 1.0, PositionYM: 0.5, Size: "standard"},
			{Type: "shower", PositionXM: 1.5, PositionYM: 1.5, Size: "standard"},
		}
	default:
		return nil
	}
}

func standardMaterials(roomType string) map[string]string {
	if roomType == "bathroom" {
		return map[string]string{
			"floor":   "ceramic_tile",
			"walls":   "ceramic_tile",
			"ceiling": "moisture_resistant_paint",
		}
	}
	return map[string]string{
		"floor":   "hardwood",
		"walls":   "paint",
		"ceiling": "paint",
	}
}
