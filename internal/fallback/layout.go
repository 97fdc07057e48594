package fallback

import (
	"fmt"
	"math"

	"github.com/archbuilder/orchestrator/internal/types"
)

const (
	buildingAspectRatio  = 1.4
	standardCeilingM     = 2.7
	fallbackConfidence   = 0.65
	fallbackReasonLayout = "AI processing failed or was rejected by validation; generated with the rule-based layout algorithm"
)

// GenerateLayout implements spec §4.7's layout algorithm: normalize the
// room program, compute a building envelope from totalAreaM2 at a fixed
// 1.4 aspect ratio, arrange rooms on a ⌈√n⌉×⌈n/√n⌉ grid, and emit walls,
// one door per interior room, and one window per exterior-facing room.
// If rooms is empty, DefaultRoomProgram(totalAreaM2) is used.
func GenerateLayout(totalAreaM2 float64, rooms []RoomRequirement) types.LayoutArtifact {
	if totalAreaM2 <= 0 {
		totalAreaM2 = 100
	}
	if len(rooms) == 0 {
		rooms = DefaultRoomProgram(totalAreaM2)
	}

	n := len(rooms)
	buildingWidth := math.Sqrt(totalAreaM2 / buildingAspectRatio)
	buildingLength := totalAreaM2 / buildingWidth

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	if cols < 1 {
		cols = 1
	}
	rowsCount := int(math.Ceil(float64(n) / float64(cols)))
	cellWidth := buildingWidth / float64(cols)
	cellLength := buildingLength / float64(rowsCount)

	artifact := types.LayoutArtifact{
		Confidence:          fallbackConfidence,
		RequiresHumanReview: true,
		GeneratedBy:         "fallback",
		FallbackReason:      fallbackReasonLayout,
	}

	for i, room := range rooms {
		row := i / cols
		col := i % cols

		xM := float64(col) * cellWidth
		yM := float64(row) * cellLength

		targetArea := room.AreaM2
		if targetArea <= 0 {
			targetArea = cellWidth * cellLength
		}
		roomWidthM := math.Min(cellWidth, math.Sqrt(targetArea))
		roomLengthM := targetArea / roomWidthM

		roomID := fmt.Sprintf("room_%d", i+1)
		artifact.Rooms = append(artifact.Rooms, types.Room{
			ID:     roomID,
			Name:   fmt.Sprintf("%s_%d", room.Type, i+1),
			Type:   room.Type,
			AreaM2: roomWidthM * roomLengthM,
			Dimensions: types.Dimensions3{
				W: toMM(roomWidthM), L: toMM(roomLengthM), H: toMM(standardCeilingM),
			},
			Position: types.Position2{XMM: toMM(xM), YMM: toMM(yM)},
		})

		wallIDs := emitRoomWalls(&artifact, roomID, xM, yM, roomWidthM, roomLengthM, room.Type)

		// One door per interior room, referencing its "left" wall,
		// skipping the leftmost column (building exterior) and bathrooms.
		if col > 0 && room.Type != "bathroom" {
			spec := standardDoors["single"]
			artifact.Doors = append(artifact.Doors, types.Door{
				ID:         fmt.Sprintf("door_%d", len(artifact.Doors)+1),
				WallID:     wallIDs.left,
				PositionMM: toMM(roomLengthM / 2),
				WidthMM:    spec.WidthMM,
				HeightMM:   spec.HeightMM,
				Type:       "interior",
			})
		}

		// One window per exterior-facing room.
		if col == 0 || col == cols-1 || row == 0 || row == rowsCount-1 {
			spec := standardWindows["standard"]
			wallID := exteriorWallID(wallIDs, col, row, cols, rowsCount)
			artifact.Windows = append(artifact.Windows, types.Window{
				ID:         fmt.Sprintf("window_%d", len(artifact.Windows)+1),
				WallID:     wallID,
				PositionMM: toMM(roomWidthM / 2),
				WidthMM:    spec.WidthMM,
				HeightMM:   spec.HeightMM,
				Type:       "exterior",
			})
		}
	}

	return artifact
}

// roomWallIDs names the four walls emitted for one room, so doors and
// windows can reference a specific side.
type roomWallIDs struct {
	bottom, right, top, left string
}

func emitRoomWalls(artifact *types.LayoutArtifact, roomID string, xM, yM, widthM, lengthM float64, roomType string) roomWallIDs {
	spec := wallSpecFor(roomType)
	x, y := toMM(xM), toMM(yM)
	w, l := toMM(widthM), toMM(lengthM)

	ids := roomWallIDs{
		bottom: roomID + "_wall_b",
		right:  roomID + "_wall_r",
		top:    roomID + "_wall_t",
		left:   roomID + "_wall_l",
	}

	artifact.Walls = append(artifact.Walls,
		types.Wall{ID: ids.bottom, Start: types.Point3{X: x, Y: y}, End: types.Point3{X: x + w, Y: y}, ThicknessMM: spec.ThicknessMM, HeightMM: toMM(standardCeilingM), Type: "interior"},
		types.Wall{ID: ids.right, Start: types.Point3{X: x + w, Y: y}, End: types.Point3{X: x + w, Y: y + l}, ThicknessMM: spec.ThicknessMM, HeightMM: toMM(standardCeilingM), Type: "interior"},
		types.Wall{ID: ids.top, Start: types.Point3{X: x + w, Y: y + l}, End: types.Point3{X: x, Y: y + l}, ThicknessMM: spec.ThicknessMM, HeightMM: toMM(standardCeilingM), Type: "interior"},
		types.Wall{ID: ids.left, Start: types.Point3{X: x, Y: y + l}, End: types.Point3{X: x, Y: y}, ThicknessMM: spec.ThicknessMM, HeightMM: toMM(standardCeilingM), Type: "interior"},
	)
	return ids
}

// exteriorWallID picks the wall facing the building's outer edge for a
// perimeter room, defaulting to bottom for interior-only rooms that
// still ended up in the exterior check (shouldn't normally happen).
func exteriorWallID(ids roomWallIDs, col, row, cols, rows int) string {
	switch {
	case col == 0:
		return ids.left
	case col == cols-1:
		return ids.right
	case row == 0:
		return ids.bottom
	case row == rows-1:
		return ids.top
	default:
		return ids.bottom
	}
}

func toMM(meters float64) types.Millimeters {
	return types.Millimeters(math.Round(meters * 1000))
}
