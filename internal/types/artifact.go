package types

// Millimeters is an integer coordinate/dimension in the layout artifact's
// coordinate space (right-handed XY plane, Z up).
type Millimeters int64

// Point3 is a coordinate in millimeters.
type Point3 struct {
	X Millimeters `json:"x"`
	Y Millimeters `json:"y"`
	Z Millimeters `json:"z"`
}

// Dimensions3 is a width/length/height triple in millimeters.
type Dimensions3 struct {
	W Millimeters `json:"w"`
	L Millimeters `json:"l"`
	H Millimeters `json:"h"`
}

// Position2 is a planar position in millimeters.
type Position2 struct {
	XMM Millimeters `json:"x_mm"`
	YMM Millimeters `json:"y_mm"`
}

// Room is a single room in a layout artifact.
type Room struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	AreaM2     float64     `json:"area_m2"`
	Dimensions Dimensions3 `json:"dimensions"`
	Position   Position2   `json:"position"`
}

// Wall is a single wall segment in a layout artifact.
type Wall struct {
	ID          string  `json:"id"`
	Start       Point3  `json:"start"`
	End         Point3  `json:"end"`
	ThicknessMM Millimeters `json:"thickness_mm"`
	HeightMM    Millimeters `json:"height_mm"`
	Type        string  `json:"type"`
}

// Door is an opening hosted by a wall.
type Door struct {
	ID         string      `json:"id"`
	WallID     string      `json:"wall_id"`
	PositionMM Millimeters `json:"position_mm"`
	WidthMM    Millimeters `json:"width_mm"`
	HeightMM   Millimeters `json:"height_mm"`
	Type       string      `json:"type"`
}

// Window is an opening hosted by an exterior wall.
type Window struct {
	ID         string      `json:"id"`
	WallID     string      `json:"wall_id"`
	PositionMM Millimeters `json:"position_mm"`
	WidthMM    Millimeters `json:"width_mm"`
	HeightMM   Millimeters `json:"height_mm"`
	Type       string      `json:"type"`
}

// LayoutArtifact is the structured output of a `layout` task.
type LayoutArtifact struct {
	Rooms               []Room   `json:"rooms"`
	Walls               []Wall   `json:"walls"`
	Doors               []Door   `json:"doors"`
	Windows             []Window `json:"windows"`
	Confidence          float64  `json:"confidence"`
	RequiresHumanReview bool     `json:"requires_human_review"`
	GeneratedBy         string   `json:"generated_by,omitempty"`
	FallbackReason      string   `json:"fallback_reason,omitempty"`
}

func (LayoutArtifact) ArtifactTaskType() TaskType { return TaskLayout }

// RoomArtifact is the structured output of a `room` task — interior design
// for a single room (furniture, lighting, materials).
type RoomArtifact struct {
	Dimensions Dimensions3            `json:"dimensions"`
	Furniture  []FurnitureItem        `json:"furniture"`
	Lighting   []LightingFixture      `json:"lighting"`
	Materials  map[string]string      `json:"materials"`
	Confidence float64                `json:"confidence"`
}

func (RoomArtifact) ArtifactTaskType() TaskType { return TaskRoom }

// FurnitureItem is one piece of furniture placed in a room artifact.
type FurnitureItem struct {
	Name     string    `json:"name"`
	Position Position2 `json:"position"`
	Rotation float64   `json:"rotation_deg"`
}

// LightingFixture is one light fixture placed in a room artifact.
type LightingFixture struct {
	Name     string    `json:"name"`
	Position Position2 `json:"position"`
	LumenOut int       `json:"lumen_output"`
}

// ValidationArtifact is the structured output of a `validate` task.
type ValidationArtifact struct {
	IsValid         bool     `json:"is_valid"`
	ComplianceScore float64  `json:"compliance_score"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
}

func (ValidationArtifact) ArtifactTaskType() TaskType { return TaskValidate }

// GenericArtifact carries the raw decoded JSON for task types the core
// doesn't model as a typed struct (TaskAnalyze, TaskCustom).
type GenericArtifact struct {
	Task TaskType               `json:"-"`
	Data map[string]interface{} `json:"data"`
}

func (g GenericArtifact) ArtifactTaskType() TaskType { return g.Task }
