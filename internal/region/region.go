// Package region carries the regional-profile supplement described in
// SPEC_FULL.md's data-model section: per-region building codes, cultural
// design preferences, and the measurement system a locale implies. This
// is a direct Go-native port of the original service's regional/cultural
// lookup tables, dropped by the distillation but reinstated here because
// C4 (prompt assembly) and C6 (validation) both need region-aware
// defaults.
package region

// Region is one of the supported geographical/regulatory groupings.
type Region string

const (
	NorthAmerica Region = "north_america"
	Europe       Region = "europe"
	AsiaPacific  Region = "asia_pacific"
	MiddleEast   Region = "middle_east"
	Africa       Region = "africa"
	SouthAmerica Region = "south_america"
)

// MeasurementSystem is the unit convention a region/locale prefers.
type MeasurementSystem string

const (
	Metric   MeasurementSystem = "metric"
	Imperial MeasurementSystem = "imperial"
	Mixed    MeasurementSystem = "mixed"
)

// CulturalPreferences captures the design-affecting cultural defaults for
// a region, consumed by C4's prompt assembler to steer layout generation
// (e.g. privacy level influencing room adjacency, prayer-space
// requirements for the Middle East).
type CulturalPreferences struct {
	PrivacyLevel             float64 // 0.0 open .. 1.0 very private
	FamilyStructure          string  // nuclear, extended, multi_generational
	EntertainmentStyle       string  // formal, casual, mixed
	OutdoorConnection        string  // high, medium, low
	ReligiousConsiderations  []string
	DiningTraditions         string // western, eastern, traditional
	WorkFromHome             bool
	MultiGenerationalLiving  bool
}

// BuildingCodes captures the regional code/compliance baseline consumed
// by C6's domain rule checks (minimum room sizes, setbacks) and surfaced
// to C4's prompt assembler as context.
type BuildingCodes struct {
	PrimaryCodes          []string
	SecondaryCodes        []string
	AccessibilityStandard string
	EnergyStandard        string
	SeismicRequirements   bool
	ClimateAdaptations    []string
	MaxOccupancyRatios    map[string]float64
	MinimumRoomSizesM2    map[string]float64 // square meters
	SetbackRequirementsM  map[string]float64 // meters
	HeightRestrictionsM   map[string]float64 // meters
}

// Profile bundles everything known about a region.
type Profile struct {
	Region      Region
	Measurement MeasurementSystem
	Cultural    CulturalPreferences
	Codes       BuildingCodes
}

var profiles = map[Region]Profile{
	NorthAmerica: {
		Region:      NorthAmerica,
		Measurement: Imperial,
		Cultural: CulturalPreferences{
			PrivacyLevel: 0.4, FamilyStructure: "nuclear", EntertainmentStyle: "casual",
			OutdoorConnection: "medium", DiningTraditions: "western", WorkFromHome: true,
		},
		Codes: BuildingCodes{
			PrimaryCodes:          []string{"IBC", "IRC", "Local Zoning"},
			AccessibilityStandard: "ADA",
			EnergyStandard:        "IECC",
			SeismicRequirements:   true,
			ClimateAdaptations:    []string{"hurricane", "tornado", "wildfire"},
			MaxOccupancyRatios:    map[string]float64{"residential": 0.5, "commercial": 0.7},
			MinimumRoomSizesM2:    map[string]float64{"bedroom": 6.5, "living_room": 13.9, "kitchen": 7.4},
			SetbackRequirementsM:  map[string]float64{"front": 7.6, "side": 3.0, "rear": 7.6},
			HeightRestrictionsM:   map[string]float64{"residential": 10.7, "commercial": 30.5},
		},
	},
	Europe: {
		Region:      Europe,
		Measurement: Metric,
		Cultural: CulturalPreferences{
			PrivacyLevel: 0.6, FamilyStructure: "nuclear", EntertainmentStyle: "formal",
			OutdoorConnection: "high", DiningTraditions: "western", WorkFromHome: true,
		},
		Codes: BuildingCodes{
			PrimaryCodes:          []string{"Eurocode", "National Building Regulations"},
			AccessibilityStandard: "European Accessibility Act",
			EnergyStandard:        "EU Energy Performance Directive",
			SeismicRequirements:   true,
			ClimateAdaptations:    []string{"flood", "heat_wave", "snow_load"},
			MaxOccupancyRatios:    map[string]float64{"residential": 0.4, "commercial": 0.6},
			MinimumRoomSizesM2:    map[string]float64{"bedroom": 9.0, "living_room": 16.0, "kitchen": 6.0},
			SetbackRequirementsM:  map[string]float64{"front": 5.0, "side": 3.0, "rear": 5.0},
			HeightRestrictionsM:   map[string]float64{"residential": 12.0, "commercial": 50.0},
		},
	},
	MiddleEast: {
		Region:      MiddleEast,
		Measurement: Metric,
		Cultural: CulturalPreferences{
			PrivacyLevel: 0.8, FamilyStructure: "extended", EntertainmentStyle: "formal",
			OutdoorConnection: "low", DiningTraditions: "traditional", MultiGenerationalLiving: true,
			ReligiousConsiderations: []string{"prayer_space", "gender_separation"},
		},
		Codes: BuildingCodes{
			PrimaryCodes:          []string{"National Building Code", "Municipal Regulations"},
			AccessibilityStandard: "International Accessibility Standards",
			EnergyStandard:        "Regional Energy Code",
			SeismicRequirements:   true,
			ClimateAdaptations:    []string{"extreme_heat", "dust_storms", "earthquake"},
			MaxOccupancyRatios:    map[string]float64{"residential": 0.4, "commercial": 0.6},
			MinimumRoomSizesM2:    map[string]float64{"bedroom": 9.0, "living_room": 12.0, "kitchen": 6.0},
			SetbackRequirementsM:  map[string]float64{"front": 6.0, "side": 3.0, "rear": 6.0},
			HeightRestrictionsM:   map[string]float64{"residential": 15.0, "commercial": 100.0},
		},
	},
	AsiaPacific: {
		Region:      AsiaPacific,
		Measurement: Metric,
		Cultural: CulturalPreferences{
			PrivacyLevel: 0.7, FamilyStructure: "extended", EntertainmentStyle: "formal",
			OutdoorConnection: "medium", DiningTraditions: "eastern", MultiGenerationalLiving: true,
		},
		Codes: BuildingCodes{
			PrimaryCodes:          []string{"National Building Code", "Local Regulations"},
			AccessibilityStandard: "Regional Accessibility Standards",
			EnergyStandard:        "National Energy Code",
			SeismicRequirements:   true,
			ClimateAdaptations:    []string{"typhoon", "earthquake", "humidity", "flood"},
			MaxOccupancyRatios:    map[string]float64{"residential": 0.6, "commercial": 0.8},
			MinimumRoomSizesM2:    map[string]float64{"bedroom": 8.0, "living_room": 14.0, "kitchen": 5.0},
			SetbackRequirementsM:  map[string]float64{"front": 4.0, "side": 2.0, "rear": 4.0},
			HeightRestrictionsM:   map[string]float64{"residential": 20.0, "commercial": 200.0},
		},
	},
	Africa: {
		Region:      Africa,
		Measurement: Metric,
		Cultural: CulturalPreferences{
			PrivacyLevel: 0.5, FamilyStructure: "extended", EntertainmentStyle: "mixed",
			OutdoorConnection: "high", DiningTraditions: "traditional", MultiGenerationalLiving: true,
		},
		Codes: BuildingCodes{
			PrimaryCodes:          []string{"National Building Code"},
			AccessibilityStandard: "International Standards",
			EnergyStandard:        "Basic Energy Requirements",
			ClimateAdaptations:    []string{"extreme_heat", "drought", "flood"},
			MaxOccupancyRatios:    map[string]float64{"residential": 0.5, "commercial": 0.7},
			MinimumRoomSizesM2:    map[string]float64{"bedroom": 7.0, "living_room": 12.0, "kitchen": 5.0},
			SetbackRequirementsM:  map[string]float64{"front": 5.0, "side": 2.5, "rear": 5.0},
			HeightRestrictionsM:   map[string]float64{"residential": 15.0, "commercial": 50.0},
		},
	},
	SouthAmerica: {
		Region:      SouthAmerica,
		Measurement: Metric,
		Cultural: CulturalPreferences{
			PrivacyLevel: 0.4, FamilyStructure: "extended", EntertainmentStyle: "casual",
			OutdoorConnection: "high", DiningTraditions: "western",
		},
		Codes: BuildingCodes{
			PrimaryCodes:          []string{"National Building Code", "Regional Standards"},
			AccessibilityStandard: "Regional Accessibility Requirements",
			EnergyStandard:        "Energy Efficiency Standards",
			SeismicRequirements:   true,
			ClimateAdaptations:    []string{"earthquake", "flood", "hurricane"},
			MaxOccupancyRatios:    map[string]float64{"residential": 0.5, "commercial": 0.7},
			MinimumRoomSizesM2:    map[string]float64{"bedroom": 8.0, "living_room": 15.0, "kitchen": 6.0},
			SetbackRequirementsM:  map[string]float64{"front": 6.0, "side": 3.0, "rear": 6.0},
			HeightRestrictionsM:   map[string]float64{"residential": 12.0, "commercial": 80.0},
		},
	},
}

// localeRule is one row of localeRules, which maps the locale prefixes the
// original catalogued to their region and measurement system, resolved by
// FromLocale using the same
// precedence the source implementation used (more specific prefixes
// tested first).
type localeRule struct {
	prefix      string
	region      Region
	measurement MeasurementSystem
}

var localeRules = []localeRule{
	{"en-US", NorthAmerica, Imperial},
	{"en-CA", NorthAmerica, Mixed},
	{"fr-CA", NorthAmerica, Mixed},
	{"tr-", MiddleEast, Metric},
	{"ar-", MiddleEast, Metric},
	{"fa-", MiddleEast, Metric},
	{"he-", MiddleEast, Metric},
	{"de-", Europe, Metric},
	{"fr-FR", Europe, Metric},
	{"es-ES", Europe, Metric},
	{"it-", Europe, Metric},
	{"pt-PT", Europe, Metric},
	{"ja-", AsiaPacific, Metric},
	{"ko-", AsiaPacific, Metric},
	{"zh-", AsiaPacific, Metric},
	{"en-AU", AsiaPacific, Metric},
	{"es-", SouthAmerica, Metric},
	{"pt-BR", SouthAmerica, Metric},
}

// FromLocale resolves a BCP-47-ish locale string ("en-US", "tr-TR") to its
// region and measurement system, defaulting to NorthAmerica/Metric when
// nothing matches — mirroring the original's fallback behavior.
func FromLocale(locale string) (Region, MeasurementSystem) {
	for _, rule := range localeRules {
		if hasPrefix(locale, rule.prefix) {
			return rule.region, rule.measurement
		}
	}
	return NorthAmerica, Metric
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Get returns the full profile for a region, falling back to
// NorthAmerica's profile if the region is unrecognized.
func Get(r Region) Profile {
	if p, ok := profiles[r]; ok {
		return p
	}
	return profiles[NorthAmerica]
}

// MinRoomSizeM2 returns the region's minimum size for a room category, or
// 0 if the region has no entry for it (callers should treat 0 as "no
// constraint" rather than "room must be empty").
func (p Profile) MinRoomSizeM2(category string) float64 {
	return p.Codes.MinimumRoomSizesM2[category]
}
