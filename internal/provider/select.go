package provider

// SelectionInput carries the task metadata the selection table keys off
// of: language, document type, complexity, file format, analysis type and
// an optional user-requested provider.
type SelectionInput struct {
	Language       string
	DocumentType   string
	Complexity     string
	FileFormat     string
	AnalysisType   string
	UserPreference string
}

// Selection names the provider/model chosen for a request, with the
// reasoning and a confidence score surfaced to logs and, on request, to
// the caller for transparency.
type Selection struct {
	Provider   string
	Model      string
	Reason     string
	Confidence float64
}

// knownProviders is the set user preference is allowed to pick from
// directly.
var knownProviders = map[string]string{
	"vertex_ai":      "gemini-2.5-flash-lite",
	"github_models":  "gpt-4.1",
}

// SelectModel reimplements the original AIModelSelector.select_model
// priority order verbatim: existing-project analysis and CAD/high-
// complexity work route to github_models (gpt-4.1) for its larger
// context window and reasoning strength; Turkish building-code documents
// and simple/prompt-generation tasks route to vertex_ai
// (gemini-2.5-flash-lite) for cost and regulatory-language fit; an
// explicit user preference is honored when it names a known provider;
// everything else defaults to github_models.
func SelectModel(in SelectionInput) Selection {
	switch {
	case in.AnalysisType == "existing_project_analysis":
		return Selection{
			Provider:   "github_models",
			Model:      "gpt-4.1",
			Reason:     "best for comprehensive BIM analysis and improvement recommendations",
			Confidence: 0.95,
		}
	case in.DocumentType == "building_code" && in.Language == "tr":
		return Selection{
			Provider:   "vertex_ai",
			Model:      "gemini-2.5-flash-lite",
			Reason:     "optimized for Turkish regulatory documents and building codes",
			Confidence: 0.90,
		}
	case in.FileFormat == "dwg" || in.FileFormat == "dxf" || in.FileFormat == "ifc" || in.Complexity == "high":
		return Selection{
			Provider:   "github_models",
			Model:      "gpt-4.1",
			Reason:     "superior for multi-format CAD parsing and complex reasoning",
			Confidence: 0.92,
		}
	case in.Complexity == "simple" || in.DocumentType == "prompt_generation":
		return Selection{
			Provider:   "vertex_ai",
			Model:      "gemini-2.5-flash-lite",
			Reason:     "cost-effective for simple architectural tasks",
			Confidence: 0.85,
		}
	case in.UserPreference != "":
		if model, ok := knownProviders[in.UserPreference]; ok {
			return Selection{
				Provider:   in.UserPreference,
				Model:      model,
				Reason:     "honoring user-preferred provider " + in.UserPreference,
				Confidence: 0.80,
			}
		}
		fallthrough
	default:
		return Selection{
			Provider:   "github_models",
			Model:      "gpt-4.1",
			Reason:     "reliable default for comprehensive architectural analysis",
			Confidence: 0.88,
		}
	}
}
