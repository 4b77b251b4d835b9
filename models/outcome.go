package models

// URLState is the per-URL position in the pipeline state machine.
type URLState string

const (
	StatePending     URLState = "pending"
	StateFetching    URLState = "fetching"
	StateExtracting  URLState = "extracting"
	StateValidating  URLState = "validating"
	StateAttributing URLState = "attributing"
	StateDeduping    URLState = "deduping"
	StatePersisting  URLState = "persisting"
	StateSucceeded   URLState = "succeeded"
	StateSkipped     URLState = "skipped"
	StateFailed      URLState = "failed"
)

// Outcome reason codes. SKIPPED reasons are expected, non-error results;
// FAILED reasons are retry-worthy or need investigation.
const (
	ReasonNoRecipeFound       = "NO_RECIPE_FOUND"
	ReasonTitleTooShort       = "TITLE_TOO_SHORT"
	ReasonInsufficientContent = "INSUFFICIENT_CONTENT"
	ReasonNoChefMatch         = "NO_CHEF_MATCH"
	ReasonDuplicateURL        = "DUPLICATE_URL"
	ReasonDuplicateTitle      = "DUPLICATE_TITLE"
	ReasonFetchFailed         = "FETCH_FAILED"
	ReasonTimeout             = "TIMEOUT"
	ReasonUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ReasonPersistFailed       = "PERSIST_FAILED"
	ReasonUnexpectedError     = "UNEXPECTED_ERROR"
)

// URLOutcome records the terminal result for one URL.
type URLOutcome struct {
	URL    string   `json:"url"`
	State  URLState `json:"state"`
	Reason string   `json:"reason,omitempty"`
	Detail string   `json:"detail,omitempty"`

	// Populated on success for reporting.
	Title      string           `json:"title,omitempty"`
	ChefID     string           `json:"chef_id,omitempty"`
	Method     ExtractionMethod `json:"extraction_method,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
	DryRun     bool             `json:"dry_run,omitempty"`
}

// SkippedCounts breaks the skipped total down by cause.
type SkippedCounts struct {
	Duplicate  int `json:"duplicate"`
	NoChef     int `json:"no_chef"`
	LowQuality int `json:"low_quality"`
	NoRecipe   int `json:"no_recipe"`
}

// RunState is the serializable progress of a pipeline invocation. The CLI
// layer may persist it between runs for resumability.
type RunState struct {
	ProcessedURLs []string     `json:"processed_urls"`
	Outcomes      []URLOutcome `json:"outcomes"`
}

// RunReport is the end-of-run summary produced by the orchestrator.
type RunReport struct {
	TotalURLs        int           `json:"total_urls"`
	Succeeded        int           `json:"succeeded"`
	Skipped          SkippedCounts `json:"skipped"`
	Failed           int           `json:"failed"`
	DryRun           bool          `json:"dry_run"`
	TotalTimeSeconds float64       `json:"total_time_seconds"`
	Outcomes         []URLOutcome  `json:"outcomes"`
}
