package analysis

// Endpoint names one backend operation; it is also the last path segment.
type Endpoint string

const (
	EndpointSimplify    Endpoint = "simplify"
	EndpointRedFlags    Endpoint = "redflags"
	EndpointQA          Endpoint = "qa"
	EndpointImprove     Endpoint = "improve"
	EndpointSuggestions Endpoint = "suggestions"
)

// RiskLevel tags a clause returned by the red-flag analysis.
type RiskLevel string

const (
	RiskSafe      RiskLevel = "safe"
	RiskModerate  RiskLevel = "moderate"
	RiskDangerous RiskLevel = "dangerous"
)

// Valid reports whether r is one of the three known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskSafe, RiskModerate, RiskDangerous:
		return true
	}
	return false
}

type RedFlag struct {
	Clause      string    `json:"clause"`
	Explanation string    `json:"explanation"`
	Risk        RiskLevel `json:"risk"`
}

// ChatTurn is one confirmed question/answer exchange.
type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Suggestion struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	ReplacementText *string `json:"replacement_text,omitempty"`
}

// HasReplacement reports whether applying the suggestion changes the draft.
func (s Suggestion) HasReplacement() bool {
	return s.ReplacementText != nil
}

type TextRequest struct {
	Text string `json:"text"`
}

type QARequest struct {
	Text     string     `json:"text"`
	Question string     `json:"question"`
	History  []ChatTurn `json:"history"`
}

type SimplifyResponse struct {
	SimplifiedText string `json:"simplified_text"`
}

type QAResponse struct {
	Answer string `json:"answer"`
}

type ImproveResponse struct {
	ImprovedText string `json:"improved_text"`
}

type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	ModelConfigured bool   `json:"model_configured"`
	Version         string `json:"version"`
}
