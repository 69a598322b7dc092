package entity

// LanguageStyle describes how content should read for the target audience.
type LanguageStyle struct {
	Formality      string `json:"formality,omitempty"`
	Complexity     string `json:"complexity,omitempty"`
	SentenceLength string `json:"sentence_length,omitempty"`
	Perspective    string `json:"perspective,omitempty"`
}

// VoicePersona is the writing persona tailored to the ideal customer profile.
type VoicePersona struct {
	ICPProfile       string        `json:"icp_profile,omitempty"`
	VoiceStyle       string        `json:"voice_style,omitempty"`
	LanguageStyle    LanguageStyle `json:"language_style,omitempty"`
	SentencePatterns []string      `json:"sentence_patterns,omitempty"`
	VocabularyLevel  string        `json:"vocabulary_level,omitempty"`
	AuthoritySignals []string      `json:"authority_signals,omitempty"`
	DoList           []string      `json:"do_list,omitempty"`
	DontList         []string      `json:"dont_list,omitempty"`
	ExamplePhrases   []string      `json:"example_phrases,omitempty"`
	OpeningStyles    []string      `json:"opening_styles,omitempty"`
}

// CompanyContext is the structured company profile produced by one analysis.
// The field set mirrors the JSON shape the generator is instructed to emit;
// VoicePersona is optional and stays nil when the upstream omits it.
type CompanyContext struct {
	CompanyName       string        `json:"company_name"`
	CompanyURL        string        `json:"company_url"`
	Industry          string        `json:"industry"`
	Description       string        `json:"description"`
	Products          []string      `json:"products"`
	TargetAudience    string        `json:"target_audience"`
	Competitors       []string      `json:"competitors"`
	Tone              string        `json:"tone"`
	PainPoints        []string      `json:"pain_points"`
	ValuePropositions []string      `json:"value_propositions"`
	UseCases          []string      `json:"use_cases"`
	ContentThemes     []string      `json:"content_themes"`
	VoicePersona      *VoicePersona `json:"voice_persona,omitempty"`
}
