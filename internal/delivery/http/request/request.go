package request

// AnalyzeRequest is the body for POST /api/v1/analyze and POST /api/v1/jobs.
// FallbackOnError takes the server-configured default when omitted.
type AnalyzeRequest struct {
	URL             string `json:"url"`
	FallbackOnError *bool  `json:"fallback_on_error"`
}

// Fallback resolves the optional flag against the configured default.
func (r *AnalyzeRequest) Fallback(defaultValue bool) bool {
	if r.FallbackOnError == nil {
		return defaultValue
	}
	return *r.FallbackOnError
}
