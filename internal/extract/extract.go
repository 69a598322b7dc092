// Package extract recovers a structured company context from the raw text an
// upstream generator returns. The generator is instructed to emit bare JSON
// but routinely wraps it in markdown fences or prose, so extraction is a
// prioritized list of strategies tried in order rather than a single parse.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/user/context-service/internal/entity"
)

// previewLimit caps how much offending upstream text an ExtractionError may
// carry, so logs and error responses never grow with the payload.
const previewLimit = 200

// Reason categorizes extraction failures.
type Reason string

const (
	// ReasonMalformedJSON means no parseable JSON object could be recovered.
	ReasonMalformedJSON Reason = "malformed_json"
	// ReasonUpstreamDeclined means the generator returned a well-formed
	// object that declares its own failure instead of a usable result.
	ReasonUpstreamDeclined Reason = "upstream_declined"
	// ReasonSchemaMismatch means valid JSON was recovered but it does not
	// carry the required company context fields.
	ReasonSchemaMismatch Reason = "schema_mismatch"
)

// ExtractionError reports why no structured result could be recovered.
type ExtractionError struct {
	Reason  Reason
	Preview string
}

func (e *ExtractionError) Error() string {
	if e.Preview == "" {
		return fmt.Sprintf("extraction failed: %s", e.Reason)
	}
	return fmt.Sprintf("extraction failed: %s: %s", e.Reason, e.Preview)
}

// requiredStringFields and requiredArrayFields are the keys every usable
// result must carry. voice_persona is optional and left absent when missing.
var (
	requiredStringFields = []string{
		"company_name", "company_url", "industry",
		"description", "target_audience", "tone",
	}
	requiredArrayFields = []string{
		"products", "competitors", "pain_points",
		"value_propositions", "use_cases", "content_themes",
	}
)

// Extract recovers a single CompanyContext from raw generator output, or
// returns an *ExtractionError.
func Extract(raw string) (*entity.CompanyContext, error) {
	text := strings.TrimSpace(raw)
	candidate := locateJSON(text)

	fields, err := parseObject(candidate)
	if err != nil {
		return nil, &ExtractionError{Reason: ReasonMalformedJSON, Preview: preview(text)}
	}

	// An object carrying an error field without a company_name is the
	// generator declaring failure, not a result.
	if _, hasErr := fields["error"]; hasErr {
		if _, hasName := fields["company_name"]; !hasName {
			return nil, &ExtractionError{Reason: ReasonUpstreamDeclined}
		}
	}

	for _, key := range requiredStringFields {
		if _, ok := fields[key]; !ok {
			return nil, &ExtractionError{Reason: ReasonSchemaMismatch, Preview: preview(candidate)}
		}
	}
	for _, key := range requiredArrayFields {
		if _, ok := fields[key]; !ok {
			return nil, &ExtractionError{Reason: ReasonSchemaMismatch, Preview: preview(candidate)}
		}
	}

	var ctx entity.CompanyContext
	if err := unmarshalObject(fields, &ctx); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ExtractionError{Reason: ReasonSchemaMismatch, Preview: preview(candidate)}
		}
		return nil, &ExtractionError{Reason: ReasonMalformedJSON, Preview: preview(candidate)}
	}
	return &ctx, nil
}

// parseObject decodes candidate into a key set, applying the repair pass
// before giving up on a first parse failure.
func parseObject(candidate string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err == nil {
		return fields, nil
	}
	repaired := repairJSON(candidate)
	if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// unmarshalObject decodes the already-parsed field set into the typed result,
// so array fields that are not arrays of strings surface as type errors.
func unmarshalObject(fields map[string]json.RawMessage, ctx *entity.CompanyContext) error {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, ctx)
}

func preview(text string) string {
	if len(text) <= previewLimit {
		return text
	}
	// Back off to a rune boundary so the preview stays valid UTF-8.
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
