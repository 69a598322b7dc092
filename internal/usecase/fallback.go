package usecase

import (
	"net/url"
	"strings"

	"github.com/user/context-service/internal/entity"
)

// basicDetection derives a minimal company context from the URL alone, for
// when the generator is unconfigured or failed. The company name comes from
// the first domain label with hyphens spelled out ("acme-corp.io" → "Acme Corp").
func basicDetection(validatedURL string) *entity.CompanyContext {
	name := ""
	if u, err := url.Parse(validatedURL); err == nil {
		domain := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		label, _, _ := strings.Cut(domain, ".")
		name = titleWords(strings.ReplaceAll(label, "-", " "))
	}

	return &entity.CompanyContext{
		CompanyName:       name,
		CompanyURL:        validatedURL,
		Tone:              "professional",
		Products:          []string{},
		Competitors:       []string{},
		PainPoints:        []string{},
		ValuePropositions: []string{},
		UseCases:          []string{},
		ContentThemes:     []string{},
	}
}

// titleWords upper-cases the first letter of each space-separated word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
