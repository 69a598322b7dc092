package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/context-service/internal/entity"
	"github.com/user/context-service/internal/repository"
)

// ContextRepoImpl provides a concrete implementation for the
// ContextRepository interface using PostgreSQL. One row per company URL;
// list fields and the voice persona are stored as JSONB.
type ContextRepoImpl struct {
	db *pgxpool.Pool
}

// NewContextRepo creates a new instance of ContextRepoImpl.
func NewContextRepo(db *pgxpool.Pool) *ContextRepoImpl {
	return &ContextRepoImpl{db: db}
}

// Save stores or updates the analysis result for a URL.
func (r *ContextRepoImpl) Save(ctx context.Context, data *entity.CompanyContext, aiCalled bool) error {
	listsJSON, err := json.Marshal(map[string][]string{
		"products":           data.Products,
		"competitors":        data.Competitors,
		"pain_points":        data.PainPoints,
		"value_propositions": data.ValuePropositions,
		"use_cases":          data.UseCases,
		"content_themes":     data.ContentThemes,
	})
	if err != nil {
		return fmt.Errorf("failed to encode list fields: %w", err)
	}

	var personaJSON []byte
	if data.VoicePersona != nil {
		personaJSON, err = json.Marshal(data.VoicePersona)
		if err != nil {
			return fmt.Errorf("failed to encode voice persona: %w", err)
		}
	}

	query := `
		INSERT INTO company_contexts (url, company_name, industry, description, target_audience, tone, lists, voice_persona, ai_called, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (url) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			industry = EXCLUDED.industry,
			description = EXCLUDED.description,
			target_audience = EXCLUDED.target_audience,
			tone = EXCLUDED.tone,
			lists = EXCLUDED.lists,
			voice_persona = EXCLUDED.voice_persona,
			ai_called = EXCLUDED.ai_called,
			analyzed_at = EXCLUDED.analyzed_at;
	`
	_, err = r.db.Exec(ctx, query,
		data.CompanyURL,
		data.CompanyName,
		data.Industry,
		data.Description,
		data.TargetAudience,
		data.Tone,
		listsJSON,
		personaJSON,
		aiCalled,
		time.Now().UTC(),
	)
	return err
}

// FindByURL retrieves the stored analysis for a URL.
func (r *ContextRepoImpl) FindByURL(ctx context.Context, url string) (*entity.CompanyContext, error) {
	query := `
		SELECT url, company_name, industry, description, target_audience, tone, lists, voice_persona
		FROM company_contexts
		WHERE url = $1;
	`
	row := r.db.QueryRow(ctx, query, url)

	var data entity.CompanyContext
	var listsJSON, personaJSON []byte

	err := row.Scan(
		&data.CompanyURL,
		&data.CompanyName,
		&data.Industry,
		&data.Description,
		&data.TargetAudience,
		&data.Tone,
		&listsJSON,
		&personaJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var lists map[string][]string
	if err := json.Unmarshal(listsJSON, &lists); err != nil {
		return nil, fmt.Errorf("failed to decode list fields: %w", err)
	}
	data.Products = lists["products"]
	data.Competitors = lists["competitors"]
	data.PainPoints = lists["pain_points"]
	data.ValuePropositions = lists["value_propositions"]
	data.UseCases = lists["use_cases"]
	data.ContentThemes = lists["content_themes"]

	if len(personaJSON) > 0 {
		var persona entity.VoicePersona
		if err := json.Unmarshal(personaJSON, &persona); err != nil {
			return nil, fmt.Errorf("failed to decode voice persona: %w", err)
		}
		data.VoicePersona = &persona
	}

	return &data, nil
}
