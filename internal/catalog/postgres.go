package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/langtest/catengine/core/db"
	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/model"
)

// postgresReader is the production Reader: hand-written SQL against the
// shared pgx pool. The teacher generates its query layer with sqlc; that
// codegen step isn't available here, so these queries are written and
// scanned by hand (see DESIGN.md).
type postgresReader struct {
	q db.Querier
}

// NewPostgresReader builds a Reader backed by the given pool or transaction.
func NewPostgresReader(q db.Querier) Reader {
	return &postgresReader{q: q}
}

func (r *postgresReader) GetTemplate(ctx context.Context, templateID string) (model.Template, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, learning_pathway_id, name, kind, rubric, metadata, version, active
		FROM assessment_templates
		WHERE id = $1`, templateID)

	var (
		t           model.Template
		rubricJSON  []byte
		metaJSON    []byte
	)
	err := row.Scan(&t.ID, &t.LearningPathwayID, &t.Name, &t.Kind, &rubricJSON, &metaJSON, &t.Version, &t.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Template{}, ErrNotFound
		}
		return model.Template{}, domainerr.Wrap(domainerr.Transient, "loading template", err)
	}
	if err := json.Unmarshal(rubricJSON, &t.Rubric); err != nil {
		return model.Template{}, domainerr.Wrap(domainerr.Internal, "decoding template rubric", err)
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &t.Metadata); err != nil {
			return model.Template{}, domainerr.Wrap(domainerr.Internal, "decoding template metadata", err)
		}
	}
	return t, nil
}

func (r *postgresReader) GetConfigByTemplate(ctx context.Context, templateID string) (model.Config, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, template_id, time_limit_minutes, starting_ability, min_questions,
		       max_questions, stopping_standard_error, skill_areas, proficiency_range, active
		FROM assessment_configs
		WHERE template_id = $1 AND active = true
		ORDER BY id DESC
		LIMIT 1`, templateID)

	var (
		c               model.Config
		skillAreasJSON  []byte
		proficiencyJSON []byte
	)
	err := row.Scan(&c.ID, &c.TemplateID, &c.TimeLimitMinutes, &c.StartingAbility, &c.MinQuestions,
		&c.MaxQuestions, &c.StoppingCriterion.StandardError, &skillAreasJSON, &proficiencyJSON, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Config{}, ErrNotFound
		}
		return model.Config{}, domainerr.Wrap(domainerr.Transient, "loading assessment config", err)
	}
	if len(skillAreasJSON) > 0 {
		if err := json.Unmarshal(skillAreasJSON, &c.SkillAreas); err != nil {
			return model.Config{}, domainerr.Wrap(domainerr.Internal, "decoding config skill areas", err)
		}
	}
	if len(proficiencyJSON) > 0 {
		if err := json.Unmarshal(proficiencyJSON, &c.ProficiencyRange); err != nil {
			return model.Config{}, domainerr.Wrap(domainerr.Internal, "decoding config proficiency range", err)
		}
	}
	return c, nil
}

func (r *postgresReader) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, template_id, content, kind, skill_areas, target_proficiency_level,
		       discrimination, difficulty, guessing, active
		FROM assessment_items
		WHERE id = $1`, itemID)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Item{}, ErrNotFound
	}
	return item, err
}

func (r *postgresReader) ActiveItems(ctx context.Context, templateID string) ([]model.Item, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, template_id, content, kind, skill_areas, target_proficiency_level,
		       discrimination, difficulty, guessing, active
		FROM assessment_items
		WHERE template_id = $1 AND active = true`, templateID)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Transient, "loading active items", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.Wrap(domainerr.Transient, "reading active items", err)
	}
	return items, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		item           model.Item
		contentJSON    []byte
		skillAreasJSON []byte
	)
	err := row.Scan(&item.ID, &item.TemplateID, &contentJSON, &item.Kind, &skillAreasJSON,
		&item.TargetProficiencyLevel, &item.Parameters.Discrimination, &item.Parameters.Difficulty,
		&item.Parameters.Guessing, &item.Active)
	if err != nil {
		return model.Item{}, err
	}
	if err := json.Unmarshal(contentJSON, &item.Content); err != nil {
		return model.Item{}, domainerr.Wrap(domainerr.Internal, "decoding item content", err)
	}
	if len(skillAreasJSON) > 0 {
		if err := json.Unmarshal(skillAreasJSON, &item.SkillAreas); err != nil {
			return model.Item{}, domainerr.Wrap(domainerr.Internal, "decoding item skill areas", err)
		}
	}
	return item, nil
}
