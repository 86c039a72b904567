package service

import (
	"context"
	"time"

	"github.com/langtest/catengine/common/id"
	"github.com/langtest/catengine/common/logger"
	"github.com/langtest/catengine/core/config"
	"github.com/langtest/catengine/internal/catalog"
	"github.com/langtest/catengine/internal/clock"
	"github.com/langtest/catengine/internal/domain"
	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/kernel"
	"github.com/langtest/catengine/internal/model"
	"github.com/langtest/catengine/internal/repository"
	"github.com/langtest/catengine/internal/selector"
)

// Orchestrator wires the Session Aggregate, the Catalog Readers, the
// Psychometric Kernel and the Item Selector into the two use cases this
// engine exposes: starting (or resuming) a session, and scoring a submitted
// answer.
type Orchestrator struct {
	tx         TxRunner
	catalog    catalog.Reader
	clock      clock.Clock
	idempotent IdempotencyStore
	defaults   config.AssessmentDefaults
}

// New builds an Orchestrator. idempotent may be nil, in which case
// SubmitAnswer performs no deduplication.
func New(tx TxRunner, reader catalog.Reader, c clock.Clock, idempotent IdempotencyStore, defaults config.AssessmentDefaults) *Orchestrator {
	return &Orchestrator{tx: tx, catalog: reader, clock: c, idempotent: idempotent, defaults: defaults}
}

// StartSession begins (or resumes) the adaptive session for an assignment,
// grounded on StartPlacementTestInteractor.execute.
func (o *Orchestrator) StartSession(ctx context.Context, assignmentID string) (StartResult, error) {
	var result StartResult

	err := o.tx.WithTx(ctx, func(repo repository.Repository) error {
		assignment, err := repo.GetByIDForUpdate(ctx, assignmentID)
		if err != nil {
			if err == repository.ErrNotFound {
				return domainerr.New(domainerr.NotFound, "assignment not found").WithType(domainerr.TypeAssignedAssessmentNotFound)
			}
			return err
		}

		template, err := o.catalog.GetTemplate(ctx, assignment.TemplateID)
		if err != nil {
			return wrapCatalogErr(err, domainerr.ConfigurationMissing, "template not found", domainerr.TypeAssessmentConfigurationNotFound)
		}
		cfg, err := o.catalog.GetConfigByTemplate(ctx, assignment.TemplateID)
		if err != nil {
			return wrapCatalogErr(err, domainerr.ConfigurationMissing, "assessment config not found", domainerr.TypeAssessmentConfigurationNotFound)
		}

		now := o.clock.Now()

		if assignment.HasActiveSession() {
			pending, ok := assignment.PendingResponse()
			if !ok {
				return domainerr.New(domainerr.InvalidState, "active session has no pending question to resume").WithType(domainerr.TypeInvalidSessionState)
			}
			item, err := o.catalog.GetItem(ctx, pending.ItemID)
			if err != nil {
				return wrapCatalogErr(err, domainerr.NotFound, "item not found", domainerr.TypeItemNotFound)
			}
			public := item.Public()
			result = StartResult{
				SessionID:     assignment.Session.ID,
				FirstQuestion: &public,
				Progress:      o.buildProgress(assignment, cfg),
			}
			return nil
		}

		timeLimit := effectiveInt(cfg.TimeLimitMinutes, o.defaults.TimeLimitMinutes)
		startingAbility := cfg.StartingAbility
		if startingAbility == 0 {
			startingAbility = o.defaults.StartingAbility
		}
		expiresAt := now.Add(time.Duration(timeLimit) * time.Minute)

		if _, err := assignment.StartSession(now, expiresAt, startingAbility, template.Rubric, model.TemplateSnapshot{
			TemplateID: template.ID,
			Name:       template.Name,
		}); err != nil {
			return err
		}

		item, err := o.selectNext(ctx, assignment, cfg)
		if err != nil {
			return err
		}
		if _, err := assignment.PresentQuestion(now, id.New(), item.ID); err != nil {
			return err
		}

		if err := repo.Save(ctx, assignment); err != nil {
			return err
		}

		public := item.Public()
		result = StartResult{
			SessionID:     assignment.Session.ID,
			FirstQuestion: &public,
			Progress:      o.buildProgress(assignment, cfg),
		}
		return nil
	})
	if err != nil {
		return StartResult{}, err
	}
	return result, nil
}

// SubmitAnswer scores the pending response, updates the ability estimate,
// checks termination, and either presents the next item or completes the
// assessment — grounded on SubmitAnswerInteractor.execute.
//
// If idempotencyKey is non-empty and a prior call already completed with
// that key, the cached result is returned without touching the aggregate
// again (see internal/service/idempotency.go).
func (o *Orchestrator) SubmitAnswer(ctx context.Context, sessionID string, data model.ResponseData, timeTaken *int, idempotencyKey string) (SubmitResult, error) {
	if idempotencyKey != "" && o.idempotent != nil {
		if cached, ok, err := o.idempotent.Load(ctx, idempotencyKey); err == nil && ok {
			return cached, nil
		}
	}

	var result SubmitResult

	err := o.tx.WithTx(ctx, func(repo repository.Repository) error {
		assignment, err := repo.GetBySessionIDForUpdate(ctx, sessionID)
		if err != nil {
			if err == repository.ErrNotFound {
				return domainerr.New(domainerr.NotFound, "session not found").WithType(domainerr.TypeSessionNotFound)
			}
			return err
		}

		now := o.clock.Now()

		if assignment.IsTerminated() {
			return domainerr.New(domainerr.InvalidState, "assessment has already terminated").WithType(domainerr.TypeAssessmentTerminated)
		}

		pending, ok := assignment.PendingResponse()
		if !ok {
			return domainerr.New(domainerr.InvalidState, "no pending response to submit against").WithType(domainerr.TypeInvalidSessionState)
		}
		pendingItem, err := o.catalog.GetItem(ctx, pending.ItemID)
		if err != nil {
			return wrapCatalogErr(err, domainerr.NotFound, "item not found", domainerr.TypeItemNotFound)
		}

		if _, err := assignment.SubmitResponse(now, data, timeTaken, pendingItem.Content.CorrectAnswer); err != nil {
			return err
		}

		observations, err := o.observationsFor(ctx, assignment)
		if err != nil {
			return err
		}
		sc := logger.StartSpan(ctx, "kernel.estimate_ability")
		estimate, err := kernel.EstimateAbility(observations)
		if err != nil {
			sc.RecordError(err)
			sc.End()
			return err
		}
		sc.End()
		if err := assignment.UpdateAbilityEstimate(estimate.Theta, estimate.StandardError); err != nil {
			return err
		}

		cfg, err := o.catalog.GetConfigByTemplate(ctx, assignment.TemplateID)
		if err != nil {
			return wrapCatalogErr(err, domainerr.ConfigurationMissing, "assessment config not found", domainerr.TypeAssessmentConfigurationNotFound)
		}

		minQ := effectiveInt(cfg.MinQuestions, o.defaults.MinQuestions)
		maxQ := effectiveInt(cfg.MaxQuestions, o.defaults.MaxQuestions)
		stoppingSE := cfg.StoppingCriterion.StandardError
		if stoppingSE == 0 {
			stoppingSE = o.defaults.StandardError
		}

		terminate := assignment.HasReachedMaxQuestions(maxQ) ||
			(assignment.HasReachedMinQuestions(minQ) && assignment.HasSufficientPrecision(stoppingSE))

		if !terminate {
			next, selErr := o.selectNext(ctx, assignment, cfg)
			switch {
			case selErr == nil:
				if _, err := assignment.PresentQuestion(now, id.New(), next.ID); err != nil {
					return err
				}
			case domainerr.Is(selErr, domainerr.NoEligibleItems):
				// The item bank is exhausted before precision/min-question
				// targets were met; terminate gracefully rather than fail
				// the request (original's fallback in _select_next_question).
				terminate = true
			default:
				return selErr
			}

			if !terminate {
				if err := repo.Save(ctx, assignment); err != nil {
					return err
				}
				public := next.Public()
				result = SubmitResult{
					NextQuestion: &public,
					Progress:     o.buildProgress(assignment, cfg),
				}
				return nil
			}
		}

		if err := assignment.CompleteAssessment(now); err != nil {
			return err
		}
		if err := repo.Save(ctx, assignment); err != nil {
			return err
		}
		result = SubmitResult{
			Progress:           o.buildProgress(assignment, cfg),
			AssessmentComplete: true,
		}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	if idempotencyKey != "" && o.idempotent != nil {
		_ = o.idempotent.Store(ctx, idempotencyKey, result)
	}
	return result, nil
}

func (o *Orchestrator) selectNext(ctx context.Context, assignment *domain.Assignment, cfg model.Config) (model.Item, error) {
	candidates, err := o.catalog.ActiveItems(ctx, assignment.TemplateID)
	if err != nil {
		return model.Item{}, err
	}
	return selector.Select(assignment.CurrentAbility(), candidates, cfg.EffectiveSkillAreas(), assignment.AnsweredItemIDs())
}

func (o *Orchestrator) observationsFor(ctx context.Context, assignment *domain.Assignment) ([]kernel.Observation, error) {
	submitted := assignment.SubmittedResponses()
	observations := make([]kernel.Observation, 0, len(submitted))
	for _, resp := range submitted {
		item, err := o.catalog.GetItem(ctx, resp.ItemID)
		if err != nil {
			return nil, wrapCatalogErr(err, domainerr.NotFound, "item not found", domainerr.TypeItemNotFound)
		}
		score := 0.0
		if resp.RawScore != nil {
			score = *resp.RawScore
		}
		observations = append(observations, kernel.Observation{
			Score: score,
			Params: kernel.ItemParams{
				Discrimination: item.Parameters.Discrimination,
				Difficulty:     item.Parameters.Difficulty,
			},
		})
	}
	return observations, nil
}

func (o *Orchestrator) buildProgress(assignment *domain.Assignment, cfg model.Config) Progress {
	return Progress{
		QuestionsAnswered: assignment.QuestionsAnswered(),
		MinQuestions:      effectiveInt(cfg.MinQuestions, o.defaults.MinQuestions),
		MaxQuestions:      effectiveInt(cfg.MaxQuestions, o.defaults.MaxQuestions),
		CurrentAbility:    assignment.CurrentAbility(),
		StandardError:     assignment.StandardError(),
		Complete:          assignment.Session != nil && assignment.Session.Status != model.SessionStatusInProgress,
	}
}

func effectiveInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func wrapCatalogErr(err error, kind domainerr.Kind, message, problemType string) error {
	if err == catalog.ErrNotFound {
		return domainerr.New(kind, message).WithType(problemType)
	}
	return err
}
