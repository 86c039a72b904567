package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/langtest/catengine/core/config"
	"github.com/langtest/catengine/internal/clock"
	"github.com/langtest/catengine/internal/domain"
	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/model"
	"github.com/langtest/catengine/internal/service"
)

func TestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "service suite")
}

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newFixture() (*service.Orchestrator, *fakeRepository) {
	repo := &fakeRepository{
		assignment: domain.New(model.Assignment{
			ID:         "assign-1",
			TemplateID: "tmpl-1",
			Status:     model.AssignmentStatusPending,
		}, nil),
	}
	tx := &fakeTxRunner{repo: repo}
	cat := &fakeCatalog{
		template: model.Template{ID: "tmpl-1", Name: "English Placement", Kind: model.AssessmentKindPlacement, Active: true,
			Rubric: model.Rubric{ProficiencyLevels: []string{"A1", "A2", "B1", "B2", "C1", "C2"}}},
		config: model.Config{
			ID: "cfg-1", TemplateID: "tmpl-1",
			TimeLimitMinutes: 30, MinQuestions: 2, MaxQuestions: 3,
			StoppingCriterion: model.StoppingCriterion{StandardError: 0.3},
		},
		items: map[string]model.Item{
			"item-easy": {
				ID: "item-easy", TemplateID: "tmpl-1", Active: true,
				Content:    model.MultipleChoiceContent{Stem: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
				Parameters: model.ItemParameters{Discrimination: 2.0, Difficulty: 0.0},
			},
			"item-far": {
				ID: "item-far", TemplateID: "tmpl-1", Active: true,
				Content:    model.MultipleChoiceContent{Stem: "hard?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
				Parameters: model.ItemParameters{Discrimination: 0.3, Difficulty: 6.0},
			},
			"item-third": {
				ID: "item-third", TemplateID: "tmpl-1", Active: true,
				Content:    model.MultipleChoiceContent{Stem: "third?", Options: []string{"x", "y"}, CorrectAnswer: "x"},
				Parameters: model.ItemParameters{Discrimination: 0.2, Difficulty: 7.0},
			},
		},
	}
	o := service.New(tx, cat, clock.Fixed{At: fixedNow}, nil, config.AssessmentDefaults{
		MinQuestions: 5, MaxQuestions: 20, StandardError: 0.3, StartingAbility: 0,
	})
	return o, repo
}

var _ = Describe("Orchestrator.StartSession", func() {
	It("starts a fresh session and presents the most informative item at theta 0", func() {
		o, repo := newFixture()
		result, err := o.StartSession(context.TODO(), "assign-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FirstQuestion.ID).To(Equal("item-easy"))
		Expect(result.Progress.QuestionsAnswered).To(Equal(0))
		Expect(repo.assignment.Status).To(Equal(model.AssignmentStatusInProgress))
	})

	It("fails NotFound for an unknown assignment", func() {
		o, _ := newFixture()
		_, err := o.StartSession(context.TODO(), "does-not-exist")
		Expect(domainerr.Is(err, domainerr.NotFound)).To(BeTrue())
	})

	It("resumes an active session by returning its pending question", func() {
		o, _ := newFixture()
		first, err := o.StartSession(context.TODO(), "assign-1")
		Expect(err).NotTo(HaveOccurred())

		second, err := o.StartSession(context.TODO(), "assign-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(second.SessionID).To(Equal(first.SessionID))
		Expect(second.FirstQuestion.ID).To(Equal(first.FirstQuestion.ID))
	})
})

var _ = Describe("Orchestrator.SubmitAnswer", func() {
	It("presents the next item when below the minimum question count", func() {
		o, repo := newFixture()
		start, err := o.StartSession(context.TODO(), "assign-1")
		Expect(err).NotTo(HaveOccurred())

		result, err := o.SubmitAnswer(context.TODO(), start.SessionID, model.ResponseData{"selected_option": "4"}, nil, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.AssessmentComplete).To(BeFalse())
		Expect(result.NextQuestion).NotTo(BeNil())
		Expect(repo.assignment.Session.QuestionsAnswered).To(Equal(1))
	})

	It("completes the assessment once the max question count is reached", func() {
		o, _ := newFixture()
		start, err := o.StartSession(context.TODO(), "assign-1")
		Expect(err).NotTo(HaveOccurred())

		r1, err := o.SubmitAnswer(context.TODO(), start.SessionID, model.ResponseData{"selected_option": "4"}, nil, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(r1.AssessmentComplete).To(BeFalse())

		r2, err := o.SubmitAnswer(context.TODO(), start.SessionID, model.ResponseData{"selected_option": "a"}, nil, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(r2.AssessmentComplete).To(BeFalse())

		r3, err := o.SubmitAnswer(context.TODO(), start.SessionID, model.ResponseData{"selected_option": "x"}, nil, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(r3.AssessmentComplete).To(BeTrue())
		Expect(r3.NextQuestion).To(BeNil())
	})

	It("fails NotFound for an unknown session", func() {
		o, _ := newFixture()
		_, err := o.SubmitAnswer(context.TODO(), "no-such-session", model.ResponseData{"selected_option": "4"}, nil, "")
		Expect(domainerr.Is(err, domainerr.NotFound)).To(BeTrue())
	})

	It("deduplicates retried calls carrying the same idempotency key", func() {
		repo := &fakeRepository{
			assignment: domain.New(model.Assignment{ID: "assign-1", TemplateID: "tmpl-1", Status: model.AssignmentStatusPending}, nil),
		}
		tx := &fakeTxRunner{repo: repo}
		cat := &fakeCatalog{
			template: model.Template{ID: "tmpl-1", Kind: model.AssessmentKindPlacement, Active: true},
			config: model.Config{
				ID: "cfg-1", TemplateID: "tmpl-1", TimeLimitMinutes: 30,
				MinQuestions: 2, MaxQuestions: 3,
				StoppingCriterion: model.StoppingCriterion{StandardError: 0.3},
			},
			items: map[string]model.Item{
				"item-easy": {
					ID: "item-easy", TemplateID: "tmpl-1", Active: true,
					Content:    model.MultipleChoiceContent{Stem: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
					Parameters: model.ItemParameters{Discrimination: 2.0, Difficulty: 0.0},
				},
				"item-far": {
					ID: "item-far", TemplateID: "tmpl-1", Active: true,
					Content:    model.MultipleChoiceContent{Stem: "hard?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
					Parameters: model.ItemParameters{Discrimination: 0.3, Difficulty: 6.0},
				},
			},
		}
		idem := newMemoryIdempotencyStore()
		o := service.New(tx, cat, clock.Fixed{At: fixedNow}, idem, config.AssessmentDefaults{
			MinQuestions: 5, MaxQuestions: 20, StandardError: 0.3,
		})

		start, err := o.StartSession(context.TODO(), "assign-1")
		Expect(err).NotTo(HaveOccurred())

		first, err := o.SubmitAnswer(context.TODO(), start.SessionID, model.ResponseData{"selected_option": "4"}, nil, "retry-key-1")
		Expect(err).NotTo(HaveOccurred())

		saveCallsAfterFirst := repo.saveCalls

		second, err := o.SubmitAnswer(context.TODO(), start.SessionID, model.ResponseData{"selected_option": "4"}, nil, "retry-key-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
		Expect(repo.saveCalls).To(Equal(saveCallsAfterFirst))
	})
})
