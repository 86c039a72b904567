package service_test

import (
	"context"

	"github.com/langtest/catengine/internal/catalog"
	"github.com/langtest/catengine/internal/domain"
	"github.com/langtest/catengine/internal/model"
	"github.com/langtest/catengine/internal/repository"
	"github.com/langtest/catengine/internal/service"
)

// memoryIdempotencyStore is an in-process IdempotencyStore fake for tests
// that don't need a real Redis instance.
type memoryIdempotencyStore struct {
	results map[string]service.SubmitResult
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{results: map[string]service.SubmitResult{}}
}

func (m *memoryIdempotencyStore) Load(ctx context.Context, key string) (service.SubmitResult, bool, error) {
	result, ok := m.results[key]
	return result, ok, nil
}

func (m *memoryIdempotencyStore) Store(ctx context.Context, key string, result service.SubmitResult) error {
	m.results[key] = result
	return nil
}

// fakeRepository holds a single in-memory aggregate, grounded on the
// teacher's mockStoreProvider-per-test-case pattern but collapsed to the
// one aggregate this engine owns.
type fakeRepository struct {
	assignment *domain.Assignment
	saveCalls  int
}

func (f *fakeRepository) GetByID(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return f.get(assignmentID)
}

func (f *fakeRepository) GetByIDForUpdate(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return f.get(assignmentID)
}

func (f *fakeRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Assignment, error) {
	return f.getBySession(sessionID)
}

func (f *fakeRepository) GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*domain.Assignment, error) {
	return f.getBySession(sessionID)
}

func (f *fakeRepository) get(assignmentID string) (*domain.Assignment, error) {
	if f.assignment == nil || f.assignment.ID != assignmentID {
		return nil, repository.ErrNotFound
	}
	return f.assignment, nil
}

func (f *fakeRepository) getBySession(sessionID string) (*domain.Assignment, error) {
	if f.assignment == nil || f.assignment.Session == nil || f.assignment.Session.ID != sessionID {
		return nil, repository.ErrNotFound
	}
	return f.assignment, nil
}

func (f *fakeRepository) Save(ctx context.Context, a *domain.Assignment) error {
	f.saveCalls++
	f.assignment = a
	return nil
}

// fakeTxRunner runs fn directly against a single shared fakeRepository,
// with no real transactional isolation — sufficient for orchestrator unit
// tests, which don't exercise concurrency.
type fakeTxRunner struct {
	repo *fakeRepository
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(repo repository.Repository) error) error {
	return fn(f.repo)
}

// fakeCatalog serves a fixed in-memory template/config/item set.
type fakeCatalog struct {
	template model.Template
	config   model.Config
	items    map[string]model.Item
}

func (f *fakeCatalog) GetTemplate(ctx context.Context, templateID string) (model.Template, error) {
	if templateID != f.template.ID {
		return model.Template{}, catalog.ErrNotFound
	}
	return f.template, nil
}

func (f *fakeCatalog) GetConfigByTemplate(ctx context.Context, templateID string) (model.Config, error) {
	if templateID != f.template.ID {
		return model.Config{}, catalog.ErrNotFound
	}
	return f.config, nil
}

func (f *fakeCatalog) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	item, ok := f.items[itemID]
	if !ok {
		return model.Item{}, catalog.ErrNotFound
	}
	return item, nil
}

func (f *fakeCatalog) ActiveItems(ctx context.Context, templateID string) ([]model.Item, error) {
	var out []model.Item
	for _, item := range f.items {
		if item.TemplateID == templateID && item.Active {
			out = append(out, item)
		}
	}
	return out, nil
}
