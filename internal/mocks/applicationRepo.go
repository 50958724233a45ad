package mocks

import (
	"context"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/workflow"
	"github.com/stretchr/testify/mock"
)

type MockApplicationRepo struct {
	mock.Mock
}

// Submit runs attach like the real repository does, before the insert whose
// outcome the expectation returns, so tests exercise the handler's storage
// callback. The application number comes from the returned application.
func (m *MockApplicationRepo) Submit(ctx context.Context, app *models.Application, prefix string, attach repository.AttachFunc) (*models.Application, error) {
	args := m.Called(app, prefix)

	created, _ := args.Get(0).(*models.Application)

	var docs []models.Document
	if attach != nil && created != nil {
		var err error
		docs, err = attach(created.ApplicationNumber)
		if err != nil {
			return nil, err
		}
	}

	if err := args.Error(1); err != nil {
		return nil, err
	}

	created.Documents = docs
	return created, nil
}

func (m *MockApplicationRepo) GetOne(ctx context.Context, id int64) (*models.Application, bool, error) {
	args := m.Called(id)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Bool(1), args.Error(2)
}

func (m *MockApplicationRepo) Track(ctx context.Context, applicationNumber string) (*models.ApplicationTracking, bool, error) {
	args := m.Called(applicationNumber)
	tracking, _ := args.Get(0).(*models.ApplicationTracking)
	return tracking, args.Bool(1), args.Error(2)
}

func (m *MockApplicationRepo) FindIssuedByIDNumber(ctx context.Context, idNumber string) (*models.Application, bool, error) {
	args := m.Called(idNumber)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Bool(1), args.Error(2)
}

func (m *MockApplicationRepo) ListByStatus(ctx context.Context, statuses ...workflow.Status) ([]models.ApplicationListItem, error) {
	args := m.Called(statuses)
	items, _ := args.Get(0).([]models.ApplicationListItem)
	return items, args.Error(1)
}

func (m *MockApplicationRepo) ListForOfficer(ctx context.Context, officerID int64, constituency string) ([]models.ApplicationListItem, error) {
	args := m.Called(officerID, constituency)
	items, _ := args.Get(0).([]models.ApplicationListItem)
	return items, args.Error(1)
}

func (m *MockApplicationRepo) Approve(ctx context.Context, id int64) (*models.Approval, error) {
	args := m.Called(id)
	approval, _ := args.Get(0).(*models.Approval)
	return approval, args.Error(1)
}

func (m *MockApplicationRepo) Transition(ctx context.Context, id int64, action workflow.Action) error {
	args := m.Called(id, action)
	return args.Error(0)
}

type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error) {
	args := m.Called(applicationID)
	docs, _ := args.Get(0).([]models.Document)
	return docs, args.Error(1)
}
