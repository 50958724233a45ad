package mocks

import (
	"context"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockOfficerRepo struct {
	mock.Mock
}

func (m *MockOfficerRepo) CheckIfExists(ctx context.Context, idNumber, email string) (bool, error) {
	args := m.Called(idNumber, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockOfficerRepo) Insert(ctx context.Context, officer *models.Officer) (int64, error) {
	args := m.Called(officer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOfficerRepo) GetOne(ctx context.Context, id int64) (*models.Officer, bool, error) {
	args := m.Called(id)
	officer, _ := args.Get(0).(*models.Officer)
	return officer, args.Bool(1), args.Error(2)
}

func (m *MockOfficerRepo) GetByEmail(ctx context.Context, email string) (*models.Officer, bool, error) {
	args := m.Called(email)
	officer, _ := args.Get(0).(*models.Officer)
	return officer, args.Bool(1), args.Error(2)
}

func (m *MockOfficerRepo) ListByStatus(ctx context.Context, statuses ...string) ([]models.Officer, error) {
	args := m.Called(statuses)
	officers, _ := args.Get(0).([]models.Officer)
	return officers, args.Error(1)
}

func (m *MockOfficerRepo) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	args := m.Called(id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockOfficerRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) GetByUsername(ctx context.Context, username string) (*models.Admin, bool, error) {
	args := m.Called(username)
	admin, _ := args.Get(0).(*models.Admin)
	return admin, args.Bool(1), args.Error(2)
}

func (m *MockAdminRepo) InsertIfMissing(ctx context.Context, admin *models.Admin) (bool, error) {
	args := m.Called(admin)
	return args.Bool(0), args.Error(1)
}

type MockConstituencyRepo struct {
	mock.Mock
}

func (m *MockConstituencyRepo) List(ctx context.Context) ([]models.Constituency, error) {
	args := m.Called()
	constituencies, _ := args.Get(0).([]models.Constituency)
	return constituencies, args.Error(1)
}

func (m *MockConstituencyRepo) Insert(ctx context.Context, name string) (*models.Constituency, error) {
	args := m.Called(name)
	constituency, _ := args.Get(0).(*models.Constituency)
	return constituency, args.Error(1)
}

func (m *MockConstituencyRepo) InsertIfMissing(ctx context.Context, name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockConstituencyRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}
