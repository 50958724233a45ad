package mocks

import (
	"context"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(ctx context.Context, log *models.ActivityLog) (int64, error) {
	args := m.Called(log)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepo) ListForEntity(ctx context.Context, entity string, entityID int64) ([]models.ActivityLog, error) {
	args := m.Called(entity, entityID)
	logs, _ := args.Get(0).([]models.ActivityLog)
	return logs, args.Error(1)
}
