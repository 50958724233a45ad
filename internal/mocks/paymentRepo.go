package mocks

import (
	"context"

	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Insert(ctx context.Context, payment *models.Payment) (int64, error) {
	args := m.Called(payment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepo) GetOne(ctx context.Context, id int64) (*models.Payment, bool, error) {
	args := m.Called(id)
	payment, _ := args.Get(0).(*models.Payment)
	return payment, args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepo) SetCheckoutID(ctx context.Context, id int64, checkoutID string) error {
	return m.Called(id, checkoutID).Error(0)
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockPaymentRepo) Confirm(ctx context.Context, checkoutID, receipt string) (*repository.PaymentConfirmation, bool, error) {
	args := m.Called(checkoutID, receipt)
	confirmation, _ := args.Get(0).(*repository.PaymentConfirmation)
	return confirmation, args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepo) FailByCheckoutID(ctx context.Context, checkoutID string) (bool, error) {
	args := m.Called(checkoutID)
	return args.Bool(0), args.Error(1)
}

type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) Rows(ctx context.Context, filter repository.ReportFilter) ([]models.ReportRow, error) {
	args := m.Called(filter)
	rows, _ := args.Get(0).([]models.ReportRow)
	return rows, args.Error(1)
}

func (m *MockReportRepo) Stats(ctx context.Context, filter repository.ReportFilter) (*models.ReportStats, error) {
	args := m.Called(filter)
	stats, _ := args.Get(0).(*models.ReportStats)
	return stats, args.Error(1)
}
