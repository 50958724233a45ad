package mocks

import (
	"context"

	"github.com/cradoe/nationalid/internal/mpesa"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) STKPush(ctx context.Context, req mpesa.STKPushRequest) (*mpesa.STKPushResponse, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*mpesa.STKPushResponse)
	return res, args.Error(1)
}
