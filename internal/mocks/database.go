package mocks

import (
	"context"

	"github.com/cradoe/nationalid/internal/repository"
)

// MockDatabase hands out whichever repository mocks a test sets.
type MockDatabase struct {
	OfficerRepo      *MockOfficerRepo
	AdminRepo        *MockAdminRepo
	ConstituencyRepo *MockConstituencyRepo
	ApplicationRepo  *MockApplicationRepo
	DocumentRepo     *MockDocumentRepo
	PaymentRepo      *MockPaymentRepo
	ReportRepo       *MockReportRepo
	ActivityRepo     *MockActivityRepo

	PingErr error
}

// NewMockDatabase returns a database with a fresh mock for every repository.
func NewMockDatabase() *MockDatabase {
	return &MockDatabase{
		OfficerRepo:      new(MockOfficerRepo),
		AdminRepo:        new(MockAdminRepo),
		ConstituencyRepo: new(MockConstituencyRepo),
		ApplicationRepo:  new(MockApplicationRepo),
		DocumentRepo:     new(MockDocumentRepo),
		PaymentRepo:      new(MockPaymentRepo),
		ReportRepo:       new(MockReportRepo),
		ActivityRepo:     new(MockActivityRepo),
	}
}

func (m *MockDatabase) Officer() repository.OfficerRepository           { return m.OfficerRepo }
func (m *MockDatabase) Admin() repository.AdminRepository               { return m.AdminRepo }
func (m *MockDatabase) Constituency() repository.ConstituencyRepository { return m.ConstituencyRepo }
func (m *MockDatabase) Application() repository.ApplicationRepository   { return m.ApplicationRepo }
func (m *MockDatabase) Document() repository.DocumentRepository         { return m.DocumentRepo }
func (m *MockDatabase) Payment() repository.PaymentRepository           { return m.PaymentRepo }
func (m *MockDatabase) Report() repository.ReportRepository             { return m.ReportRepo }
func (m *MockDatabase) Activity() repository.ActivityRepository         { return m.ActivityRepo }

func (m *MockDatabase) Ping(ctx context.Context) error { return m.PingErr }
func (m *MockDatabase) Close() error                   { return nil }
