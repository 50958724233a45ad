package mocks

import (
	"log"
	"net/http"
)

// MockHelper runs background tasks inline so tests can assert on their effects.
type MockHelper struct{}

func (m *MockHelper) BackgroundTask(r *http.Request, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("Background task error: %v", err)
	}
}
