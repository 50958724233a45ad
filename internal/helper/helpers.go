package helper

import (
	"fmt"
	"net/http"
	"sync"
)

type ErrorReporter interface {
	ReportServerError(r *http.Request, err error)
}

// BackgroundRunner runs work after the response has been written.
type BackgroundRunner interface {
	BackgroundTask(r *http.Request, fn func() error)
}

type HelperRepository struct {
	baseUrl  string
	WG       *sync.WaitGroup
	reporter ErrorReporter
}

func New(baseUrl string, wg *sync.WaitGroup, reporter ErrorReporter) *HelperRepository {
	if wg == nil {
		wg = &sync.WaitGroup{}
	}

	return &HelperRepository{
		baseUrl:  baseUrl,
		WG:       wg,
		reporter: reporter,
	}
}

func (h *HelperRepository) NewEmailData() map[string]any {
	return map[string]any{
		"BaseURL": h.baseUrl,
	}
}

// BackgroundTask runs fn on its own goroutine. Shutdown waits on WG, so
// started tasks finish before the process exits.
func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			if rec := recover(); rec != nil {
				h.report(r, fmt.Errorf("%s", rec))
			}
		}()

		if err := fn(); err != nil {
			h.report(r, err)
		}
	}()
}

func (h *HelperRepository) report(r *http.Request, err error) {
	if h.reporter != nil {
		h.reporter.ReportServerError(r, err)
	}
}
