package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/auth"
	appcontext "github.com/cradoe/nationalid/internal/context"
	"github.com/cradoe/nationalid/internal/helper"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/stream"
)

const (
	dateLayout = "2006-01-02"

	// anonymousActor marks audit rows for public requests and gateway callbacks
	anonymousActor = "anonymous"
)

var errInvalidID = errors.New("invalid id parameter")

// pathID reads the {id} wildcard of the matched route.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

// activityLogger writes audit rows after the response has gone out.
type activityLogger struct {
	repo   repository.ActivityRepository
	helper helper.BackgroundRunner
}

func (a activityLogger) record(r *http.Request, entity string, entityID int64, description string) {
	if a.repo == nil || a.helper == nil {
		return
	}

	entry := &models.ActivityLog{
		ActorRole:   anonymousActor,
		Entity:      entity,
		EntityID:    entityID,
		Description: description,
	}

	if principal := appcontext.ContextGetPrincipal(r); principal != nil {
		entry.ActorRole = string(principal.Role)
		entry.ActorID = principal.ID
	}

	a.helper.BackgroundTask(r, func() error {
		_, err := a.repo.Insert(context.Background(), entry)
		return err
	})
}

// recordAs is record for requests that have no principal yet, e.g. logins.
func (a activityLogger) recordAs(r *http.Request, role auth.Role, actorID int64, entity string, entityID int64, description string) {
	if a.repo == nil || a.helper == nil {
		return
	}

	entry := &models.ActivityLog{
		ActorRole:   string(role),
		ActorID:     actorID,
		Entity:      entity,
		EntityID:    entityID,
		Description: description,
	}

	a.helper.BackgroundTask(r, func() error {
		_, err := a.repo.Insert(context.Background(), entry)
		return err
	})
}

// publish sends event to topic in the background. A nil publisher
// disables events, which is how the service runs without Kafka.
func publish(runner helper.BackgroundRunner, publisher stream.Publisher, r *http.Request, topic, key string, event any) {
	if publisher == nil || runner == nil {
		return
	}

	runner.BackgroundTask(r, func() error {
		return publisher.Publish(topic, key, event)
	})
}

func applicationEvent(app *models.Application, action, status, idNumber string) stream.ApplicationEvent {
	return stream.ApplicationEvent{
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		FullNames:         app.FullNames,
		Action:            action,
		Status:            status,
		IDNumber:          idNumber,
		OfficerID:         app.OfficerID,
		OccurredAt:        time.Now(),
	}
}

// optional turns a blank form value into a NULL column.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// normalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns
// YYYY-MM-DD, or nil for anything else.
func normalizeDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		d := t.Format(dateLayout)
		return &d
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d := t.Format(dateLayout)
		return &d
	}

	if len(s) > len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil && s[len(dateLayout)] == 'T' {
			d := t.Format(dateLayout)
			return &d
		}
	}

	return nil
}
