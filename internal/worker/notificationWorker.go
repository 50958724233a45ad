package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cradoe/nationalid/internal/stream"
)

// NotificationWorker emails officers when an admin changes their account or
// when an application they submitted moves through the workflow.
func (wk *Worker) NotificationWorker(ctx context.Context) error {
	return wk.consume(ctx, notificationGroupID, map[string]messageHandler{
		stream.ApplicationStatusTopic: wk.handleApplicationEvent,
		stream.OfficerStatusTopic:     wk.handleOfficerEvent,
	})
}

func (wk *Worker) handleApplicationEvent(ctx context.Context, value []byte) error {
	var event stream.ApplicationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode application event: %w", err)
	}

	// lost-ID applications may come in without an officer
	if event.OfficerID == nil {
		return nil
	}

	officer, found, err := wk.DB.Officer().GetOne(ctx, *event.OfficerID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	data := map[string]any{
		"BaseURL":           wk.BaseURL,
		"Name":              officer.FullName,
		"ApplicationNumber": event.ApplicationNumber,
		"FullNames":         event.FullNames,
		"Status":            event.Status,
		"IDNumber":          event.IDNumber,
	}

	if err := wk.Mailer.Send(officer.Email, data, "application-status.tmpl"); err != nil {
		return err
	}

	wk.Logger.Info("application notification sent", "application", event.ApplicationNumber, "status", event.Status)
	return nil
}

func (wk *Worker) handleOfficerEvent(ctx context.Context, value []byte) error {
	var event stream.OfficerEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode officer event: %w", err)
	}

	officer, found, err := wk.DB.Officer().GetOne(ctx, event.OfficerID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	data := map[string]any{
		"BaseURL": wk.BaseURL,
		"Name":    officer.FullName,
		"Status":  event.Status,
	}

	if err := wk.Mailer.Send(officer.Email, data, "officer-status.tmpl"); err != nil {
		return err
	}

	wk.Logger.Info("officer notification sent", "officer", officer.ID, "status", event.Status)
	return nil
}
