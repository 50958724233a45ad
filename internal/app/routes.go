package app

import (
	"net/http"

	"github.com/cradoe/nationalid/internal/auth"
	"github.com/cradoe/nationalid/internal/file"
	"github.com/cradoe/nationalid/internal/handler"
	"github.com/cradoe/nationalid/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	db := app.DB
	publisher := app.publisher()

	mid := middleware.New(app.errorHandler, app.Logger, db.Officer(), app.Tokens, app.Metrics)
	require := mid.Require

	healthHandler := handler.NewHealthCheckHandler(&handler.HealthCheckHandler{
		DB:         db,
		ErrHandler: app.errorHandler,
	})

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		OfficerRepo:  db.Officer(),
		AdminRepo:    db.Admin(),
		ActivityRepo: db.Activity(),
		Tokens:       app.Tokens,
		Helper:       app.helper,
		ErrHandler:   app.errorHandler,
	})

	officerHandler := handler.NewOfficerHandler(&handler.OfficerHandler{
		OfficerRepo:  db.Officer(),
		ActivityRepo: db.Activity(),
		Publisher:    publisher,
		Helper:       app.helper,
		ErrHandler:   app.errorHandler,
	})

	constituencyHandler := handler.NewConstituencyHandler(&handler.ConstituencyHandler{
		ConstituencyRepo: db.Constituency(),
		ErrHandler:       app.errorHandler,
	})

	applicationHandler := handler.NewApplicationHandler(&handler.ApplicationHandler{
		ApplicationRepo: db.Application(),
		OfficerRepo:     db.Officer(),
		ActivityRepo:    db.Activity(),
		Storage:         app.Storage,
		Publisher:       publisher,
		Metrics:         app.Metrics,
		Helper:          app.helper,
		ErrHandler:      app.errorHandler,
	})

	workflowHandler := handler.NewWorkflowHandler(&handler.WorkflowHandler{
		ApplicationRepo: db.Application(),
		DocumentRepo:    db.Document(),
		ActivityRepo:    db.Activity(),
		Publisher:       publisher,
		Metrics:         app.Metrics,
		Helper:          app.helper,
		ErrHandler:      app.errorHandler,
	})

	paymentHandler := handler.NewPaymentHandler(&handler.PaymentHandler{
		PaymentRepo:     db.Payment(),
		ApplicationRepo: db.Application(),
		ActivityRepo:    db.Activity(),
		Gateway:         app.Gateway,
		Publisher:       publisher,
		Metrics:         app.Metrics,
		Logger:          app.Logger,
		Helper:          app.helper,
		ErrHandler:      app.errorHandler,
	})

	reportHandler := handler.NewReportHandler(&handler.ReportHandler{
		ReportRepo: db.Report(),
		ErrHandler: app.errorHandler,
	})

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)
	mux.Handle("GET /metrics", app.Metrics.Handler())

	if local, ok := app.Storage.(*file.LocalStorage); ok {
		uploadHandler := handler.NewUploadHandler(&handler.UploadHandler{
			Uploads:    local,
			ErrHandler: app.errorHandler,
		})
		mux.HandleFunc("GET /uploads/{filename}", uploadHandler.HandleServeUpload)
	}

	// auth
	mux.HandleFunc("POST /api/officer/signup", authHandler.HandleOfficerSignup)
	mux.HandleFunc("POST /api/officer/login", authHandler.HandleOfficerLogin)
	mux.HandleFunc("POST /api/admin/login", authHandler.HandleAdminLogin)

	// public intake, tracking and payments
	mux.HandleFunc("GET /api/constituencies", constituencyHandler.HandleListConstituencies)
	mux.HandleFunc("POST /api/applications", applicationHandler.HandleSubmitApplication)
	mux.HandleFunc("POST /api/applications/lost-id", applicationHandler.HandleSubmitLostID)
	mux.HandleFunc("GET /api/applications/track/{application_number}", applicationHandler.HandleTrackApplication)
	mux.HandleFunc("GET /api/applications/search-by-id/{id_number}", applicationHandler.HandleSearchByIDNumber)
	mux.HandleFunc("PUT /api/applications/{id}/submit-for-approval", workflowHandler.HandleSubmitForApproval)
	mux.HandleFunc("POST /api/payments", paymentHandler.HandleCreatePayment)
	mux.HandleFunc("GET /api/payments/{id}", paymentHandler.HandleGetPayment)
	mux.HandleFunc("POST /api/mpesa/callback", paymentHandler.HandleMpesaCallback)

	// officer
	mux.HandleFunc("GET /api/officer/applications", require(auth.ViewOwnApplications, workflowHandler.HandleOfficerApplications))
	mux.HandleFunc("PUT /api/officer/applications/{id}/card-arrived", require(auth.ConfirmCollection, workflowHandler.HandleCardArrived))
	mux.HandleFunc("PUT /api/officer/applications/{id}/card-collected", require(auth.ConfirmCollection, workflowHandler.HandleCardCollected))

	// admin: constituencies and officers
	mux.HandleFunc("POST /api/admin/constituencies", require(auth.ManageConstituencies, constituencyHandler.HandleCreateConstituency))
	mux.HandleFunc("DELETE /api/admin/constituencies/{id}", require(auth.ManageConstituencies, constituencyHandler.HandleDeleteConstituency))

	mux.HandleFunc("GET /api/admin/officers/pending", require(auth.ManageOfficers, officerHandler.HandlePendingOfficers))
	mux.HandleFunc("GET /api/admin/officers/approved", require(auth.ManageOfficers, officerHandler.HandleApprovedOfficers))
	mux.HandleFunc("PUT /api/admin/officers/{id}/approve", require(auth.ManageOfficers, officerHandler.HandleApproveOfficer))
	mux.HandleFunc("PUT /api/admin/officers/{id}/reject", require(auth.ManageOfficers, officerHandler.HandleRejectOfficer))
	mux.HandleFunc("PUT /api/admin/officers/{id}/suspend", require(auth.ManageOfficers, officerHandler.HandleSuspendOfficer))
	mux.HandleFunc("PUT /api/admin/officers/{id}/unsuspend", require(auth.ManageOfficers, officerHandler.HandleUnsuspendOfficer))
	mux.HandleFunc("DELETE /api/admin/officers/{id}", require(auth.ManageOfficers, officerHandler.HandleDeleteOfficer))

	// admin: review queues and workflow
	mux.HandleFunc("GET /api/admin/applications", require(auth.ReviewApplications, workflowHandler.HandlePendingApplications))
	mux.HandleFunc("GET /api/admin/applications/history", require(auth.ReviewApplications, workflowHandler.HandleApplicationHistory))
	mux.HandleFunc("GET /api/admin/applications/preview", require(auth.ReviewApplications, workflowHandler.HandlePreviewQueue))
	mux.HandleFunc("GET /api/admin/applications/dispatch", require(auth.ReviewApplications, workflowHandler.HandleDispatchQueue))
	mux.HandleFunc("GET /api/admin/applications/{id}", require(auth.ReviewApplications, workflowHandler.HandleApplicationDetails))
	mux.HandleFunc("GET /api/admin/applications/{id}/activity", require(auth.ReviewApplications, workflowHandler.HandleApplicationActivity))
	mux.HandleFunc("PUT /api/admin/applications/{id}/approve", require(auth.ReviewApplications, workflowHandler.HandleApproveApplication))
	mux.HandleFunc("PUT /api/admin/applications/{id}/reject", require(auth.ReviewApplications, workflowHandler.HandleRejectApplication))
	mux.HandleFunc("PUT /api/admin/applications/{id}/print", require(auth.ReviewApplications, workflowHandler.HandlePrintApplication))
	mux.HandleFunc("PUT /api/admin/applications/{id}/dispatch", require(auth.ReviewApplications, workflowHandler.HandleDispatchApplication))

	// admin: reports
	mux.HandleFunc("GET /api/admin/reports", require(auth.ViewReports, reportHandler.HandleReport))
	mux.HandleFunc("GET /api/admin/reports/export", require(auth.ViewReports, reportHandler.HandleExportReport))

	return mid.RequestID(mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mid.Route(mux)))))
}
