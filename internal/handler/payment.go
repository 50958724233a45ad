package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/helper"
	"github.com/cradoe/nationalid/internal/metrics"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/mpesa"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/request"
	"github.com/cradoe/nationalid/internal/response"
	"github.com/cradoe/nationalid/internal/stream"
	"github.com/cradoe/nationalid/internal/validator"
	"github.com/cradoe/nationalid/internal/workflow"
	"github.com/shopspring/decimal"
)

// PaymentGateway starts a mobile-money payment on the customer's phone.
type PaymentGateway interface {
	STKPush(ctx context.Context, req mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
}

type PaymentHandler struct {
	PaymentRepo     repository.PaymentRepository
	ApplicationRepo repository.ApplicationRepository
	ActivityRepo    repository.ActivityRepository
	Gateway         PaymentGateway
	Publisher       stream.Publisher
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
	Helper          helper.BackgroundRunner
	ErrHandler      *errHandler.ErrorRepository
}

func NewPaymentHandler(handler *PaymentHandler) *PaymentHandler {
	return &PaymentHandler{
		PaymentRepo:     handler.PaymentRepo,
		ApplicationRepo: handler.ApplicationRepo,
		ActivityRepo:    handler.ActivityRepo,
		Gateway:         handler.Gateway,
		Publisher:       handler.Publisher,
		Metrics:         handler.Metrics,
		Logger:          handler.Logger,
		Helper:          handler.Helper,
		ErrHandler:      handler.ErrHandler,
	}
}

type PaymentResponseData struct {
	ID              int64           `json:"id"`
	ApplicationID   int64           `json:"application_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method"`
	PhoneNumber     *string         `json:"phone_number"`
	Status          string          `json:"status"`
	MpesaCheckoutID *string         `json:"mpesa_checkout_id"`
	MpesaReceipt    *string         `json:"mpesa_receipt"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at"`
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func newPaymentResponseData(p *models.Payment) PaymentResponseData {
	data := PaymentResponseData{
		ID:              p.ID,
		ApplicationID:   p.ApplicationID,
		Amount:          p.Amount,
		PaymentMethod:   p.PaymentMethod,
		PhoneNumber:     nullString(p.PhoneNumber),
		Status:          p.Status,
		MpesaCheckoutID: nullString(p.MpesaCheckoutID),
		MpesaReceipt:    nullString(p.MpesaReceipt),
		CreatedAt:       p.CreatedAt,
	}
	if p.UpdatedAt.Valid {
		data.UpdatedAt = &p.UpdatedAt.Time
	}
	return data
}

// HandleCreatePayment records a payment intent. For M-Pesa it also sends the
// STK push; the outcome arrives later on the callback.
func (h *PaymentHandler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ApplicationID int64           `json:"application_id"`
		Amount        decimal.Decimal `json:"amount"`
		PaymentMethod string          `json:"payment_method"`
		PhoneNumber   string          `json:"phone_number"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	var required validator.Required
	if input.ApplicationID == 0 {
		required.Field("application_id", "")
	}
	if input.Amount.IsZero() {
		required.Field("amount", "")
	}
	required.Field("payment_method", input.PaymentMethod)
	if input.PaymentMethod == repository.PaymentMethodMpesa {
		required.Field("phone_number", input.PhoneNumber)
	}

	if msg := required.Message(); msg != "" {
		h.ErrHandler.BadRequest(w, r, errors.New(msg))
		return
	}

	var v validator.Validator
	v.Check(input.ApplicationID > 0, "Application id must be a positive number")
	v.Check(input.Amount.IsPositive(), "Amount must be greater than zero")
	v.Check(validator.PermittedValue(input.PaymentMethod, repository.PaymentMethodMpesa, repository.PaymentMethodCash), "Payment method must be mpesa or cash")
	if v.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, v.Errors)
		return
	}

	app, found, err := h.ApplicationRepo.GetOne(r.Context(), input.ApplicationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "Application not found")
		return
	}

	payment := &models.Payment{
		ApplicationID: input.ApplicationID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
	}

	var phone string
	if input.PaymentMethod == repository.PaymentMethodMpesa {
		phone = mpesa.NormalizePhone(input.PhoneNumber)
		payment.PhoneNumber = sql.NullString{String: phone, Valid: true}
	}

	paymentID, err := h.PaymentRepo.Insert(r.Context(), payment)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	activityLogger{repo: h.ActivityRepo, helper: h.Helper}.
		record(r, repository.ActivityLogPaymentEntity, paymentID, "Payment of "+input.Amount.StringFixed(2)+" via "+input.PaymentMethod+" initiated")

	data := map[string]any{"paymentId": paymentID}

	if input.PaymentMethod == repository.PaymentMethodMpesa {
		reference := app.ApplicationNumber
		if reference == "" {
			reference = "APP" + strconv.FormatInt(app.ID, 10)
		}

		res, err := h.Gateway.STKPush(r.Context(), mpesa.STKPushRequest{
			PhoneNumber:      phone,
			Amount:           input.Amount,
			AccountReference: reference,
			TransactionDesc:  mpesa.DefaultTransactionDesc,
		})
		if err != nil {
			h.Metrics.IncPayment(input.PaymentMethod, false)

			if markErr := h.PaymentRepo.MarkFailed(r.Context(), paymentID); markErr != nil {
				h.ErrHandler.ServerError(w, r, markErr)
				return
			}

			var gatewayErr *mpesa.GatewayError
			if !errors.As(err, &gatewayErr) {
				h.ErrHandler.ReportServerError(r, err)
			}

			h.ErrHandler.BadRequest(w, r, fmt.Errorf("M-Pesa payment failed: %w", err))
			return
		}

		err = h.PaymentRepo.SetCheckoutID(r.Context(), paymentID, res.CheckoutRequestID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		data["mpesaResponse"] = res
	}

	h.Metrics.IncPayment(input.PaymentMethod, true)

	err = response.JSONCreatedResponse(w, data, "Payment initiated successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *PaymentHandler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	payment, found, err := h.PaymentRepo.GetOne(r.Context(), id)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFoundMessage(w, r, "Payment not found")
		return
	}

	err = response.JSONOkResponse(w, newPaymentResponseData(payment), "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleMpesaCallback answers in the gateway's own schema. Redelivery of the
// same callback re-applies the same update.
func (h *PaymentHandler) HandleMpesaCallback(w http.ResponseWriter, r *http.Request) {
	var cb mpesa.Callback

	if err := request.DecodeJSON(w, r, &cb); err != nil {
		h.Metrics.IncCallback("malformed")
		h.Logger.Warn("malformed payment callback", "error", err)
		response.WriteJSON(w, http.StatusBadRequest, mpesa.AckError, nil)
		return
	}

	stk := cb.Body.STKCallback
	checkoutID := strings.TrimSpace(stk.CheckoutRequestID)
	if checkoutID == "" {
		h.Metrics.IncCallback("ignored")
		response.WriteJSON(w, http.StatusOK, mpesa.AckSuccess, nil)
		return
	}

	result, err := h.applyCallback(r, checkoutID, stk)
	if err != nil {
		h.Metrics.IncCallback("error")
		h.ErrHandler.ReportServerError(r, err)
		response.WriteJSON(w, http.StatusInternalServerError, mpesa.AckError, nil)
		return
	}

	h.Metrics.IncCallback(result)
	response.WriteJSON(w, http.StatusOK, mpesa.AckSuccess, nil)
}

func (h *PaymentHandler) applyCallback(r *http.Request, checkoutID string, stk mpesa.STKCallback) (string, error) {
	if !stk.Succeeded() {
		found, err := h.PaymentRepo.FailByCheckoutID(r.Context(), checkoutID)
		if err != nil {
			return "", err
		}
		if !found {
			h.Logger.Warn("callback for unknown checkout", "checkout_id", checkoutID)
			return "unknown", nil
		}
		return repository.PaymentFailedStatus, nil
	}

	confirmation, found, err := h.PaymentRepo.Confirm(r.Context(), checkoutID, stk.ReceiptNumber())
	if err != nil {
		return "", err
	}
	if !found {
		h.Logger.Warn("callback for unknown checkout", "checkout_id", checkoutID)
		return "unknown", nil
	}

	activityLogger{repo: h.ActivityRepo, helper: h.Helper}.
		record(r, repository.ActivityLogPaymentEntity, confirmation.PaymentID, "Payment confirmed with receipt "+stk.ReceiptNumber())

	if confirmation.Resubmitted && h.Publisher != nil && h.Helper != nil {
		h.Helper.BackgroundTask(r, func() error {
			app, found, err := h.ApplicationRepo.GetOne(context.Background(), confirmation.ApplicationID)
			if err != nil || !found {
				return err
			}

			event := applicationEvent(app, string(workflow.ActionResubmit), string(workflow.Submitted), "")
			return h.Publisher.Publish(stream.ApplicationStatusTopic, app.ApplicationNumber, event)
		})
	}

	return repository.PaymentCompletedStatus, nil
}
