package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cradoe/nationalid/internal/metrics"
	"github.com/cradoe/nationalid/internal/mocks"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/cradoe/nationalid/internal/mpesa"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/stream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPaymentHandler() (*PaymentHandler, *mocks.MockDatabase, *mocks.MockGateway) {
	db := mocks.NewMockDatabase()
	gateway := &mocks.MockGateway{}

	h := NewPaymentHandler(&PaymentHandler{
		PaymentRepo:     db.PaymentRepo,
		ApplicationRepo: db.ApplicationRepo,
		Gateway:         gateway,
		Metrics:         metrics.New(),
		Logger:          discardLogger(),
		Helper:          &mocks.MockHelper{},
		ErrHandler:      mocks.NewErrorHandler(),
	})

	return h, db, gateway
}

func TestHandleCreatePayment(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		h, _, _ := newTestPaymentHandler()

		rr := httptest.NewRecorder()
		h.HandleCreatePayment(rr, jsonRequest(t, http.MethodPost, "/api/payments", map[string]any{
			"payment_method": "mpesa",
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Missing required fields: application_id, amount, phone_number", decodeEnvelope(t, rr).Message)
	})

	t.Run("unsupported method", func(t *testing.T) {
		h, _, _ := newTestPaymentHandler()

		rr := httptest.NewRecorder()
		h.HandleCreatePayment(rr, jsonRequest(t, http.MethodPost, "/api/payments", map[string]any{
			"application_id": 1,
			"amount":         1000,
			"payment_method": "cheque",
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("unknown application", func(t *testing.T) {
		h, db, _ := newTestPaymentHandler()
		db.ApplicationRepo.On("GetOne", int64(99)).Return(nil, false, nil)

		rr := httptest.NewRecorder()
		h.HandleCreatePayment(rr, jsonRequest(t, http.MethodPost, "/api/payments", map[string]any{
			"application_id": 99,
			"amount":         1000,
			"payment_method": "cash",
		}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("cash is recorded without the gateway", func(t *testing.T) {
		h, db, gateway := newTestPaymentHandler()
		db.ApplicationRepo.On("GetOne", int64(1)).Return(&models.Application{ID: 1, ApplicationNumber: "APP2026000001"}, true, nil)
		db.PaymentRepo.On("Insert", mock.MatchedBy(func(p *models.Payment) bool {
			return p.PaymentMethod == "cash" && !p.PhoneNumber.Valid && p.Amount.Equal(decimal.NewFromInt(1000))
		})).Return(int64(10), nil)

		rr := httptest.NewRecorder()
		h.HandleCreatePayment(rr, jsonRequest(t, http.MethodPost, "/api/payments", map[string]any{
			"application_id": 1,
			"amount":         1000,
			"payment_method": "cash",
		}))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, float64(10), decodeData(t, rr)["payment_id"])
		gateway.AssertNotCalled(t, "STKPush", mock.Anything)
	})

	t.Run("mpesa push stores the checkout id", func(t *testing.T) {
		h, db, gateway := newTestPaymentHandler()
		db.ApplicationRepo.On("GetOne", int64(1)).Return(&models.Application{ID: 1, ApplicationNumber: "APP2026000001"}, true, nil)
		db.PaymentRepo.On("Insert", mock.MatchedBy(func(p *models.Payment) bool {
			return p.PhoneNumber.String == "254712345678"
		})).Return(int64(11), nil)
		gateway.On("STKPush", mock.MatchedBy(func(req mpesa.STKPushRequest) bool {
			return req.AccountReference == "APP2026000001" && req.PhoneNumber == "254712345678"
		})).Return(&mpesa.STKPushResponse{CheckoutRequestID: "ws_CO_1", ResponseCode: "0"}, nil)
		db.PaymentRepo.On("SetCheckoutID", int64(11), "ws_CO_1").Return(nil)

		rr := httptest.NewRecorder()
		h.HandleCreatePayment(rr, jsonRequest(t, http.MethodPost, "/api/payments", map[string]any{
			"application_id": 1,
			"amount":         "1000.00",
			"payment_method": "mpesa",
			"phone_number":   "0712345678",
		}))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		data := decodeData(t, rr)
		assert.Equal(t, "ws_CO_1", data["mpesa_response"].(map[string]any)["CheckoutRequestID"])
		db.PaymentRepo.AssertExpectations(t)
	})

	t.Run("gateway refusal marks the payment failed", func(t *testing.T) {
		h, db, gateway := newTestPaymentHandler()
		db.ApplicationRepo.On("GetOne", int64(2)).Return(&models.Application{ID: 2}, true, nil)
		db.PaymentRepo.On("Insert", mock.Anything).Return(int64(12), nil)
		gateway.On("STKPush", mock.MatchedBy(func(req mpesa.STKPushRequest) bool {
			return req.AccountReference == "APP2"
		})).Return(nil, &mpesa.GatewayError{StatusCode: http.StatusBadRequest, Message: "Invalid PhoneNumber"})
		db.PaymentRepo.On("MarkFailed", int64(12)).Return(nil)

		rr := httptest.NewRecorder()
		h.HandleCreatePayment(rr, jsonRequest(t, http.MethodPost, "/api/payments", map[string]any{
			"application_id": 2,
			"amount":         500,
			"payment_method": "mpesa",
			"phone_number":   "0712345678",
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "M-Pesa payment failed: Invalid PhoneNumber", decodeEnvelope(t, rr).Message)
		db.PaymentRepo.AssertCalled(t, "MarkFailed", int64(12))
		db.PaymentRepo.AssertNotCalled(t, "SetCheckoutID", mock.Anything, mock.Anything)
	})
}

func TestHandleGetPayment(t *testing.T) {
	h, db, _ := newTestPaymentHandler()
	db.PaymentRepo.On("GetOne", int64(1)).Return(&models.Payment{ID: 1, ApplicationID: 4, Amount: decimal.NewFromInt(1000), PaymentMethod: "cash", Status: "pending"}, true, nil)
	db.PaymentRepo.On("GetOne", int64(2)).Return(nil, false, nil)

	rr := httptest.NewRecorder()
	h.HandleGetPayment(rr, withID(httptest.NewRequest(http.MethodGet, "/", nil), "1"))

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeData(t, rr)
	assert.Equal(t, "pending", data["status"])
	assert.Nil(t, data["mpesa_receipt"])

	rr = httptest.NewRecorder()
	h.HandleGetPayment(rr, withID(httptest.NewRequest(http.MethodGet, "/", nil), "2"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

const successCallback = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_1",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 1000},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "PhoneNumber", "Value": 254712345678}
				]
			}
		}
	}
}`

const failedCallback = `{
	"Body": {
		"stkCallback": {
			"CheckoutRequestID": "ws_CO_2",
			"ResultCode": 1032,
			"ResultDesc": "Request cancelled by user"
		}
	}
}`

func callbackRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/payments/mpesa/callback", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeAck(t *testing.T, rr *httptest.ResponseRecorder) mpesa.CallbackAck {
	t.Helper()

	var ack mpesa.CallbackAck
	require.NoError(t, jsonUnmarshal(rr, &ack))
	return ack
}

func TestHandleMpesaCallback(t *testing.T) {
	t.Run("success confirms and resubmits", func(t *testing.T) {
		h, db, _ := newTestPaymentHandler()
		publisher := &mocks.MockPublisher{}
		h.Publisher = publisher

		db.PaymentRepo.On("Confirm", "ws_CO_1", "NLJ7RT61SV").Return(&repository.PaymentConfirmation{PaymentID: 11, ApplicationID: 1, Resubmitted: true}, true, nil)
		db.ApplicationRepo.On("GetOne", int64(1)).Return(&models.Application{ID: 1, ApplicationNumber: "APP2026000001"}, true, nil)
		publisher.On("Publish", stream.ApplicationStatusTopic, "APP2026000001", mock.MatchedBy(func(e stream.ApplicationEvent) bool {
			return e.Action == "resubmit" && e.Status == "submitted"
		})).Return(nil)

		rr := httptest.NewRecorder()
		h.HandleMpesaCallback(rr, callbackRequest(successCallback))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, mpesa.AckSuccess, decodeAck(t, rr))
		publisher.AssertExpectations(t)
	})

	t.Run("failure marks the payment failed", func(t *testing.T) {
		h, db, _ := newTestPaymentHandler()
		db.PaymentRepo.On("FailByCheckoutID", "ws_CO_2").Return(true, nil)

		rr := httptest.NewRecorder()
		h.HandleMpesaCallback(rr, callbackRequest(failedCallback))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, mpesa.AckSuccess, decodeAck(t, rr))
		db.PaymentRepo.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})

	t.Run("unknown checkout is acknowledged", func(t *testing.T) {
		h, db, _ := newTestPaymentHandler()
		db.PaymentRepo.On("Confirm", "ws_CO_1", "NLJ7RT61SV").Return(nil, false, nil)

		rr := httptest.NewRecorder()
		h.HandleMpesaCallback(rr, callbackRequest(successCallback))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		h, db, _ := newTestPaymentHandler()
		db.PaymentRepo.On("Confirm", "ws_CO_1", "NLJ7RT61SV").Return(nil, false, errors.New("connection reset"))

		rr := httptest.NewRecorder()
		h.HandleMpesaCallback(rr, callbackRequest(successCallback))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, mpesa.AckError, decodeAck(t, rr))
	})

	t.Run("malformed body", func(t *testing.T) {
		h, _, _ := newTestPaymentHandler()

		rr := httptest.NewRecorder()
		h.HandleMpesaCallback(rr, callbackRequest(`{"Body":`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, mpesa.AckError, decodeAck(t, rr))
	})

	t.Run("missing checkout id is ignored", func(t *testing.T) {
		h, db, _ := newTestPaymentHandler()

		rr := httptest.NewRecorder()
		h.HandleMpesaCallback(rr, callbackRequest(`{"Body":{"stkCallback":{"ResultCode":0}}}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		db.PaymentRepo.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})
}
