package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cradoe/nationalid/internal/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

type gateway struct {
	tokenCalls atomic.Int32
	lastSTK    stkPayload
	stkStatus  int
	stkBody    map[string]any
}

func (g *gateway) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		g.tokenCalls.Add(1)

		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
		if r.Header.Get("Authorization") != expected || r.URL.Query().Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123", "expires_in": "3599"})
	})

	mux.HandleFunc("POST /mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&g.lastSTK))

		w.WriteHeader(g.stkStatus)
		json.NewEncoder(w).Encode(g.stkBody)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, store cache.Store) *Client {
	c := New(Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		BaseURL:        srv.URL,
		CallbackURL:    "https://example.org/api/mpesa/callback",
		Timeout:        5 * time.Second,
	}, store)
	c.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	return c
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"0712345678":    "254712345678",
		"254712345678":  "254712345678",
		"+254712345678": "254712345678",
		"712345678":     "254712345678",
		" 0112345678 ":  "254112345678",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestPassword(t *testing.T) {
	got := Password("174379", "passkey", "20260314092653")

	decoded, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, "174379passkey20260314092653", string(decoded))
}

func TestSTKPushSuccess(t *testing.T) {
	g := &gateway{stkStatus: http.StatusOK, stkBody: map[string]any{
		"MerchantRequestID": "29115-34620561-1",
		"CheckoutRequestID": "ws_CO_191220191020363925",
		"ResponseCode":      "0",
		"CustomerMessage":   "Success. Request accepted for processing",
	}}
	srv := g.server(t)

	store := &mockStore{}
	store.On("Get", tokenCacheKey).Return("", cache.ErrCacheMiss).Once()
	store.On("Set", tokenCacheKey, "token-123", 3599*time.Second-tokenExpiryMargin).Return(nil).Once()

	res, err := newTestClient(srv, store).STKPush(context.Background(), STKPushRequest{
		PhoneNumber:      "0712345678",
		Amount:           decimal.RequireFromString("100.00"),
		AccountReference: "REP2026000001",
	})
	require.NoError(t, err)

	assert.Equal(t, "ws_CO_191220191020363925", res.CheckoutRequestID)
	assert.Equal(t, "254712345678", g.lastSTK.PartyA)
	assert.Equal(t, "254712345678", g.lastSTK.PhoneNumber)
	assert.Equal(t, "174379", g.lastSTK.PartyB)
	assert.Equal(t, int64(100), g.lastSTK.Amount)
	assert.Equal(t, "20260314092653", g.lastSTK.Timestamp)
	assert.Equal(t, Password("174379", "passkey", "20260314092653"), g.lastSTK.Password)
	assert.Equal(t, "CustomerPayBillOnline", g.lastSTK.TransactionType)
	assert.Equal(t, DefaultTransactionDesc, g.lastSTK.TransactionDesc)
	assert.Equal(t, "REP2026000001", g.lastSTK.AccountReference)

	store.AssertExpectations(t)
}

func TestAccessTokenFromCache(t *testing.T) {
	g := &gateway{}
	srv := g.server(t)

	store := &mockStore{}
	store.On("Get", tokenCacheKey).Return("cached-token", nil)

	token, err := newTestClient(srv, store).AccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cached-token", token)
	assert.Equal(t, int32(0), g.tokenCalls.Load())
}

func TestAccessTokenWithoutCache(t *testing.T) {
	g := &gateway{}
	srv := g.server(t)

	client := newTestClient(srv, nil)

	_, err := client.AccessToken(context.Background())
	require.NoError(t, err)
	_, err = client.AccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), g.tokenCalls.Load())
}

func TestSTKPushRejected(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		g := &gateway{stkStatus: http.StatusBadRequest, stkBody: map[string]any{
			"errorCode":    "400.002.02",
			"errorMessage": "Bad Request - Invalid PhoneNumber",
		}}
		srv := g.server(t)

		_, err := newTestClient(srv, nil).STKPush(context.Background(), STKPushRequest{
			PhoneNumber: "0712",
			Amount:      decimal.NewFromInt(100),
		})

		var gatewayErr *GatewayError
		require.True(t, errors.As(err, &gatewayErr))
		assert.Equal(t, http.StatusBadRequest, gatewayErr.StatusCode)
		assert.Equal(t, "Bad Request - Invalid PhoneNumber", gatewayErr.Message)
	})

	t.Run("non zero response code", func(t *testing.T) {
		g := &gateway{stkStatus: http.StatusOK, stkBody: map[string]any{
			"ResponseCode":        "1",
			"ResponseDescription": "Rejected",
		}}
		srv := g.server(t)

		_, err := newTestClient(srv, nil).STKPush(context.Background(), STKPushRequest{
			PhoneNumber: "0712345678",
			Amount:      decimal.NewFromInt(100),
		})

		var gatewayErr *GatewayError
		require.True(t, errors.As(err, &gatewayErr))
		assert.Equal(t, "Rejected", gatewayErr.Message)
	})
}

func TestCallbackReceipt(t *testing.T) {
	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 100.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`

	var cb Callback
	require.NoError(t, json.Unmarshal([]byte(body), &cb))

	assert.True(t, cb.Body.STKCallback.Succeeded())
	assert.Equal(t, "NLJ7RT61SV", cb.Body.STKCallback.ReceiptNumber())

	var cancelled Callback
	require.NoError(t, json.Unmarshal([]byte(`{"Body":{"stkCallback":{"CheckoutRequestID":"x","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`), &cancelled))
	assert.False(t, cancelled.Body.STKCallback.Succeeded())
	assert.Empty(t, cancelled.Body.STKCallback.ReceiptNumber())
}
