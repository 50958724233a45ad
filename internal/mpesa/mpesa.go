// Package mpesa talks to the Daraja mobile-money gateway: OAuth tokens,
// STK push requests and the callback it posts back.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/cache"
	"github.com/shopspring/decimal"
)

const (
	tokenPath = "/oauth/v1/generate?grant_type=client_credentials"
	stkPath   = "/mpesa/stkpush/v1/processrequest"

	tokenCacheKey = "mpesa:access_token"
	// tokens are dropped from the cache this long before the gateway expires them
	tokenExpiryMargin = time.Minute

	transactionType = "CustomerPayBillOnline"
	timestampLayout = "20060102150405"

	DefaultTransactionDesc = "ID Renewal Payment"
)

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	BaseURL        string
	CallbackURL    string
	Timeout        time.Duration
}

// GatewayError is a request the gateway answered but refused.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return e.Message
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     cache.Store
	now        func() time.Time
}

// New builds a client. tokens may be nil, in which case every request
// fetches a fresh access token.
func New(cfg Config, tokens cache.Store) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		now:        time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.tokens != nil {
		token, err := c.tokens.Get(ctx, tokenCacheKey)
		if err == nil && token != "" {
			return token, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+credentials)

	var body tokenResponse
	if err := c.do(req, &body); err != nil {
		return "", fmt.Errorf("mpesa access token: %w", err)
	}

	if body.AccessToken == "" {
		return "", errors.New("mpesa access token: empty token in response")
	}

	if c.tokens != nil {
		ttl := tokenTTL(body.ExpiresIn)
		if ttl > 0 {
			// cache errors are ignored; the next request fetches a new token
			_ = c.tokens.Set(ctx, tokenCacheKey, body.AccessToken, ttl)
		}
	}

	return body.AccessToken, nil
}

func tokenTTL(expiresIn string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(expiresIn))
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds)*time.Second - tokenExpiryMargin
}

type STKPushRequest struct {
	PhoneNumber      string
	Amount           decimal.Decimal
	AccountReference string
	TransactionDesc  string
}

type stkPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`

	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// STKPush asks the gateway to prompt the customer's phone for payment. It
// makes a single attempt; anything but ResponseCode "0" is a *GatewayError.
func (c *Client) STKPush(ctx context.Context, in STKPushRequest) (*STKPushResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format(timestampLayout)
	phone := NormalizePhone(in.PhoneNumber)

	desc := in.TransactionDesc
	if desc == "" {
		desc = DefaultTransactionDesc
	}

	payload := stkPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            in.Amount.IntPart(),
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  in.AccountReference,
		TransactionDesc:   desc,
	}

	js, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPath, bytes.NewReader(js))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var out STKPushResponse
	err = c.do(req, &out)

	var gatewayErr *GatewayError
	switch {
	case errors.As(err, &gatewayErr):
		if out.ErrorMessage != "" {
			gatewayErr.Message = out.ErrorMessage
		}
		return nil, gatewayErr
	case err != nil:
		return nil, fmt.Errorf("mpesa stk push: %w", err)
	}

	if out.ResponseCode != "0" {
		message := out.ErrorMessage
		if message == "" {
			message = out.ResponseDescription
		}
		if message == "" {
			message = "STK push failed"
		}
		return nil, &GatewayError{StatusCode: http.StatusOK, Message: message}
	}

	return &out, nil
}

// do sends req and decodes the JSON answer into dst. Non-2xx answers are
// decoded too, so callers can read the gateway's error fields.
func (c *Client) do(req *http.Request, dst any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}

	if len(body) > 0 {
		if err := json.Unmarshal(body, dst); err != nil && res.StatusCode < 300 {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}

	if res.StatusCode >= 300 {
		return &GatewayError{StatusCode: res.StatusCode, Message: fmt.Sprintf("gateway answered %s", res.Status)}
	}

	return nil
}

// NormalizePhone converts a local number to the 254 international form the
// gateway expects: a leading 0 becomes 254, anything else without 254 gets it.
func NormalizePhone(phone string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")

	switch {
	case strings.HasPrefix(phone, "0"):
		return "254" + phone[1:]
	case strings.HasPrefix(phone, "254"):
		return phone
	default:
		return "254" + phone
	}
}

// Password is base64(shortcode + passkey + timestamp).
func Password(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}
