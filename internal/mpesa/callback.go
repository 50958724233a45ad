package mpesa

import "fmt"

// Callback is the body the gateway posts to the callback URL once the
// customer has answered (or ignored) the STK prompt.
type Callback struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []CallbackItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type CallbackItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

func (cb STKCallback) Succeeded() bool {
	return cb.ResultCode == 0
}

// ReceiptNumber returns the MpesaReceiptNumber metadata item, or "".
func (cb STKCallback) ReceiptNumber() string {
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" && item.Value != nil {
			return fmt.Sprint(item.Value)
		}
	}
	return ""
}

// CallbackAck is what the gateway expects back from the callback URL.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

var (
	AckSuccess = CallbackAck{ResultCode: 0, ResultDesc: "Success"}
	AckError   = CallbackAck{ResultCode: 1, ResultDesc: "Error"}
)
