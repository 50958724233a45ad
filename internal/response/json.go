package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Response is the envelope every API answer is wrapped in.
type Response[T any] struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Error   T      `json:"error,omitempty"`
}

func JSONCreatedResponse(w http.ResponseWriter, data any, message string) error {
	return jsonSuccess(w, http.StatusCreated, data, message, nil)
}

func JSONOkResponse(w http.ResponseWriter, data any, message string, headers http.Header) error {
	return jsonSuccess(w, http.StatusOK, data, message, headers)
}

func jsonSuccess(w http.ResponseWriter, status int, data any, message string, headers http.Header) error {
	if message == "" {
		message = "Request successful"
	}

	if converted, ok := data.(map[string]any); ok {
		data = ConvertKeysToSnakeCase(converted)
	}

	return JSONWithHeaders(w, &Response[any]{
		Status:  status,
		Success: true,
		Message: message,
		Data:    data,
	}, headers)
}

func JSONErrorResponse(w http.ResponseWriter, err any, message string, status int, headers http.Header) error {
	if message == "" {
		message = "Request failed"
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return JSONWithHeaders(w, &Response[any]{
		Status:  status,
		Success: false,
		Message: message,
		Error:   err,
	}, headers)
}

func JSONWithHeaders[T any](w http.ResponseWriter, response *Response[T], headers http.Header) error {
	return WriteJSON(w, response.Status, response, headers)
}

// WriteJSON writes v as is, without the envelope. Gateways that call back
// into the service expect their own schema.
func WriteJSON(w http.ResponseWriter, status int, v any, headers http.Header) error {
	js, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}

	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(js)
	return err
}

// Attachment streams body as a file download named filename.
func Attachment(w http.ResponseWriter, contentType, filename string, body io.Reader) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	_, err := io.Copy(w, body)
	return err
}

var rgxCamelBoundary = regexp.MustCompile("([a-z0-9])([A-Z])")

func toSnakeCase(s string) string {
	return strings.ToLower(rgxCamelBoundary.ReplaceAllString(s, "${1}_${2}"))
}

func ConvertKeysToSnakeCase(data map[string]any) map[string]any {
	snakeData := make(map[string]any, len(data))

	for key, value := range data {
		if nested, ok := value.(map[string]any); ok {
			value = ConvertKeysToSnakeCase(nested)
		}

		snakeData[toSnakeCase(key)] = value
	}

	return snakeData
}
