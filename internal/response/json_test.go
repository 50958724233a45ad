package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOkResponseConvertsKeys(t *testing.T) {
	rr := httptest.NewRecorder()

	err := JSONOkResponse(rr, map[string]any{
		"applicationId": 7,
		"idNumber":      map[string]any{"generatedIdNumber": "ID202600000001"},
	}, "", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Request successful", body["message"])
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Contains(t, data, "application_id")
	assert.Contains(t, data["id_number"].(map[string]any), "generated_id_number")
}

func TestJSONErrorResponse(t *testing.T) {
	rr := httptest.NewRecorder()

	headers := http.Header{}
	headers.Set("WWW-Authenticate", "Bearer")

	err := JSONErrorResponse(rr, []string{"bad"}, "", 0, headers)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	assert.Contains(t, rr.Body.String(), `"success": false`)
}

func TestAttachment(t *testing.T) {
	rr := httptest.NewRecorder()

	err := Attachment(rr, "text/csv", "applications_report_2026-01-01_to_2026-01-31.csv", strings.NewReader("a,b\n"))
	require.NoError(t, err)

	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="applications_report_2026-01-01_to_2026-01-31.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rr.Body.String())
}
