package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventmate-dev/eventmate/internal/reconcile"
	"github.com/eventmate-dev/eventmate/internal/statement"
	"github.com/eventmate-dev/eventmate/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testStack is everything a handler test needs: the router plus direct
// store handles for seeding and inspection.
type testStack struct {
	router       *gin.Engine
	participants *store.Participants
	activities   *store.Activities
}

// newTestStack builds a server over a per-test in-memory database. The
// PDF step is stubbed so uploads are treated as plain statement text.
func newTestStack(t *testing.T) *testStack {
	t.Helper()
	dsn := fmt.Sprintf("file:server-%s?mode=memory&cache=shared", t.Name())
	db, err := store.Open(dsn)
	require.NoError(t, err)

	participants := store.NewParticipants(db)
	activities := store.NewActivities(db)
	log := zerolog.Nop()
	reconciler := reconcile.NewService(participants, decimal.RequireFromString("0.01"), log)
	passthrough := func(b []byte) (string, error) { return string(b), nil }

	srv := New(participants, activities, reconciler, statement.Default(), passthrough, 1<<20, log)
	return &testStack{router: srv.Router(), participants: participants, activities: activities}
}

func (ts *testStack) do(t *testing.T, method, path string, body []byte, contentType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func (ts *testStack) doJSON(t *testing.T, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return ts.do(t, method, path, body, "application/json")
}

// verifyUpload builds the multipart form for verify-payments. Empty
// field values are omitted entirely.
func verifyUpload(t *testing.T, amount, statementText, rosterCSV string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if amount != "" {
		require.NoError(t, mw.WriteField("expectedAmount", amount))
	}
	if statementText != "" {
		fw, err := mw.CreateFormFile("phonepeFile", "statement.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte(statementText))
		require.NoError(t, err)
	}
	if rosterCSV != "" {
		fw, err := mw.CreateFormFile("participantsFile", "roster.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(rosterCSV))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

const testStatement = `Apr 02, 2025
02-04-2025 Received from Rahul
UTR No. UTR999ABC
CREDIT
₹500.00
02-04-2025 Paid to Grocer
UTR No. UTR123XYZ
DEBIT
₹120.00`

const testRoster = `Name,Email,Phone,UTR,Amount
Rahul K,rahul@example.com,9876543210,UTR999ABC,500
Anita S,anita@example.com,9123456780,NOPE123,500`

func TestVerifyPayments(t *testing.T) {
	ts := newTestStack(t)

	body, ct := verifyUpload(t, "500", testStatement, testRoster)
	w, resp := ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.EqualValues(t, 1, resp["verifiedCount"])
	assert.EqualValues(t, 2, resp["totalCount"])
	assert.EqualValues(t, 1, resp["pending"])

	participants, ok := resp["participants"].([]interface{})
	require.True(t, ok)
	require.Len(t, participants, 2)
	first := participants[0].(map[string]interface{})
	assert.Equal(t, "Rahul K", first["name"])
	assert.Equal(t, "UTR999ABC", first["referenceId"])
	assert.Equal(t, true, first["verified"])

	// The run persisted both rows.
	stored, err := ts.participants.List(context.Background(), store.Query{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestVerifyPaymentsRequiresAmount(t *testing.T) {
	ts := newTestStack(t)

	body, ct := verifyUpload(t, "", testStatement, testRoster)
	w, resp := ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])

	body, ct = verifyUpload(t, "-5", testStatement, testRoster)
	w, _ = ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyPaymentsRequiresBothFiles(t *testing.T) {
	ts := newTestStack(t)

	body, ct := verifyUpload(t, "500", testStatement, "")
	w, resp := ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "both statement and participants list are required", resp["message"])

	body, ct = verifyUpload(t, "500", "", testRoster)
	w, _ = ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyPaymentsRejectsOversizedUpload(t *testing.T) {
	ts := newTestStack(t)

	big := strings.Repeat("x", (1<<20)+1)
	body, ct := verifyUpload(t, "500", big, testRoster)
	w, resp := ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "uploaded file exceeds the size limit", resp["message"])
}

func TestVerifyPaymentsNoTransactionsFound(t *testing.T) {
	ts := newTestStack(t)

	body, ct := verifyUpload(t, "500", "nothing that looks like a transaction", testRoster)
	w, resp := ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no transactions found in statement", resp["message"])
	assert.EqualValues(t, 0, resp["verifiedCount"])
	assert.EqualValues(t, 2, resp["totalCount"])
}

func TestVerificationResults(t *testing.T) {
	ts := newTestStack(t)

	body, ct := verifyUpload(t, "500", testStatement, testRoster)
	w, _ := ts.do(t, http.MethodPost, "/api/verification/verify-payments", body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := ts.do(t, http.MethodGet, "/api/verification/results", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp["verifiedCount"])
	assert.EqualValues(t, 2, resp["totalCount"])
	assert.EqualValues(t, 1, resp["pending"])

	w, resp = ts.do(t, http.MethodGet, "/api/verification/results?verified=true", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp["totalCount"])

	w, resp = ts.do(t, http.MethodGet, "/api/verification/results?search=anita", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp["totalCount"])
	assert.EqualValues(t, 0, resp["verifiedCount"])
}

func TestVerifyAndUnverifyParticipant(t *testing.T) {
	ts := newTestStack(t)

	w, _ := ts.do(t, http.MethodPut, "/api/verification/verify/no-such-id", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, resp := ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "Rahul K", "phoneNumber": "987", "email": "rahul@example.com",
	})
	id := resp["data"].(map[string]interface{})["id"].(string)

	w, resp = ts.do(t, http.MethodPut, "/api/verification/verify/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["verified"])

	w, resp = ts.do(t, http.MethodPut, "/api/verification/unverify/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["verified"])

	// Both overrides left an audit trail.
	acts, err := ts.activities.All(context.Background())
	require.NoError(t, err)
	actions := make([]string, 0, len(acts))
	for _, a := range acts {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, "Payment verified")
	assert.Contains(t, actions, "Verification undone")
}

func TestDeleteAllParticipants(t *testing.T) {
	ts := newTestStack(t)

	ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "A", "phoneNumber": "1", "email": "a@example.com",
	})

	w, resp := ts.do(t, http.MethodDelete, "/api/verification/delete", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	w, resp = ts.do(t, http.MethodGet, "/api/participants", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, resp["count"])
}

func TestCreateParticipant(t *testing.T) {
	ts := newTestStack(t)

	w, resp := ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "Rahul K", "phoneNumber": "987", "email": "rahul@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Rahul K", data["name"])
	assert.NotEmpty(t, data["id"])

	// Registration issues the QR code inline.
	qrCode, ok := data["qrCode"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(qrCode, "data:image/png;base64,"))
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(qrCode, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}

func TestCreateParticipantValidation(t *testing.T) {
	ts := newTestStack(t)

	w, resp := ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "Rahul K", "email": "rahul@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "please provide all required fields", resp["message"])

	w, resp = ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "Rahul K", "phoneNumber": "987", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "please provide a valid email", resp["message"])
}

func TestCreateParticipantDuplicateEmail(t *testing.T) {
	ts := newTestStack(t)

	payload := gin.H{"name": "A", "phoneNumber": "1", "email": "dup@example.com"}
	w, _ := ts.doJSON(t, http.MethodPost, "/api/participants", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := ts.doJSON(t, http.MethodPost, "/api/participants", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "participant with this email already exists", resp["message"])
}

func TestGetUpdateDeleteParticipant(t *testing.T) {
	ts := newTestStack(t)

	_, resp := ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "A", "phoneNumber": "1", "email": "a@example.com",
	})
	id := resp["data"].(map[string]interface{})["id"].(string)

	w, resp := ts.do(t, http.MethodGet, "/api/participants/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", resp["data"].(map[string]interface{})["name"])

	w, _ = ts.do(t, http.MethodGet, "/api/participants/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = ts.doJSON(t, http.MethodPut, "/api/participants/"+id, gin.H{
		"name": "A Kumar", "phoneNumber": "2", "email": "ak@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := resp["data"].(map[string]interface{})
	assert.Equal(t, "A Kumar", updated["name"])
	assert.Equal(t, "ak@example.com", updated["email"])

	w, _ = ts.do(t, http.MethodDelete, "/api/participants/"+id, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = ts.do(t, http.MethodDelete, "/api/participants/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAttended(t *testing.T) {
	ts := newTestStack(t)

	_, resp := ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "A", "phoneNumber": "1", "email": "a@example.com",
	})
	id := resp["data"].(map[string]interface{})["id"].(string)

	w, resp := ts.do(t, http.MethodPost, "/api/participants/"+id+"/attend", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["attended"])
	firstAt, err := time.Parse(time.RFC3339Nano, data["attendedAt"].(string))
	require.NoError(t, err)

	// Second scan is a no-op, not a reset.
	w, resp = ts.do(t, http.MethodPost, "/api/participants/"+id+"/attend", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	secondAt, err := time.Parse(time.RFC3339Nano, resp["data"].(map[string]interface{})["attendedAt"].(string))
	require.NoError(t, err)
	assert.True(t, firstAt.Equal(secondAt))

	w, _ = ts.do(t, http.MethodPost, "/api/participants/nope/attend", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	acts, err := ts.activities.All(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, acts)
	assert.Equal(t, "Attendance marked", acts[0].Action)
}

func TestActivitiesEndpoints(t *testing.T) {
	ts := newTestStack(t)

	_, resp := ts.doJSON(t, http.MethodPost, "/api/participants", gin.H{
		"name": "A", "phoneNumber": "1", "email": "a@example.com",
	})
	id := resp["data"].(map[string]interface{})["id"].(string)
	ts.do(t, http.MethodPut, "/api/verification/verify/"+id, nil, "")
	ts.do(t, http.MethodPost, "/api/participants/"+id+"/attend", nil, "")

	w, resp := ts.do(t, http.MethodGet, "/api/activities/recent", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].([]interface{})
	assert.Len(t, data, 2)

	w, resp = ts.do(t, http.MethodGet, "/api/activities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, resp["count"])

	w, _ = ts.do(t, http.MethodDelete, "/api/activities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w, resp = ts.do(t, http.MethodGet, "/api/activities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, resp["count"])
}
