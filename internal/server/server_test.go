package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/pipeline"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

type stubExtractor struct {
	text string
}

func (s *stubExtractor) ExtractText(context.Context, []byte, string) (string, error) {
	return s.text, nil
}

func (s *stubExtractor) Close() error { return nil }

type testEnv struct {
	router http.Handler
	store  repository.Store
	owner  *entity.Worker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "server_test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	owner := &entity.Worker{
		Name:   "Alex Owner",
		Email:  "alex@example.com",
		Role:   constants.RoleOwner,
		Active: true,
	}
	require.NoError(t, store.CreateWorker(ctx, owner))

	extractor := &stubExtractor{text: "HOME DEPOT\n03/08/2025\nTOTAL $57.99"}
	scanner := pipeline.NewScanner(extractor, nil, store, slog.Default())

	cfg := &common.Config{Alerts: common.DefaultAlertThresholds()}
	return &testEnv{
		router: NewRouter(cfg, slog.Default(), store, scanner),
		store:  store,
		owner:  owner,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", e.owner.ID.String())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "ok", envelope.Status)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (e *testEnv) createJob(t *testing.T, value, paid float64) *entity.Job {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/jobs", map[string]any{
		"job_name":      "Smith remodel",
		"client_name":   "Smith",
		"project_value": value,
		"amount_paid":   paid,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var job entity.Job
	decodeData(t, rec, &job)
	return &job
}

func TestMissingOwnerHeader(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestJobCRUD(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, 10000, 4000)
	assert.Equal(t, constants.JobStatusActive, job.Status)

	rec := env.do(t, http.MethodGet, "/api/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/jobs/"+job.ID.String(), map[string]any{
		"job_name":      "Smith remodel",
		"status":        "COMPLETED",
		"project_value": 10000.0,
		"amount_paid":   10000.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated entity.Job
	decodeData(t, rec, &updated)
	assert.Equal(t, constants.JobStatusCompleted, updated.Status)

	rec = env.do(t, http.MethodDelete, "/api/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/jobs/"+job.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobFinanceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, 10000, 4000)

	rate := 50.0
	env.owner.HourlyRate = &rate
	require.NoError(t, env.store.UpdateWorker(context.Background(), env.owner))

	hours := 8.0
	require.NoError(t, env.store.CreateTimesheet(context.Background(), &entity.Timesheet{
		OwnerID:  env.owner.ID,
		WorkerID: env.owner.ID,
		JobID:    job.ID,
		ClockIn:  time.Now().UTC().Add(-9 * time.Hour),
		Hours:    &hours,
		Status:   constants.TimesheetCompleted,
	}))

	cat := "Materials"
	require.NoError(t, env.store.CreateReceipt(context.Background(), &entity.Receipt{
		OwnerID:  env.owner.ID,
		JobID:    &job.ID,
		Amount:   57.99,
		Vendor:   "Home Depot",
		Category: &cat,
		Date:     time.Now().UTC(),
	}))

	rec := env.do(t, http.MethodGet, "/api/jobs/"+job.ID.String()+"/finance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Snapshot struct {
			LaborCost float64 `json:"labor_cost"`
			Profit    float64 `json:"profit"`
		} `json:"snapshot"`
		ReceiptTotals map[string]float64 `json:"receipt_totals"`
		ReceiptCount  int                `json:"receipt_count"`
	}
	decodeData(t, rec, &got)
	assert.InDelta(t, 400, got.Snapshot.LaborCost, 0.001)
	// Receipts stay out of profit.
	assert.InDelta(t, 9600, got.Snapshot.Profit, 0.001)
	assert.InDelta(t, 57.99, got.ReceiptTotals["Materials"], 0.001)
	assert.Equal(t, 1, got.ReceiptCount)
}

func TestAlertsEvaluateAndList(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, 10000, 4000)

	rate := 100.0
	env.owner.HourlyRate = &rate
	require.NoError(t, env.store.UpdateWorker(context.Background(), env.owner))

	// 110 hours at $100/h exceeds the $10k project value.
	hours := 110.0
	require.NoError(t, env.store.CreateTimesheet(context.Background(), &entity.Timesheet{
		OwnerID:  env.owner.ID,
		WorkerID: env.owner.ID,
		JobID:    job.ID,
		ClockIn:  time.Now().UTC().Add(-2 * time.Hour),
		Hours:    &hours,
		Status:   constants.TimesheetCompleted,
	}))

	rec := env.do(t, http.MethodPost, "/api/alerts/evaluate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fired []entity.Alert
	decodeData(t, rec, &fired)
	require.NotEmpty(t, fired)

	types := make(map[constants.AlertType]bool)
	for _, a := range fired {
		types[a.Type] = true
	}
	assert.True(t, types[constants.AlertBudget])    // labor over project value
	assert.True(t, types[constants.AlertPayment])   // under half paid
	assert.True(t, types[constants.AlertTimesheet]) // 110-hour shift

	rec = env.do(t, http.MethodGet, "/api/alerts?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []entity.Alert
	decodeData(t, rec, &listed)
	require.Len(t, listed, len(fired))

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/alerts/%s/read", listed[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/alerts?unread=true", nil)
	decodeData(t, rec, &listed)
	assert.Len(t, listed, len(fired)-1)
}

func TestScanEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="receipt.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Owner-ID", env.owner.ID.String())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Candidate entity.ReceiptCandidate `json:"candidate"`
		Category  string                  `json:"category"`
	}
	decodeData(t, rec, &got)
	assert.Equal(t, "HOME DEPOT", got.Candidate.Vendor)
	assert.InDelta(t, 57.99, got.Candidate.Amount, 0.001)
	assert.Equal(t, "Materials", got.Category)
}

func TestExportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, 10000, 4000)

	rec := env.do(t, http.MethodGet, "/api/jobs/"+job.ID.String()+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = env.do(t, http.MethodGet, "/api/jobs/"+uuid.NewString()+"/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReceiptsRefundFlag(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/receipts", map[string]any{
		"vendor": "Home Depot",
		"amount": -42.00,
		"notes":  "returned unused lumber",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got struct {
		Vendor string `json:"vendor"`
		Refund bool   `json:"refund"`
	}
	decodeData(t, rec, &got)
	assert.True(t, got.Refund)
}

func TestCategoriesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []string
	decodeData(t, rec, &got)
	assert.Contains(t, got, "Materials")
	assert.Contains(t, got, "Other")
}
