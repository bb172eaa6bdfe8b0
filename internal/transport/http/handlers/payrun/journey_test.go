package payrunhandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"payrun/internal/app/server"
	"payrun/internal/domain/payrun"
	"payrun/internal/platform/config"
	"payrun/internal/platform/db"
)

const (
	seedLocDowntown = "11111111-1111-1111-1111-111111111101"
	seedEmpAda      = "22222222-2222-2222-2222-222222222201"
	seedEmpGrace    = "22222222-2222-2222-2222-222222222202"
	seedEmpAlan     = "22222222-2222-2222-2222-222222222203"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func startApp(t *testing.T) *httptest.Server {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		Environment:        "test",
		RunMigrations:      true,
		RunSeed:            true,
		MigrationsDir:      "../../../../../migrations",
		PayslipDir:         t.TempDir(),
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
		PopulateTimeout:    30 * time.Second,
		ReconcileTimeout:   10 * time.Second,
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, pool); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	app, err := server.New(ctx, cfg, pool)
	if err != nil {
		t.Fatalf("app init failed: %v", err)
	}

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s response: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

// uniqueWindow returns a period range that cannot collide with earlier
// test runs against the same database.
func uniqueWindow() (time.Time, time.Time) {
	offset := int(time.Now().UnixNano() % 50000)
	start := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset*35)
	return start, start.AddDate(0, 0, 27)
}

func TestPayRunJourney(t *testing.T) {
	ts := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1/payroll"
	downtown := seedLocDowntown

	start, end := uniqueWindow()
	status, env := doJSON(t, client, http.MethodPost, base+"/periods", map[string]any{
		"startDate": start.Format("2006-01-02"),
		"endDate":   end.Format("2006-01-02"),
		"name":      "Journey period",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create period: expected 201, got %d (%+v)", status, env.Error)
	}
	var period payrun.PayPeriod
	decodeData(t, env, &period)

	status, env = doJSON(t, client, http.MethodPost, base+"/pay-runs", map[string]any{
		"payPeriodId": period.ID,
		"locationId":  downtown,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create run: expected 201, got %d (%+v)", status, env.Error)
	}
	var run payrun.PayRun
	decodeData(t, env, &run)
	if run.Status != payrun.RunStatusDraft {
		t.Fatalf("expected draft run, got %s", run.Status)
	}

	// Both downtown employees carry open-ended compensation, so the
	// populated run covers the full window at the full base amounts.
	status, env = doJSON(t, client, http.MethodGet, base+"/pay-runs/"+run.ID+"/summary", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("run summary: expected 200, got %d", status)
	}
	var summary payrun.Summary
	decodeData(t, env, &summary)
	if got := summary.Earnings.StringFixed(2); got != "8000.00" {
		t.Fatalf("expected populated earnings 8000.00, got %s", got)
	}
	if summary.TotalEmployees != 2 {
		t.Fatalf("expected 2 employees in run, got %d", summary.TotalEmployees)
	}

	// Listing without a date window is unbounded and must include the run.
	status, env = doJSON(t, client, http.MethodGet, base+"/pay-runs", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list runs: expected 200, got %d", status)
	}
	var listed []payrun.PayRun
	decodeData(t, env, &listed)
	found := false
	for _, candidate := range listed {
		if candidate.ID == run.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unfiltered run listing to include %s", run.ID)
	}

	status, env = doJSON(t, client, http.MethodPost, base+"/pay-runs/"+run.ID+"/adjustments", map[string]any{
		"employeeId":       seedEmpAda,
		"compensationType": payrun.CompTypeAdjustment,
		"amount":           50,
		"isAddition":       false,
		"description":      "Till shortfall",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("add adjustment: expected 201, got %d (%+v)", status, env.Error)
	}

	status, env = doJSON(t, client, http.MethodGet, base+"/pay-runs/"+run.ID+"/summary", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("run summary: expected 200, got %d", status)
	}
	decodeData(t, env, &summary)
	if got := summary.Total.StringFixed(2); got != "7950.00" {
		t.Fatalf("expected total 7950.00 after deduction, got %s", got)
	}

	for _, next := range []string{payrun.RunStatusPending, payrun.RunStatusApproved} {
		status, env = doJSON(t, client, http.MethodPatch, base+"/pay-runs/"+run.ID+"/status", map[string]any{
			"status": next,
		}, nil)
		if status != http.StatusOK {
			t.Fatalf("transition to %s: expected 200, got %d (%+v)", next, status, env.Error)
		}
	}

	// Payment without an idempotency key is refused outright.
	payBody := map[string]any{"employeeIds": []string{seedEmpAda, seedEmpGrace}}
	status, env = doJSON(t, client, http.MethodPost, base+"/pay-runs/"+run.ID+"/process-payments", payBody, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "idempotency_key_required" {
		t.Fatalf("expected idempotency_key_required, got %+v", env.Error)
	}

	key := fmt.Sprintf("journey-%d", time.Now().UnixNano())
	headers := map[string]string{"Idempotency-Key": key}
	status, env = doJSON(t, client, http.MethodPost, base+"/pay-runs/"+run.ID+"/process-payments", payBody, headers)
	if status != http.StatusOK {
		t.Fatalf("process payments: expected 200, got %d (%+v)", status, env.Error)
	}
	var paid payrun.PayRun
	decodeData(t, env, &paid)
	if paid.Status != payrun.RunStatusPaid {
		t.Fatalf("expected paid run, got %s", paid.Status)
	}
	if paid.PaidDate == nil {
		t.Fatal("expected paidDate to be set")
	}

	// A retry with the same key replays the stored response.
	status, env = doJSON(t, client, http.MethodPost, base+"/pay-runs/"+run.ID+"/process-payments", payBody, headers)
	if status != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d (%+v)", status, env.Error)
	}
	var replayed payrun.PayRun
	decodeData(t, env, &replayed)
	if replayed.Status != payrun.RunStatusPaid || replayed.ID != paid.ID {
		t.Fatalf("replay returned a different result: %+v", replayed)
	}

	// The same key with a different body is a conflict, not a replay.
	status, env = doJSON(t, client, http.MethodPost, base+"/pay-runs/"+run.ID+"/process-payments",
		map[string]any{"employeeIds": []string{seedEmpAda}}, headers)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with new body, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "idempotency_conflict" {
		t.Fatalf("expected idempotency_conflict, got %+v", env.Error)
	}

	// Paid runs are frozen.
	status, env = doJSON(t, client, http.MethodPost, base+"/pay-runs/"+run.ID+"/adjustments", map[string]any{
		"employeeId":       seedEmpAda,
		"compensationType": payrun.CompTypeAdjustment,
		"amount":           10,
		"isAddition":       true,
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 adjusting a paid run, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "immutable_run" {
		t.Fatalf("expected immutable_run, got %+v", env.Error)
	}

	status, env = doJSON(t, client, http.MethodGet, base+"/pay-runs/"+run.ID+"/employee-summaries", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("employee summaries: expected 200, got %d", status)
	}
	var perEmployee []payrun.EmployeeSummary
	decodeData(t, env, &perEmployee)
	if len(perEmployee) != 2 {
		t.Fatalf("expected 2 employee summaries, got %d", len(perEmployee))
	}
	for _, s := range perEmployee {
		if !s.ToPay.IsZero() {
			t.Fatalf("employee %s still has %s to pay after processing", s.EmployeeID, s.ToPay)
		}
	}

	resp, err := client.Get(base + "/pay-runs/" + run.ID + "/payslips/" + seedEmpAda)
	if err != nil {
		t.Fatalf("download payslip: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download payslip: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read payslip body: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatal("payslip body is not a PDF")
	}

	status, env = doJSON(t, client, http.MethodGet, base+"/audit-events?entityType=pay_run&limit=10", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list audit events: expected 200, got %d", status)
	}
	var trail struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	decodeData(t, env, &trail)
	if trail.Total == 0 || len(trail.Items) == 0 {
		t.Fatal("expected audit trail entries for the pay run")
	}
}

func TestGenerateNextPeriodAdvancesSchedule(t *testing.T) {
	ts := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1/payroll"

	status, env := doJSON(t, client, http.MethodGet, base+"/settings", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("get settings: expected 200, got %d", status)
	}
	var before payrun.ScheduleSettings
	decodeData(t, env, &before)

	status, env = doJSON(t, client, http.MethodPost, base+"/periods/generate-next", nil, nil)
	if status != http.StatusCreated {
		t.Fatalf("generate next: expected 201, got %d (%+v)", status, env.Error)
	}
	var period payrun.PayPeriod
	decodeData(t, env, &period)
	if !period.StartDate.Equal(before.NextStartDate) {
		t.Fatalf("expected period to start at %s, got %s", before.NextStartDate, period.StartDate)
	}

	status, env = doJSON(t, client, http.MethodGet, base+"/settings", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("get settings: expected 200, got %d", status)
	}
	var after payrun.ScheduleSettings
	decodeData(t, env, &after)
	if !after.NextStartDate.Equal(period.EndDate.AddDate(0, 0, 1)) {
		t.Fatalf("expected schedule to advance to %s, got %s",
			period.EndDate.AddDate(0, 0, 1), after.NextStartDate)
	}
}

func TestCompensationAndClosedPeriodEndpoints(t *testing.T) {
	ts := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1/payroll"

	status, env := doJSON(t, client, http.MethodGet, base+"/employees/"+seedEmpAlan+"/compensation", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list compensation: expected 200, got %d", status)
	}
	var history []payrun.CompensationSetting
	decodeData(t, env, &history)
	if len(history) == 0 {
		t.Fatal("expected seeded compensation history")
	}

	effectiveFrom, _ := uniqueWindow()
	status, env = doJSON(t, client, http.MethodPost, base+"/employees/"+seedEmpAlan+"/compensation", map[string]any{
		"baseAmount":    3650,
		"effectiveFrom": effectiveFrom.Format("2006-01-02"),
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("add compensation: expected 201, got %d (%+v)", status, env.Error)
	}
	var setting payrun.CompensationSetting
	decodeData(t, env, &setting)
	if setting.EffectiveTo != nil {
		t.Fatal("expected new compensation record to be open-ended")
	}

	status, env = doJSON(t, client, http.MethodGet, base+"/employees/"+seedEmpAlan+"/compensation", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list compensation: expected 200, got %d", status)
	}
	decodeData(t, env, &history)
	open := 0
	for _, record := range history {
		if record.EffectiveTo == nil {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("expected exactly one open compensation record, got %d", open)
	}

	closedStart, closedEnd := uniqueWindow()
	status, env = doJSON(t, client, http.MethodPost, base+"/closed-periods", map[string]any{
		"startDate":   closedStart.Format("2006-01-02"),
		"endDate":     closedEnd.Format("2006-01-02"),
		"description": "Deep clean",
		"locationIds": []string{seedLocDowntown},
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create closed period: expected 201, got %d (%+v)", status, env.Error)
	}
	var closed payrun.ClosedPeriod
	decodeData(t, env, &closed)

	status, env = doJSON(t, client, http.MethodDelete, base+"/closed-periods/"+closed.ID, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("delete closed period: expected 200, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodDelete, base+"/closed-periods/"+closed.ID, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "not_found" {
		t.Fatalf("expected not_found, got %+v", env.Error)
	}
}
