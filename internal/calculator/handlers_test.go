package calculator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calculator-brain/internal/observability"
	"calculator-brain/internal/testutil"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(t *testing.T) (http.Handler, *Store) {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	cfg := DefaultConfig()
	store := NewStore(cfg)
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(store, cfg))
	return r, store
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	return testutil.ExecuteRequest(testutil.NewRequest(method, path, body), h)
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()

	w := doRequest(t, h, http.MethodPost, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var state State
	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return "/calculator/sessions/" + state.SessionID
}

func TestCreateSessionReturnsBlankState(t *testing.T) {
	h, store := newTestRouter(t)

	w := doRequest(t, h, http.MethodPost, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var state State
	testutil.DecodeJSONBody(t, w.Body, &state)

	if state.Result == nil || *state.Result != 0 {
		t.Fatalf("expected result 0, got %v", state.Result)
	}
	if state.Display != "0" || state.Pending || state.HistoryLength != 0 {
		t.Fatalf("unexpected initial state %+v", state)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 stored session, got %d", store.Len())
	}
}

func TestSessionEndpointsUnknownSession(t *testing.T) {
	h, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/calculator/sessions/nope"},
		{http.MethodDelete, "/calculator/sessions/nope"},
		{http.MethodPost, "/calculator/sessions/nope/undo"},
		{http.MethodGet, "/calculator/sessions/nope/program"},
	}

	for _, tc := range paths {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := doRequest(t, h, tc.method, tc.path, "")
			testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

			var body map[string]string
			testutil.DecodeJSONBody(t, w.Body, &body)
			if body["error"] != "session not found" {
				t.Fatalf("expected session not found, got %q", body["error"])
			}
		})
	}
}

func TestOperandRejectsInvalidBodies(t *testing.T) {
	h, _ := newTestRouter(t)
	base := createSession(t, h)

	bodies := []string{
		`not json`,
		`{}`,
		`{"value":1,"variable":"M"}`,
	}
	for _, body := range bodies {
		w := doRequest(t, h, http.MethodPost, base+"/operand", body)
		testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
	}

	w := doRequest(t, h, http.MethodPost, base+"/operation", `{"symbol":""}`)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
}

func TestOperationGuardFailureReturnsUnprocessable(t *testing.T) {
	h, _ := newTestRouter(t)
	base := createSession(t, h)

	doRequest(t, h, http.MethodPost, base+"/operand", `{"value":-1}`)
	w := doRequest(t, h, http.MethodPost, base+"/operation", `{"symbol":"sqrt"}`)
	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]string
	testutil.DecodeJSONBody(t, w.Body, &body)
	if body["error"] != "Square Root of Negative Number" {
		t.Fatalf("unexpected error %q", body["error"])
	}

	w = doRequest(t, h, http.MethodGet, base, "")
	var state State
	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.HistoryLength != 0 {
		t.Fatalf("expected session to be cleared, got %d tokens", state.HistoryLength)
	}
}

func TestOperationLogsCompletion(t *testing.T) {
	h, _ := newTestRouter(t)
	base := createSession(t, h)

	core, logs := observer.New(zap.InfoLevel)
	observability.Logger = zap.New(core)

	doRequest(t, h, http.MethodPost, base+"/operand", `{"value":9}`)
	w := doRequest(t, h, http.MethodPost, base+"/operation", `{"symbol":"√"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("calculator operation completed").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}

	fields := entries[1].ContextMap()
	if fields["operation"] != "operation" {
		t.Fatalf("expected operation %q, got %#v", "operation", fields["operation"])
	}
	if fields["description"] != "√(9)" {
		t.Fatalf("expected description %q, got %#v", "√(9)", fields["description"])
	}
}

func TestUpperCaseAliasIsAVariable(t *testing.T) {
	h, _ := newTestRouter(t)
	base := createSession(t, h)

	doRequest(t, h, http.MethodPut, base+"/variables/PI", `{"value":3}`)
	w := doRequest(t, h, http.MethodPost, base+"/operation", `{"symbol":"PI"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var state State
	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.Result == nil || *state.Result != 3 || state.Description != "PI" {
		t.Fatalf("expected variable PI=3, got %+v", state)
	}
}

func TestUndoClearAndVariables(t *testing.T) {
	h, _ := newTestRouter(t)
	base := createSession(t, h)

	doRequest(t, h, http.MethodPost, base+"/operand", `{"value":3}`)
	doRequest(t, h, http.MethodPost, base+"/operation", `{"symbol":"*"}`)
	doRequest(t, h, http.MethodPost, base+"/operand", `{"variable":"M"}`)

	w := doRequest(t, h, http.MethodPut, base+"/variables/M", `{"value":7}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var state State
	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.Description != "3 × M" || state.Variables["M"] != 7 {
		t.Fatalf("unexpected state %+v", state)
	}

	w = doRequest(t, h, http.MethodPost, base+"/operation", `{"symbol":"="}`)
	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.Result == nil || *state.Result != 21 {
		t.Fatalf("expected result 21, got %v", state.Result)
	}

	w = doRequest(t, h, http.MethodPost, base+"/undo", "")
	testutil.DecodeJSONBody(t, w.Body, &state)
	if !state.Pending || state.HistoryLength != 3 {
		t.Fatalf("unexpected state after undo %+v", state)
	}

	w = doRequest(t, h, http.MethodPost, base+"/clear", "")
	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.HistoryLength != 0 || state.Variables["M"] != 0 {
		t.Fatalf("unexpected state after clear %+v", state)
	}
}

func TestProgramJSONAndYAML(t *testing.T) {
	h, _ := newTestRouter(t)
	base := createSession(t, h)

	w := doRequest(t, h, http.MethodPut, base+"/program", `{"program":[4,"+",5,"="]}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var state State
	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.Description != "4 + 5" || state.Expression != "4 + 5 =" {
		t.Fatalf("unexpected state %+v", state)
	}

	w = doRequest(t, h, http.MethodGet, base+"/program", "")
	var body ProgramBody
	testutil.DecodeJSONBody(t, w.Body, &body)
	if len(body.Program) != 4 || body.Program[1].Name() != "+" {
		t.Fatalf("unexpected program %v", body.Program)
	}

	req := httptest.NewRequest(http.MethodGet, base+"/program", nil)
	req.Header.Set("Accept", "application/yaml")
	w = testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Fatalf("expected YAML content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "program:") {
		t.Fatalf("expected a YAML program, got %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPut, base+"/program", strings.NewReader("variables: {M: 2}\nprogram: [M, \"x²\"]\n"))
	req.Header.Set("Content-Type", "application/yaml")
	w = testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	testutil.DecodeJSONBody(t, w.Body, &state)
	if state.Result == nil || *state.Result != 4 || state.Description != "(M)²" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestGetProgramWithNonFiniteOperandNeedsYAML(t *testing.T) {
	h, _ := newTestRouter(t)
	base := createSession(t, h)

	req := httptest.NewRequest(http.MethodPut, base+"/program", strings.NewReader("program: [.nan, \"+\", 1]\n"))
	req.Header.Set("Content-Type", "application/yaml")
	w := testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	w = doRequest(t, h, http.MethodGet, base+"/program", "")
	testutil.CheckResponseCode(t, http.StatusNotAcceptable, w.Code)

	req = httptest.NewRequest(http.MethodGet, base+"/program", nil)
	req.Header.Set("Accept", "application/yaml")
	w = testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Body.String(), ".nan") {
		t.Fatalf("expected .nan in YAML program, got %q", w.Body.String())
	}
}

func TestEvaluateReturnsSteps(t *testing.T) {
	h, store := newTestRouter(t)

	w := doRequest(t, h, http.MethodPost, "/calculator/evaluate", `{"variables":{"M":2},"tokens":[2,"+",3,"*",4,"=","-","M","="]}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp EvaluateResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.Result == nil || *resp.Result != 18 {
		t.Fatalf("expected result 18, got %v", resp.Result)
	}
	if resp.Description != "(2 + 3) × 4 − M" {
		t.Fatalf("unexpected description %q", resp.Description)
	}
	if len(resp.Steps) != 9 {
		t.Fatalf("expected 9 steps, got %d", len(resp.Steps))
	}
	if store.Len() != 0 {
		t.Fatal("evaluate must not create sessions")
	}

	w = doRequest(t, h, http.MethodPost, "/calculator/evaluate", `{"tokens":[]}`)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
}

func TestListOperations(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doRequest(t, h, http.MethodGet, "/calculator/operations", "")
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var ops []OperationInfo
	testutil.DecodeJSONBody(t, w.Body, &ops)

	bySymbol := make(map[string]OperationInfo, len(ops))
	for _, op := range ops {
		bySymbol[op.Symbol] = op
	}

	if len(ops) != 29 {
		t.Fatalf("expected 29 operations, got %d", len(ops))
	}
	if op := bySymbol["÷"]; op.Kind != "binary" || !op.Guarded || op.Precedence == nil || *op.Precedence != 1 {
		t.Fatalf("unexpected ÷ entry %+v", op)
	}
	if op := bySymbol["√"]; op.Kind != "unary" || !op.Guarded {
		t.Fatalf("unexpected √ entry %+v", op)
	}
	if op := bySymbol["="]; op.Kind != "equals" {
		t.Fatalf("unexpected = entry %+v", op)
	}
}

func TestDeleteSession(t *testing.T) {
	h, store := newTestRouter(t)
	base := createSession(t, h)

	w := doRequest(t, h, http.MethodDelete, base, "")
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}
