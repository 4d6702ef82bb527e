package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/loacheck"
	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/store"
)

type fakeValidator struct {
	env loacheck.ResponseEnvelope
	err error
	got loacheck.RequestEnvelope
}

func (f *fakeValidator) Run(ctx context.Context, req loacheck.RequestEnvelope) (loacheck.ResponseEnvelope, error) {
	f.got = req
	return f.env, f.err
}

type fakeRunStore struct {
	saved  []store.Run
	getRun store.Run
	getErr error
}

func (f *fakeRunStore) SaveRun(ctx context.Context, req loacheck.RequestEnvelope, env loacheck.ResponseEnvelope) (store.Run, error) {
	run := store.Run{RunID: "run-1", CaseID: env.CaseID, Decision: string(env.Decision), Response: env}
	f.saved = append(f.saved, run)
	return run, nil
}

func (f *fakeRunStore) GetRun(ctx context.Context, runID string) (store.Run, error) {
	return f.getRun, f.getErr
}

func (f *fakeRunStore) ListRuns(ctx context.Context, caseID string, limit int) ([]store.Run, error) {
	return f.saved, nil
}

func TestCreateValidation(t *testing.T) {
	validator := &fakeValidator{env: loacheck.ResponseEnvelope{
		CaseID:           "case-1",
		Decision:         loacheck.DecisionReject,
		RejectionReasons: []string{"LOA expired on 12/15/2024"},
	}}
	runs := &fakeRunStore{}
	srv := httptest.NewServer(NewServer(validator, runs))
	defer srv.Close()

	body := `{"case_id":"case-1","region":"Great Lakes","state":"IL","document_text":"..."}`
	resp, err := http.Post(srv.URL+"/v1/validations", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		OK       bool   `json:"ok"`
		RunID    string `json:"run_id"`
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || out.RunID != "run-1" || out.Decision != "REJECT" {
		t.Errorf("out = %+v", out)
	}
	if validator.got.CaseID != "case-1" || validator.got.State != "IL" {
		t.Errorf("request passed to validator = %+v", validator.got)
	}
	if len(runs.saved) != 1 {
		t.Errorf("saved runs = %d", len(runs.saved))
	}
}

func TestCreateValidationBadJSON(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeValidator{}, &fakeRunStore{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/validations", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateValidationPipelineError(t *testing.T) {
	validator := &fakeValidator{err: errors.New("unknown region")}
	srv := httptest.NewServer(NewServer(validator, &fakeRunStore{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/validations", "application/json", strings.NewReader(`{"case_id":"x","region":"Mars"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetValidation(t *testing.T) {
	runs := &fakeRunStore{getRun: store.Run{RunID: "run-9", CaseID: "case-9", Decision: "ACCEPT"}}
	srv := httptest.NewServer(NewServer(&fakeValidator{}, runs))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/validations/run-9")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var run store.Run
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.RunID != "run-9" || run.Decision != "ACCEPT" {
		t.Errorf("run = %+v", run)
	}
}

func TestGetValidationNotFound(t *testing.T) {
	runs := &fakeRunStore{getErr: store.ErrRunNotFound}
	srv := httptest.NewServer(NewServer(&fakeValidator{}, runs))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/validations/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListValidations(t *testing.T) {
	runs := &fakeRunStore{}
	srv := httptest.NewServer(NewServer(&fakeValidator{env: loacheck.ResponseEnvelope{CaseID: "c", Decision: loacheck.DecisionAccept}}, runs))
	defer srv.Close()

	if _, err := http.Post(srv.URL+"/v1/validations", "application/json", strings.NewReader(`{"case_id":"c","region":"New England"}`)); err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp, err := http.Get(srv.URL + "/v1/validations?case_id=c")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Runs []store.Run `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Runs) != 1 {
		t.Errorf("runs = %d, want 1", len(out.Runs))
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeValidator{}, &fakeRunStore{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeValidator{}, &fakeRunStore{}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/validations", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
