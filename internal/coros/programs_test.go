package coros

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/coroshub/internal/models"
)

func newTestClient(ts *httptest.Server) *Client {
	gw, _ := newTestGateway(ts)
	return NewClient(gw)
}

// TestListPrograms verifies the query body defaults, the optional sport
// filter, and result decoding.
func TestListPrograms(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/training/program/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["limitSize"] != float64(100) || body["startNo"] != float64(0) {
			t.Errorf("paging = %v/%v", body["startNo"], body["limitSize"])
		}
		if body["supportRestExercise"] != float64(1) {
			t.Errorf("supportRestExercise = %v", body["supportRestExercise"])
		}
		if body["sportType"] != float64(1) {
			t.Errorf("sportType = %v, want 1", body["sportType"])
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":[
			{"id":"101","name":"Tempo","sportType":1,"essence":85},
			{"id":"102","name":"Long Ride","sportType":2,"trainingLoad":120}
		]}`))
	}))
	defer ts.Close()

	sport := models.SportRun
	programs, err := newTestClient(ts).ListPrograms(context.Background(), &sport)
	if err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
	if len(programs) != 2 {
		t.Fatalf("got %d programs", len(programs))
	}
	if programs[0].Name != "Tempo" || programs[0].Load() != 85 {
		t.Errorf("programs[0] = %+v", programs[0])
	}
	if programs[1].Load() != 120 {
		t.Errorf("programs[1].Load() = %d", programs[1].Load())
	}
}

// TestListProgramsNoFilter verifies the sport filter is omitted entirely
// when not requested.
func TestListProgramsNoFilter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if _, ok := body["sportType"]; ok {
			t.Error("sportType should be absent without a filter")
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":[]}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts).ListPrograms(context.Background(), nil); err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
}

// TestGetProgram verifies the detail query and decoding of nested
// exercises.
func TestGetProgram(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/training/program/detail" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "101" {
			t.Errorf("id = %q", got)
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":{
			"id":"101","name":"Tempo","sportType":1,
			"exercises":[{"exerciseType":2,"id":"9001","sortNo":0,"groupId":"0"}]
		}}`))
	}))
	defer ts.Close()

	program, err := newTestClient(ts).GetProgram(context.Background(), "101")
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if program.Name != "Tempo" || len(program.Exercises) != 1 {
		t.Errorf("program = %+v", program)
	}
	if program.Exercises[0].ExerciseType != models.ExerciseTraining {
		t.Errorf("exerciseType = %d", program.Exercises[0].ExerciseType)
	}
}

// TestCreateProgram verifies the add payload carries the fixed unit and
// version fields and that the bare string ID in the envelope decodes.
func TestCreateProgram(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/training/program/add" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["name"] != "Hill Repeats" {
			t.Errorf("name = %v", body["name"])
		}
		if body["unit"] != float64(1) || body["pbVersion"] != float64(8) {
			t.Errorf("unit/pbVersion = %v/%v", body["unit"], body["pbVersion"])
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":"428000000000000001"}`))
	}))
	defer ts.Close()

	id, err := newTestClient(ts).CreateProgram(context.Background(), "Hill Repeats", models.SportRun, "", nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if id != "428000000000000001" {
		t.Errorf("id = %q", id)
	}
}

// TestDeleteProgramsRawBody verifies the delete body is a raw array of
// unquoted numeric literals, byte-for-byte.
func TestDeleteProgramsRawBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/training/program/delete" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "[428000000000000001,428000000000000002]" {
			t.Errorf("body = %q", body)
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":null}`))
	}))
	defer ts.Close()

	err := newTestClient(ts).DeletePrograms(context.Background(), []string{"428000000000000001", "428000000000000002"})
	if err != nil {
		t.Fatalf("DeletePrograms: %v", err)
	}
}

// TestDeleteProgramsValidation verifies non-numeric IDs are rejected before
// any network call, with every offender named.
func TestDeleteProgramsValidation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected network call")
	}))
	defer ts.Close()

	client := newTestClient(ts)

	err := client.DeletePrograms(context.Background(), []string{"123", "abc", "45x"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "invalid program IDs (must be numeric): abc, 45x" {
		t.Errorf("message = %q", verr.Message)
	}

	if err := client.DeletePrograms(context.Background(), nil); err == nil {
		t.Error("expected error for empty ID list")
	}
	if err := client.DeletePrograms(context.Background(), []string{""}); err == nil {
		t.Error("expected error for empty ID")
	}
}

// TestCalculateProgram verifies result decoding.
func TestCalculateProgram(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/training/program/calculate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":{"distance":1000000,"duration":3600,"trainingLoad":95}}`))
	}))
	defer ts.Close()

	result, err := newTestClient(ts).CalculateProgram(context.Background(), nil)
	if err != nil {
		t.Fatalf("CalculateProgram: %v", err)
	}
	if result.Distance != 1000000 || result.Duration != 3600 || result.TrainingLoad != 95 {
		t.Errorf("result = %+v", result)
	}
}

// TestEstimateProgram verifies the day is forwarded and the load decodes.
func TestEstimateProgram(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["day"] != "20260905" {
			t.Errorf("day = %v", body["day"])
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":{"trainingLoad":72}}`))
	}))
	defer ts.Close()

	load, err := newTestClient(ts).EstimateProgram(context.Background(), "20260905", nil)
	if err != nil {
		t.Fatalf("EstimateProgram: %v", err)
	}
	if load != 72 {
		t.Errorf("load = %d, want 72", load)
	}
}
