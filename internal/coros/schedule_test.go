package coros

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/coroshub/internal/models"
)

// TestQuerySchedule verifies the day range parameters and plan decoding.
func TestQuerySchedule(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/training/schedule/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("startDate") != "20260901" || q.Get("endDate") != "20260907" {
			t.Errorf("range = %q..%q", q.Get("startDate"), q.Get("endDate"))
		}
		if q.Get("supportRestExercise") != "1" {
			t.Errorf("supportRestExercise = %q", q.Get("supportRestExercise"))
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":{
			"id":"plan-1","maxPlanProgramId":"17",
			"entities":[{"id":"e1","happenDay":20260903,"idInPlan":"12","planProgramId":"5"}],
			"programs":[{"id":"101","name":"Tempo","idInPlan":5}]
		}}`))
	}))
	defer ts.Close()

	plan, err := newTestClient(ts).QuerySchedule(context.Background(), "20260901", "20260907")
	if err != nil {
		t.Fatalf("QuerySchedule: %v", err)
	}
	if plan.ID != "plan-1" || plan.MaxPlanProgramID != "17" {
		t.Errorf("plan = %+v", plan)
	}
	if len(plan.Entities) != 1 || plan.Entities[0].HappenDay != 20260903 {
		t.Errorf("entities = %+v", plan.Entities)
	}
	if len(plan.Programs) != 1 || plan.Programs[0].IDInPlan != 5 {
		t.Errorf("programs = %+v", plan.Programs)
	}
}

// TestScheduleWorkout verifies the full add sequence: schedule query for the
// next in-plan ID, program detail fetch, then an update whose entity and
// version object both carry maxPlanProgramId+1 with the add status.
func TestScheduleWorkout(t *testing.T) {
	var update map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/training/schedule/query":
			_, _ = w.Write([]byte(`{"result":"0000","data":{"id":"plan-1","maxPlanProgramId":"17","entities":[],"programs":[]}}`))
		case "/training/program/detail":
			if got := r.URL.Query().Get("id"); got != "101" {
				t.Errorf("detail id = %q", got)
			}
			_, _ = w.Write([]byte(`{"result":"0000","data":{"id":"101","name":"Tempo","sportType":1,"exercises":[]}}`))
		case "/training/schedule/update":
			if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
				t.Fatal(err)
			}
			_, _ = w.Write([]byte(`{"result":"0000","data":null}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer ts.Close()

	err := newTestClient(ts).ScheduleWorkout(context.Background(), "101", "20260905")
	if err != nil {
		t.Fatalf("ScheduleWorkout: %v", err)
	}
	if update == nil {
		t.Fatal("update endpoint never called")
	}

	entities := update["entities"].([]any)
	entity := entities[0].(map[string]any)
	if entity["happenDay"] != "20260905" {
		t.Errorf("happenDay = %v", entity["happenDay"])
	}
	if entity["idInPlan"] != float64(18) {
		t.Errorf("idInPlan = %v, want 18", entity["idInPlan"])
	}

	programs := update["programs"].([]any)
	program := programs[0].(map[string]any)
	if program["idInPlan"] != float64(18) {
		t.Errorf("program idInPlan = %v, want 18", program["idInPlan"])
	}

	versions := update["versionObjects"].([]any)
	version := versions[0].(map[string]any)
	if version["id"] != float64(18) || version["status"] != float64(1) {
		t.Errorf("versionObject = %v", version)
	}
	if update["pbVersion"] != float64(8) {
		t.Errorf("pbVersion = %v", update["pbVersion"])
	}
}

// TestUnscheduleWorkout verifies the entity lookup and the delete version
// object referencing the entity's in-plan IDs with the delete status.
func TestUnscheduleWorkout(t *testing.T) {
	var update map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/training/schedule/query":
			_, _ = w.Write([]byte(`{"result":"0000","data":{
				"id":"plan-1","maxPlanProgramId":"17",
				"entities":[{"id":"e1","happenDay":20260905,"idInPlan":"12","planProgramId":"5"}],
				"programs":[]
			}}`))
		case "/training/schedule/update":
			if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
				t.Fatal(err)
			}
			_, _ = w.Write([]byte(`{"result":"0000","data":null}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer ts.Close()

	err := newTestClient(ts).UnscheduleWorkout(context.Background(), "e1", "20260905", "20260905")
	if err != nil {
		t.Fatalf("UnscheduleWorkout: %v", err)
	}
	if update == nil {
		t.Fatal("update endpoint never called")
	}

	versions := update["versionObjects"].([]any)
	version := versions[0].(map[string]any)
	if version["id"] != "12" || version["planProgramId"] != "5" {
		t.Errorf("versionObject ids = %v/%v", version["id"], version["planProgramId"])
	}
	if version["planId"] != "plan-1" {
		t.Errorf("planId = %v", version["planId"])
	}
	if version["status"] != float64(3) {
		t.Errorf("status = %v, want 3", version["status"])
	}
}

// TestUnscheduleWorkoutMissingEntity verifies a miss in the queried range is
// a validation failure and no update is sent.
func TestUnscheduleWorkoutMissingEntity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/training/schedule/update" {
			t.Error("update must not be called for a missing entity")
		}
		_, _ = w.Write([]byte(`{"result":"0000","data":{"id":"plan-1","entities":[],"programs":[]}}`))
	}))
	defer ts.Close()

	err := newTestClient(ts).UnscheduleWorkout(context.Background(), "ghost", "20260905", "20260905")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "entity ghost not found in calendar" {
		t.Errorf("message = %q", verr.Message)
	}
}
