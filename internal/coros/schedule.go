package coros

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/claude/coroshub/internal/config"
	"github.com/claude/coroshub/internal/models"
)

const scheduleUpdatePath = "/training/schedule/update"

// QuerySchedule returns the training calendar for a YYYYMMDD day range.
func (c *Client) QuerySchedule(ctx context.Context, startDay, endDay string) (*models.SchedulePlan, error) {
	data, err := c.gw.Get(ctx, "/training/schedule/query", map[string]string{
		"startDate":           startDay,
		"endDate":             endDay,
		"supportRestExercise": "1",
	})
	if err != nil {
		return nil, err
	}

	var plan models.SchedulePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, &models.NetworkError{Path: "/training/schedule/query", Err: fmt.Errorf("decoding schedule: %w", err)}
	}
	return &plan, nil
}

// ScheduleWorkout adds a saved workout to the calendar on a specific day.
// The update payload needs the plan's next in-plan ID and the full program
// detail, so this issues a query and a detail fetch first.
func (c *Client) ScheduleWorkout(ctx context.Context, programID, day string) error {
	plan, err := c.QuerySchedule(ctx, day, day)
	if err != nil {
		return err
	}

	maxID, _ := strconv.ParseInt(plan.MaxPlanProgramID, 10, 64)
	nextIDInPlan := maxID + 1

	program, err := c.GetProgram(ctx, programID)
	if err != nil {
		return err
	}
	program.IDInPlan = nextIDInPlan

	barChart := program.ExerciseBarChart
	if barChart == nil {
		barChart = []any{}
	}

	payload := map[string]any{
		"entities": []map[string]any{{
			"happenDay":        day,
			"idInPlan":         nextIDInPlan,
			"sortNo":           0,
			"dayNo":            0,
			"sortNoInPlan":     0,
			"sortNoInSchedule": 0,
			"exerciseBarChart": barChart,
		}},
		"programs": []*models.Program{program},
		"versionObjects": []map[string]any{{
			"id":     nextIDInPlan,
			"status": config.ScheduleStatusAdd,
		}},
		"pbVersion": config.PBVersion,
	}

	_, err = c.gw.Post(ctx, scheduleUpdatePath, payload)
	return err
}

// UnscheduleWorkout removes a scheduled workout from the calendar. The
// entity must be located in the given day range first; a missing entity is
// a validation failure, not a server error.
func (c *Client) UnscheduleWorkout(ctx context.Context, entityID, startDay, endDay string) error {
	plan, err := c.QuerySchedule(ctx, startDay, endDay)
	if err != nil {
		return err
	}

	var entity *models.ScheduleEntity
	for i := range plan.Entities {
		if plan.Entities[i].ID == entityID {
			entity = &plan.Entities[i]
			break
		}
	}
	if entity == nil {
		return models.NewValidationError("entity %s not found in calendar", entityID)
	}

	payload := map[string]any{
		"versionObjects": []map[string]any{{
			"id":            entity.IDInPlan,
			"planProgramId": entity.PlanProgramID,
			"planId":        plan.ID,
			"status":        config.ScheduleStatusDelete,
		}},
		"pbVersion": config.PBVersion,
	}

	_, err = c.gw.Post(ctx, scheduleUpdatePath, payload)
	return err
}
