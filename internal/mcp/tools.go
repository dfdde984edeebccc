package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/claude/coroshub/internal/auth"
	"github.com/claude/coroshub/internal/config"
	"github.com/claude/coroshub/internal/models"
	"github.com/claude/coroshub/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

var dayRE = regexp.MustCompile(`^\d{8}$`)

func requireDay(req mcp.CallToolRequest, key string) (string, error) {
	day, err := req.RequireString(key)
	if err != nil {
		return "", fmt.Errorf("%s parameter is required", key)
	}
	if !dayRE.MatchString(day) {
		return "", fmt.Errorf("%s must be in YYYYMMDD format, got %q", key, day)
	}
	return day, nil
}

// stepProperties is the JSON schema shared by warmup/cooldown/steady/interval
// step arguments.
func stepProperties() map[string]any {
	return map[string]any{
		"targetType": map[string]any{
			"type":        "string",
			"enum":        []string{"open", "time", "distance"},
			"description": "Target type: open (no target), time (seconds), distance (centimeters)",
		},
		"targetValue": map[string]any{
			"type":        "number",
			"description": "Target value: seconds for time, centimeters for distance, 0 for open",
		},
		"intensityType": map[string]any{
			"type":        "string",
			"enum":        []string{"none", "heart_rate", "pace"},
			"description": "Intensity type",
		},
		"intensityValue": map[string]any{
			"type":        "number",
			"description": "Low intensity bound: BPM for heart_rate, pace encoding for pace",
		},
		"intensityValueExtend": map[string]any{
			"type":        "number",
			"description": "High intensity bound (same units as intensityValue)",
		},
	}
}

// --- Tool definitions ---

var toolLogin = mcp.NewTool("coros_login",
	mcp.WithDescription("Authenticate with COROS Training Hub. Uses configured credentials (config file or COROS_EMAIL/COROS_PASSWORD env vars) by default, or provide credentials directly."),
	mcp.WithString("email", mcp.Description("COROS account email (defaults to configured credentials)")),
	mcp.WithString("password", mcp.Description("COROS account password (defaults to configured credentials)")),
	mcp.WithString("region", mcp.Description("COROS region (defaults to configured region or us)"), mcp.Enum("us", "eu", "cn")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List saved workouts from COROS Training Hub. Returns workout summaries with IDs and training load."),
	mcp.WithString("sportType", mcp.Description("Filter by sport type"), mcp.Enum("run", "bike")),
	mcp.WithString("nameFilter", mcp.Description("Filter by name (case-insensitive substring match)")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get full details of a saved workout by ID, including all exercise steps."),
	mcp.WithString("id", mcp.Required(), mcp.Description("The workout ID")),
)

var toolCreateWorkout = mcp.NewTool("create_workout",
	mcp.WithDescription("Create a new run or bike workout with structured exercise steps. Supports warmup, steady blocks, an interval group, and cooldown."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Workout name")),
	mcp.WithString("sportType", mcp.Required(), mcp.Description("Sport type"), mcp.Enum("run", "bike")),
	mcp.WithString("description", mcp.Description("Workout description")),
	mcp.WithObject("warmup", mcp.Description("Warmup step"), mcp.Properties(stepProperties())),
	mcp.WithObject("intervals",
		mcp.Description("Interval group: a repeating training + recovery pair"),
		mcp.Properties(map[string]any{
			"sets": map[string]any{
				"type":        "number",
				"description": "Number of interval repetitions (minimum 1)",
			},
			"training": map[string]any{
				"type":        "object",
				"description": "The work interval",
				"properties":  stepProperties(),
			},
			"recovery": map[string]any{
				"type":        "object",
				"description": "The recovery interval",
				"properties":  stepProperties(),
			},
		}),
	),
	mcp.WithArray("steadyBlocks",
		mcp.Description("Steady-state training blocks (non-interval)"),
		mcp.Items(map[string]any{"type": "object", "properties": stepProperties()}),
	),
	mcp.WithObject("cooldown", mcp.Description("Cooldown step"), mcp.Properties(stepProperties())),
)

var toolDeleteWorkout = mcp.NewTool("delete_workout",
	mcp.WithDescription("Delete one or more saved workouts by ID."),
	mcp.WithArray("programIds", mcp.Required(),
		mcp.Description("Array of workout program IDs to delete"),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var toolGetCalendar = mcp.NewTool("get_calendar",
	mcp.WithDescription("Get scheduled workouts for a date range from the COROS training calendar."),
	mcp.WithString("startDay", mcp.Required(), mcp.Description("Start date in YYYYMMDD format")),
	mcp.WithString("endDay", mcp.Required(), mcp.Description("End date in YYYYMMDD format")),
)

var toolScheduleWorkout = mcp.NewTool("schedule_workout",
	mcp.WithDescription("Add a saved workout to the COROS training calendar on a specific date."),
	mcp.WithString("programId", mcp.Required(), mcp.Description("The workout program ID to schedule (from list_workouts)")),
	mcp.WithString("day", mcp.Required(), mcp.Description("Date to schedule the workout on (YYYYMMDD)")),
	mcp.WithString("sportType", mcp.Required(), mcp.Description("Sport type of the workout"), mcp.Enum("run", "bike")),
)

var toolUnscheduleWorkout = mcp.NewTool("unschedule_workout",
	mcp.WithDescription("Remove a scheduled workout from the COROS training calendar. Requires the entity ID from get_calendar and the date it is scheduled on."),
	mcp.WithString("entityId", mcp.Required(), mcp.Description("The schedule entity ID (from get_calendar)")),
	mcp.WithString("day", mcp.Required(), mcp.Description("Date the workout is scheduled on (YYYYMMDD)")),
)

// --- Tool handlers ---

func (h *handlers) login(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email := req.GetString("email", "")
	password := req.GetString("password", "")

	var creds *auth.Credentials
	if email != "" && password != "" {
		creds = &auth.Credentials{
			Email:    email,
			Password: password,
			Region:   config.ParseRegion(req.GetString("region", ""), h.log),
		}
	}

	tok, err := h.session.Login(ctx, creds)
	if err != nil {
		h.log.Error("mcp coros_login", "error", err)
		return mcp.NewToolResultError("Login failed: " + err.Error()), nil
	}

	return mcp.NewToolResultText("Authenticated as user " + tok.UserID), nil
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sportType *models.SportType
	if s := req.GetString("sportType", ""); s != "" {
		st, err := config.ParseSportType(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sportType = &st
	}

	programs, err := h.client.ListPrograms(ctx, sportType)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("Failed to list workouts: " + err.Error()), nil
	}

	if filter := req.GetString("nameFilter", ""); filter != "" {
		lower := strings.ToLower(filter)
		kept := programs[:0]
		for _, p := range programs {
			if strings.Contains(strings.ToLower(p.Name), lower) {
				kept = append(kept, p)
			}
		}
		programs = kept
	}

	if len(programs) == 0 {
		return mcp.NewToolResultText("No workouts found."), nil
	}

	var b strings.Builder
	for _, p := range programs {
		label := config.SportLabels[p.SportType]
		if label == "" {
			label = "Unknown"
		}
		fmt.Fprintf(&b, "- %s (%s, ID: %s, load: %d)\n", p.Name, label, p.ID, p.Load())
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	program, err := h.client.GetProgram(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("Failed to get workout: " + err.Error()), nil
	}

	data, err := json.MarshalIndent(program, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// createWorkoutArgs mirrors the create_workout input schema.
type createWorkoutArgs struct {
	Name         string        `json:"name"`
	SportType    string        `json:"sportType"`
	Description  string        `json:"description"`
	Warmup       *stepArgs     `json:"warmup"`
	Intervals    *intervalArgs `json:"intervals"`
	SteadyBlocks []stepArgs    `json:"steadyBlocks"`
	Cooldown     *stepArgs     `json:"cooldown"`
}

type stepArgs struct {
	TargetType           string `json:"targetType"`
	TargetValue          int    `json:"targetValue"`
	IntensityType        string `json:"intensityType"`
	IntensityValue       int    `json:"intensityValue"`
	IntensityValueExtend int    `json:"intensityValueExtend"`
}

type intervalArgs struct {
	Sets     int      `json:"sets"`
	Training stepArgs `json:"training"`
	Recovery stepArgs `json:"recovery"`
}

func (s stepArgs) toStep() plan.Step {
	return plan.Step{
		TargetType:        s.TargetType,
		TargetValue:       s.TargetValue,
		IntensityType:     s.IntensityType,
		IntensityValue:    s.IntensityValue,
		IntensityValueExt: s.IntensityValueExtend,
	}
}

func (h *handlers) createWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args createWorkoutArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if args.Name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	sport, err := config.ParseSportType(args.SportType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inputs := plan.Inputs{}
	if args.Warmup != nil {
		s := args.Warmup.toStep()
		inputs.Warmup = &s
	}
	if args.Intervals != nil {
		inputs.Intervals = &plan.IntervalGroup{
			Sets:     args.Intervals.Sets,
			Training: args.Intervals.Training.toStep(),
			Recovery: args.Intervals.Recovery.toStep(),
		}
	}
	for _, block := range args.SteadyBlocks {
		inputs.SteadyBlocks = append(inputs.SteadyBlocks, block.toStep())
	}
	if args.Cooldown != nil {
		s := args.Cooldown.toStep()
		inputs.Cooldown = &s
	}

	exercises, err := plan.Build(sport, inputs)
	if err != nil {
		return mcp.NewToolResultError("Failed to build workout: " + err.Error()), nil
	}
	if len(exercises) == 0 {
		return mcp.NewToolResultError("Workout must have at least one exercise step."), nil
	}

	id, err := h.client.CreateProgram(ctx, args.Name, sport, args.Description, exercises)
	if err != nil {
		h.log.Error("mcp create_workout", "error", err)
		return mcp.NewToolResultError("Failed to create workout: " + err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Workout %q created (ID: %s)", args.Name, id)), nil
}

func (h *handlers) deleteWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ProgramIDs []string `json:"programIds"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if len(args.ProgramIDs) == 0 {
		return mcp.NewToolResultError("programIds must contain at least one ID"), nil
	}

	if err := h.client.DeletePrograms(ctx, args.ProgramIDs); err != nil {
		h.log.Error("mcp delete_workout", "error", err)
		return mcp.NewToolResultError("Failed to delete: " + err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d workout(s).", len(args.ProgramIDs))), nil
}

func (h *handlers) getCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDay, err := requireDay(req, "startDay")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endDay, err := requireDay(req, "endDay")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendar, err := h.client.QuerySchedule(ctx, startDay, endDay)
	if err != nil {
		h.log.Error("mcp get_calendar", "error", err)
		return mcp.NewToolResultError("Failed to get calendar: " + err.Error()), nil
	}

	if len(calendar.Entities) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No scheduled workouts between %s and %s.", startDay, endDay)), nil
	}

	programsByIDInPlan := make(map[string]*models.Program, len(calendar.Programs))
	for i := range calendar.Programs {
		p := &calendar.Programs[i]
		programsByIDInPlan[fmt.Sprintf("%d", p.IDInPlan)] = p
	}

	var b strings.Builder
	for _, entity := range calendar.Entities {
		name := "Unknown"
		sportLabel := "Unknown"
		load := 0

		program := programsByIDInPlan[entity.PlanProgramID]
		if entity.SportData != nil {
			name = entity.SportData.Name
			sportLabel = sportLabelFor(models.SportType(entity.SportData.SportType))
			load = entity.SportData.TrainingLoad
		} else if program != nil {
			name = program.Name
			sportLabel = sportLabelFor(program.SportType)
			load = program.TrainingLoad
		}

		completed := ""
		if entity.LabelID != "" {
			completed = " [completed]"
		}
		fmt.Fprintf(&b, "- %d: %s (%s, load: %d, entity ID: %s)%s\n",
			entity.HappenDay, name, sportLabel, load, entity.ID, completed)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func sportLabelFor(s models.SportType) string {
	if label, ok := config.SportLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("type %d", s)
}

func (h *handlers) scheduleWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programID, err := req.RequireString("programId")
	if err != nil {
		return mcp.NewToolResultError("programId parameter is required"), nil
	}
	day, err := requireDay(req, "day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// sportType is validated but not forwarded; the schedule payload carries
	// the sport inside the program detail.
	if _, err := config.ParseSportType(req.GetString("sportType", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.ScheduleWorkout(ctx, programID, day); err != nil {
		h.log.Error("mcp schedule_workout", "error", err)
		return mcp.NewToolResultError("Failed to schedule workout: " + err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Workout %s scheduled for %s.", programID, day)), nil
}

func (h *handlers) unscheduleWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityID, err := req.RequireString("entityId")
	if err != nil {
		return mcp.NewToolResultError("entityId parameter is required"), nil
	}
	day, err := requireDay(req, "day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.UnscheduleWorkout(ctx, entityID, day, day); err != nil {
		h.log.Error("mcp unschedule_workout", "error", err)
		return mcp.NewToolResultError("Failed to unschedule workout: " + err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Workout removed from %s.", day)), nil
}
