package coros

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/coroshub/internal/config"
	"github.com/claude/coroshub/internal/models"
)

// Client exposes the typed program and schedule endpoints over a Gateway.
type Client struct {
	gw *Gateway
}

// NewClient creates a Client over the given gateway.
func NewClient(gw *Gateway) *Client {
	return &Client{gw: gw}
}

// ListPrograms returns saved workout summaries, optionally filtered by sport.
func (c *Client) ListPrograms(ctx context.Context, sportType *models.SportType) ([]models.ProgramSummary, error) {
	body := map[string]any{
		"name":                "",
		"supportRestExercise": 1,
		"startNo":             0,
		"limitSize":           100,
	}
	if sportType != nil {
		body["sportType"] = *sportType
	}

	data, err := c.gw.Post(ctx, "/training/program/query", body)
	if err != nil {
		return nil, err
	}

	var programs []models.ProgramSummary
	if err := json.Unmarshal(data, &programs); err != nil {
		return nil, &models.NetworkError{Path: "/training/program/query", Err: fmt.Errorf("decoding programs: %w", err)}
	}
	return programs, nil
}

// GetProgram returns the full detail of one saved workout.
func (c *Client) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	data, err := c.gw.Get(ctx, "/training/program/detail", map[string]string{"id": id})
	if err != nil {
		return nil, err
	}

	var program models.Program
	if err := json.Unmarshal(data, &program); err != nil {
		return nil, &models.NetworkError{Path: "/training/program/detail", Err: fmt.Errorf("decoding program: %w", err)}
	}
	return &program, nil
}

// CreateProgram saves a new workout. The endpoint returns the new program ID
// as a bare JSON string in the envelope data.
func (c *Client) CreateProgram(ctx context.Context, name string, sportType models.SportType, overview string, exercises []models.Exercise) (string, error) {
	body := map[string]any{
		"name":      name,
		"sportType": sportType,
		"overview":  overview,
		"exercises": exercises,
		"unit":      config.UnitStatute,
		"pbVersion": config.PBVersion,
	}

	data, err := c.gw.Post(ctx, "/training/program/add", body)
	if err != nil {
		return "", err
	}

	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", &models.NetworkError{Path: "/training/program/add", Err: fmt.Errorf("decoding program id: %w", err)}
	}
	return id, nil
}

// DeletePrograms deletes workouts by ID. The endpoint expects an array of
// unquoted numeric literals: IDs are snowflake-style 18+ digit integers that
// would lose precision through a float64 round-trip, so the body is built as
// a raw string and sent byte-for-byte. Every ID is validated before any
// network call; all offenders are enumerated in the error.
func (c *Client) DeletePrograms(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return models.NewValidationError("no program IDs to delete")
	}

	var bad []string
	for _, id := range ids {
		if !isNumericID(id) {
			bad = append(bad, id)
		}
	}
	if len(bad) > 0 {
		return models.NonNumericIDsError(bad)
	}

	rawBody := "[" + strings.Join(ids, ",") + "]"
	_, err := c.gw.PostRaw(ctx, "/training/program/delete", rawBody)
	return err
}

func isNumericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CalculateProgram asks the server for distance/duration/load of a plan.
func (c *Client) CalculateProgram(ctx context.Context, exercises []models.Exercise) (*models.CalculateResult, error) {
	data, err := c.gw.Post(ctx, "/training/program/calculate", map[string]any{"exercises": exercises})
	if err != nil {
		return nil, err
	}

	var result models.CalculateResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &models.NetworkError{Path: "/training/program/calculate", Err: fmt.Errorf("decoding calculate result: %w", err)}
	}
	return &result, nil
}

// EstimateProgram returns the estimated training load of a plan on a day.
func (c *Client) EstimateProgram(ctx context.Context, day string, exercises []models.Exercise) (int, error) {
	data, err := c.gw.Post(ctx, "/training/program/estimate", map[string]any{
		"day":       day,
		"exercises": exercises,
	})
	if err != nil {
		return 0, err
	}

	var result struct {
		TrainingLoad int `json:"trainingLoad"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, &models.NetworkError{Path: "/training/program/estimate", Err: fmt.Errorf("decoding estimate: %w", err)}
	}
	return result.TrainingLoad, nil
}
