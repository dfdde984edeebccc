// Package plan assembles the ordered flat exercise list the COROS program
// endpoints expect. The tree is encoded purely by numeric position: top-level
// entries are SortNoBase apart, children of a group sit SortNoChild past
// their parent and reference it through groupId.
package plan

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/claude/coroshub/internal/config"
	"github.com/claude/coroshub/internal/models"
)

// Step is one user-facing exercise step descriptor.
type Step struct {
	TargetType        string // open, time (seconds), distance (centimeters)
	TargetValue       int
	IntensityType     string // none, heart_rate, pace
	IntensityValue    int
	IntensityValueExt int
}

// IntervalGroup is a repeating training/recovery pair.
type IntervalGroup struct {
	Sets     int
	Training Step
	Recovery Step
}

// Inputs are the optional building blocks of a workout, emitted in fixed
// order: warmup, intervals, steady blocks, cooldown.
type Inputs struct {
	Warmup       *Step
	Intervals    *IntervalGroup
	SteadyBlocks []Step
	Cooldown     *Step
}

// The COROS API requires exercise IDs to be numeric strings. The counter is
// seeded from the wall clock so IDs stay unique across calls in the same
// process.
var nextID atomic.Int64

func init() {
	nextID.Store(time.Now().UnixMilli())
}

func newID() string {
	return strconv.FormatInt(nextID.Add(1), 10)
}

var exerciseTypes = map[string]models.ExerciseType{
	"warmup":   models.ExerciseWarmup,
	"training": models.ExerciseTraining,
	"cooldown": models.ExerciseCooldown,
	"recovery": models.ExerciseRecovery,
}

func mapTargetType(t string) models.TargetType {
	switch t {
	case "time":
		return models.TargetTime
	case "distance":
		return models.TargetDistance
	default:
		return models.TargetOpen
	}
}

func mapIntensityType(t string) models.IntensityType {
	switch t {
	case "heart_rate":
		return models.IntensityHeartRate
	case "pace":
		return models.IntensityPace
	default:
		return models.IntensityNone
	}
}

// BuildStep emits one exercise record from the (sport, kind) template and
// the step descriptor. Unknown template pairs fail with an error naming
// both the sport and the kind.
func BuildStep(sport models.SportType, kind string, step Step, sortNo int64) (models.Exercise, error) {
	tmpl, ok := config.LookupTemplate(sport, kind)
	if !ok {
		return models.Exercise{}, models.NewValidationError("no exercise template for sport %d, type %s", sport, kind)
	}

	return models.Exercise{
		ExerciseType:        exerciseTypes[kind],
		OriginID:            tmpl.OriginID,
		ID:                  newID(),
		Name:                tmpl.Name,
		Overview:            tmpl.Overview,
		SortNo:              sortNo,
		TargetType:          mapTargetType(step.TargetType),
		TargetValue:         step.TargetValue,
		IntensityType:       mapIntensityType(step.IntensityType),
		IntensityValue:      step.IntensityValue,
		IntensityValueExt:   step.IntensityValueExt,
		IsGroup:             false,
		Sets:                1,
		GroupID:             "0",
		SportType:           int(sport),
		Status:              config.ExerciseStatusActive,
		RestType:            config.RestTypeDefault,
		Equipment:           []int{},
		Part:                []int{},
		DistanceDisplayUnit: config.DistanceDisplayMiles,
	}, nil
}

// Build emits the full ordered exercise list. Empty inputs yield an empty
// list, not an error. Apart from ID generation the function is pure: the
// same inputs produce the same sortNo sequence and field values.
func Build(sport models.SportType, in Inputs) ([]models.Exercise, error) {
	exercises := []models.Exercise{}
	sortIdx := int64(0)

	if in.Warmup != nil {
		ex, err := BuildStep(sport, "warmup", *in.Warmup, sortIdx*config.SortNoBase)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
		sortIdx++
	}

	if in.Intervals != nil {
		group, children, err := buildIntervals(sport, *in.Intervals, sortIdx*config.SortNoBase)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, group)
		exercises = append(exercises, children...)
		sortIdx++
	}

	for _, block := range in.SteadyBlocks {
		ex, err := BuildStep(sport, "training", block, sortIdx*config.SortNoBase)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
		sortIdx++
	}

	if in.Cooldown != nil {
		ex, err := BuildStep(sport, "cooldown", *in.Cooldown, sortIdx*config.SortNoBase)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
		sortIdx++
	}

	return exercises, nil
}

// buildIntervals emits the group parent plus its training and recovery
// children. Groups are never themselves nested: the parent's groupId stays
// "0" and the children reference the parent's generated ID.
func buildIntervals(sport models.SportType, ivl IntervalGroup, groupSortNo int64) (models.Exercise, []models.Exercise, error) {
	if ivl.Sets < 1 {
		return models.Exercise{}, nil, models.NewValidationError("interval sets must be at least 1, got %d", ivl.Sets)
	}

	group := models.Exercise{
		ExerciseType:        models.ExerciseGroup,
		OriginID:            "0",
		ID:                  newID(),
		SortNo:              groupSortNo,
		TargetType:          models.TargetOpen,
		IntensityType:       models.IntensityNone,
		IsGroup:             true,
		Sets:                ivl.Sets,
		GroupID:             "0",
		SportType:           int(sport),
		Status:              config.ExerciseStatusActive,
		RestType:            config.RestTypeDefault,
		Equipment:           []int{},
		Part:                []int{},
		DistanceDisplayUnit: config.DistanceDisplayMiles,
	}

	training, err := BuildStep(sport, "training", ivl.Training, groupSortNo+config.SortNoChild)
	if err != nil {
		return models.Exercise{}, nil, err
	}
	training.GroupID = group.ID

	recovery, err := BuildStep(sport, "recovery", ivl.Recovery, groupSortNo+2*config.SortNoChild)
	if err != nil {
		return models.Exercise{}, nil, err
	}
	recovery.GroupID = group.ID

	return group, []models.Exercise{training, recovery}, nil
}
