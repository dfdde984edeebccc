// Package models holds the COROS Training Hub wire types shared by the
// auth, API client, and plan builder packages. Field names and integer
// enum values match the COROS API exactly; they cross the wire.
package models

import "encoding/json"

// Region selects which COROS deployment a session talks to.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
	RegionCN Region = "cn"
)

// SportType in program context.
type SportType int

const (
	SportRun  SportType = 1
	SportBike SportType = 2
)

// ExerciseType identifies a step within a workout.
type ExerciseType int

const (
	ExerciseGroup    ExerciseType = 0
	ExerciseWarmup   ExerciseType = 1
	ExerciseTraining ExerciseType = 2
	ExerciseCooldown ExerciseType = 3
	ExerciseRecovery ExerciseType = 4
)

// TargetType of an exercise step.
type TargetType int

const (
	TargetOpen     TargetType = 1
	TargetTime     TargetType = 2 // targetValue in seconds
	TargetDistance TargetType = 5 // targetValue in centimeters
)

// IntensityType of an exercise step.
type IntensityType int

const (
	IntensityNone      IntensityType = 0
	IntensityHeartRate IntensityType = 2 // BPM
	IntensityPace      IntensityType = 3 // pace encoding
)

// AuthToken is produced by login or loaded from the token store.
type AuthToken struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

// Valid reports whether both fields are present. A token missing either
// field is treated as no token at all.
func (t AuthToken) Valid() bool {
	return t.AccessToken != "" && t.UserID != ""
}

// Envelope is the wrapper around every COROS API response.
type Envelope struct {
	Result  string          `json:"result"`
	APICode string          `json:"apiCode"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// IsSuccess reports whether the envelope signals application-level success.
// Either code field equaling "0000" is sufficient, independent of the other.
func (e Envelope) IsSuccess() bool {
	return e.Result == "0000" || e.APICode == "0000"
}

// Code returns whichever status code field is non-empty, preferring result.
func (e Envelope) Code() string {
	if e.Result != "" {
		return e.Result
	}
	return e.APICode
}

// Exercise is a step within a workout plan. A record is a group parent iff
// IsGroup; its children are the records whose GroupID equals its ID. GroupID
// "0" means no parent. Exactly one level of nesting.
type Exercise struct {
	ExerciseType        ExerciseType  `json:"exerciseType"`
	OriginID            string        `json:"originId"`
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Overview            string        `json:"overview"`
	SortNo              int64         `json:"sortNo"`
	TargetType          TargetType    `json:"targetType"`
	TargetValue         int           `json:"targetValue"`
	IntensityType       IntensityType `json:"intensityType"`
	IntensityValue      int           `json:"intensityValue"`
	IntensityValueExt   int           `json:"intensityValueExtend"`
	IsGroup             bool          `json:"isGroup"`
	Sets                int           `json:"sets"`
	GroupID             string        `json:"groupId"`
	SportType           int           `json:"sportType"`
	Status              int           `json:"status"`
	RestType            int           `json:"restType"`
	RestValue           int           `json:"restValue"`
	Equipment           []int         `json:"equipment"`
	Part                []int         `json:"part"`
	DistanceDisplayUnit int           `json:"distanceDisplayUnit"`
}

// Program is a saved workout.
type Program struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SportType        SportType  `json:"sportType"`
	Overview         string     `json:"overview"`
	Essence          int        `json:"essence"` // training load
	TrainingLoad     int        `json:"trainingLoad"`
	Exercises        []Exercise `json:"exercises"`
	ExerciseBarChart []any      `json:"exerciseBarChart,omitempty"`
	ExerciseNum      int        `json:"exerciseNum"`
	Distance         int        `json:"distance"`
	Duration         int        `json:"duration"`
	CreateTimestamp  int64      `json:"createTimestamp,omitempty"`
	IDInPlan         int64      `json:"idInPlan,omitempty"`
}

// ProgramSummary is one row from the program query endpoint.
type ProgramSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SportType       SportType `json:"sportType"`
	Overview        string    `json:"overview"`
	Essence         int       `json:"essence"`
	TrainingLoad    int       `json:"trainingLoad"`
	CreateTimestamp int64     `json:"createTimestamp"`
}

// Load returns the training load, preferring essence when set.
func (p ProgramSummary) Load() int {
	if p.Essence != 0 {
		return p.Essence
	}
	return p.TrainingLoad
}

// SportData is the denormalized sport summary on a schedule entity.
type SportData struct {
	Name         string `json:"name"`
	SportType    int    `json:"sportType"`
	Distance     int    `json:"distance"`
	Duration     int    `json:"duration"`
	TrainingLoad int    `json:"trainingLoad"`
	HappenDay    int    `json:"happenDay"`
}

// ScheduleEntity is a workout scheduled on a specific day.
type ScheduleEntity struct {
	ID            string     `json:"id"`
	HappenDay     int        `json:"happenDay"` // YYYYMMDD
	IDInPlan      string     `json:"idInPlan"`
	PlanProgramID string     `json:"planProgramId"`
	SortNo        int64      `json:"sortNo"`
	ExecuteStatus int        `json:"executeStatus"`
	LabelID       string     `json:"labelId,omitempty"`
	SportData     *SportData `json:"sportData,omitempty"`
}

// SchedulePlan is the schedule query response: the training plan with its
// scheduled entities and the programs they reference.
type SchedulePlan struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	StartDay         int              `json:"startDay"`
	EndDay           int              `json:"endDay"`
	MaxPlanProgramID string           `json:"maxPlanProgramId"`
	Entities         []ScheduleEntity `json:"entities"`
	Programs         []Program        `json:"programs"`
}

// LoginData is the envelope payload of a successful login.
type LoginData struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

// CalculateResult is the payload of the program calculate endpoint.
type CalculateResult struct {
	Distance     int `json:"distance"`
	Duration     int `json:"duration"`
	TrainingLoad int `json:"trainingLoad"`
}
