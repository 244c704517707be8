package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// LogType discriminates the kind of wellness log and therefore the
// shape of its details payload.
type LogType string

const (
	LogTypeWater    LogType = "water"
	LogTypeSleep    LogType = "sleep"
	LogTypeExercise LogType = "exercise"
	LogTypeMood     LogType = "mood"
)

// AllLogTypes lists every valid log type.
var AllLogTypes = []LogType{LogTypeWater, LogTypeSleep, LogTypeExercise, LogTypeMood}

// Valid reports whether t is one of the known log types.
func (t LogType) Valid() bool {
	switch t {
	case LogTypeWater, LogTypeSleep, LogTypeExercise, LogTypeMood:
		return true
	}
	return false
}

// WellnessLog represents a single wellness log entry owned by a user.
type WellnessLog struct {
	// ID is the unique identifier of the log entry.
	ID string `json:"id" db:"id"`

	// UserID references the owning user. Every log belongs to exactly
	// one user; all reads and mutations are scoped to the owner.
	UserID string `json:"userId" db:"user_id"`

	// Date is the moment the log refers to. Stamped to the current
	// time at creation.
	Date time.Time `json:"date" db:"date"`

	// Type discriminates the details payload.
	Type LogType `json:"type" db:"type"`

	// Value is a required scalar carried for wire compatibility.
	// Clients always send it; nothing on the server interprets it.
	Value float64 `json:"value" db:"value"`

	// Details is the variant payload for Type.
	Details LogDetails `json:"details,omitempty" db:"details"`

	// CreatedAt is the timestamp when the entry was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the entry.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// wellnessLogJSON mirrors WellnessLog with raw details, so the variant can
// be decoded once the discriminator is known.
type wellnessLogJSON struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Date      time.Time       `json:"date"`
	Type      LogType         `json:"type"`
	Value     float64         `json:"value"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// UnmarshalJSON decodes the log and resolves the details variant from the
// type discriminator.
func (l *WellnessLog) UnmarshalJSON(data []byte) error {
	var raw wellnessLogJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = WellnessLog{
		ID:        raw.ID,
		UserID:    raw.UserID,
		Date:      raw.Date,
		Type:      raw.Type,
		Value:     raw.Value,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	if len(raw.Details) == 0 {
		return nil
	}

	details, err := DecodeDetails(raw.Type, raw.Details)
	if err != nil {
		return err
	}
	l.Details = details
	return nil
}

// LogDetails is the variant payload of a WellnessLog, one implementation
// per LogType. Each variant carries only its own fields and knows how to
// validate them, so the type switch on LogType lives in exactly one place
// (DecodeDetails) instead of being repeated at every call site.
type LogDetails interface {
	// LogType returns the discriminator this payload belongs to.
	LogType() LogType
	// Validate checks the variant's field rules.
	Validate() error
}

// WaterDetails records water intake.
type WaterDetails struct {
	// Amount is the volume consumed, in milliliters.
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (WaterDetails) LogType() LogType { return LogTypeWater }

func (d WaterDetails) Validate() error { return validateDetails(d) }

// SleepDetails records a sleep interval.
type SleepDetails struct {
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
}

func (SleepDetails) LogType() LogType { return LogTypeSleep }

func (d SleepDetails) Validate() error { return validateDetails(d) }

// ExerciseDetails records an exercise session.
type ExerciseDetails struct {
	ExerciseType string `json:"exerciseType" validate:"required"`

	// Duration is the session length, in minutes.
	Duration float64 `json:"duration" validate:"required,gt=0"`
}

func (ExerciseDetails) LogType() LogType { return LogTypeExercise }

func (d ExerciseDetails) Validate() error { return validateDetails(d) }

// MoodDetails records a mood rating with optional notes.
type MoodDetails struct {
	// Rating is the mood score on a 1-5 scale.
	Rating int `json:"rating" validate:"required,min=1,max=5"`

	Notes string `json:"notes,omitempty"`
}

func (MoodDetails) LogType() LogType { return LogTypeMood }

func (d MoodDetails) Validate() error { return validateDetails(d) }

var detailsValidator = validator.New(validator.WithRequiredStructEnabled())

func validateDetails(d LogDetails) error {
	if err := detailsValidator.Struct(d); err != nil {
		return fmt.Errorf("invalid %s details: %w", d.LogType(), err)
	}
	return nil
}

// DecodeDetails parses raw JSON into the details variant for logType and
// validates it. It fails on an unknown log type, malformed JSON, or a
// payload that violates the variant's field rules.
func DecodeDetails(logType LogType, raw json.RawMessage) (LogDetails, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing details for type %q", logType)
	}

	var details LogDetails
	switch logType {
	case LogTypeWater:
		var d WaterDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("invalid %s details: %w", logType, err)
		}
		details = d
	case LogTypeSleep:
		var d SleepDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("invalid %s details: %w", logType, err)
		}
		details = d
	case LogTypeExercise:
		var d ExerciseDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("invalid %s details: %w", logType, err)
		}
		details = d
	case LogTypeMood:
		var d MoodDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("invalid %s details: %w", logType, err)
		}
		details = d
	default:
		return nil, fmt.Errorf("unknown log type %q", logType)
	}

	if err := details.Validate(); err != nil {
		return nil, err
	}
	return details, nil
}
