package model

import "time"

type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

func (e EnergyLevel) Valid() bool {
	return e == EnergyLow || e == EnergyMedium || e == EnergyHigh
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type Routine struct {
	ID              int64       `json:"id"`
	HouseholdID     *int64      `json:"household_id"`
	Name            string      `json:"name"`
	Category        string      `json:"category"`
	EnergyLevel     EnergyLevel `json:"energy_level"`
	DurationMinutes int         `json:"duration_minutes"`
	Difficulty      Difficulty  `json:"difficulty"`
	Tags            []string    `json:"tags"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
