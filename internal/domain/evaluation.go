package domain

import (
	"errors"
	"time"
)

var (
	ErrEvaluationNotFound  = errors.New("evaluation not found")
	ErrDuplicateEvaluation = errors.New("an identical evaluation already exists")
	ErrUnknownReference    = errors.New("referenced fuel or solution does not exist")
)

// HeatingEvaluation is a saved insulation/heating scenario. Solution
// references are optional; a nil id means "no change to that element".
type HeatingEvaluation struct {
	ID                int64
	UserID            int64
	Area1             float64
	Area2             float64
	WindowArea1       float64
	WindowArea2       float64
	FuelID            int64
	AnnualConsumption float64
	WallSolution1ID   *int64
	WallSolution2ID   *int64
	RoofSolutionID    *int64
	WindowSolutionID  *int64
	Efficiency        float64
	Investment        float64
	AnnualSavings     float64
	Payback           float64
	CO2Reduction      float64
	CreatedAt         time.Time

	// Resolved catalog names, populated on reads.
	FuelName           *string
	WallSolution1Name  *string
	WallSolution2Name  *string
	RoofSolutionName   *string
	WindowSolutionName *string
}

type HeatingStats struct {
	Total         int64
	AvgEfficiency *float64
	AvgInvestment *float64
	AvgSavings    *float64
	AvgPayback    *float64
	AvgCO2        *float64
}

// WaterEvaluation is a saved water-fixture replacement scenario.
type WaterEvaluation struct {
	ID                int64
	UserID            int64
	WaterPrice        float64
	Consumption       int
	SewerService      *int
	Showers           int
	Sinks             int
	Toilets           int
	Dishwashers       int
	ShowerFixture     *int
	SinkFixture       *int
	ToiletFixture     *int
	DishwasherFixture *int
	SavingsM3PerMonth float64
	SavingsMoney      float64
	Investment        int
	PaybackMonths     int
	BathtubEquivalent float64
	CreatedAt         time.Time
}
