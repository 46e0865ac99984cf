package domain

import "errors"

var (
	ErrUnknownTable   = errors.New("table is not browsable")
	ErrUnknownColumn  = errors.New("column is not mutable")
	ErrRecordNotFound = errors.New("record not found")
	ErrNothingToWrite = errors.New("no fields to update")
	ErrNotInsertable  = errors.New("table does not accept new rows")
)

// UserPatch carries an admin's partial update of a user. Nil means unchanged.
type UserPatch struct {
	Email        *string
	Name         *string
	Role         *Role
	PasswordHash *string
}

func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.Role == nil && p.PasswordHash == nil
}

type SystemStats struct {
	Users struct {
		Total    int64
		Admins   int64
		Regular  int64
		LastWeek int64
	}
	Comments struct {
		Total    int64
		LastWeek int64
	}
	Ratings struct {
		Total    int64
		Average  *float64
		LastWeek int64
	}
	Evaluations struct {
		Heating int64
		Water   int64
	}
}

type RegionCount struct {
	Region string
	Users  int64
}

type EvaluationCounts struct {
	Heating int64
	Water   int64
}

// SavingsAverage is the mean positive savings of one evaluation kind. Average
// is nil when no evaluation of that kind reports savings.
type SavingsAverage struct {
	Kind    string
	Average *float64
}

type MeasureCount struct {
	Measure string
	Count   int64
}

type MonthCount struct {
	Month string // YYYY-MM
	Count int64
}

// Dashboard bundles the admin charts in one response.
type Dashboard struct {
	UsersByRegion []RegionCount
	Evaluations   EvaluationCounts
	Savings       []SavingsAverage
	Ratings       [5]int // index 0 holds the 1-star count
	Measures      []MeasureCount
	Signups       []MonthCount
}

// TableRows is a generic listing from the admin table browser.
type TableRows struct {
	Columns []string
	Rows    []map[string]any
}
