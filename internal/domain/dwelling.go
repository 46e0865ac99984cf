package domain

import "errors"

var (
	ErrDwellingNotFound = errors.New("dwelling not found")
	ErrDwellingExists   = errors.New("user already has a dwelling")
)

type Region struct {
	ID   int64
	Name string
}

type Commune struct {
	ID       int64
	Name     string
	RegionID int64
}

// Dwelling is stored with the region by name and the commune by id.
type Dwelling struct {
	ID          int64
	UserID      int64
	Region      string
	CommuneID   int64
	CommuneName string
	Occupants   int
	Area1       float64
	Area2       float64
}

// NewDwelling is a dwelling to create, with region and commune by name.
type NewDwelling struct {
	UserID    int64
	Region    string
	Commune   string
	Occupants int
	Area1     float64
	Area2     float64
}
