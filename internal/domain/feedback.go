package domain

import (
	"errors"
	"time"
)

var (
	ErrAlreadyRatedToday = errors.New("user already submitted a rating today")
	ErrRatingNotFound    = errors.New("rating not found")
)

type CommentType string

const (
	CommentSuggestion  CommentType = "sugerencia"
	CommentProblem     CommentType = "problema"
	CommentImprovement CommentType = "mejora"
	CommentPraise      CommentType = "felicitacion"
	CommentOther       CommentType = "otro"
)

func (t CommentType) Valid() bool {
	switch t {
	case CommentSuggestion, CommentProblem, CommentImprovement, CommentPraise, CommentOther:
		return true
	}
	return false
}

type Comment struct {
	ID      int64
	UserID  int64
	Type    CommentType
	Message string
	Date    time.Time

	// Author fields are filled for admin listings only.
	AuthorName  string
	AuthorEmail string
}

type CommentStats struct {
	Total    int
	ByType   map[CommentType]int
	LastWeek int
}

type Rating struct {
	ID       int64
	UserID   int64
	Value    int
	Feedback string
	Date     time.Time

	AuthorName  string
	AuthorEmail string
}

type RatingStats struct {
	Average float64
	Total   int
	// Distribution[i] counts ratings with value i+1.
	Distribution [5]int
}
