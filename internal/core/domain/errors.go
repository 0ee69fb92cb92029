package domain

import "errors"

var (
	// ErrAxisCountTooSmall is returned when an axis has fewer than two lines,
	// leaving no bin interval to divide by.
	ErrAxisCountTooSmall = errors.New("axis count too small")

	// ErrDegenerateGeometry is returned when corner points collapse onto each
	// other and an edge vector has no direction.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// ErrInvalidSurvey is returned when a survey lacks the fields needed to
// register or look it up.
var ErrInvalidSurvey = errors.New("invalid survey")

// ErrSurveyNotFound is returned when no survey is registered under an sdpath.
var ErrSurveyNotFound = errors.New("survey not found")
