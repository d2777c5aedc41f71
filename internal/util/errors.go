package util

import "errors"

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrVideoNotFound     = errors.New("video not found")
	ErrContentNotFound   = errors.New("content not found")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrNotEntitled       = errors.New("access denied, please enroll first")
	ErrOriginNotAllowed  = errors.New("playback origin not allowed")
	ErrMissingStorageKey = errors.New("asset has no storage pointer configured")
	ErrAttemptsExhausted = errors.New("both attempts used")
	ErrInvalidOption     = errors.New("selectedOption must be between 0 and 3")
	ErrAttemptConflict   = errors.New("a concurrent submission was already recorded for this quiz")
	ErrUpstreamFetch     = errors.New("upstream storage fetch failed")
)
