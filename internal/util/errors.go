package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")

	ErrClassNotFound    = errors.New("class not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz not published or not accessible")
	ErrNotEnrolled      = errors.New("student not enrolled in this class")

	// Attempt-limit rejections carry distinct reasons: already passed vs
	// permanently blocked after four failed attempts.
	ErrQuizAlreadyPassed  = errors.New("quiz already passed, no further attempts allowed")
	ErrMaxAttemptsReached = errors.New("maximum failed attempts reached, quiz permanently failed")

	ErrAssistanceNotFound      = errors.New("assistance material not found")
	ErrAssistanceNotAccessible = errors.New("assistance level not accessible yet")
	ErrAssistanceRequired      = errors.New("an assistance level must be completed first")
	ErrSubmissionNotFound      = errors.New("submission not found")
	ErrEssayAwaitingReview     = errors.New("an essay is already awaiting review")

	// A second lock conflict on the progress row is surfaced as transient.
	ErrConcurrencyConflict = errors.New("concurrent update on progress record, please retry")
)
