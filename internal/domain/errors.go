package domain

import "errors"

var (
	// ErrUnknownExamType is returned when the exam type is not in the catalog.
	ErrUnknownExamType = errors.New("unknown exam type")
	// ErrInvalidQuestionCount is returned when the requested count is out of range.
	ErrInvalidQuestionCount = errors.New("question count out of range")
	// ErrUnknownDomain is returned when a domain filter names a domain the exam does not have.
	ErrUnknownDomain = errors.New("unknown domain for exam type")
	// ErrNoQuestions indicates no approved questions exist for the exam type.
	ErrNoQuestions = errors.New("no questions available")
	// ErrQuestionSetMismatch indicates a submitted question ID could not be resolved.
	ErrQuestionSetMismatch = errors.New("question set mismatch")
	// ErrEmptySubmission is returned when a score request carries no question IDs.
	ErrEmptySubmission = errors.New("empty submission")
	// ErrMissingUser is returned when no caller identity is present.
	ErrMissingUser = errors.New("missing user identity")
	// ErrProgressNotFound indicates no progress record exists yet for the user and exam.
	ErrProgressNotFound = errors.New("progress not found")
)
