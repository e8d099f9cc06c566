package domain

import "errors"

var (
	// ErrPlayNotFound is returned when a play-through id is unknown or already ended.
	ErrPlayNotFound = errors.New("play-through not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrBankTooSmall is returned when a bank holds fewer unique questions than one level needs.
	ErrBankTooSmall = errors.New("question bank too small for a single level")
	// ErrEmptyQuestion flags a bank entry without question text.
	ErrEmptyQuestion = errors.New("question text is empty")
	// ErrAnswerNotInOptions flags a bank entry whose answer matches none of its options.
	ErrAnswerNotInOptions = errors.New("answer not found among options")
	// ErrAmbiguousAnswer flags a bank entry whose answer matches more than one option.
	ErrAmbiguousAnswer = errors.New("answer matches more than one option")
)
