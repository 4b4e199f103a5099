package util

import "errors"

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrUsernameTaken           = errors.New("username already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrCharacterNotFound       = errors.New("character not found")
	ErrCharacterExists         = errors.New("character already registered")
	ErrInvalidGoldPriority     = errors.New("goldPriority must be between 1 and 10")
	ErrRaidNotFound            = errors.New("raid not found")
	ErrUnknownPartyType        = errors.New("unknown party type")
	ErrGateCompletionNotFound  = errors.New("gate completion not found")
	ErrPartyCompletionNotFound = errors.New("party completion not found")
	ErrAlreadyCompleted        = errors.New("gate already completed")
	ErrNotCompleted            = errors.New("gate not completed")
	ErrCrossDifficultyConflict = errors.New("same gate already cleared on another difficulty this week")
	ErrStaleWeek               = errors.New("gate completion belongs to a past reset week")
	ErrDuplicateAccount        = errors.New("two characters of the same account in one party")
	ErrDuplicateCharacter      = errors.New("character listed twice in one party")
	ErrEmptyParty              = errors.New("party has no characters")
	ErrInvalidPartySize        = errors.New("party size does not fit the raid")
	ErrNotEligible             = errors.New("character not eligible for raid")
	ErrProviderUnavailable     = errors.New("character data provider unavailable")
)
