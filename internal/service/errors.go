package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternalServer       = errors.New("internal server error")

	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidDrawing  = errors.New("invalid drawing data")

	ErrInvalidXPAmount  = errors.New("xp amount out of range")
	ErrInvalidXPSource  = errors.New("unknown xp source")
	ErrColorLocked      = errors.New("color is not unlocked")
	ErrToolLocked       = errors.New("tool is not unlocked")
	ErrMinigameNotFound = errors.New("minigame not found")
	ErrMinigameLocked   = errors.New("minigame is not unlocked")
)
