package services

import "errors"

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrPoolNotFound        = errors.New("pool not found")
	ErrMatchupNotFound     = errors.New("matchup not found")
	ErrSeasonNotFound      = errors.New("season has no competitions")
	ErrTeamNotFound        = errors.New("team not found")

	// Ошибки валидации
	ErrValidationFailed    = errors.New("validation failed")
	ErrInvalidScore        = errors.New("scores must be non-negative and a bracket game needs a winner")
	ErrTeamInMultiplePools = errors.New("team appears in more than one pool")

	// Нарушение порядка операций
	ErrPoolHasResults      = errors.New("pool already has recorded results")
	ErrBracketNotSupported = errors.New("competition format has no bracket")
	ErrPoolsNotSupported   = errors.New("competition format has no pools")
	ErrBracketInProgress   = errors.New("bracket already has recorded results")
	ErrNotEnoughPools      = errors.New("pool-to-bracket competition needs at least two pools")
	ErrNotEnoughTeams      = errors.New("bracket needs at least two teams")
	ErrMatchupNotReady     = errors.New("matchup does not have both teams yet")
	ErrResultLocked        = errors.New("the next bracket game has already started")

	// Конфликты
	ErrCompetitionConflict = errors.New("competition already exists")
	ErrTeamConflict        = errors.New("team with this id or name already exists")
)
