package world

import "errors"

var (
	ErrZoneNotFound      = errors.New("zone not found")
	ErrPlayerExists      = errors.New("player already in zone")
	ErrNestNotFound      = errors.New("nest not found")
	ErrNestFull          = errors.New("nest at capacity")
	ErrTemplateNotFound  = errors.New("enemy template not found")
	ErrEnemyExists       = errors.New("enemy already exists")
	ErrCharacterConflict = errors.New("character already active in zone")
)
