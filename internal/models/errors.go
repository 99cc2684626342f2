package models

import "errors"

var (
	ErrNotFound             = errors.New("lancamento: not found")
	ErrDuplicate            = errors.New("lancamento: duplicate description, due date and login")
	ErrKindMismatch         = errors.New("lancamento: kind differs from category kind")
	ErrCategoryUnresolvable = errors.New("lancamento: category unresolvable")
	ErrWrite                = errors.New("lancamento: write failed")
)
