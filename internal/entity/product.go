package entity

import (
	"github.com/google/uuid"
)

// db model; catalog lookups only, never written by this module
type Product struct {
	Id   uuid.UUID `json:"id" db:"id"`
	Code string    `json:"code" db:"code"`
	Name string    `json:"name" db:"name"`
}
