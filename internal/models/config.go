package models

import (
	"github.com/uptrace/bun"
)

// Config is a runtime tunable stored as a string and parsed by the reader.
type Config struct {
	bun.BaseModel `bun:"table:config"`
	Key           string `bun:"key,pk" json:"key"`
	Value         string `bun:"value" json:"value"`
	Description   string `bun:"description" json:"description"`
}
