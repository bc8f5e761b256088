package models

import (
	"time"

	"gorm.io/gorm"
)

// Prompt pools. Text and image pools feed two rounds each; the voting
// pool supplies voting captions; the instruction pool supplies the
// decoy-facing templates.
const (
	PoolText             = "text"
	PoolImage            = "image"
	PoolVoting           = "voting"
	PoolDecoyInstruction = "decoy_instruction"
)

type Prompt struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Pool      string         `json:"pool" gorm:"not null;index"`
	Text      string         `json:"text" gorm:"not null"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// PromptCard is the in-memory shape the round builder consumes.
type PromptCard struct {
	ID   uint
	Text string
}
