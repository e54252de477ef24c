package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VideoRecord is the row stored for each published lesson video. The first
// quiz question is denormalized into the quiz_* columns, which predate
// multi-question lessons.
type VideoRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	VideoURL     string         `gorm:"column:video_url;not null" json:"video_url"`
	Role         string         `gorm:"not null;index" json:"role"`
	QuizQuestion *string        `gorm:"column:quiz_question" json:"quiz_question,omitempty"`
	QuizOptions  datatypes.JSON `gorm:"column:quiz_options;type:jsonb" json:"quiz_options,omitempty"`
	QuizAnswer   *string        `gorm:"column:quiz_answer" json:"quiz_answer,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (VideoRecord) TableName() string { return "videos" }
