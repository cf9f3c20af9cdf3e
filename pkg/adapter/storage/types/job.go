package types

import (
	"time"
)

// Job is one queued unit of work claimed and mutated by the worker.
type Job struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ServerID   *int64     `gorm:"column:server_id;index"`
	SiteID     *string    `gorm:"column:site_id;size:36;index"`
	Module     string     `gorm:"column:module;size:50;not null"`
	Action     string     `gorm:"column:action;size:50;not null"`
	Params     *string    `gorm:"column:params;type:json"`
	Status     string     `gorm:"column:status;type:enum('pending','running','completed','failed');not null;default:pending;index"`
	Progress   int        `gorm:"column:progress;default:0"`
	Total      int        `gorm:"column:total;default:0"`
	Log        *string    `gorm:"column:log;type:text"`
	Result     *string    `gorm:"column:result;type:json"`
	Error      *string    `gorm:"column:error;size:1000"`
	CreatedAt  time.Time  `gorm:"column:created_at;type:datetime;default:CURRENT_TIMESTAMP;index"`
	StartedAt  *time.Time `gorm:"column:started_at;type:datetime"`
	FinishedAt *time.Time `gorm:"column:finished_at;type:datetime"`

	Server *Server `gorm:"foreignKey:ServerID"`
	Site   *Site   `gorm:"foreignKey:SiteID"`
}

func (Job) TableName() string {
	return "jobs"
}
