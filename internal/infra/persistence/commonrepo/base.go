package commonrepo

import "time"

// Mode is the shared persistence header embedded by every po.
type Mode struct {
	ID        uint64    `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index;autoCreateTime"`
	UpdatedAt time.Time `gorm:"index;autoUpdateTime"`
}
