package leave

import (
	"time"

	"github.com/google/uuid"
)

// Record is a single leave request. Name is the user-chosen identifier,
// unique across the whole store. Days are always recomputed from the date
// range at balance-mutation time, never stored.
type Record struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_leave_records_name"`
	Username string    `gorm:"type:varchar(60);not null;index:idx_leave_records_user_dates"`

	Type       string    `gorm:"type:varchar(20);not null"`
	FromDate   time.Time `gorm:"type:date;not null;index:idx_leave_records_user_dates"`
	ToDate     time.Time `gorm:"type:date;not null;index:idx_leave_records_user_dates"`
	ReqMessage string    `gorm:"type:text;not null"`

	Stage      string  `gorm:"type:varchar(20);not null;index:idx_leave_records_stage_status"`
	Status     string  `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_records_stage_status"`
	RejMessage *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "leave_records"
}

// Days returns the inclusive day count of the record's range.
func (r Record) Days() int {
	return daysInclusive(r.FromDate, r.ToDate)
}

func daysInclusive(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}
