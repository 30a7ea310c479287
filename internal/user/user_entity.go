package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	// Lookups compare LOWER(username), so the unique index covers the
	// lower-cased expression or a concurrent case-variant create would slip
	// past the pre-insert check.
	Username  string `gorm:"type:varchar(60);not null;uniqueIndex:uq_users_username,expression:lower(username)"`
	Password  string `gorm:"type:text;not null"`
	FirstName string `gorm:"type:varchar(100);not null"`
	LastName  string `gorm:"type:varchar(100);not null"`
	Role      string `gorm:"type:varchar(20);not null;default:'FACULTY'"`

	// Remaining leave days per type. Mutated only through the balance ledger.
	CasualLeave   int `gorm:"type:int;not null;default:12"`
	MedicalLeave  int `gorm:"type:int;not null;default:10"`
	EarnedLeave   int `gorm:"type:int;not null;default:15"`
	AcademicLeave int `gorm:"type:int;not null;default:15"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
