package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate states
const (
	CertificateActive  = "active"
	CertificateExpired = "expired"
	CertificateRevoked = "revoked"
)

// CertificateValidityDays is how long an issued certificate stays valid.
const CertificateValidityDays = 365

// Certificate is issued exactly once per (user_id, course_id) when a course
// reaches 100% completion. The composite unique index is what serializes
// concurrent issuance attempts: the second insert fails and falls back to a
// read of the winner's row.
type Certificate struct {
	gorm.Model
	UserID        uint      `json:"user_id" gorm:"uniqueIndex:idx_certificate_user_course;not null"`
	CourseID      uint      `json:"course_id" gorm:"uniqueIndex:idx_certificate_user_course;not null"`
	CertificateID string    `json:"certificate_id" gorm:"unique;not null"` // opaque token
	IssuedDate    time.Time `json:"issued_date"`
	ExpiryDate    time.Time `json:"expiry_date"` // issued_date + 365 days
	Status        string    `json:"status" gorm:"default:'active'"` // active, expired, revoked
}
