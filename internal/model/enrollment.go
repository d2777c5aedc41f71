package model

import "time"

// EnrollmentStatus 报名状态
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentExpired   EnrollmentStatus = "expired"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
	EnrollmentRefunded  EnrollmentStatus = "refunded"
)

// Enrollment 付费报名记录。由支付确认流程（外部）创建，
// 本服务只读：权益判定 = status==active 且 expiresAt 在未来。
// 每个 (user, course) 至多一条。
// swagger:model Enrollment
type Enrollment struct {
	BaseModel

	UserID     uint             `gorm:"not null;uniqueIndex:idx_user_course" json:"userId"`
	CourseID   uint             `gorm:"not null;uniqueIndex:idx_user_course" json:"courseId"`
	Status     EnrollmentStatus `gorm:"size:20;not null;default:active;index:idx_status_expiry" json:"status"`
	EnrolledAt time.Time        `json:"enrolledAt"`
	ExpiresAt  time.Time        `gorm:"index:idx_status_expiry" json:"expiresAt"`
	PaymentID  string           `gorm:"size:255" json:"paymentId"`
	AmountPaid float64          `json:"amountPaid"`
	Currency   string           `gorm:"size:10;default:usd" json:"currency"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// IsActive 在 now 时刻是否授予访问权
func (e *Enrollment) IsActive(now time.Time) bool {
	return e.Status == EnrollmentActive && e.ExpiresAt.After(now)
}
