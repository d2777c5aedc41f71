package service

import (
	"context"
	"course_media_backend/internal/model"
	"course_media_backend/internal/repository"
	"course_media_backend/pkg/logger"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func seedEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint, status model.EnrollmentStatus, expiresAt time.Time) {
	t.Helper()
	e := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     status,
		EnrolledAt: time.Now().Add(-24 * time.Hour),
		ExpiresAt:  expiresAt,
		PaymentID:  "pay_test",
		AmountPaid: 99,
	}
	require.NoError(t, db.Create(e).Error)
}

func newEntitlementService(db *gorm.DB) *EntitlementService {
	// redis 为 nil：权益判定不依赖缓存，只影响热路径
	return NewEntitlementService(repository.NewEnrollmentRepository(db), nil)
}

func TestIsEntitled(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(30 * 24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name   string
		status model.EnrollmentStatus
		expiry time.Time
		want   bool
	}{
		{"active and unexpired", model.EnrollmentActive, future, true},
		{"active but expired", model.EnrollmentActive, past, false},
		{"cancelled", model.EnrollmentCancelled, future, false},
		{"refunded", model.EnrollmentRefunded, future, false},
		{"expired status", model.EnrollmentExpired, future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			seedEnrollment(t, db, 7, 1, tt.status, tt.expiry)
			s := newEntitlementService(db)
			assert.Equal(t, tt.want, s.IsEntitled(ctx, 7, 1))
		})
	}
}

func TestIsEntitledNoEnrollment(t *testing.T) {
	db := newTestDB(t)
	s := newEntitlementService(db)
	assert.False(t, s.IsEntitled(context.Background(), 7, 1))
}

func TestIsEntitledScopedToCourse(t *testing.T) {
	db := newTestDB(t)
	seedEnrollment(t, db, 7, 1, model.EnrollmentActive, time.Now().Add(time.Hour))
	s := newEntitlementService(db)

	assert.True(t, s.IsEntitled(context.Background(), 7, 1))
	assert.False(t, s.IsEntitled(context.Background(), 7, 2))
	assert.False(t, s.IsEntitled(context.Background(), 8, 1))
}

func TestIsEntitledZeroIDs(t *testing.T) {
	db := newTestDB(t)
	s := newEntitlementService(db)
	assert.False(t, s.IsEntitled(context.Background(), 0, 1))
	assert.False(t, s.IsEntitled(context.Background(), 7, 0))
}

// 存储故障时拒绝访问，绝不放行
func TestIsEntitledFailsClosed(t *testing.T) {
	db := newTestDB(t)
	seedEnrollment(t, db, 7, 1, model.EnrollmentActive, time.Now().Add(time.Hour))
	s := newEntitlementService(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.False(t, s.IsEntitled(context.Background(), 7, 1))
}

func TestEnrollmentLookup(t *testing.T) {
	db := newTestDB(t)
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	seedEnrollment(t, db, 7, 1, model.EnrollmentExpired, expiry)
	s := newEntitlementService(db)

	e := s.Enrollment(7, 1)
	require.NotNil(t, e)
	assert.Equal(t, model.EnrollmentExpired, e.Status)

	assert.Nil(t, s.Enrollment(7, 2))
}
