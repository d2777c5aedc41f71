package service

import (
	"course_media_backend/internal/model"
	"course_media_backend/internal/repository"
	"course_media_backend/pkg/logger"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 正向权益缓存的有效期。退款/取消最迟在这个窗口后生效；
// 缓存只存肯定结果，任何缓存故障都不会放行。
const entitlementCacheTTL = 30 * time.Second

// EntitlementService 回答"该用户此刻能否访问这门付费课程"。
// 只读，可任意并发。数据库故障时按未授权处理：
// 付费内容的保密性优先于可用性。
type EntitlementService struct {
	Enrollments *repository.EnrollmentRepository
	Redis       *redis.Client // 可为 nil（测试环境）
}

func NewEntitlementService(enrollments *repository.EnrollmentRepository, rdb *redis.Client) *EntitlementService {
	return &EntitlementService{Enrollments: enrollments, Redis: rdb}
}

func entitlementCacheKey(userID, courseID uint) string {
	return fmt.Sprintf("entitlement:%d:%d", userID, courseID)
}

// IsEntitled status==active 且 expiresAt 在未来
func (s *EntitlementService) IsEntitled(ctx context.Context, userID, courseID uint) bool {
	if userID == 0 || courseID == 0 {
		return false
	}

	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, entitlementCacheKey(userID, courseID)).Result()
		if err == nil && val == "1" {
			return true
		}
		// 缓存未命中或故障都落库
	}

	_, err := s.Enrollments.FindActive(userID, courseID, time.Now())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// 故障关闭：存储不可用时拒绝访问
			logger.Log.Error("entitlement lookup failed, denying access",
				zap.Uint("userId", userID), zap.Uint("courseId", courseID), zap.Error(err))
		}
		return false
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, entitlementCacheKey(userID, courseID), "1", entitlementCacheTTL).Err(); err != nil {
			logger.Log.Warn("entitlement cache write failed", zap.Error(err))
		}
	}

	return true
}

// Enrollment 返回报名记录原文（课程详情页展示有效期用），无记录时返回 nil
func (s *EntitlementService) Enrollment(userID, courseID uint) *model.Enrollment {
	e, err := s.Enrollments.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil
	}
	return e
}
