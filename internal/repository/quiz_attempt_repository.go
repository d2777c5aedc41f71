package repository

import (
	"course_media_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

// Create 插入首答记录。(user, course, quiz) 唯一索引兜底并发：
// 两个首答同时到达时输家拿到 gorm.ErrDuplicatedKey。
func (r *QuizAttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizAttemptRepository) Find(userID, courseID, quizID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.
		Where("user_id = ? AND course_id = ? AND quiz_id = ?", userID, courseID, quizID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizAttemptRepository) FindByUserAndCourse(userID, courseID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at").
		Find(&attempts).Error
	return attempts, err
}

// SetSecondShot 条件写入第二枪。WHERE 同时要求第一枪答错且第二枪槽位为空，
// 并发抢跑的第二次提交会落空（返回 false），绝不静默覆盖。
// 总分与通过标志由调用方从两枪完整重算后一并写入。
func (r *QuizAttemptRepository) SetSecondShot(attemptID uint, shot model.Shot, totalPoints float64, passed bool) (bool, error) {
	res := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND first_is_correct = ? AND second_selected_option IS NULL", attemptID, false).
		Updates(map[string]interface{}{
			"second_selected_option": shot.SelectedOption,
			"second_is_correct":      shot.IsCorrect,
			"second_duration":        shot.Duration,
			"total_points_earned":    totalPoints,
			"passed":                 passed,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
