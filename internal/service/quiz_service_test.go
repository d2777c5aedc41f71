package service

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/model"
	"course_media_backend/internal/repository"
	"course_media_backend/internal/util"
	"course_media_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testQuizConfig() *config.Config {
	return &config.Config{
		Quiz: config.QuizConfig{FullPointsTime: 7, MaxTimeFirst: 30, MaxTimeSecond: 20},
	}
}

// seedQuiz 建一门课、一个视频和一道10分题，正确答案是选项1
func seedQuiz(t *testing.T, db *gorm.DB) *model.QuizQuestion {
	t.Helper()

	course := &model.Course{Name: "Go 后端实战", Price: 99}
	require.NoError(t, db.Create(course).Error)

	video := &model.VideoAsset{CourseID: course.ID, Title: "第一讲", StorageKey: "videos/1.mp4", Order: 1}
	require.NoError(t, db.Create(video).Error)

	quiz := &model.QuizQuestion{
		VideoID:       video.ID,
		Question:      "切片的底层是什么？",
		Options:       `["映射","数组","链表","栈"]`,
		CorrectAnswer: 1,
		Points:        10,
	}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

func newQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(
		repository.NewQuizAttemptRepository(db),
		repository.NewCourseRepository(db),
		testQuizConfig(),
	)
}

func intPtr(v int) *int { return &v }

func submit(quiz *model.QuizQuestion, courseID uint, option int, duration float64) SaveAnswerRequest {
	return SaveAnswerRequest{
		CourseID:       courseID,
		QuizID:         quiz.ID,
		SelectedOption: intPtr(option),
		Duration:       duration,
	}
}

func TestSaveAnswerFirstShotCorrect(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	courseID := uint(1)

	view, err := s.SaveAnswer(7, submit(quiz, courseID, 1, 5))
	require.NoError(t, err)

	assert.InDelta(t, 10, view.TotalPointsEarned, 1e-9)
	assert.True(t, view.Passed)
	assert.True(t, view.FirstShot.IsCorrect)
	assert.Nil(t, view.SecondShot)
	assert.Equal(t, "切片的底层是什么？", view.QuizSnapshot.Question)
	assert.Len(t, view.QuizSnapshot.Options, 4)

	// 第一枪答对即终态，第二次提交必须拒绝
	_, err = s.SaveAnswer(7, submit(quiz, courseID, 2, 3))
	assert.ErrorIs(t, err, util.ErrAttemptsExhausted)
}

func TestSaveAnswerSecondShotDecay(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	courseID := uint(1)

	view, err := s.SaveAnswer(7, submit(quiz, courseID, 0, 3))
	require.NoError(t, err)
	assert.Zero(t, view.TotalPointsEarned)
	assert.False(t, view.Passed)

	// 规格场景：第二枪10秒答对 → maxSecond=5，≈3.85 分
	view, err = s.SaveAnswer(7, submit(quiz, courseID, 1, 10))
	require.NoError(t, err)
	assert.InDelta(t, 3.846, view.TotalPointsEarned, 0.001)
	assert.True(t, view.Passed)
	require.NotNil(t, view.SecondShot)
	assert.True(t, view.SecondShot.IsCorrect)

	// 两枪打完是终态
	_, err = s.SaveAnswer(7, submit(quiz, courseID, 1, 2))
	assert.ErrorIs(t, err, util.ErrAttemptsExhausted)
}

func TestSaveAnswerBothWrong(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	courseID := uint(1)

	_, err := s.SaveAnswer(7, submit(quiz, courseID, 0, 3))
	require.NoError(t, err)

	view, err := s.SaveAnswer(7, submit(quiz, courseID, 2, 4))
	require.NoError(t, err)
	assert.Zero(t, view.TotalPointsEarned)
	assert.False(t, view.Passed)

	_, err = s.SaveAnswer(7, submit(quiz, courseID, 1, 1))
	assert.ErrorIs(t, err, util.ErrAttemptsExhausted)
}

// 评分始终使用首答时的快照：之后改题不影响既有记录
func TestSaveAnswerUsesSnapshotPoints(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	courseID := uint(1)

	_, err := s.SaveAnswer(7, submit(quiz, courseID, 0, 3))
	require.NoError(t, err)

	// 讲师把分值改成100
	require.NoError(t, db.Model(&model.QuizQuestion{}).Where("id = ?", quiz.ID).Update("points", 100).Error)

	view, err := s.SaveAnswer(7, submit(quiz, courseID, 1, 3))
	require.NoError(t, err)
	// 快照分值10 → 第二枪满分5，而不是50
	assert.InDelta(t, 5, view.TotalPointsEarned, 1e-9)
	assert.InDelta(t, 10, view.QuizSnapshot.PointsPossible, 1e-9)
}

func TestSaveAnswerValidation(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)

	t.Run("option out of range", func(t *testing.T) {
		_, err := s.SaveAnswer(7, submit(quiz, 1, 4, 5))
		assert.ErrorIs(t, err, util.ErrInvalidOption)
		_, err = s.SaveAnswer(7, submit(quiz, 1, -1, 5))
		assert.ErrorIs(t, err, util.ErrInvalidOption)
	})

	t.Run("quiz not found", func(t *testing.T) {
		req := submit(quiz, 1, 1, 5)
		req.QuizID = 9999
		_, err := s.SaveAnswer(7, req)
		assert.ErrorIs(t, err, util.ErrQuizNotFound)
	})

	t.Run("quiz from another course", func(t *testing.T) {
		req := submit(quiz, 1, 1, 5)
		req.CourseID = 42
		_, err := s.SaveAnswer(7, req)
		assert.ErrorIs(t, err, util.ErrQuizNotFound)
	})
}

// 条件 UPDATE 兜底并发：第二枪槽位被占后写入必须落空
func TestSetSecondShotConditionalWrite(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	repo := repository.NewQuizAttemptRepository(db)

	_, err := s.SaveAnswer(7, submit(quiz, 1, 0, 3))
	require.NoError(t, err)
	attempt, err := repo.Find(7, 1, quiz.ID)
	require.NoError(t, err)

	shot := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 2}
	ok, err := repo.SetSecondShot(attempt.ID, shot, 5, true)
	require.NoError(t, err)
	assert.True(t, ok)

	// 槽位已占，再写落空
	ok, err = repo.SetSecondShot(attempt.ID, shot, 5, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

// 第一枪答对的记录不允许补第二枪
func TestSetSecondShotRejectsAfterCorrectFirst(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	repo := repository.NewQuizAttemptRepository(db)

	_, err := s.SaveAnswer(7, submit(quiz, 1, 1, 5))
	require.NoError(t, err)
	attempt, err := repo.Find(7, 1, quiz.ID)
	require.NoError(t, err)

	ok, err := repo.SetSecondShot(attempt.ID, model.Shot{SelectedOption: 2, Duration: 1}, 0, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

// 同键并发首答：唯一索引让输家拿到明确冲突，而不是覆盖赢家
func TestCreateAttemptDuplicateKey(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	repo := repository.NewQuizAttemptRepository(db)

	build := func() *model.QuizAttempt {
		return &model.QuizAttempt{
			UserID: 7, CourseID: 1, QuizID: quiz.ID,
			SnapshotQuestion: quiz.Question, SnapshotOptions: quiz.Options, PointsPossible: quiz.Points,
			FirstSelectedOption: 1, FirstIsCorrect: true, FirstDuration: 5,
			TotalPointsEarned: 10, Passed: true,
		}
	}

	require.NoError(t, repo.Create(build()))
	err := repo.Create(build())
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMyAnswers(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)

	_, err := s.SaveAnswer(7, submit(quiz, 1, 0, 3))
	require.NoError(t, err)
	_, err = s.SaveAnswer(7, submit(quiz, 1, 1, 6))
	require.NoError(t, err)

	views, err := s.MyAnswers(7, 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, quiz.ID, views[0].QuizID)
	require.NotNil(t, views[0].SecondShot)
	assert.InDelta(t, 5, views[0].TotalPointsEarned, 1e-9)

	// 其他用户看不到
	views, err = s.MyAnswers(8, 1)
	require.NoError(t, err)
	assert.Empty(t, views)
}

// 重放相同的两枪数据重算，结果必须一致
func TestRecomputeIdempotence(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	repo := repository.NewQuizAttemptRepository(db)

	_, err := s.SaveAnswer(7, submit(quiz, 1, 0, 3))
	require.NoError(t, err)
	_, err = s.SaveAnswer(7, submit(quiz, 1, 1, 10))
	require.NoError(t, err)

	attempt, err := repo.Find(7, 1, quiz.ID)
	require.NoError(t, err)

	total, passed := Score(attempt.FirstShot(), attempt.SecondShot(), attempt.PointsPossible, s.scoringConfig())
	assert.InDelta(t, attempt.TotalPointsEarned, total, 1e-9)
	assert.Equal(t, attempt.Passed, passed)
}

// 作答记录的时间戳应随写入推进（回归：条件 UPDATE 不应跳过 updated_at）
func TestSecondShotTouchesRecord(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	s := newQuizService(db)
	repo := repository.NewQuizAttemptRepository(db)

	_, err := s.SaveAnswer(7, submit(quiz, 1, 0, 3))
	require.NoError(t, err)
	before, err := repo.Find(7, 1, quiz.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = s.SaveAnswer(7, submit(quiz, 1, 1, 6))
	require.NoError(t, err)

	after, err := repo.Find(7, 1, quiz.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt) || after.UpdatedAt.Equal(before.UpdatedAt))
	require.NotNil(t, after.SecondShot())
}
