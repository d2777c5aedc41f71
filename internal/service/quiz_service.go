package service

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/model"
	"course_media_backend/internal/repository"
	"course_media_backend/internal/util"
	"encoding/json"
	"errors"
	"sync"

	"gorm.io/gorm"
)

// SaveAnswerRequest 一次作答提交
type SaveAnswerRequest struct {
	CourseID       uint    `json:"courseId" binding:"required"`
	QuizID         uint    `json:"quizId" binding:"required"`
	SelectedOption *int    `json:"selectedOption" binding:"required"`
	Duration       float64 `json:"duration" binding:"required,gt=0"` // 秒
}

// QuizSnapshotView 首答时刻的题目快照
type QuizSnapshotView struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	PointsPossible float64  `json:"pointsPossible"`
}

// AttemptView 作答记录对外形态
type AttemptView struct {
	ID                uint             `json:"id"`
	CourseID          uint             `json:"courseId"`
	QuizID            uint             `json:"quizId"`
	QuizSnapshot      QuizSnapshotView `json:"quizSnapshot"`
	FirstShot         model.Shot       `json:"firstShot"`
	SecondShot        *model.Shot      `json:"secondShot,omitempty"`
	TotalPointsEarned float64          `json:"totalPointsEarned"`
	Passed            bool             `json:"passed"`
}

// QuizService 两枪作答状态机。
// 状态：NoAttempt → (首答对) FirstCorrect | (首答错) FirstWrongPendingSecond
// → (第二枪) SecondCorrect | SecondWrong。三个终态后再提交一律报错。
// 持久层的唯一索引与条件 UPDATE 保证同键并发提交串行化。
type QuizService struct {
	Attempts *repository.QuizAttemptRepository
	Courses  *repository.CourseRepository

	mu      sync.RWMutex
	scoring ScoringConfig
}

func NewQuizService(attempts *repository.QuizAttemptRepository, courses *repository.CourseRepository, cfg *config.Config) *QuizService {
	s := &QuizService{Attempts: attempts, Courses: courses}
	s.Reload(cfg)
	return s
}

// Reload 配置热加载回调（衰减常量）
func (s *QuizService) Reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoring = ScoringConfigFrom(cfg.Quiz)
}

func (s *QuizService) scoringConfig() ScoringConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoring
}

// SaveAnswer 记录一枪并重算总分。返回更新后的作答记录。
func (s *QuizService) SaveAnswer(userID uint, req SaveAnswerRequest) (*AttemptView, error) {
	selected := *req.SelectedOption
	if selected < 0 || selected >= util.QuizOptionCount {
		return nil, util.ErrInvalidOption
	}

	quiz, err := s.Courses.FindQuiz(req.CourseID, req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	attempt, err := s.Attempts.Find(userID, req.CourseID, req.QuizID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.recordFirstShot(userID, req, quiz, selected)
	case err != nil:
		return nil, err
	default:
		return s.recordSecondShot(attempt, quiz, selected, req.Duration)
	}
}

func (s *QuizService) recordFirstShot(userID uint, req SaveAnswerRequest, quiz *model.QuizQuestion, selected int) (*AttemptView, error) {
	shot := model.Shot{
		SelectedOption: selected,
		IsCorrect:      selected == quiz.CorrectAnswer,
		Duration:       req.Duration,
	}

	total, passed := Score(shot, nil, quiz.Points, s.scoringConfig())

	attempt := &model.QuizAttempt{
		UserID:   userID,
		CourseID: req.CourseID,
		QuizID:   req.QuizID,
		// 快照在此刻固化，之后编辑题目不影响本记录的评分
		SnapshotQuestion: quiz.Question,
		SnapshotOptions:  quiz.Options,
		PointsPossible:   quiz.Points,

		FirstSelectedOption: shot.SelectedOption,
		FirstIsCorrect:      shot.IsCorrect,
		FirstDuration:       shot.Duration,

		TotalPointsEarned: total,
		Passed:            passed,
	}

	if err := s.Attempts.Create(attempt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 同键首答并发抢跑，输家显式拒绝而非静默覆盖
			return nil, util.ErrAttemptConflict
		}
		return nil, err
	}

	return attemptView(attempt), nil
}

func (s *QuizService) recordSecondShot(attempt *model.QuizAttempt, quiz *model.QuizQuestion, selected int, duration float64) (*AttemptView, error) {
	if attempt.Exhausted() {
		return nil, util.ErrAttemptsExhausted
	}

	shot := model.Shot{
		SelectedOption: selected,
		IsCorrect:      selected == quiz.CorrectAnswer,
		Duration:       duration,
	}

	// 分值取自快照，总分从两枪完整重算
	total, passed := Score(attempt.FirstShot(), &shot, attempt.PointsPossible, s.scoringConfig())

	ok, err := s.Attempts.SetSecondShot(attempt.ID, shot, total, passed)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 条件 UPDATE 落空：另一个提交已占用第二枪槽位
		return nil, util.ErrAttemptsExhausted
	}

	updated, err := s.Attempts.Find(attempt.UserID, attempt.CourseID, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	return attemptView(updated), nil
}

// MyAnswers 调用者在一门课内的全部作答记录
func (s *QuizService) MyAnswers(userID, courseID uint) ([]AttemptView, error) {
	attempts, err := s.Attempts.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	views := make([]AttemptView, 0, len(attempts))
	for i := range attempts {
		views = append(views, *attemptView(&attempts[i]))
	}
	return views, nil
}

func attemptView(a *model.QuizAttempt) *AttemptView {
	var options []string
	if a.SnapshotOptions != "" {
		// 快照里的选项是 JSON 数组；坏数据按空处理，不中断读取
		_ = json.Unmarshal([]byte(a.SnapshotOptions), &options)
	}

	return &AttemptView{
		ID:       a.ID,
		CourseID: a.CourseID,
		QuizID:   a.QuizID,
		QuizSnapshot: QuizSnapshotView{
			Question:       a.SnapshotQuestion,
			Options:        options,
			PointsPossible: a.PointsPossible,
		},
		FirstShot:         a.FirstShot(),
		SecondShot:        a.SecondShot(),
		TotalPointsEarned: a.TotalPointsEarned,
		Passed:            a.Passed,
	}
}
