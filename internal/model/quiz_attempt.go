package model

// Shot 一次作答（第一枪或第二枪）
type Shot struct {
	SelectedOption int     `json:"selectedOption"`
	IsCorrect      bool    `json:"isCorrect"`
	Duration       float64 `json:"duration"` // 秒
}

// QuizAttempt 每个 (user, course, quiz) 的两次作答记录。
// 创建于首次提交，永不删除。第二枪只有在第一枪答错时才允许写入，
// 由带条件的 UPDATE 保证（见 QuizAttemptRepository.SetSecondShot）。
// totalPointsEarned/passed 每次写入时从两枪完整重算，绝不增量修补。
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel

	UserID   uint `gorm:"not null;uniqueIndex:idx_user_course_quiz" json:"userId"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_user_course_quiz;index" json:"courseId"`
	QuizID   uint `gorm:"not null;uniqueIndex:idx_user_course_quiz" json:"quizId"`

	// 首次作答时的题目快照，后续改题不影响既有评分
	SnapshotQuestion string  `gorm:"type:text" json:"snapshotQuestion"`
	SnapshotOptions  string  `gorm:"type:json" json:"snapshotOptions"`
	PointsPossible   float64 `json:"pointsPossible"`

	FirstSelectedOption int     `json:"-"`
	FirstIsCorrect      bool    `json:"-"`
	FirstDuration       float64 `json:"-"`

	// 第二枪未发生时整组为 NULL
	SecondSelectedOption *int     `json:"-"`
	SecondIsCorrect      *bool    `json:"-"`
	SecondDuration       *float64 `json:"-"`

	TotalPointsEarned float64 `json:"totalPointsEarned"`
	Passed            bool    `json:"passed"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// FirstShot 第一枪，创建记录时必有
func (a *QuizAttempt) FirstShot() Shot {
	return Shot{
		SelectedOption: a.FirstSelectedOption,
		IsCorrect:      a.FirstIsCorrect,
		Duration:       a.FirstDuration,
	}
}

// SecondShot 第二枪，未发生时返回 nil
func (a *QuizAttempt) SecondShot() *Shot {
	if a.SecondSelectedOption == nil || a.SecondIsCorrect == nil || a.SecondDuration == nil {
		return nil
	}
	return &Shot{
		SelectedOption: *a.SecondSelectedOption,
		IsCorrect:      *a.SecondIsCorrect,
		Duration:       *a.SecondDuration,
	}
}

// Exhausted 是否还能继续作答：第一枪答对即终态，第二枪打过也是终态
func (a *QuizAttempt) Exhausted() bool {
	return a.FirstIsCorrect || a.SecondShot() != nil
}
