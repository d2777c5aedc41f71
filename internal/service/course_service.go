package service

import (
	"course_media_backend/internal/model"
	"course_media_backend/internal/repository"
	"course_media_backend/internal/util"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CourseService 课程目录与详情（只读，CRUD 属外部系统）
type CourseService struct {
	Courses      *repository.CourseRepository
	Entitlements *EntitlementService
}

func NewCourseService(courses *repository.CourseRepository, entitlements *EntitlementService) *CourseService {
	return &CourseService{Courses: courses, Entitlements: entitlements}
}

// CourseSummary 公开目录条目，不含任何存储指针
type CourseSummary struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ImageCover     string  `json:"imageCover"`
	InstructorName string  `json:"instructorName"`
	Price          float64 `json:"price"`
	VideoCount     int64   `json:"videoCount"`
}

// ContentEntryView 内容条目。付费条目对未授权用户只露标题并标记 locked。
type ContentEntryView struct {
	ID           uint               `json:"id"`
	ContentType  model.ContentType  `json:"contentType"`
	Availability model.Availability `json:"availability"`
	Title        string             `json:"title"`
	Position     int                `json:"position"`
	Body         string             `json:"body,omitempty"`
	Locked       bool               `json:"locked"`
}

// VideoEntryView 视频条目，永不携带存储指针
type VideoEntryView struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Order    int     `json:"order"`
	// 题目数量即可，题面随播放进度另行下发
	QuizCount int `json:"quizCount"`
}

// CourseDetailView 课程详情
type CourseDetailView struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	ImageCover     string             `json:"imageCover"`
	InstructorName string             `json:"instructorName"`
	Price          float64            `json:"price"`
	Enrolled       bool               `json:"enrolled"`
	ExpiresAt      *time.Time         `json:"expiresAt,omitempty"`
	Videos         []VideoEntryView   `json:"videos"`
	Content        []ContentEntryView `json:"content"`
}

func (s *CourseService) ListCourses(page, limit int) ([]CourseSummary, int64, error) {
	courses, total, err := s.Courses.ListCourses(page, limit)
	if err != nil {
		return nil, 0, err
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}
	videoCounts, err := s.Courses.VideoCounts(courseIDs)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, CourseSummary{
			ID:             c.ID,
			Name:           c.Name,
			Description:    c.Description,
			ImageCover:     c.ImageCover,
			InstructorName: c.InstructorName,
			Price:          c.Price,
			VideoCount:     videoCounts[c.ID],
		})
	}
	return summaries, total, nil
}

// GetCourseDetail 面向已登录用户的课程详情。免费内容全量可见，
// 付费内容对未授权用户只露目录信息。
func (s *CourseService) GetCourseDetail(ctx context.Context, userID, courseID uint) (*CourseDetailView, error) {
	course, err := s.Courses.FindByIDWithAssets(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	entitled := s.Entitlements.IsEntitled(ctx, userID, courseID)

	view := &CourseDetailView{
		ID:             course.ID,
		Name:           course.Name,
		Description:    course.Description,
		ImageCover:     course.ImageCover,
		InstructorName: course.InstructorName,
		Price:          course.Price,
		Enrolled:       entitled,
		Videos:         make([]VideoEntryView, 0, len(course.Videos)),
		Content:        make([]ContentEntryView, 0, len(course.Content)),
	}

	if entitled {
		if e := s.Entitlements.Enrollment(userID, courseID); e != nil {
			view.ExpiresAt = &e.ExpiresAt
		}
	}

	for _, v := range course.Videos {
		view.Videos = append(view.Videos, VideoEntryView{
			ID:        v.ID,
			Title:     v.Title,
			Duration:  v.Duration,
			Order:     v.Order,
			QuizCount: len(v.Quizzes),
		})
	}

	for _, c := range course.Content {
		entry := ContentEntryView{
			ID:           c.ID,
			ContentType:  c.ContentType,
			Availability: c.Availability,
			Title:        c.Title,
			Position:     c.Position,
		}
		if c.IsFree() || entitled {
			entry.Body = c.Body
		} else {
			entry.Locked = true
		}
		view.Content = append(view.Content, entry)
	}

	return view, nil
}
