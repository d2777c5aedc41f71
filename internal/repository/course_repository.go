package repository

import (
	"course_media_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDWithAssets 课程详情，含视频系列与内容条目（按序）
func (r *CourseRepository) FindByIDWithAssets(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("video_assets.sort_order")
		}).
		Preload("Videos.Quizzes").
		Preload("Content", func(db *gorm.DB) *gorm.DB {
			return db.Order("content_assets.position")
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListCourses(page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	if err := r.DB.Model(&model.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

// VideoCounts 一次查询拿到各课程的视频数，目录页避免逐课程 COUNT
func (r *CourseRepository) VideoCounts(courseIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uint
		Total    int64
	}
	err := r.DB.Model(&model.VideoAsset{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}

// FindVideo 按稳定 ID 定位课程视频，课程不匹配视为不存在
func (r *CourseRepository) FindVideo(courseID, videoID uint) (*model.VideoAsset, error) {
	var video model.VideoAsset
	err := r.DB.Where("id = ? AND course_id = ?", videoID, courseID).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// FindContent 按稳定 ID 定位内容条目
func (r *CourseRepository) FindContent(courseID, contentID uint) (*model.ContentAsset, error) {
	var content model.ContentAsset
	err := r.DB.Where("id = ? AND course_id = ?", contentID, courseID).First(&content).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// FindQuiz 定位测验题并校验其归属课程：题 → 视频 → 课程
func (r *CourseRepository) FindQuiz(courseID, quizID uint) (*model.QuizQuestion, error) {
	var quiz model.QuizQuestion
	err := r.DB.
		Joins("JOIN video_assets ON video_assets.id = quiz_questions.video_id").
		Where("quiz_questions.id = ? AND video_assets.course_id = ?", quizID, courseID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}
