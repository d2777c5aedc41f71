package service

import (
	"course_media_backend/internal/model"
	"course_media_backend/internal/repository"
	"course_media_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// AssetService 把 (courseId, assetId) 映射为上游存储指针与资源类别。
// 资产 ID 是稳定主键，不做位置索引寻址。
type AssetService struct {
	Courses *repository.CourseRepository
}

func NewAssetService(courses *repository.CourseRepository) *AssetService {
	return &AssetService{Courses: courses}
}

// ResolveVideo 定位课程视频。存储指针缺失是配置错误，
// 与权限拒绝区分开（调用方映射为 400 而非 403）。
func (s *AssetService) ResolveVideo(courseID, videoID uint) (*model.VideoAsset, error) {
	video, err := s.Courses.FindVideo(courseID, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVideoNotFound
		}
		return nil, err
	}
	if video.StorageKey == "" {
		return nil, util.ErrMissingStorageKey
	}
	return video, nil
}

// ResolveContent 定位内容条目并给出资源类别。
// text 条目没有可流式传输的对象，同样按配置错误处理。
func (s *AssetService) ResolveContent(courseID, contentID uint) (*model.ContentAsset, ResourceKind, error) {
	content, err := s.Courses.FindContent(courseID, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.ErrContentNotFound
		}
		return nil, "", err
	}
	if content.ContentType == model.ContentText || content.StorageKey == "" {
		return nil, "", util.ErrMissingStorageKey
	}
	return content, kindForContent(content.ContentType), nil
}

func kindForContent(t model.ContentType) ResourceKind {
	switch t {
	case model.ContentVideo:
		return KindVideo
	case model.ContentImage:
		return KindImage
	default:
		return KindRaw
	}
}
