package model

import (
	"errors"

	"gorm.io/gorm"
)

// ContentType 课程内容条目类型
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
	ContentPDF   ContentType = "pdf"
)

// Availability 内容可见性："paid" 仅付费学员可见，"free" 所有人可见
type Availability string

const (
	AvailabilityPaid Availability = "paid"
	AvailabilityFree Availability = "free"
)

var ErrInvalidAvailability = errors.New("availability must be \"paid\" or \"free\"")
var ErrInvalidContentType = errors.New("contentType must be one of text, image, video, pdf")

// swagger:model Course
type Course struct {
	BaseModel

	Name           string  `gorm:"size:255;not null" json:"name"`
	Description    string  `gorm:"type:text" json:"description"`
	ImageCover     string  `gorm:"size:512" json:"imageCover"`
	InstructorName string  `gorm:"size:100" json:"instructorName"`
	Price          float64 `gorm:"not null" json:"price"`

	Videos  []VideoAsset   `gorm:"foreignKey:CourseID" json:"videos,omitempty"`
	Content []ContentAsset `gorm:"foreignKey:CourseID" json:"content,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// VideoAsset 课程视频系列中的一集。主键即对外 ID，
// 不使用数组下标寻址（并发删除下位置索引不稳定）。
// swagger:model VideoAsset
type VideoAsset struct {
	BaseModel

	CourseID   uint    `gorm:"index;not null" json:"courseId"`
	Title      string  `gorm:"size:255;not null" json:"title"`
	StorageKey string  `gorm:"size:512" json:"-"` // 对象存储内部指针，不外泄
	Duration   float64 `json:"duration"`          // 秒
	Order      int     `gorm:"column:sort_order;default:0" json:"order"`

	Quizzes []QuizQuestion `gorm:"foreignKey:VideoID" json:"quizzes,omitempty"`
}

func (VideoAsset) TableName() string {
	return "video_assets"
}

// ContentAsset 课程图文/文档内容条目
// swagger:model ContentAsset
type ContentAsset struct {
	BaseModel

	CourseID     uint         `gorm:"index;not null" json:"courseId"`
	ContentType  ContentType  `gorm:"size:20;not null" json:"contentType"`
	Availability Availability `gorm:"size:10;not null;default:paid" json:"availability"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	StorageKey   string       `gorm:"size:512" json:"-"` // text 类型为空
	Body         string       `gorm:"type:text" json:"body,omitempty"`
	Position     int          `gorm:"default:0" json:"position"`
}

func (ContentAsset) TableName() string {
	return "content_assets"
}

// BeforeSave 枚举硬校验。来源系统会把非法 availability 静默纠正为 paid，
// 这里改为显式失败，保证可审计。
func (c *ContentAsset) BeforeSave(tx *gorm.DB) error {
	switch c.Availability {
	case AvailabilityPaid, AvailabilityFree:
	default:
		return ErrInvalidAvailability
	}
	switch c.ContentType {
	case ContentText, ContentImage, ContentVideo, ContentPDF:
	default:
		return ErrInvalidContentType
	}
	return nil
}

// IsFree 免费内容对所有登录用户可见，无需权益校验
func (c *ContentAsset) IsFree() bool {
	return c.Availability == AvailabilityFree
}

// QuizQuestion 视频内嵌的单选测验题，四个选项。
// 首次作答时会对题目做快照，后续改题不影响已评分记录。
// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel

	VideoID       uint    `gorm:"index;not null" json:"videoId"`
	Question      string  `gorm:"type:text;not null" json:"question"`
	Options       string  `gorm:"type:json;not null" json:"options"` // JSON array，固定4项
	CorrectAnswer int     `gorm:"not null" json:"-"`                 // 选项下标，不下发给客户端
	Points        float64 `gorm:"default:10" json:"points"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
