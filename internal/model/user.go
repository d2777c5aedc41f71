package model

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// User 身份镜像。注册/登录与令牌签发由外部身份服务负责，
// 本服务只消费 JWT 中的声明，这里保留最小画像用于关联查询。
// swagger:model User
type User struct {
	BaseModel

	Email string   `gorm:"size:255;uniqueIndex" json:"email"`
	Name  string   `gorm:"size:100" json:"name"`
	Role  UserRole `gorm:"size:20;default:student" json:"role"`
}

func (User) TableName() string {
	return "users"
}
