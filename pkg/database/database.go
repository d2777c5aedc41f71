package database

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 建连。runMigrations 为真时顺带执行迁移；
// release 模式默认跳过迁移，用 -migrate 强制。
func InitDB(cfg *config.DatabaseConfig, runMigrations bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// 唯一索引冲突需要翻译成 gorm.ErrDuplicatedKey，测验并发首答依赖这一点
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if runMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate 建表/迁移。测试环境会用 sqlite 调用同一迁移。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.VideoAsset{},
		&model.ContentAsset{},
		&model.QuizQuestion{},
		&model.Enrollment{},
		&model.QuizAttempt{},
	)
}
