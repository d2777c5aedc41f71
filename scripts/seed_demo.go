// 手动写入演示数据脚本
//
// 课程/报名的正式写入属于外部系统（课程管理后台与支付确认流程）。
// 此脚本仅用于本地联调：造一门带视频、内容条目和测验题的课程，
// 并给用户 1 一条有效报名。
//
// 用法: go run scripts/seed_demo.go
package main

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/model"
	"course_media_backend/pkg/database"
	"course_media_backend/pkg/logger"
	"log"
	"time"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	course := &model.Course{
		Name:           "Go 后端开发实战",
		Description:    "从路由到对象存储的完整后端链路",
		InstructorName: "演示讲师",
		Price:          199,
	}
	if err := db.Create(course).Error; err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	videos := []model.VideoAsset{
		{CourseID: course.ID, Title: "第一讲：项目骨架", StorageKey: "demo/lesson-1.mp4", Duration: 1800, Order: 1},
		{CourseID: course.ID, Title: "第二讲：流式代理", StorageKey: "demo/lesson-2.mp4", Duration: 2100, Order: 2},
	}
	if err := db.Create(&videos).Error; err != nil {
		log.Fatalf("创建视频失败: %v", err)
	}

	quiz := &model.QuizQuestion{
		VideoID:       videos[0].ID,
		Question:      "签名 URL 为什么每次请求重新签发？",
		Options:       `["为了省钱","限制泄漏 URL 的影响范围","兼容旧浏览器","没有原因"]`,
		CorrectAnswer: 1,
		Points:        10,
	}
	if err := db.Create(quiz).Error; err != nil {
		log.Fatalf("创建测验题失败: %v", err)
	}

	content := []model.ContentAsset{
		{CourseID: course.ID, ContentType: model.ContentText, Availability: model.AvailabilityFree, Title: "课程介绍", Body: "公开的课程简介。", Position: 1},
		{CourseID: course.ID, ContentType: model.ContentPDF, Availability: model.AvailabilityPaid, Title: "讲义", StorageKey: "demo/notes.pdf", Position: 2},
	}
	if err := db.Create(&content).Error; err != nil {
		log.Fatalf("创建内容条目失败: %v", err)
	}

	enrollment := &model.Enrollment{
		UserID:     1,
		CourseID:   course.ID,
		Status:     model.EnrollmentActive,
		EnrolledAt: time.Now(),
		ExpiresAt:  time.Now().AddDate(1, 0, 0),
		PaymentID:  "demo-payment",
		AmountPaid: 199,
		Currency:   "usd",
	}
	if err := db.Create(enrollment).Error; err != nil {
		log.Fatalf("创建报名记录失败: %v", err)
	}

	log.Printf("演示数据写入完成：课程 %d，视频 %d 个，用户 1 已报名", course.ID, len(videos))
}
