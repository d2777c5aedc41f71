package service

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/model"
)

// ScoringConfig 计时衰减常量，单位秒
type ScoringConfig struct {
	FullPointsTime float64 // 此时间内答对拿该枪的满分
	MaxTimeFirst   float64 // 第一枪超过此时长得 0 分
	MaxTimeSecond  float64 // 第二枪超过此时长得 0 分
}

func ScoringConfigFrom(cfg config.QuizConfig) ScoringConfig {
	return ScoringConfig{
		FullPointsTime: cfg.FullPointsTime,
		MaxTimeFirst:   cfg.MaxTimeFirst,
		MaxTimeSecond:  cfg.MaxTimeSecond,
	}
}

// shotPoints 单枪得分：答错 0 分；满分窗口内拿 maxPossible；
// 超过上限 0 分；中间线性衰减。
func shotPoints(shot model.Shot, maxPossible, fullTime, maxTime float64) float64 {
	if !shot.IsCorrect {
		return 0
	}
	d := shot.Duration
	if d <= fullTime {
		return maxPossible
	}
	if d >= maxTime {
		return 0
	}
	return maxPossible * (1 - (d-fullTime)/(maxTime-fullTime))
}

// Score 从两枪完整计算总分与通过标志，与持久层完全解耦。
// 第二枪的满分是题目分值的一半。得分来自首个答对的那一枪，
// 最终夹在 [0, pointsPossible] 区间内。
// 每次写入都全量重算（而非增量修补），与写入顺序无关。
func Score(first model.Shot, second *model.Shot, pointsPossible float64, cfg ScoringConfig) (totalPoints float64, passed bool) {
	var earned float64

	if first.IsCorrect {
		earned = shotPoints(first, pointsPossible, cfg.FullPointsTime, cfg.MaxTimeFirst)
		passed = true
	} else if second != nil && second.IsCorrect {
		earned = shotPoints(*second, pointsPossible/2, cfg.FullPointsTime, cfg.MaxTimeSecond)
		passed = true
	}

	if earned < 0 {
		earned = 0
	}
	if earned > pointsPossible {
		earned = pointsPossible
	}
	return earned, passed
}
