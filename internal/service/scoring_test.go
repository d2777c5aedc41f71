package service

import (
	"course_media_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testScoringConfig() ScoringConfig {
	return ScoringConfig{FullPointsTime: 7, MaxTimeFirst: 30, MaxTimeSecond: 20}
}

func TestScoreFirstShot(t *testing.T) {
	cfg := testScoringConfig()

	tests := []struct {
		name       string
		shot       model.Shot
		points     float64
		wantTotal  float64
		wantPassed bool
	}{
		{
			name:       "correct within full-points window",
			shot:       model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 5},
			points:     10,
			wantTotal:  10,
			wantPassed: true,
		},
		{
			name:       "correct exactly at full-points boundary",
			shot:       model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 7},
			points:     10,
			wantTotal:  10,
			wantPassed: true,
		},
		{
			name:       "correct at max time earns nothing",
			shot:       model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 30},
			points:     10,
			wantTotal:  0,
			wantPassed: true,
		},
		{
			name:       "correct beyond max time earns nothing",
			shot:       model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 45},
			points:     10,
			wantTotal:  0,
			wantPassed: true,
		},
		{
			name:       "incorrect earns nothing",
			shot:       model.Shot{SelectedOption: 0, IsCorrect: false, Duration: 3},
			points:     10,
			wantTotal:  0,
			wantPassed: false,
		},
		{
			name:       "linear decay midway",
			shot:       model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 18.5},
			points:     10,
			wantTotal:  5, // (18.5-7)/(30-7) = 0.5
			wantPassed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, passed := Score(tt.shot, nil, tt.points, cfg)
			assert.InDelta(t, tt.wantTotal, total, 1e-9)
			assert.Equal(t, tt.wantPassed, passed)
		})
	}
}

func TestScoreSecondShot(t *testing.T) {
	cfg := testScoringConfig()
	firstWrong := model.Shot{SelectedOption: 0, IsCorrect: false, Duration: 4}

	t.Run("second shot max is half the points", func(t *testing.T) {
		second := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 3}
		total, passed := Score(firstWrong, &second, 10, cfg)
		assert.InDelta(t, 5, total, 1e-9)
		assert.True(t, passed)
	})

	t.Run("second shot decays against its own window", func(t *testing.T) {
		// 规格场景：10分题，第二枪10秒答对
		// maxSecond=5, decay=(10-7)/(20-7)≈0.2308 → ≈3.85
		second := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 10}
		total, passed := Score(firstWrong, &second, 10, cfg)
		assert.InDelta(t, 3.846, total, 0.001)
		assert.True(t, passed)
	})

	t.Run("second shot at its max time earns nothing", func(t *testing.T) {
		second := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 20}
		total, passed := Score(firstWrong, &second, 10, cfg)
		assert.Zero(t, total)
		assert.True(t, passed)
	})

	t.Run("both wrong fails with zero", func(t *testing.T) {
		second := model.Shot{SelectedOption: 2, IsCorrect: false, Duration: 3}
		total, passed := Score(firstWrong, &second, 10, cfg)
		assert.Zero(t, total)
		assert.False(t, passed)
	})

	t.Run("first correct ignores second", func(t *testing.T) {
		first := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 5}
		second := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 2}
		total, passed := Score(first, &second, 10, cfg)
		assert.InDelta(t, 10, total, 1e-9)
		assert.True(t, passed)
	})
}

// 答对时长越长得分不增：单调衰减
func TestScoreMonotonicDecay(t *testing.T) {
	cfg := testScoringConfig()

	prev := 11.0
	for d := 0.0; d <= 35; d += 0.5 {
		shot := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: d}
		total, _ := Score(shot, nil, 10, cfg)
		assert.LessOrEqual(t, total, prev, "duration %v", d)
		assert.GreaterOrEqual(t, total, 0.0, "duration %v", d)
		assert.LessOrEqual(t, total, 10.0, "duration %v", d)
		prev = total
	}
}

// 相同输入重复计算结果一致：全量重算的幂等性
func TestScoreIdempotent(t *testing.T) {
	cfg := testScoringConfig()
	first := model.Shot{SelectedOption: 0, IsCorrect: false, Duration: 12}
	second := model.Shot{SelectedOption: 1, IsCorrect: true, Duration: 9.5}

	t1, p1 := Score(first, &second, 10, cfg)
	t2, p2 := Score(first, &second, 10, cfg)
	assert.Equal(t, t1, t2)
	assert.Equal(t, p1, p2)
}
