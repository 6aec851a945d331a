package api

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Limiter 基于 Token Bucket 的控制接口限流器。
// 防止外部调用方以高于电台承受能力的速率下发设置命令。
type Limiter struct {
	limiter       *rate.Limiter
	perSecond     int
	burst         int
	allowedCount  atomic.Int64
	rejectedCount atomic.Int64
}

// NewLimiter 创建限流器
// perSecond: 每秒允许的控制请求数（稳定速率）
// burst: 突发容量（桶的大小）
func NewLimiter(perSecond, burst int) *Limiter {
	if perSecond <= 0 {
		perSecond = 10
	}
	if burst <= 0 {
		burst = perSecond * 2
	}
	return &Limiter{
		limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
		perSecond: perSecond,
		burst:     burst,
	}
}

// Allow 检查是否允许请求（非阻塞）
func (l *Limiter) Allow() bool {
	if l.limiter.Allow() {
		l.allowedCount.Add(1)
		return true
	}
	l.rejectedCount.Add(1)
	return false
}

// Stats 获取统计信息
func (l *Limiter) Stats() LimiterStats {
	return LimiterStats{
		PerSecond:     l.perSecond,
		Burst:         l.burst,
		AllowedTotal:  l.allowedCount.Load(),
		RejectedTotal: l.rejectedCount.Load(),
	}
}

// LimiterStats 限流器统计信息
type LimiterStats struct {
	PerSecond     int   `json:"per_second"`
	Burst         int   `json:"burst"`
	AllowedTotal  int64 `json:"allowed_total"`
	RejectedTotal int64 `json:"rejected_total"`
}
