// Package api 提供桥接器的 HTTP 控制与观测接口。
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/rig-bridge/internal/engine"
	appmetrics "github.com/taoyao-code/rig-bridge/internal/metrics"
)

// Bridge 引擎控制面抽象（由 engine.Engine 实现）
type Bridge interface {
	Status() engine.Status
	SetFrequency(hz int64) error
	CycleStep(delta int) int64
}

// Handler 桥接器 API 处理器
type Handler struct {
	bridge    Bridge
	limiter   *Limiter
	metrics   *appmetrics.AppMetrics
	logger    *zap.Logger
	bridgeID  string
	rigAddr   string
	startedAt time.Time
}

// NewHandler 创建 API 处理器。limiter 与 metrics 可为 nil。
func NewHandler(bridge Bridge, limiter *Limiter, m *appmetrics.AppMetrics, logger *zap.Logger, bridgeID, rigAddr string) *Handler {
	return &Handler{
		bridge:    bridge,
		limiter:   limiter,
		metrics:   m,
		logger:    logger,
		bridgeID:  bridgeID,
		rigAddr:   rigAddr,
		startedAt: time.Now(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api")
	g.GET("/status", h.GetStatus)
	g.GET("/frequency", h.GetFrequency)
	g.PUT("/frequency", h.rateLimit, h.PutFrequency)
	g.GET("/step", h.GetStep)
	g.PUT("/step", h.rateLimit, h.PutStep)
}

// rateLimit 控制类接口限流中间件
func (h *Handler) rateLimit(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow() {
		if h.metrics != nil {
			h.metrics.ControlRejectTotal.Inc()
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
		return
	}
	c.Next()
}

// GetStatus 查询桥接器状态
// @Summary 查询桥接器状态
// @Produce json
// @Router /api/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	st := h.bridge.Status()
	resp := gin.H{
		"bridge_id":      h.bridgeID,
		"rig_addr":       h.rigAddr,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"engine":         st,
	}
	if h.limiter != nil {
		resp["rate_limit"] = h.limiter.Stats()
	}
	c.JSON(http.StatusOK, resp)
}

// GetFrequency 查询最近已知频率
// @Summary 查询最近已知频率
// @Produce json
// @Router /api/frequency [get]
func (h *Handler) GetFrequency(c *gin.Context) {
	st := h.bridge.Status()
	if !st.FrequencyKnown {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "frequency not yet known"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"frequency_hz": st.FrequencyHz})
}

type putFrequencyRequest struct {
	FrequencyHz int64 `json:"frequency_hz" binding:"required"`
}

// PutFrequency 设置频率
// @Summary 设置频率
// @Accept json
// @Produce json
// @Router /api/frequency [put]
func (h *Handler) PutFrequency(c *gin.Context) {
	var req putFrequencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.bridge.SetFrequency(req.FrequencyHz); err != nil {
		h.logger.Error("api set frequency failed",
			zap.Int64("frequency_hz", req.FrequencyHz), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"frequency_hz": req.FrequencyHz})
}

// GetStep 查询当前步进
// @Summary 查询当前步进
// @Produce json
// @Router /api/step [get]
func (h *Handler) GetStep(c *gin.Context) {
	st := h.bridge.Status()
	c.JSON(http.StatusOK, gin.H{"step_hz": st.StepHz, "step_index": st.StepIndex})
}

type putStepRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// PutStep 循环切换步进
// @Summary 循环切换步进
// @Accept json
// @Produce json
// @Router /api/step [put]
func (h *Handler) PutStep(c *gin.Context) {
	var req putStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var step int64
	switch req.Direction {
	case "up":
		step = h.bridge.CycleStep(+1)
	case "down":
		step = h.bridge.CycleStep(-1)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be up or down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"step_hz": step})
}
