// Package engine 实现频率同步引擎：频率轮询循环与输入调度循环
// 并发运行，共享 SyncState，经由同一条电台连接串行收发命令。
package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appmetrics "github.com/taoyao-code/rig-bridge/internal/metrics"
	"github.com/taoyao-code/rig-bridge/internal/pad"
	"github.com/taoyao-code/rig-bridge/internal/rigproto"
)

// Requester 请求/应答连接抽象（由 rigconn.Conn 实现）
type Requester interface {
	Request(payload []byte) ([]byte, error)
	Close() error
}

// DialFunc 建立电台连接。Start 时调用一次，失败则整体启动失败。
type DialFunc func() (Requester, error)

// Config 引擎运行参数
type Config struct {
	SyncInterval     time.Duration // 频率轮询周期
	InputInterval    time.Duration // 输入采样周期
	DefaultFrequency int64         // 首个频率未知时的本地基准
}

// withDefaults 填充零值参数
func (c Config) withDefaults() Config {
	if c.SyncInterval <= 0 {
		c.SyncInterval = 100 * time.Millisecond
	}
	if c.InputInterval <= 0 {
		c.InputInterval = 100 * time.Millisecond
	}
	if c.DefaultFrequency <= 0 {
		c.DefaultFrequency = 1000000
	}
	return c
}

// Engine 同步引擎。生命周期：Stopped → Start → Running → Stop → Stopped。
type Engine struct {
	dial    DialFunc
	state   *SyncState
	pad     pad.Sampler
	metrics *appmetrics.AppMetrics
	logger  *zap.Logger
	cfg     Config

	mu      sync.Mutex
	running bool
	conn    Requester
	stopC   chan struct{}
	doneC   chan struct{}
	wg      sync.WaitGroup

	errMu  sync.Mutex
	runErr error
}

// New 创建引擎。metrics 可为 nil（测试场景）。
func New(dial DialFunc, state *SyncState, sampler pad.Sampler, cfg Config, m *appmetrics.AppMetrics, logger *zap.Logger) *Engine {
	if state == nil {
		state = NewSyncState(nil)
	}
	if sampler == nil {
		sampler = pad.Null{}
	}
	return &Engine{
		dial:    dial,
		state:   state,
		pad:     sampler,
		metrics: m,
		logger:  logger,
		cfg:     cfg.withDefaults(),
		doneC:   make(chan struct{}),
	}
}

// State 返回共享同步状态
func (e *Engine) State() *SyncState { return e.state }

// Start 先建立连接（失败则不启动任何循环），随后并发运行两个循环。
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("engine already running")
	}

	conn, err := e.dial()
	if err != nil {
		return fmt.Errorf("open rig connection: %w", err)
	}

	e.conn = conn
	e.running = true
	e.stopC = make(chan struct{})
	e.doneC = make(chan struct{})
	e.errMu.Lock()
	e.runErr = nil
	e.errMu.Unlock()

	e.wg.Add(2)
	go e.syncLoop()
	go e.inputLoop()

	// 两个循环全部退出后恰好关闭一次连接
	doneC := e.doneC
	go func() {
		e.wg.Wait()
		_ = conn.Close()
		close(doneC)
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	e.logger.Info("engine started",
		zap.Duration("sync_interval", e.cfg.SyncInterval),
		zap.Duration("input_interval", e.cfg.InputInterval))
	return nil
}

// Stop 协作式停机：通知两个循环在下一个周期边界退出，
// 等待全部退出并关闭连接后返回。在途请求的失败属于正常停机现象。
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	doneC := e.doneC
	e.mu.Unlock()

	e.signalStop()
	<-doneC

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()

	e.logger.Info("engine stopped")
}

// Done 返回本次运行的结束通知通道
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doneC
}

// Err 返回导致引擎终止的致命错误（正常停机为 nil）
func (e *Engine) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.runErr
}

// Running 返回引擎是否处于运行状态
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Status 引擎状态快照
type Status struct {
	Running        bool  `json:"running"`
	FrequencyHz    int64 `json:"frequency_hz"`
	FrequencyKnown bool  `json:"frequency_known"`
	StepHz         int64 `json:"step_hz"`
	StepIndex      int   `json:"step_index"`
}

// Status 返回状态快照
func (e *Engine) Status() Status {
	hz, known := e.state.Frequency()
	return Status{
		Running:        e.Running(),
		FrequencyHz:    hz,
		FrequencyKnown: known,
		StepHz:         e.state.Step(),
		StepIndex:      e.state.StepIndex(),
	}
}

// signalStop 通知循环退出，幂等
func (e *Engine) signalStop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopC == nil {
		return
	}
	select {
	case <-e.stopC:
	default:
		close(e.stopC)
	}
}

// fail 记录首个致命错误并触发停机
func (e *Engine) fail(err error) {
	e.errMu.Lock()
	if e.runErr == nil {
		e.runErr = err
	}
	e.errMu.Unlock()
	e.signalStop()
}

// connection 返回当前连接，未运行时报错
func (e *Engine) connection() (Requester, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.conn == nil {
		return nil, fmt.Errorf("engine not running")
	}
	return e.conn, nil
}

// syncLoop 频率轮询循环：每周期向远端查询频率并同步到共享状态
func (e *Engine) syncLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopC:
			return
		case <-ticker.C:
			if err := e.syncOnce(); err != nil {
				select {
				case <-e.stopC:
					// 停机过程中在途请求失败属正常
				default:
					e.logger.Error("frequency sync failed", zap.Error(err))
					e.fail(fmt.Errorf("sync loop: %w", err))
				}
				return
			}
		}
	}
}

// syncOnce 执行一个同步周期。解码失败视为"本周期无值"，不是错误。
func (e *Engine) syncOnce() error {
	conn, err := e.connection()
	if err != nil {
		return err
	}

	resp, err := conn.Request(rigproto.EncodeReadFrequency())
	if err != nil {
		e.countRequest("read", "error")
		return fmt.Errorf("read frequency: %w", err)
	}
	e.countRequest("read", "ok")
	if e.metrics != nil {
		e.metrics.SyncCycleTotal.Inc()
	}

	hz, err := rigproto.DecodeFrequency(resp)
	if err != nil {
		if e.metrics != nil {
			e.metrics.DecodeFailTotal.Inc()
		}
		e.logger.Debug("undecodable frequency response, skipping cycle", zap.Error(err))
		return nil
	}

	prev, known := e.state.Frequency()
	if !known || hz != prev {
		e.state.SetFrequency(hz)
		if e.metrics != nil {
			e.metrics.FrequencyChanged.Inc()
			e.metrics.FrequencyHz.Set(float64(hz))
		}
		if known {
			e.logger.Info("frequency changed",
				zap.Int64("old_hz", prev), zap.Int64("new_hz", hz))
		} else {
			e.logger.Info("frequency acquired", zap.Int64("frequency_hz", hz))
		}
	}
	return nil
}

// inputLoop 输入调度循环：每周期采样十字键并调度至多一个动作
func (e *Engine) inputLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.InputInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopC:
			return
		case <-ticker.C:
			d := e.pad.Sample()
			if d == pad.Neutral {
				continue
			}
			if e.metrics != nil {
				e.metrics.PadEventTotal.WithLabelValues(d.String()).Inc()
			}
			if err := e.dispatch(d); err != nil {
				select {
				case <-e.stopC:
				default:
					e.logger.Error("input dispatch failed", zap.Error(err))
					e.fail(fmt.Errorf("input loop: %w", err))
				}
				return
			}
		}
	}
}

// dispatch 按严格优先级处理一个方向采样，每周期至多一个动作
func (e *Engine) dispatch(d pad.Direction) error {
	switch d {
	case pad.Left:
		return e.nudge(-1)
	case pad.Right:
		return e.nudge(+1)
	case pad.Up:
		e.CycleStep(+1)
	case pad.Down:
		e.CycleStep(-1)
	}
	return nil
}

// nudge 以当前步进上/下调频率。首个频率未知时以 DefaultFrequency 为基准。
func (e *Engine) nudge(sign int64) error {
	base, known := e.state.Frequency()
	if !known {
		base = e.cfg.DefaultFrequency
	}
	return e.SetFrequency(base + sign*e.state.Step())
}

// SetFrequency 本地先行更新共享状态（让按键手感即时），随后下发设置命令。
// rigctld 对 F 命令会回 RPRT 应答，这里消费并丢弃，保持行分帧对齐。
func (e *Engine) SetFrequency(hz int64) error {
	conn, err := e.connection()
	if err != nil {
		return err
	}

	e.state.SetFrequency(hz)
	if e.metrics != nil {
		e.metrics.FrequencyHz.Set(float64(hz))
	}

	if _, err := conn.Request(rigproto.EncodeSetFrequency(hz)); err != nil {
		e.countRequest("set", "error")
		return fmt.Errorf("set frequency %d: %w", hz, err)
	}
	e.countRequest("set", "ok")

	e.logger.Info("frequency set", zap.Int64("frequency_hz", hz))
	return nil
}

// CycleStep 循环切换步进并返回新的步进大小
func (e *Engine) CycleStep(delta int) int64 {
	step := e.state.CycleStep(delta)
	if e.metrics != nil {
		e.metrics.StepSizeHz.Set(float64(step))
	}
	e.logger.Info("step size changed", zap.Int64("step_hz", step))
	return step
}

func (e *Engine) countRequest(op, result string) {
	if e.metrics != nil {
		e.metrics.RigRequestTotal.WithLabelValues(op, result).Inc()
	}
}
