package health

import (
	"context"
	"net"
	"time"
)

// RigChecker 电台端点可达性检查器：独立 TCP 探测，
// 不复用引擎连接，避免检查流量混入请求/应答流。
type RigChecker struct {
	addr    string
	timeout time.Duration
}

// NewRigChecker 创建电台可达性检查器
func NewRigChecker(addr string, timeout time.Duration) *RigChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RigChecker{addr: addr, timeout: timeout}
}

// Name 返回检查器名称
func (c *RigChecker) Name() string { return "rig" }

// Check 执行健康检查
func (c *RigChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: err.Error(),
			Latency: time.Since(start),
		}
	}
	_ = conn.Close()

	return CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Latency: time.Since(start),
	}
}

// EngineChecker 引擎运行状态检查器
type EngineChecker struct {
	running func() bool
}

// NewEngineChecker 创建引擎状态检查器，running 返回引擎是否在运行
func NewEngineChecker(running func() bool) *EngineChecker {
	return &EngineChecker{running: running}
}

// Name 返回检查器名称
func (c *EngineChecker) Name() string { return "engine" }

// Check 执行健康检查
func (c *EngineChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if c.running == nil || !c.running() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "engine not running",
			Latency: time.Since(start),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
}
