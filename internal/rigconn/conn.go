// Package rigconn 管理到电台控制端点的唯一 TCP 连接，
// 提供串行化的请求/应答原语。
package rigconn

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	cfgpkg "github.com/taoyao-code/rig-bridge/internal/config"
)

// ErrClosed 连接已关闭
var ErrClosed = errors.New("rigconn: connection closed")

// Conn 电台连接。整个进程只存在一个实例，
// Request 通过互斥锁串行化，两个循环不会在线路上交错。
type Conn struct {
	mu     sync.Mutex
	c      net.Conn
	cfg    cfgpkg.RigConfig
	buf    []byte
	closed int32
	// 可选指标回调
	onRecvBytes func(n int)
}

// Dial 建立到电台端点的 TCP 连接。失败即整体启动失败，无重试。
func Dial(cfg cfgpkg.RigConfig) (*Conn, error) {
	to := cfg.DialTimeout
	if to <= 0 {
		to = 5 * time.Second
	}
	c, err := net.DialTimeout("tcp", cfg.Addr, to)
	if err != nil {
		return nil, fmt.Errorf("dial rig %s: %w", cfg.Addr, err)
	}
	size := cfg.ReadBufferSize
	if size <= 0 {
		size = 1024
	}
	return &Conn{c: c, cfg: cfg, buf: make([]byte, size)}, nil
}

// SetMetricsCallback 设置接收字节数指标回调
func (c *Conn) SetMetricsCallback(onRecvBytes func(int)) {
	c.onRecvBytes = onRecvBytes
}

// RemoteAddr 返回远端地址
func (c *Conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

// Request 发送 payload 并读取一个有界应答块（不做进一步分帧）。
// 写+读全程持锁，保证同一连接上请求/应答严格串行。
// 传输失败向上传播，由调用方决定致命性；无重连逻辑。
func (c *Conn) Request(payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, ErrClosed
	}

	if c.cfg.WriteTimeout > 0 {
		_ = c.c.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := c.c.Write(payload); err != nil {
		return nil, fmt.Errorf("write rig command: %w", err)
	}

	if c.cfg.ReadTimeout > 0 {
		_ = c.c.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	n, err := c.c.Read(c.buf)
	if n > 0 {
		if c.onRecvBytes != nil {
			c.onRecvBytes(n)
		}
		// 复制一份，内部缓冲会被下次请求复用
		out := make([]byte, n)
		copy(out, c.buf[:n])
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rig response: %w", err)
	}
	return nil, nil
}

// Send 发送 payload 但不读取应答（用于不产生应答的命令）
func (c *Conn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClosed
	}
	if c.cfg.WriteTimeout > 0 {
		_ = c.c.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := c.c.Write(payload); err != nil {
		return fmt.Errorf("write rig command: %w", err)
	}
	return nil
}

// Close 关闭连接，幂等
func (c *Conn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	return c.c.Close()
}
