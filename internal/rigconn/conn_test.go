package rigconn

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	cfgpkg "github.com/taoyao-code/rig-bridge/internal/config"
)

// startFakeRig 启动一个回答固定频率的假电台端点
func startFakeRig(t *testing.T) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan struct{})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				r := bufio.NewReader(c)
				for {
					line, err := r.ReadString('\n')
					if err != nil {
						return
					}
					line = strings.TrimSpace(line)
					switch {
					case line == "f":
						_, _ = c.Write([]byte("145000000\n"))
					case strings.HasPrefix(line, "F "):
						_, _ = c.Write([]byte("RPRT 0\n"))
					default:
						_, _ = c.Write([]byte("RPRT -1\n"))
					}
					select {
					case <-done:
						return
					default:
					}
				}
			}(conn)
		}
	}()
	return ln.Addr().String(), func() {
		close(done)
		_ = ln.Close()
	}
}

func testRigConfig(addr string) cfgpkg.RigConfig {
	return cfgpkg.RigConfig{
		Addr:           addr,
		DialTimeout:    time.Second,
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		ReadBufferSize: 1024,
	}
}

func TestDialFailure(t *testing.T) {
	// 无人监听的端口
	_, err := Dial(cfgpkg.RigConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestRequestRoundTrip(t *testing.T) {
	addr, stop := startFakeRig(t)
	defer stop()

	c, err := Dial(testRigConfig(addr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	resp, err := c.Request([]byte("f\n"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := strings.TrimSpace(string(resp)); got != "145000000" {
		t.Fatalf("response = %q", got)
	}
}

func TestRequestSerialized(t *testing.T) {
	addr, stop := startFakeRig(t)
	defer stop()

	c, err := Dial(testRigConfig(addr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	// 两个并发请求方模拟同步循环与输入循环抢占同一连接
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				resp, err := c.Request([]byte("f\n"))
				if err != nil {
					t.Errorf("request: %v", err)
					return
				}
				// 串行化保证每个应答都是完整的一条，不会混入他方应答
				if got := strings.TrimSpace(string(resp)); got != "145000000" {
					t.Errorf("interleaved response = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestCloseIdempotent(t *testing.T) {
	addr, stop := startFakeRig(t)
	defer stop()

	c, err := Dial(testRigConfig(addr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := c.Request([]byte("f\n")); err != ErrClosed {
		t.Fatalf("request after close = %v, want ErrClosed", err)
	}
	if err := c.Send([]byte("f\n")); err != ErrClosed {
		t.Fatalf("send after close = %v, want ErrClosed", err)
	}
}
