package pad

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// Linux joystick 接口（/dev/input/jsN）事件：8 字节定长
//
//	u32 time; s16 value; u8 type; u8 number
const (
	eventSize = 8

	eventTypeButton = 0x01
	eventTypeAxis   = 0x02
	eventTypeInit   = 0x80 // 打开设备后内核回放的初始状态事件

	// 十字键在 js 接口下映射为 hat 轴
	axisHatX = 6
	axisHatY = 7
)

type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// parseEvent 解析一条 js_event 记录（小端）
func parseEvent(b []byte) (jsEvent, error) {
	if len(b) < eventSize {
		return jsEvent{}, fmt.Errorf("pad: short joystick event: %d bytes", len(b))
	}
	return jsEvent{
		Time:   binary.LittleEndian.Uint32(b[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}, nil
}

// Joystick 基于内核 joystick 接口的采样器。
// 后台读循环维护最新的 hat 轴状态，Sample 返回其瞬时值。
type Joystick struct {
	f     *os.File
	hatX  atomic.Int32
	hatY  atomic.Int32
	doneC chan struct{}
}

// OpenJoystick 打开设备并启动读循环
func OpenJoystick(device string) (*Joystick, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, err
	}
	j := &Joystick{f: f, doneC: make(chan struct{})}
	go j.readLoop()
	return j, nil
}

// readLoop 持续读取内核事件并更新 hat 状态，设备拔出即退出
func (j *Joystick) readLoop() {
	defer close(j.doneC)
	buf := make([]byte, eventSize)
	for {
		if _, err := io.ReadFull(j.f, buf); err != nil {
			return
		}
		ev, err := parseEvent(buf)
		if err != nil {
			continue
		}
		j.apply(ev)
	}
}

// apply 处理单条事件。初始回放事件与实时事件同样处理。
func (j *Joystick) apply(ev jsEvent) {
	if ev.Type&^eventTypeInit != eventTypeAxis {
		return
	}
	switch ev.Number {
	case axisHatX:
		j.hatX.Store(int32(ev.Value))
	case axisHatY:
		j.hatY.Store(int32(ev.Value))
	}
}

// Sample 返回当前方向。水平轴优先于垂直轴，与调度优先级一致。
// js 接口的 Y 轴向上为负。
func (j *Joystick) Sample() Direction {
	x := j.hatX.Load()
	y := j.hatY.Load()
	switch {
	case x < 0:
		return Left
	case x > 0:
		return Right
	case y < 0:
		return Up
	case y > 0:
		return Down
	default:
		return Neutral
	}
}

// Done 返回读循环退出通知通道（设备拔出时关闭）
func (j *Joystick) Done() <-chan struct{} { return j.doneC }

// Close 关闭设备文件并等待读循环退出
func (j *Joystick) Close() error {
	err := j.f.Close()
	<-j.doneC
	return err
}
