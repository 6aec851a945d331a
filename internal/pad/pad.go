// Package pad 提供方向输入设备（手柄十字键）的采样抽象。
// 设备缺失是合法状态：降级为始终中立的空采样器，而非错误。
package pad

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/rig-bridge/internal/config"
)

// Direction 十字键方向采样值
type Direction int

const (
	Neutral Direction = iota // 中立（无输入）
	Left
	Right
	Up
	Down
)

// String 返回方向名称
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "neutral"
	}
}

// Sampler 方向采样器接口。Sample 返回当前瞬时方向，随采随用，不存储。
type Sampler interface {
	Sample() Direction
	Close() error
}

// Null 空采样器：无设备时使用，始终返回中立
type Null struct{}

// Sample 始终返回 Neutral
func (Null) Sample() Direction { return Neutral }

// Close 无资源可释放
func (Null) Close() error { return nil }

// Open 按配置打开输入设备。设备不存在或打开失败时回退到空采样器。
func Open(cfg cfgpkg.PadConfig, logger *zap.Logger) Sampler {
	if !cfg.Enable {
		logger.Info("pad disabled by config")
		return Null{}
	}
	js, err := OpenJoystick(cfg.Device)
	if err != nil {
		logger.Info("no input device detected, pad degraded to neutral",
			zap.String("device", cfg.Device), zap.Error(err))
		return Null{}
	}
	logger.Info("input device opened", zap.String("device", cfg.Device))
	return js
}
