package engine

import (
	"sync"
)

// DefaultSteps 默认步进集合：1 kHz、12.5 kHz、1 MHz
var DefaultSteps = []int64{1000, 12500, 1000000}

// SyncState 两个循环共享的同步状态：最近已知频率与当前步进下标。
// 互斥锁保证单字段读写原子；语义为最后写者胜出，不做合并。
type SyncState struct {
	mu      sync.RWMutex
	freq    int64
	known   bool
	stepIdx int
	steps   []int64
}

// NewSyncState 创建共享状态。steps 为空时使用 DefaultSteps。
func NewSyncState(steps []int64) *SyncState {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	dup := make([]int64, len(steps))
	copy(dup, steps)
	return &SyncState{steps: dup}
}

// Frequency 返回最近已知频率；首次成功读取前 known 为 false
func (s *SyncState) Frequency() (hz int64, known bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freq, s.known
}

// SetFrequency 更新最近已知频率
func (s *SyncState) SetFrequency(hz int64) {
	s.mu.Lock()
	s.freq = hz
	s.known = true
	s.mu.Unlock()
}

// Step 返回当前步进大小（Hz）
func (s *SyncState) Step() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps[s.stepIdx]
}

// StepIndex 返回当前步进下标
func (s *SyncState) StepIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stepIdx
}

// Steps 返回步进集合副本
func (s *SyncState) Steps() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dup := make([]int64, len(s.steps))
	copy(dup, s.steps)
	return dup
}

// CycleStep 按 delta 循环切换步进下标并返回新的步进大小。
// 两个方向都按集合长度取模回绕：从 0 递减落到末位，不会出现负下标。
func (s *SyncState) CycleStep(delta int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.steps)
	s.stepIdx = ((s.stepIdx+delta)%n + n) % n
	return s.steps[s.stepIdx]
}
