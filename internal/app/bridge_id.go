package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// GenerateBridgeID 生成桥接器实例ID
// 优先使用环境变量BRIDGE_ID，否则生成UUID
func GenerateBridgeID() string {
	if bridgeID := os.Getenv("BRIDGE_ID"); bridgeID != "" {
		return bridgeID
	}

	// 生成格式：rig-bridge-{hostname}-{uuid}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	shortUUID := uuid.New().String()[:8]
	return fmt.Sprintf("rig-bridge-%s-%s", hostname, shortUUID)
}
