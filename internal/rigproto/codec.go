// Package rigproto 实现 rigctld 风格的行文本控制协议编解码。
// 协议为换行分隔的 UTF-8 文本：`f\n` 查询频率，`F <int>\n` 设置频率。
package rigproto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDecode 频率应答解析失败（可恢复错误，调用方跳过本周期）
var ErrDecode = errors.New("rigproto: malformed frequency response")

// EncodeReadFrequency 编码读频率命令
func EncodeReadFrequency() []byte {
	return []byte("f\n")
}

// EncodeSetFrequency 编码设置频率命令，hz 为十进制整数（单位 Hz）
func EncodeSetFrequency(hz int64) []byte {
	return []byte("F " + strconv.FormatInt(hz, 10) + "\n")
}

// DecodeFrequency 从应答字节中解析频率。
// 远端可能在数值前附带横幅/回显行，因此取末行解析：
// 去除首尾空白后按换行拆分，解析最后一行的十进制整数。
func DecodeFrequency(resp []byte) (int64, error) {
	s := strings.TrimSpace(string(resp))
	if s == "" {
		return 0, fmt.Errorf("%w: empty response", ErrDecode)
	}
	lines := strings.Split(s, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	hz, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrDecode, last)
	}
	return hz, nil
}
