// MAC地址规范化工具
// 轮询端的异步传输偶尔会把MAC字符串二次十六进制编码，这里统一解码、校验、小写化
package utils

import (
	"encoding/hex"
	"strings"
)

// macHexLen 规范MAC的长度(12位十六进制，无分隔符)
const macHexLen = 12

// DecodeMAC 还原被二次十六进制编码的MAC字符串
// 规则: 长度大于12、全部为十六进制且长度为偶数时尝试解码为ASCII，解码结果以"0x"开头则去掉前缀；
// 解码失败时保持原值；不需要解码但以"0x"开头时仅去掉前缀。
// 反复应用直到结果不再变化，因此 DecodeMAC(DecodeMAC(x)) == DecodeMAC(x)。
func DecodeMAC(value string) string {
	current := value
	for {
		next := decodeMACOnce(current)
		if next == current {
			return current
		}
		current = next
	}
}

// decodeMACOnce 单步解码，结果要么等于输入，要么严格更短
func decodeMACOnce(value string) string {
	if len(value) > macHexLen && len(value)%2 == 0 && isHex(value) {
		decoded, err := hex.DecodeString(value)
		if err != nil || !isPrintableASCII(decoded) {
			return value
		}
		return strings.TrimPrefix(string(decoded), "0x")
	}
	return strings.TrimPrefix(value, "0x")
}

// CanonicalMAC 返回12位小写十六进制形式的MAC地址
// 支持 aa:bb:cc:dd:ee:ff、aa-bb-cc-dd-ee-ff、aabb.ccdd.eeff 以及省略前导零的 a:b:c:d:e:f 写法；
// 无法识别或全零的地址返回 ok=false，由调用方静默丢弃
func CanonicalMAC(value string) (string, bool) {
	mac := strings.ToLower(DecodeMAC(strings.TrimSpace(value)))
	if mac == "" {
		return "", false
	}

	switch {
	case strings.Contains(mac, ":"):
		mac = joinPadded(strings.Split(mac, ":"), 6, 2)
	case strings.Contains(mac, "-"):
		mac = joinPadded(strings.Split(mac, "-"), 6, 2)
	case strings.Contains(mac, "."):
		mac = joinPadded(strings.Split(mac, "."), 3, 4)
	}

	if len(mac) != macHexLen || !isHex(mac) {
		return "", false
	}
	if mac == "000000000000" {
		return "", false
	}
	return mac, true
}

// OUIPrefix 返回规范MAC的厂商前缀(前6位)，非法MAC返回空串
func OUIPrefix(value string) string {
	mac, ok := CanonicalMAC(value)
	if !ok {
		return ""
	}
	return mac[:6]
}

// joinPadded 分段补齐前导零后拼接；段数不符时返回原始拼接结果交给长度校验
func joinPadded(parts []string, count, width int) string {
	if len(parts) != count {
		return strings.Join(parts, "")
	}
	var b strings.Builder
	for _, part := range parts {
		if part == "" || len(part) > width {
			return strings.Join(parts, "")
		}
		b.WriteString(strings.Repeat("0", width-len(part)))
		b.WriteString(part)
	}
	return b.String()
}

func isHex(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isPrintableASCII(data []byte) bool {
	for _, c := range data {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return len(data) > 0
}
