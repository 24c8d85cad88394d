package wizard

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Proxmox 的取值范围
const (
	MinVMID           = 100
	MaxVMID           = 999999999
	MinPasswordLength = 5
	MinMemoryMiB      = 16
)

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidateVMID 检查 VMID
func ValidateVMID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("VMID must be a number")
	}
	if id < MinVMID || id > MaxVMID {
		return 0, fmt.Errorf("VMID must be between %d and %d", MinVMID, MaxVMID)
	}
	return id, nil
}

// ValidateHostname 检查主机名是否符合 DNS 命名规则
func ValidateHostname(s string) error {
	if s == "" {
		return fmt.Errorf("hostname is required")
	}
	if len(s) > 253 || !hostnamePattern.MatchString(s) {
		return fmt.Errorf("invalid hostname %q: use letters, digits and hyphens", s)
	}
	return nil
}

// ValidatePassword 密码可以为空，否则至少 5 个字符
func ValidatePassword(s string) error {
	if s != "" && len(s) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidateSSHKeys 每行一个 authorized_keys 格式的公钥，可以为空
func ValidateSSHKeys(s string) error {
	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
			return fmt.Errorf("invalid SSH public key on line %d: %w", i+1, err)
		}
	}
	return nil
}

// parseOptionalInt 空串返回 nil，表示不设置
func parseOptionalInt(label, s string, min int) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", label)
	}
	if v < min {
		return nil, fmt.Errorf("%s must be at least %d", label, min)
	}
	return &v, nil
}

// ValidateCIDR 检查 IPv4 CIDR，例如 192.168.1.10/24
func ValidateCIDR(s string) error {
	ip, _, err := net.ParseCIDR(s)
	if err != nil || ip.To4() == nil {
		return fmt.Errorf("invalid IPv4 address %q: expected CIDR such as 192.168.1.10/24", s)
	}
	return nil
}

// ValidateGateway 网关可以为空
func ValidateGateway(s string) error {
	if s == "" {
		return nil
	}
	if ip := net.ParseIP(s); ip == nil || ip.To4() == nil {
		return fmt.Errorf("invalid gateway %q", s)
	}
	return nil
}

// ValidateNameserver DNS 服务器可以为空，可以是 IPv4 或 IPv6
func ValidateNameserver(s string) error {
	if s == "" {
		return nil
	}
	for _, part := range strings.Fields(s) {
		if net.ParseIP(part) == nil {
			return fmt.Errorf("invalid DNS server %q", part)
		}
	}
	return nil
}
