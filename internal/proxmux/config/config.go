package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRefreshInterval 任务轮询的默认间隔
const DefaultRefreshInterval = 2 * time.Second

// Config 连接参数和界面选项
type Config struct {
	// Host Proxmox API 地址，例如 https://pve.example.com:8006
	// 可以通过环境变量 PROXMOX_HOST 配置
	Host string `yaml:"host"`

	// User 形如 user@realm，例如 root@pam
	User string `yaml:"user"`

	// TokenID 只填 token 名称，不带用户前缀
	TokenID string `yaml:"token_id"`

	TokenSecret string `yaml:"token_secret"`

	// InsecureSkipVerify 跳过 TLS 证书校验，默认 true
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// RefreshInterval 创建容器后轮询任务状态的间隔
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	LogLevel string `yaml:"log_level"`

	// LogFile 日志文件路径，终端被界面占用，日志只写文件
	LogFile string `yaml:"log_file"`

	// File 实际加载的配置文件，未加载时为空
	File string `yaml:"-"`
}

// New 加载配置：先读取配置文件，再用环境变量覆盖
func New() (*Config, error) {
	return Load(os.Getenv)
}

// Load 使用给定的环境变量读取函数加载配置
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		InsecureSkipVerify: true,
		RefreshInterval:    DefaultRefreshInterval,
		LogLevel:           "info",
		LogFile:            defaultLogFile(getenv),
	}

	if err := cfg.loadFile(getenv); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	cfg.Host = strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	return cfg, nil
}

// loadFile 读取 YAML 配置文件
// 显式指定的 PROXMUX_CONFIG 不存在时报错，默认路径不存在时忽略
func (c *Config) loadFile(getenv func(string) string) error {
	path := getenv("PROXMUX_CONFIG")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile(getenv)
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.File = path
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Host, "PROXMOX_HOST")
	setString(&c.User, "PROXMOX_USER")
	setString(&c.TokenID, "PROXMOX_TOKEN_ID")
	setString(&c.TokenSecret, "PROXMOX_TOKEN_SECRET")
	setString(&c.LogLevel, "PROXMUX_LOG_LEVEL")
	setString(&c.LogFile, "PROXMUX_LOG_FILE")

	if v := getenv("PROXMUX_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PROXMUX_REFRESH_INTERVAL: %w", err)
		}
		c.RefreshInterval = d
	}

	if v := getenv("PROXMUX_INSECURE_SKIP_VERIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse PROXMUX_INSECURE_SKIP_VERIFY: %w", err)
		}
		c.InsecureSkipVerify = b
	}
	return nil
}

// Validate 检查连接参数是否完整
func (c *Config) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "PROXMOX_HOST")
	}
	if c.User == "" {
		missing = append(missing, "PROXMOX_USER")
	}
	if c.TokenID == "" {
		missing = append(missing, "PROXMOX_TOKEN_ID")
	}
	if c.TokenSecret == "" {
		missing = append(missing, "PROXMOX_TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(c.Host, "https://") && !strings.HasPrefix(c.Host, "http://") {
		return fmt.Errorf("invalid host %q: must start with https:// or http://", c.Host)
	}
	if !strings.Contains(c.User, "@") {
		return fmt.Errorf("invalid user %q: expected user@realm, e.g. root@pam", c.User)
	}
	if strings.Contains(c.TokenID, "!") {
		return fmt.Errorf("invalid token id %q: use only the token name, without the user prefix", c.TokenID)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("invalid refresh interval %s: must be positive", c.RefreshInterval)
	}
	return nil
}

// defaultConfigFile $XDG_CONFIG_HOME/proxmux/config.yaml
func defaultConfigFile(getenv func(string) string) string {
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "proxmux", "config.yaml")
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "proxmux", "config.yaml")
	}
	return ""
}

// defaultLogFile $XDG_STATE_HOME/proxmux/proxmux.log
func defaultLogFile(getenv func(string) string) string {
	if dir := getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "proxmux", "proxmux.log")
	}
	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "state", "proxmux", "proxmux.log")
	}
	return filepath.Join(os.TempDir(), "proxmux.log")
}
