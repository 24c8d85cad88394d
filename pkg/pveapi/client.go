package pveapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/jimyag/proxmux/pkg/idgen"
	"github.com/rs/zerolog"
)

// APIPrefix Proxmox JSON API 路径前缀
const APIPrefix = "/api2/json"

// Config 连接参数
type Config struct {
	Host        string // 例如 https://pve.example.com:8006
	User        string // 例如 root@pam
	TokenID     string // 只有 token 名称，例如 proxmux
	TokenSecret string

	// InsecureSkipVerify 跳过证书校验
	// Proxmox 默认使用自签名证书，默认开启；这是有意的信任决策
	InsecureSkipVerify bool

	// HTTPClient 自定义 HTTP 客户端，为空时根据 InsecureSkipVerify 创建
	HTTPClient *http.Client
}

// Client Proxmox API 传输层
// 只负责认证、编码请求体、把错误响应归一化为 apierror，并解开 {"data": ...} 信封
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	ids        *idgen.Generator
}

var _ Requester = (*Client)(nil)

// New 创建传输层客户端
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // 自签名证书
		}
		httpClient = &http.Client{Transport: transport}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.Host, "/"),
		authHeader: AuthHeader(cfg.User, cfg.TokenID, cfg.TokenSecret),
		httpClient: httpClient,
		ids:        idgen.DefaultGenerator(),
	}
}

// AuthHeader 构造 API token 认证头
func AuthHeader(user, tokenID, tokenSecret string) string {
	return fmt.Sprintf("PVEAPIToken=%s!%s=%s", user, tokenID, tokenSecret)
}

// envelope Proxmox 的响应信封
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Do 实现 Requester
func (c *Client) Do(ctx context.Context, method, path string, body Form) (json.RawMessage, error) {
	logger := zerolog.Ctx(ctx)
	requestID, _ := c.ids.GenerateRequestID()

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(body.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+APIPrefix+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Msg("Sending Proxmox API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("request_id", requestID).Str("path", path).Msg("Proxmox API request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apierror.FromStatus(resp.StatusCode, string(raw))
		logger.Warn().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Proxmox API returned error status")
		return nil, apiErr
	}

	logger.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Msg("Proxmox API request completed")

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope %s %s: %w", method, path, err)
	}
	return env.Data, nil
}

// Call 发送请求并把 data 解码为 T
// 除 JSON 解码外不做任何校验，畸形数据由调用方处理
func Call[T any](ctx context.Context, r Requester, method, path string, body Form) (T, error) {
	var out T
	data, err := r.Do(ctx, method, path, body)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return out, nil
}

// Get 发送 GET 请求
func Get[T any](ctx context.Context, r Requester, path string) (T, error) {
	return Call[T](ctx, r, http.MethodGet, path, nil)
}

// Post 发送 POST 请求，body 为 nil 时不发送请求体
func Post[T any](ctx context.Context, r Requester, path string, body Form) (T, error) {
	return Call[T](ctx, r, http.MethodPost, path, body)
}
