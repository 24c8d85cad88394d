// Package proxmux 提供 proxmux 终端界面的主入口和初始化逻辑
package proxmux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jimmicro/grace"
	"github.com/jimyag/proxmux/internal/proxmux/config"
	"github.com/jimyag/proxmux/internal/proxmux/service"
	"github.com/jimyag/proxmux/internal/proxmux/tui"
	"github.com/jimyag/proxmux/pkg/pveapi"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg     *config.Config
	logger  zerolog.Logger
	logFile io.Closer
	cluster *service.ClusterService
	tracker *service.TaskTracker
	program *tea.Program
}

// New 校验配置并创建唯一的 API 客户端，之后所有页面共用
func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, logFile := newLogger(cfg)
	zerolog.DefaultContextLogger = &logger

	client := pveapi.New(pveapi.Config{
		Host:               cfg.Host,
		User:               cfg.User,
		TokenID:            cfg.TokenID,
		TokenSecret:        cfg.TokenSecret,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})

	cluster, err := service.NewClusterService(client)
	if err != nil {
		return nil, err
	}
	tracker, err := service.NewTaskTracker(client)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("host", cfg.Host).
		Str("user", cfg.User).
		Str("config", cfg.File).
		Bool("insecure_skip_verify", cfg.InsecureSkipVerify).
		Msg("proxmux initialized")

	return &Server{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		cluster: cluster,
		tracker: tracker,
	}, nil
}

// newLogger 终端被界面占用，日志只写文件
// 文件打不开时丢弃日志，不影响界面
func newLogger(cfg *config.Config) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o750); err != nil {
		return zerolog.Nop(), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), f
}

// Run 运行界面直到用户退出
// 信号和超时由 grace.Shepherd 管理，Shutdown 会让界面退出
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = s.logger.WithContext(ctx)
	defer s.closeLog()

	app := tui.NewApp(ctx, s.cluster, s.tracker, s.cfg.RefreshInterval)
	s.program = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	shepherd := grace.NewShepherd(
		[]grace.Grace{&signalWatcher{server: s}},
		grace.WithTimeout(5*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)
	go shepherd.Start(ctx)

	_, err := s.program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		s.logger.Error().Err(err).Msg("Terminal UI exited with error")
		return fmt.Errorf("run terminal ui: %w", err)
	}
	s.logger.Info().Msg("proxmux exited")
	return nil
}

// Shutdown 让界面退出
func (s *Server) Shutdown(context.Context) error {
	if s.program != nil {
		s.program.Quit()
	}
	return nil
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "proxmux"
}

func (s *Server) closeLog() {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

// signalWatcher 把进程信号转换为界面退出
type signalWatcher struct {
	server *Server
}

// Run 阻塞到 ctx 结束，界面退出时 ctx 会被取消
func (w *signalWatcher) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (w *signalWatcher) Shutdown(ctx context.Context) error {
	return w.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (w *signalWatcher) Name() string {
	return "terminal ui"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
