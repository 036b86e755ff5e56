// Package logger 基于zap的结构化日志
//
// 设计说明：
// 1. 日志级别、格式、输出位置全部来自配置（config.LogConfig）
// 2. json格式用于生产环境（便于ELK采集），console格式用于本地开发
// 3. 输出到文件时自动创建目录，同时保留stdout输出
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 根据配置创建zap日志
// 非法的日志级别回退为info，不返回错误
func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if strings.ToLower(cfg.Level) == "debug" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	// 输出位置
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	switch output {
	case "stdout", "stderr":
		zapConfig.OutputPaths = []string{output}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	default:
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		zapConfig.OutputPaths = []string{output, "stdout"}
		zapConfig.ErrorOutputPaths = []string{output, "stderr"}
	}

	// 输出格式
	if f := strings.ToLower(cfg.Format); f == "console" || f == "text" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig.Encoding = "json"
	}

	zapConfig.DisableCaller = !cfg.EnableCaller

	l, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return l, nil
}

// ParseLevel 解析日志级别
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
