package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("未配置的项使用默认值", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: 9090\n")

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "default", cfg.Review.Model)
		assert.Equal(t, "model_id", cfg.Review.ForeignKey)
		assert.Equal(t, []string{"log"}, cfg.Notifier.Drivers)
		assert.Equal(t, 5*time.Second, cfg.Notifier.Timeout)
		assert.Equal(t, "review.created", cfg.Notifier.RabbitMQ.RoutingKey)
		t.Logf("✓ 默认值生效: %+v", cfg.Review)
	})

	t.Run("读取自定义外键列", func(t *testing.T) {
		path := writeConfig(t, "review:\n  model: custom\n  foreign_key: model_custom_fk\n")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "custom", cfg.Review.Model)
		assert.Equal(t, "model_custom_fk", cfg.Review.ForeignKey)
	})

	t.Run("环境变量覆盖配置文件", func(t *testing.T) {
		path := writeConfig(t, "review:\n  foreign_key: model_id\n")
		t.Setenv("REVIEWRATING_REVIEW_FOREIGN_KEY", "book_id")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "book_id", cfg.Review.ForeignKey)
	})

	t.Run("不支持的通知驱动", func(t *testing.T) {
		path := writeConfig(t, "notifier:\n  drivers: [kafka]\n")

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("sqlite驱动缺少路径", func(t *testing.T) {
		path := writeConfig(t, "database:\n  driver: sqlite\n")

		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		User: "root", Password: "pw", Host: "127.0.0.1", Port: 3306,
		DBName: "reviewrating", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t,
		"root:pw@tcp(127.0.0.1:3306)/reviewrating?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai",
		d.DSN())
}
