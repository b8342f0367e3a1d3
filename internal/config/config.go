package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

// 可用的儲存引擎
const (
	EngineBolt   = "bolt"
	EngineMemory = "memory"
	EngineMySQL  = "mysql"
)

// BoltConfig BoltDB 引擎設定
type BoltConfig struct {
	Path string `yaml:"path"`
	// Fresh true 時每次執行從空資料庫開始 (預設 true)
	Fresh *bool `yaml:"fresh"`
}

// Config 執行設定
// 輸入檔路徑不在這裡，由命令列位置參數提供
type Config struct {
	// Engine 儲存引擎: bolt | memory | mysql
	Engine   string       `yaml:"engine"`
	Bolt     BoltConfig   `yaml:"bolt"`
	WALPath  string       `yaml:"wal_path"`
	LogLevel string       `yaml:"log_level"`
	MySQL    mysql.Config `yaml:"mysql"`
}

// Load 讀取 yaml 設定
// 檔案不存在時回傳預設值 (引擎 bolt、fresh run)，設定檔是選配的
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	// 補全預設配置 (如果 yaml 沒寫)
	if cfg.Engine == "" {
		cfg.Engine = EngineBolt
	}
	if cfg.Bolt.Path == "" {
		cfg.Bolt.Path = defaults().Bolt.Path
	}
	if cfg.WALPath == "" {
		cfg.WALPath = defaults().WALPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults().LogLevel
	}
	return cfg, nil
}

// IsFresh 回傳 fresh-run 旗標 (未設定視為 true)
func (b BoltConfig) IsFresh() bool {
	if b.Fresh == nil {
		return true
	}
	return *b.Fresh
}

func defaults() Config {
	return Config{
		Engine: EngineBolt,
		Bolt: BoltConfig{
			Path: "db/accounts.db",
		},
		WALPath:  "wal.log",
		LogLevel: "info",
	}
}
