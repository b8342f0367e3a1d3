package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	csv_adapter "github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/in/csvreader"
	bolt_adapter "github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/bolt"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/csvwriter"
	memory_adapter "github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
	"github.com/JoeShih716/go-payments-engine/internal/config"
	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
	"github.com/JoeShih716/go-payments-engine/pkg/wal"
)

const configPath = "config/config.yaml"

func main() {
	// 1. 輸入檔是唯一的必要位置參數
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: engine <transactions.csv>")
		os.Exit(1)
	}
	inputPath := os.Args[1]

	// 2. 載入設定 (設定檔是選配的，缺檔走預設值)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogger(cfg.LogLevel)

	// run_id 用於同一次執行的 log 關聯
	logger := log.WithField("run_id", uuid.New().String())

	ctx := context.Background()

	// 3. 依設定初始化儲存引擎
	var store usecase.AccountStore
	switch cfg.Engine {
	case config.EngineBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.Bolt.Path), 0755); err != nil {
			logger.Fatalf("Failed to prepare db dir: %v", err)
		}
		boltStore, err := bolt_adapter.NewStore(cfg.Bolt.Path, cfg.Bolt.IsFresh())
		if err != nil {
			logger.Fatalf("Failed to open bolt store: %v", err)
		}
		defer boltStore.Close()
		store = boltStore
	case config.EngineMemory:
		// 記憶體引擎搭配 WAL: fresh run 先清空日誌
		walFile, err := wal.New(cfg.WALPath)
		if err != nil {
			logger.Fatalf("Failed to init WAL: %v", err)
		}
		defer walFile.Close()
		if cfg.Bolt.IsFresh() {
			if err := walFile.Truncate(); err != nil {
				logger.Fatalf("Failed to truncate WAL: %v", err)
			}
		}
		memStore, err := memory_adapter.NewStore(walFile)
		if err != nil {
			logger.Fatalf("Failed to init memory store: %v", err)
		}
		store = memStore
	case config.EngineMySQL:
		dbClient, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			logger.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer dbClient.Close()
		sqlStore := mysql_adapter.NewStore(dbClient)
		if err := sqlStore.Migrate(); err != nil {
			logger.Fatalf("Failed to migrate accounts table: %v", err)
		}
		store = sqlStore
	default:
		logger.Fatalf("Invalid engine: %s", cfg.Engine)
	}

	// 4. 初始化 UseCase 與 ingest adapter
	coreUseCase := usecase.NewCoreUseCase(store)
	reader := csv_adapter.NewReader(coreUseCase)

	// 5. 逐筆處理輸入流 (嚴格循序，單筆失敗跳過，基礎設施錯誤中止)
	in, err := os.Open(inputPath)
	if err != nil {
		logger.Fatalf("Failed to open input file: %v", err)
	}
	defer in.Close()

	if err := reader.Run(ctx, in); err != nil {
		logger.Fatalf("Processing aborted: %v", err)
	}

	// 6. 輸出帳戶快照報表到 stdout
	accounts, err := store.LoadAllAccounts(ctx)
	if err != nil {
		logger.Fatalf("Failed to load accounts: %v", err)
	}
	if err := csvwriter.Write(os.Stdout, accounts); err != nil {
		logger.Fatalf("Failed to write report: %v", err)
	}
}

func setupLogger(level string) {
	lv, err := log.ParseLevel(level)
	if err != nil {
		lv = log.InfoLevel
	}
	log.SetLevel(lv)
	// 報表走 stdout，log 一律走 stderr
	log.SetOutput(os.Stderr)
}
