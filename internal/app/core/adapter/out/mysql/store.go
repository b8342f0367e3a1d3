package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
// 快照整份存成 JSON blob，跟 bolt adapter 用同一個編碼，schema 不追著聚合改
type sqlAccount struct {
	Client    uint16 `gorm:"primaryKey;column:client"`
	Snapshot  []byte `gorm:"column:snapshot;type:json"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// Store 是 MySQL 實作的帳戶快照儲存 (config 可切換的替代引擎)
type Store struct {
	client *mysql.Client
}

func NewStore(client *mysql.Client) *Store {
	return &Store{
		client: client,
	}
}

// Migrate 建立 accounts 表 (啟動時呼叫一次)
func (s *Store) Migrate() error {
	return s.client.DB().AutoMigrate(&sqlAccount{})
}

// GetAccount 點查詢
// 找不到 row 回傳 domain.ErrInvalidClientID，解碼失敗視為資料損毀
func (s *Store) GetAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error) {
	var row sqlAccount
	err := s.client.DB().WithContext(ctx).Where("client = ?", uint16(id)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidClientID
	}
	if err != nil {
		return nil, err
	}

	var acc domain.Account
	if err := json.Unmarshal(row.Snapshot, &acc); err != nil {
		return nil, fmt.Errorf("corrupt account snapshot for client %d: %w", id, err)
	}
	return &acc, nil
}

// GetOrCreateAccount 回傳既有帳戶，未見過的 id 回傳零餘額新帳戶
func (s *Store) GetOrCreateAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error) {
	acc, err := s.GetAccount(ctx, id)
	if errors.Is(err, domain.ErrInvalidClientID) {
		return domain.NewAccount(id), nil
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// SaveAccount 以 client 為鍵 upsert 整份快照
func (s *Store) SaveAccount(ctx context.Context, acc *domain.Account) error {
	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode account snapshot for client %d: %w", acc.Client, err)
	}

	row := sqlAccount{
		Client:   uint16(acc.Client),
		Snapshot: data,
	}
	return s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client"}},
			DoUpdates: clause.AssignmentColumns([]string{"snapshot", "updated_at"}),
		}).
		Create(&row).Error
}

// LoadAllAccounts 載入所有帳戶
func (s *Store) LoadAllAccounts(ctx context.Context) (map[domain.ClientID]*domain.Account, error) {
	var rows []sqlAccount
	if err := s.client.DB().WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make(map[domain.ClientID]*domain.Account, len(rows))
	for i := range rows {
		var acc domain.Account
		if err := json.Unmarshal(rows[i].Snapshot, &acc); err != nil {
			return nil, fmt.Errorf("corrupt account snapshot for client %d: %w", rows[i].Client, err)
		}
		accounts[acc.Client] = &acc
	}
	return accounts, nil
}

var _ usecase.AccountStore = (*Store)(nil)
