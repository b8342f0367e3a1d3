package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

const accountBucket = "accounts"

// Store 是 BoltDB 實作的帳戶快照儲存 (預設引擎)
// 一個 client 一個 entry: key 是 little-endian 的 ClientID，value 是整份聚合的 JSON 快照
// SaveAccount 在單一 write transaction 裡完成一次 Put，對單一帳戶是原子的
type Store struct {
	db *bolt.DB
}

// NewStore 開啟 (或建立) path 上的 BoltDB 並準備 accounts bucket
//
// 參數:
//
//	path: 資料庫檔案路徑
//	fresh: true 時先刪除既有 bucket 再重建 (每次執行從空資料庫開始)
//
// 回傳:
//
//	*Store: Store 實例
//	error: 開啟或初始化錯誤
func NewStore(path string, fresh bool) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if fresh && tx.Bucket([]byte(accountBucket)) != nil {
			if err := tx.DeleteBucket([]byte(accountBucket)); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucketIfNotExists([]byte(accountBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close 釋放資料庫檔案鎖
func (s *Store) Close() error {
	return s.db.Close()
}

// accountKey ClientID 轉 little-endian bytes
func accountKey(id domain.ClientID) []byte {
	key := make([]byte, 2)
	binary.LittleEndian.PutUint16(key, uint16(id))
	return key
}

// GetAccount 點查詢
// 找不到 entry 回傳 domain.ErrInvalidClientID
// 快照解碼失敗屬於資料損毀，包裝成基礎設施錯誤往上拋 (呼叫端應中止整個 run)
func (s *Store) GetAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error) {
	var acc domain.Account

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(accountBucket)).Get(accountKey(id))
		if v == nil {
			return domain.ErrInvalidClientID
		}
		if err := json.Unmarshal(v, &acc); err != nil {
			return fmt.Errorf("corrupt account snapshot for client %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

// GetOrCreateAccount 回傳既有帳戶，未見過的 id 回傳零餘額新帳戶
// 新帳戶在這裡不落盤，第一次 SaveAccount 才會寫入
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

// SaveAccount 以 client 為鍵整份覆寫快照
func (s *Store) SaveAccount(ctx context.Context, acc *domain.Account) error {
	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode account snapshot for client %d: %w", acc.Client, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(accountBucket)).Put(accountKey(acc.Client), data)
	})
}

// LoadAllAccounts 載入所有帳戶 (報表輸出用)
func (s *Store) LoadAllAccounts(ctx context.Context) (map[domain.ClientID]*domain.Account, error) {
	accounts := make(map[domain.ClientID]*domain.Account)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(accountBucket)).ForEach(func(k, v []byte) error {
			var acc domain.Account
			if err := json.Unmarshal(v, &acc); err != nil {
				return fmt.Errorf("corrupt account snapshot: %w", err)
			}
			accounts[acc.Client] = &acc
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

var _ usecase.AccountStore = (*Store)(nil)
