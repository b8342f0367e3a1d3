package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
	"github.com/JoeShih716/go-payments-engine/pkg/wal"
)

// Store 是記憶體實作的帳戶快照儲存
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	mu: RWMutex 用於保護帳戶資料
//	wal: 快照日誌 (可為 nil，純記憶體模式)
//
// 讀取一律回傳深拷貝: 失敗動作在副本上做的清單移除絕不能外洩回 store，
// SaveAccount 是變更可見的唯一途徑
type Store struct {
	accounts map[domain.ClientID]*domain.Account
	mu       sync.RWMutex
	wal      *wal.WAL
}

// NewStore 建立一個新的記憶體 Store
// wal 不為 nil 時先重放日誌恢復狀態 (同一個 client 以最後一筆快照為準)
//
// 回傳:
//
//	*Store: Store 實例
//	error: WAL 恢復失敗
func NewStore(w *wal.WAL) (*Store, error) {
	s := &Store{
		accounts: make(map[domain.ClientID]*domain.Account),
		wal:      w,
	}
	if w != nil {
		if err := s.recoverFromWAL(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// recoverFromWAL 從日誌恢復帳戶狀態
// 只有 NewStore 呼叫，無需 Lock (單執行緒)
func (s *Store) recoverFromWAL() error {
	return s.wal.ReadAll(func(jsonRaw []byte) error {
		var acc domain.Account
		if err := json.Unmarshal(jsonRaw, &acc); err != nil {
			return err
		}
		s.accounts[acc.Client] = &acc
		return nil
	})
}

// GetAccount 點查詢 找不到回傳 domain.ErrInvalidClientID
func (s *Store) GetAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrInvalidClientID
	}
	return acc.Clone(), nil
}

// GetOrCreateAccount 回傳既有帳戶，或零餘額新帳戶 (不落地，等第一次 Save)
func (s *Store) GetOrCreateAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return domain.NewAccount(id), nil
	}
	return acc.Clone(), nil
}

// SaveAccount 整份覆寫快照
// 先寫 WAL 再更新 Map (Critical Path)，兩者都拿著同一份快照，不會出現部分寫入
func (s *Store) SaveAccount(ctx context.Context, acc *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wal != nil {
		if err := s.wal.Write(acc); err != nil {
			return err
		}
	}

	s.accounts[acc.Client] = acc.Clone()
	return nil
}

// LoadAllAccounts 載入所有帳戶 (深拷貝，報表輸出用)
func (s *Store) LoadAllAccounts(ctx context.Context) (map[domain.ClientID]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make(map[domain.ClientID]*domain.Account, len(s.accounts))
	for id, acc := range s.accounts {
		accounts[id] = acc.Clone()
	}
	return accounts, nil
}

var _ usecase.AccountStore = (*Store)(nil)
