package usecase

import (
	"context"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// AccountStore 是帳戶快照的持久化介面
// 一個 client 對應一筆完整的聚合快照 (餘額 + 鎖定旗標 + 四個生命週期清單)
type AccountStore interface {
	// GetAccount 點查詢 帳戶不存在時回傳 domain.ErrInvalidClientID
	// 其他 I/O 失敗 (含快照損毀) 視為基礎設施錯誤，不屬於業務錯誤
	GetAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error)
	// GetOrCreateAccount 回傳既有帳戶，或未見過的 id 的零餘額新帳戶
	// 對合法的 id 永遠不會回傳業務錯誤
	GetOrCreateAccount(ctx context.Context, id domain.ClientID) (*domain.Account, error)
	// SaveAccount 以 client 為鍵整份覆寫快照
	// 對單一帳戶必須是原子的: 餘額與清單不可能被後續讀取看到不一致
	SaveAccount(ctx context.Context, acc *domain.Account) error
	// LoadAllAccounts 載入所有帳戶 (輸出報表用，順序不保證)
	LoadAllAccounts(ctx context.Context) (map[domain.ClientID]*domain.Account, error)
}
