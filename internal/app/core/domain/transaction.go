package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID 是帳戶的自然鍵，整個生命週期不變
type ClientID uint16

// TxID 在全域交易日誌中唯一 (deposit/withdrawal 共用同一個編號空間)
// dispute/resolve/chargeback 透過它回溯到原始的 deposit
type TxID uint32

// TransactionType 交易類型
// 為了極致節省記憶體，使用 uint8
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = 1
	// 提款
	TransactionTypeWithdrawal TransactionType = 2
	// 爭議
	TransactionTypeDispute TransactionType = 3
	// 爭議解除
	TransactionTypeResolve TransactionType = 4
	// 拒付 (終態)
	TransactionTypeChargeback TransactionType = 5
)

// String 回傳小寫標準名稱 (與輸入格式一致)
func (t TransactionType) String() string {
	switch t {
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeWithdrawal:
		return "withdrawal"
	case TransactionTypeDispute:
		return "dispute"
	case TransactionTypeResolve:
		return "resolve"
	case TransactionTypeChargeback:
		return "chargeback"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// ParseTransactionType 解析交易類型字串
// 小寫為標準格式，但大小寫不敏感
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(s) {
	case "deposit":
		return TransactionTypeDeposit, nil
	case "withdrawal":
		return TransactionTypeWithdrawal, nil
	case "dispute":
		return TransactionTypeDispute, nil
	case "resolve":
		return TransactionTypeResolve, nil
	case "chargeback":
		return TransactionTypeChargeback, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// Record 是尚未驗證的輸入列 (鬆散型別)
// Amount 對 dispute/resolve/chargeback 必須為 nil
type Record struct {
	Type   TransactionType
	Client ClientID
	Tx     TxID
	Amount *decimal.Decimal
}

// Deposit 已驗證的存款動作
type Deposit struct {
	Client ClientID
	Tx     TxID
	Amount decimal.Decimal
}

// Withdrawal 已驗證的提款動作
type Withdrawal struct {
	Client ClientID
	Tx     TxID
	Amount decimal.Decimal
}

// Dispute 爭議請求 只帶既有交易的編號，不允許攜帶金額
type Dispute struct {
	Client ClientID
	Tx     TxID
}

// Resolve 爭議解除請求
type Resolve struct {
	Client ClientID
	Tx     TxID
}

// Chargeback 拒付請求
type Chargeback struct {
	Client ClientID
	Tx     TxID
}

// NewDeposit 從鬆散的 Record 建構存款動作
//
// 回傳:
//
//	*Deposit: 驗證後的存款動作
//	error: ErrInvalidType / ErrMissingAmount (建構失敗不產生任何副作用)
func NewDeposit(r Record) (*Deposit, error) {
	if r.Type != TransactionTypeDeposit {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, r.Type)
	}
	if r.Amount == nil {
		return nil, ErrMissingAmount
	}
	return &Deposit{Client: r.Client, Tx: r.Tx, Amount: *r.Amount}, nil
}

// NewWithdrawal 從鬆散的 Record 建構提款動作
func NewWithdrawal(r Record) (*Withdrawal, error) {
	if r.Type != TransactionTypeWithdrawal {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, r.Type)
	}
	if r.Amount == nil {
		return nil, ErrMissingAmount
	}
	return &Withdrawal{Client: r.Client, Tx: r.Tx, Amount: *r.Amount}, nil
}

// NewDispute 建構爭議請求
// dispute 只作用於既有的 tx，絕不允許攜帶新的金額
func NewDispute(r Record) (*Dispute, error) {
	if r.Type != TransactionTypeDispute {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, r.Type)
	}
	if r.Amount != nil {
		return nil, ErrHasAmount
	}
	return &Dispute{Client: r.Client, Tx: r.Tx}, nil
}

// NewResolve 建構爭議解除請求
func NewResolve(r Record) (*Resolve, error) {
	if r.Type != TransactionTypeResolve {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, r.Type)
	}
	if r.Amount != nil {
		return nil, ErrHasAmount
	}
	return &Resolve{Client: r.Client, Tx: r.Tx}, nil
}

// NewChargeback 建構拒付請求
func NewChargeback(r Record) (*Chargeback, error) {
	if r.Type != TransactionTypeChargeback {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, r.Type)
	}
	if r.Amount != nil {
		return nil, ErrHasAmount
	}
	return &Chargeback{Client: r.Client, Tx: r.Tx}, nil
}

// DepositRecord 已入帳的存款快照 (不可變)
// 一旦被接受，它的 TxID 就永遠不能再被任何 deposit/withdrawal 重複使用
type DepositRecord struct {
	Client ClientID        `json:"client"`
	Tx     TxID            `json:"tx"`
	Amount decimal.Decimal `json:"amount"`
}

// WithdrawalRecord 已出帳的提款快照 (終態，不可被爭議)
type WithdrawalRecord struct {
	Client ClientID        `json:"client"`
	Tx     TxID            `json:"tx"`
	Amount decimal.Decimal `json:"amount"`
}

// DisputedRecord 持有被消耗掉的 DepositRecord
// 只在爭議期間存在，前一狀態的紀錄已從 Deposits 清單中移除
type DisputedRecord struct {
	Deposit DepositRecord `json:"deposit"`
}

// ResolvedRecord 持有被消耗掉的 DisputedRecord
type ResolvedRecord struct {
	Disputed DisputedRecord `json:"disputed"`
}

// ChargedbackRecord 終態
// 不會被持久化，唯一的外部效果是鎖定帳戶與扣減餘額
type ChargedbackRecord struct {
	Resolved ResolvedRecord
}

// Dispute 將存款紀錄轉移為爭議狀態
// tx/client 不符時回傳錯誤 (呼叫端已先比對過 tx，這裡是 double check)
func (d DepositRecord) Dispute(req *Dispute) (DisputedRecord, error) {
	if req.Tx != d.Tx {
		return DisputedRecord{}, ErrInvalidTxID
	}
	if req.Client != d.Client {
		return DisputedRecord{}, ErrInvalidClientID
	}
	return DisputedRecord{Deposit: d}, nil
}

// Resolve 將爭議紀錄轉移為已解除狀態
func (d DisputedRecord) Resolve(req *Resolve) (ResolvedRecord, error) {
	if req.Tx != d.Deposit.Tx {
		return ResolvedRecord{}, ErrInvalidTxID
	}
	if req.Client != d.Deposit.Client {
		return ResolvedRecord{}, ErrInvalidClientID
	}
	return ResolvedRecord{Disputed: d}, nil
}

// Chargeback 將已解除紀錄轉移為拒付終態
func (r ResolvedRecord) Chargeback(req *Chargeback) (ChargedbackRecord, error) {
	if req.Tx != r.Disputed.Deposit.Tx {
		return ChargedbackRecord{}, ErrInvalidTxID
	}
	if req.Client != r.Disputed.Deposit.Client {
		return ChargedbackRecord{}, ErrInvalidClientID
	}
	return ChargedbackRecord{Resolved: r}, nil
}
