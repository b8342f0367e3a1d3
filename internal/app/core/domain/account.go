package domain

import "github.com/shopspring/decimal"

// Account 帳戶聚合
// 餘額恆等式: Total == Available + Held (每次成功變更後必須成立)
// Locked == true 之後不允許任何變更
// 四個生命週期清單用來驗證後續的 dispute/resolve/chargeback
type Account struct {
	Client    ClientID        `json:"client"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`

	Deposits    []DepositRecord    `json:"deposits"`
	Withdrawals []WithdrawalRecord `json:"withdrawals"`
	Disputes    []DisputedRecord   `json:"disputes"`
	Resolves    []ResolvedRecord   `json:"resolves"`
}

// NewAccount 建立零餘額、未鎖定的新帳戶
// 帳戶在第一筆 deposit 時才被建立 (lazy)，建立後永不刪除
func NewAccount(id ClientID) *Account {
	return &Account{
		Client:      id,
		Available:   decimal.Zero,
		Held:        decimal.Zero,
		Total:       decimal.Zero,
		Deposits:    []DepositRecord{},
		Withdrawals: []WithdrawalRecord{},
		Disputes:    []DisputedRecord{},
		Resolves:    []ResolvedRecord{},
	}
}

// TxSeen 檢查 tx 是否已出現在 deposits 或 withdrawals
// TxID 是全域唯一的，不分種類，所以兩個清單都要查
func (a *Account) TxSeen(tx TxID) bool {
	for i := range a.Deposits {
		if a.Deposits[i].Tx == tx {
			return true
		}
	}
	for i := range a.Withdrawals {
		if a.Withdrawals[i].Tx == tx {
			return true
		}
	}
	return false
}

// TakeDeposit 依 tx 取出存款紀錄並從 Deposits 清單移除
// 移除必須發生在後繼狀態建構之前，同一個轉移才無法被重放
//
// 回傳:
//
//	DepositRecord: 被取出的存款紀錄
//	error: ErrInvalidTxID (tx 不在清單中)
func (a *Account) TakeDeposit(tx TxID) (DepositRecord, error) {
	for i := range a.Deposits {
		if a.Deposits[i].Tx == tx {
			rec := a.Deposits[i]
			a.Deposits = append(a.Deposits[:i], a.Deposits[i+1:]...)
			return rec, nil
		}
	}
	return DepositRecord{}, ErrInvalidTxID
}

// TakeDisputed 依原始存款的 tx 取出爭議紀錄並從 Disputes 清單移除
func (a *Account) TakeDisputed(tx TxID) (DisputedRecord, error) {
	for i := range a.Disputes {
		if a.Disputes[i].Deposit.Tx == tx {
			rec := a.Disputes[i]
			a.Disputes = append(a.Disputes[:i], a.Disputes[i+1:]...)
			return rec, nil
		}
	}
	return DisputedRecord{}, ErrInvalidTxID
}

// TakeResolved 依原始存款的 tx 取出已解除紀錄並從 Resolves 清單移除
func (a *Account) TakeResolved(tx TxID) (ResolvedRecord, error) {
	for i := range a.Resolves {
		if a.Resolves[i].Disputed.Deposit.Tx == tx {
			rec := a.Resolves[i]
			a.Resolves = append(a.Resolves[:i], a.Resolves[i+1:]...)
			return rec, nil
		}
	}
	return ResolvedRecord{}, ErrInvalidTxID
}

// Clone 回傳深拷貝
// store 交出的帳戶必須與內部狀態隔離，失敗動作的記憶體變更才不會外洩
func (a *Account) Clone() *Account {
	c := *a
	c.Deposits = append([]DepositRecord(nil), a.Deposits...)
	c.Withdrawals = append([]WithdrawalRecord(nil), a.Withdrawals...)
	c.Disputes = append([]DisputedRecord(nil), a.Disputes...)
	c.Resolves = append([]ResolvedRecord(nil), a.Resolves...)
	return &c
}

// SubNonNegative 帶負數防護的減法
// 減出負數視同餘額不足，整個動作中止且不留下部分變更
func SubNonNegative(a, b decimal.Decimal) (decimal.Decimal, error) {
	c := a.Sub(b)
	if c.IsNegative() {
		return decimal.Decimal{}, ErrInsufficientFunds
	}
	return c, nil
}
