package domain

import "errors"

// 建構錯誤: 從鬆散的 Record 轉成具型別動作時發生
// 一律在單筆層級復原 (丟棄該筆，繼續處理後續輸入)
var (
	// ErrInvalidType 宣告的類型與目標動作不符
	ErrInvalidType = errors.New("invalid transaction type")

	// ErrMissingAmount deposit/withdrawal 缺少金額
	ErrMissingAmount = errors.New("amount is required")

	// ErrHasAmount dispute/resolve/chargeback 不允許攜帶金額
	ErrHasAmount = errors.New("amount must be empty")
)

// 動作錯誤: 已驗證的動作套用到帳戶時被拒絕
// 同樣在單筆層級復原，且不留下任何部分寫入
// 此分類是開放式的，新的業務規則預期會增加新的拒絕原因
var (
	// ErrAccountLocked 帳戶已鎖定，任何動作都不得執行
	ErrAccountLocked = errors.New("account locked")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidClientID 找不到帳戶，或 client 與紀錄不符
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidTxID tx 重複、不存在、或不在要求的生命週期狀態
	ErrInvalidTxID = errors.New("invalid tx id")
)
