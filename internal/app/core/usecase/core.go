package usecase

import (
	"context"
	"fmt"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層: 交易狀態機
//
// 每個 (client, tx) 的合法轉移，嚴格由左至右:
//
//	[absent] --Deposit--> Deposited --Dispute--> Disputed --Resolve--> Resolved --Chargeback--> Chargedback(終態)
//	[absent] --Withdrawal--> Withdrawn(終態，不可爭議)
//
// 每個成功的動作以一次完整的 SaveAccount 結束
// 失敗的動作不做任何 Save，取出的帳戶副本連同記憶體中的清單移除一起被丟棄
type CoreUseCase struct {
	store AccountStore
}

func NewCoreUseCase(store AccountStore) *CoreUseCase {
	return &CoreUseCase{
		store: store,
	}
}

// PostAction 套用一個已驗證的動作
// 依具體型別分派，未知型別回傳 ErrInvalidType (保護 default case)
func (c *CoreUseCase) PostAction(ctx context.Context, action any) error {
	switch act := action.(type) {
	case *domain.Deposit:
		return c.handleDeposit(ctx, act)
	case *domain.Withdrawal:
		return c.handleWithdrawal(ctx, act)
	case *domain.Dispute:
		return c.handleDispute(ctx, act)
	case *domain.Resolve:
		return c.handleResolve(ctx, act)
	case *domain.Chargeback:
		return c.handleChargeback(ctx, act)
	default:
		return fmt.Errorf("%w: %T", domain.ErrInvalidType, action)
	}
}

// handleDeposit 處理存款
// 帳戶在第一筆 deposit 時 lazy 建立
// tx 不得出現在 deposits 或 withdrawals (TxID 全域唯一，跨種類檢查)
func (c *CoreUseCase) handleDeposit(ctx context.Context, act *domain.Deposit) error {
	acc, err := c.store.GetOrCreateAccount(ctx, act.Client)
	if err != nil {
		return err
	}
	if acc.Locked {
		return domain.ErrAccountLocked
	}
	if acc.TxSeen(act.Tx) {
		return domain.ErrInvalidTxID
	}

	acc.Available = acc.Available.Add(act.Amount)
	acc.Total = acc.Total.Add(act.Amount)
	acc.Deposits = append(acc.Deposits, domain.DepositRecord{
		Client: act.Client,
		Tx:     act.Tx,
		Amount: act.Amount,
	})

	return c.store.SaveAccount(ctx, acc)
}

// handleWithdrawal 處理提款
// 提款不建立帳戶 (GetAccount 而非 GetOrCreateAccount)
// 減法使用負數防護，扣到負數即回傳 ErrInsufficientFunds 並整筆中止
func (c *CoreUseCase) handleWithdrawal(ctx context.Context, act *domain.Withdrawal) error {
	acc, err := c.store.GetAccount(ctx, act.Client)
	if err != nil {
		return err
	}
	if acc.Locked {
		return domain.ErrAccountLocked
	}
	if acc.TxSeen(act.Tx) {
		return domain.ErrInvalidTxID
	}
	if acc.Available.LessThan(act.Amount) {
		return domain.ErrInsufficientFunds
	}

	if acc.Available, err = domain.SubNonNegative(acc.Available, act.Amount); err != nil {
		return err
	}
	if acc.Total, err = domain.SubNonNegative(acc.Total, act.Amount); err != nil {
		return err
	}
	acc.Withdrawals = append(acc.Withdrawals, domain.WithdrawalRecord{
		Client: act.Client,
		Tx:     act.Tx,
		Amount: act.Amount,
	})

	return c.store.SaveAccount(ctx, acc)
}

// handleDispute 處理爭議
// 只有 deposit 可以被爭議: 從 Deposits 清單取出 (移除)，金額由 available 轉入 held
func (c *CoreUseCase) handleDispute(ctx context.Context, act *domain.Dispute) error {
	acc, err := c.store.GetAccount(ctx, act.Client)
	if err != nil {
		return err
	}
	if acc.Locked {
		return domain.ErrAccountLocked
	}

	dep, err := acc.TakeDeposit(act.Tx)
	if err != nil {
		return err
	}
	disputed, err := dep.Dispute(act)
	if err != nil {
		return err
	}

	if acc.Available, err = domain.SubNonNegative(acc.Available, dep.Amount); err != nil {
		return err
	}
	acc.Held = acc.Held.Add(dep.Amount)
	acc.Disputes = append(acc.Disputes, disputed)

	return c.store.SaveAccount(ctx, acc)
}

// handleResolve 處理爭議解除
// 從 Disputes 清單取出，金額由 held 放回 available
func (c *CoreUseCase) handleResolve(ctx context.Context, act *domain.Resolve) error {
	acc, err := c.store.GetAccount(ctx, act.Client)
	if err != nil {
		return err
	}
	if acc.Locked {
		return domain.ErrAccountLocked
	}

	disputed, err := acc.TakeDisputed(act.Tx)
	if err != nil {
		return err
	}
	amount := disputed.Deposit.Amount
	resolved, err := disputed.Resolve(act)
	if err != nil {
		return err
	}

	if acc.Held, err = domain.SubNonNegative(acc.Held, amount); err != nil {
		return err
	}
	acc.Available = acc.Available.Add(amount)
	acc.Resolves = append(acc.Resolves, resolved)

	return c.store.SaveAccount(ctx, acc)
}

// handleChargeback 處理拒付
// 從 Resolves 清單取出，扣減 available/total 並鎖定帳戶
// 終態紀錄用完即丟，之後不會再有任何查找需要它
func (c *CoreUseCase) handleChargeback(ctx context.Context, act *domain.Chargeback) error {
	acc, err := c.store.GetAccount(ctx, act.Client)
	if err != nil {
		return err
	}
	if acc.Locked {
		return domain.ErrAccountLocked
	}

	resolved, err := acc.TakeResolved(act.Tx)
	if err != nil {
		return err
	}
	amount := resolved.Disputed.Deposit.Amount
	if _, err = resolved.Chargeback(act); err != nil {
		return err
	}

	if acc.Available, err = domain.SubNonNegative(acc.Available, amount); err != nil {
		return err
	}
	if acc.Total, err = domain.SubNonNegative(acc.Total, amount); err != nil {
		return err
	}
	acc.Locked = true

	return c.store.SaveAccount(ctx, acc)
}
