package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

func newCore(t *testing.T) (*usecase.CoreUseCase, *memory.Store) {
	t.Helper()
	store, err := memory.NewStore(nil)
	require.NoError(t, err)
	return usecase.NewCoreUseCase(store), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func deposit(client domain.ClientID, tx domain.TxID, amount string) *domain.Deposit {
	return &domain.Deposit{Client: client, Tx: tx, Amount: dec(amount)}
}

func withdrawal(client domain.ClientID, tx domain.TxID, amount string) *domain.Withdrawal {
	return &domain.Withdrawal{Client: client, Tx: tx, Amount: dec(amount)}
}

// assertBalances 驗證餘額與恆等式 Total == Available + Held
func assertBalances(t *testing.T, store *memory.Store, client domain.ClientID, available, held, total string, locked bool) {
	t.Helper()
	acc, err := store.GetAccount(context.Background(), client)
	require.NoError(t, err)
	assert.True(t, acc.Available.Equal(dec(available)), "available: want %s got %s", available, acc.Available)
	assert.True(t, acc.Held.Equal(dec(held)), "held: want %s got %s", held, acc.Held)
	assert.True(t, acc.Total.Equal(dec(total)), "total: want %s got %s", total, acc.Total)
	assert.Equal(t, locked, acc.Locked)
	assert.True(t, acc.Total.Equal(acc.Available.Add(acc.Held)), "total must equal available + held")
}

func TestDeposit(t *testing.T) {
	core, store := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	assertBalances(t, store, 1, "1", "0", "1", false)

	acc, err := store.GetAccount(ctx, 1)
	require.NoError(t, err)
	require.Len(t, acc.Deposits, 1)
	assert.Equal(t, domain.TxID(1), acc.Deposits[0].Tx)
}

func TestDuplicateDeposit(t *testing.T) {
	core, store := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	err := core.PostAction(ctx, deposit(1, 1, "1.0"))
	assert.ErrorIs(t, err, domain.ErrInvalidTxID)

	// 第二筆被拒絕後狀態不變
	assertBalances(t, store, 1, "1", "0", "1", false)
}

func TestDuplicateTxAcrossKinds(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "5")))
	require.NoError(t, core.PostAction(ctx, withdrawal(1, 2, "1")))

	// tx 編號跨種類唯一: withdrawal 用過的編號不能再 deposit，反之亦然
	assert.ErrorIs(t, core.PostAction(ctx, deposit(1, 2, "1")), domain.ErrInvalidTxID)
	assert.ErrorIs(t, core.PostAction(ctx, withdrawal(1, 1, "1")), domain.ErrInvalidTxID)
}

func TestWithdrawal(t *testing.T) {
	core, store := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	require.NoError(t, core.PostAction(ctx, withdrawal(1, 2, "1.0")))
	assertBalances(t, store, 1, "0", "0", "0", false)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	core, store := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	err := core.PostAction(ctx, withdrawal(1, 2, "2.0"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// 拒絕後餘額、清單、鎖定狀態都不變
	assertBalances(t, store, 1, "1", "0", "1", false)
	acc, err := store.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, acc.Withdrawals)
}

func TestWithdrawalRequiresExistingAccount(t *testing.T) {
	core, _ := newCore(t)

	// 提款不會 lazy 建立帳戶
	err := core.PostAction(context.Background(), withdrawal(9, 1, "1.0"))
	assert.ErrorIs(t, err, domain.ErrInvalidClientID)
}

func TestDisputeLifecycle(t *testing.T) {
	core, store := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	assertBalances(t, store, 1, "1", "0", "1", false)

	require.NoError(t, core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 1}))
	assertBalances(t, store, 1, "0", "1", "1", false)

	acc, err := store.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, acc.Deposits)
	require.Len(t, acc.Disputes, 1)

	require.NoError(t, core.PostAction(ctx, &domain.Resolve{Client: 1, Tx: 1}))
	assertBalances(t, store, 1, "1", "0", "1", false)

	acc, err = store.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, acc.Disputes)
	require.Len(t, acc.Resolves, 1)

	require.NoError(t, core.PostAction(ctx, &domain.Chargeback{Client: 1, Tx: 1}))
	assertBalances(t, store, 1, "0", "0", "0", true)

	acc, err = store.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, acc.Resolves)
}

func TestLockedAccountRejectsEverything(t *testing.T) {
	core, store := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	require.NoError(t, core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 1}))
	require.NoError(t, core.PostAction(ctx, &domain.Resolve{Client: 1, Tx: 1}))
	require.NoError(t, core.PostAction(ctx, &domain.Chargeback{Client: 1, Tx: 1}))

	// 鎖定後任何動作都被拒絕
	assert.ErrorIs(t, core.PostAction(ctx, deposit(1, 2, "1.0")), domain.ErrAccountLocked)
	assert.ErrorIs(t, core.PostAction(ctx, withdrawal(1, 3, "1.0")), domain.ErrAccountLocked)
	assert.ErrorIs(t, core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 1}), domain.ErrAccountLocked)
	assert.ErrorIs(t, core.PostAction(ctx, &domain.Resolve{Client: 1, Tx: 1}), domain.ErrAccountLocked)
	assert.ErrorIs(t, core.PostAction(ctx, &domain.Chargeback{Client: 1, Tx: 1}), domain.ErrAccountLocked)

	assertBalances(t, store, 1, "0", "0", "0", true)
}

func TestTransitionsAreStrictlyOrdered(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))

	// 未經 dispute 不能 resolve，未經 resolve 不能 chargeback
	assert.ErrorIs(t, core.PostAction(ctx, &domain.Resolve{Client: 1, Tx: 1}), domain.ErrInvalidTxID)
	assert.ErrorIs(t, core.PostAction(ctx, &domain.Chargeback{Client: 1, Tx: 1}), domain.ErrInvalidTxID)

	require.NoError(t, core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 1}))

	// 爭議中: 不能重複 dispute，chargeback 仍不可達
	assert.ErrorIs(t, core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 1}), domain.ErrInvalidTxID)
	assert.ErrorIs(t, core.PostAction(ctx, &domain.Chargeback{Client: 1, Tx: 1}), domain.ErrInvalidTxID)
}

func TestWithdrawalIsNotDisputable(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "2.0")))
	require.NoError(t, core.PostAction(ctx, withdrawal(1, 2, "1.0")))

	// 只有 deposit 可被爭議
	err := core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidTxID)
}

func TestDisputeUnknownTx(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	err := core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 42})
	assert.ErrorIs(t, err, domain.ErrInvalidTxID)
}

func TestUnknownActionType(t *testing.T) {
	core, _ := newCore(t)
	err := core.PostAction(context.Background(), struct{}{})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestRejectedActionLeavesNoPartialMutation(t *testing.T) {
	core, store := newCore(t)
	ctx := context.Background()

	require.NoError(t, core.PostAction(ctx, deposit(1, 1, "1.0")))
	require.NoError(t, core.PostAction(ctx, &domain.Dispute{Client: 1, Tx: 1}))

	// resolve 一個不存在的 tx: 失敗的動作不觸發 Save，清單移除不外洩
	err := core.PostAction(ctx, &domain.Resolve{Client: 1, Tx: 99})
	assert.ErrorIs(t, err, domain.ErrInvalidTxID)

	acc, err := store.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, acc.Disputes, 1)
	assertBalances(t, store, 1, "0", "1", "1", false)
}
