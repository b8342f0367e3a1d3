package csvreader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

// Reader 是 CSV 輸入的 driving adapter
// 逐列轉成具型別的 domain 動作後交給 use case 執行
// 格式錯誤與業務拒絕都只跳過該列 (log 後繼續)，整個輸入流保證處理到底
type Reader struct {
	core *usecase.CoreUseCase
}

func NewReader(core *usecase.CoreUseCase) *Reader {
	return &Reader{
		core: core,
	}
}

// Run 處理整個輸入流
// 預期第一列是 header (type,client,tx,amount)
//
// 參數:
//
//	ctx: 上下文
//	in: CSV 輸入流
//
// 回傳:
//
//	error: 基礎設施錯誤 (store I/O、快照損毀)，業務拒絕不會走到這裡
func (r *Reader) Run(ctx context.Context, in io.Reader) error {
	cr := csv.NewReader(in)
	// dispute/resolve/chargeback 的 amount 欄可能整個省略，不檢查欄位數
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	// 跳過 header
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	line := 1
	for {
		line++
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			log.WithField("line", line).Debugf("skip malformed row: %v", err)
			continue
		}

		rec, err := parseRecord(row)
		if err != nil {
			log.WithField("line", line).Debugf("skip unparsable row: %v", err)
			continue
		}

		action, err := buildAction(rec)
		if err != nil {
			// 建構錯誤: 單筆復原，無任何副作用
			log.WithField("line", line).Debugf("skip invalid record: %v", err)
			continue
		}

		if err := r.core.PostAction(ctx, action); err != nil {
			if isActionError(err) {
				// 動作被拒絕: 無部分寫入，跳過繼續
				log.WithFields(log.Fields{
					"line":   line,
					"type":   rec.Type.String(),
					"client": rec.Client,
					"tx":     rec.Tx,
				}).Debugf("action rejected: %v", err)
				continue
			}
			// store I/O 或快照損毀，中止整個 run
			return err
		}
	}
}

// parseRecord 把一列原始欄位轉成鬆散的 Record
// 欄位可能帶前後空白，解析前先 trim
func parseRecord(row []string) (domain.Record, error) {
	if len(row) < 3 {
		return domain.Record{}, errors.New("row needs at least type, client, tx")
	}

	txType, err := domain.ParseTransactionType(strings.TrimSpace(row[0]))
	if err != nil {
		return domain.Record{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 16)
	if err != nil {
		return domain.Record{}, err
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 32)
	if err != nil {
		return domain.Record{}, err
	}

	rec := domain.Record{
		Type:   txType,
		Client: domain.ClientID(client),
		Tx:     domain.TxID(tx),
	}

	// amount 欄允許省略或留空白
	if len(row) > 3 {
		if raw := strings.TrimSpace(row[3]); raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return domain.Record{}, err
			}
			rec.Amount = &amount
		}
	}

	return rec, nil
}

// buildAction 依宣告的類型走對應的建構子
// 建構子內部會再驗證一次類型與金額欄位
func buildAction(rec domain.Record) (any, error) {
	switch rec.Type {
	case domain.TransactionTypeDeposit:
		return domain.NewDeposit(rec)
	case domain.TransactionTypeWithdrawal:
		return domain.NewWithdrawal(rec)
	case domain.TransactionTypeDispute:
		return domain.NewDispute(rec)
	case domain.TransactionTypeResolve:
		return domain.NewResolve(rec)
	case domain.TransactionTypeChargeback:
		return domain.NewChargeback(rec)
	default:
		return nil, domain.ErrInvalidType
	}
}

// isActionError 判斷是否為可單筆復原的業務拒絕
func isActionError(err error) bool {
	return errors.Is(err, domain.ErrAccountLocked) ||
		errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrInvalidClientID) ||
		errors.Is(err, domain.ErrInvalidTxID)
}
