package csvwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// Write 輸出帳戶快照報表
// header: client,available,held,total,locked
// 列順序不保證 (依 store 迭代順序)
func Write(w io.Writer, accounts map[domain.ClientID]*domain.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}

	for _, acc := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acc.Client), 10),
			FormatAmount(acc.Available),
			FormatAmount(acc.Held),
			FormatAmount(acc.Total),
			strconv.FormatBool(acc.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatAmount 金額輸出規則
// 恰好為零輸出 "0"，其餘四捨五入到小數點後 4 位
func FormatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.StringFixed(4)
}
