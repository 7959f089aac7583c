package propagation

import (
	"fmt"
	"strings"
)

type Kind string

const (
	// 注文作成で在庫を減らす
	KindReserve Kind = "reserve"
	// 注文削除で在庫を戻す
	KindRestock Kind = "restock"
)

// Mode は予約時の書き込み方法
type Mode string

const (
	// 予約時に計算した目標値で上書きする。同時注文は上書きし合うことがある。
	ModeReplace Mode = "replace"
	// stock >= qty のときだけ減らす。負にはならない。
	ModeGuarded Mode = "guarded"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeReplace, ModeGuarded:
		return m, nil
	case "":
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("unknown stock write mode %q", s)
	}
}

// Change は1冊分の変更
type Change struct {
	BookID string
	// 注文数（restockでは戻す数）
	Quantity int64
	// reserveでの目標値（available - requested）
	Target int64
}

type Job struct {
	OrderID string
	Kind    Kind
	Changes []Change
}

func ReserveJob(orderID string, changes []Change) Job {
	return Job{OrderID: orderID, Kind: KindReserve, Changes: changes}
}

func RestockJob(orderID string, changes []Change) Job {
	return Job{OrderID: orderID, Kind: KindRestock, Changes: changes}
}
