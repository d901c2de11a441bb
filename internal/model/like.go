package model

import "time"

// Like は(ユーザー, 対象リソース)の「いいね」関係を表す。
// 同じペアの行は高々1件のみ存在する（ストア側のUNIQUE制約が不変条件を守る）。
// 行の有無だけが状態であり、更新は行われない。
type Like struct {
	ID        int64
	UserID    int64
	TargetID  int64
	CreatedAt time.Time
}
