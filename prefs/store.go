package prefs

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rushteam/movierec/core"
)

// PrefStore 持有当前评分快照，并负责从数据源整体重建。
//
// 并发模型：
//   - Load 构建一个全新 Snapshot，构建完成后原子替换指针
//   - 读方（Snapshot / Get）永远看到旧快照或新快照，不会看到半成品
//   - 不提供增量更新：数据变化后再调一次 Load
type PrefStore struct {
	source core.RatingSource
	snap   atomic.Pointer[Snapshot]
}

func New(source core.RatingSource) *PrefStore {
	p := &PrefStore{source: source}
	empty := make(Snapshot)
	p.snap.Store(&empty)
	return p
}

// Load 从数据源重建快照并原子替换。空数据源得到空快照，不是错误。
// 同一时刻应只有一个调用方执行 Load；并发 Load 的结果是"最后写入者胜出"。
func (p *PrefStore) Load(ctx context.Context) error {
	users, err := p.source.AllUsers(ctx)
	if err != nil {
		return fmt.Errorf("prefs load: list users: %w", err)
	}

	next := make(Snapshot, len(users))
	for _, user := range users {
		ratings, err := p.source.UserRatings(ctx, user)
		if err != nil {
			return fmt.Errorf("prefs load: user %d: %w", user, err)
		}
		if len(ratings) == 0 {
			continue
		}
		next[user] = ratings
	}

	p.snap.Store(&next)
	return nil
}

// Snapshot 返回当前快照。首次 Load 之前返回空快照。
func (p *PrefStore) Snapshot() Snapshot {
	return *p.snap.Load()
}

// Get 返回用户的评分向量，未知用户返回 nil。
func (p *PrefStore) Get(userID int64) map[int64]float64 {
	return p.Snapshot().Get(userID)
}
