package filter

import (
	"context"
	"time"

	"github.com/rushteam/movierec/catalog"
	"github.com/rushteam/movierec/core"
)

// ReleaseDate 按上映日期过滤候选：只保留上映日期已知且严格早于 Before 的影片。
// 目录里查不到的影片、上映日期未知的影片都被剔除。
// 这是 engine.RecommendBefore 的日期约束在 Pipeline 形态下的对应物。
type ReleaseDate struct {
	// Catalog 是影片目录的读侧视图
	Catalog *catalog.Index

	// Before 是上映日期上限（不含当天）
	Before time.Time
}

func (f *ReleaseDate) Name() string {
	return "filter.release_date"
}

func (f *ReleaseDate) ShouldFilter(ctx context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if f.Catalog == nil {
		return false, nil
	}

	movie, found, err := f.Catalog.Movie(ctx, item.ID)
	if err != nil {
		return false, err
	}
	if !found || movie.ReleaseDate == nil {
		return true, nil
	}
	return !movie.ReleaseDate.Before(f.Before), nil
}

var _ Filter = (*ReleaseDate)(nil)
