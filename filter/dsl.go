package filter

import (
	"context"

	"github.com/rushteam/movierec/catalog"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/dsl"
)

// DSL 是表达式驱动的过滤器：Expr 求值为 true 的候选被保留，false 被剔除。
// 把发版才能改的过滤策略挪进配置，例如：
//
//	expr: 'movie != null && movie.year < 2010'
//	expr: 'item.score > 30.0 && label.recall_source.contains("usercf")'
//
// Catalog 可选：提供时表达式里能访问 movie.*（目录查不到时 movie 为 null），
// 不提供时 movie 恒为 null。
type DSL struct {
	// Expr 是 CEL 表达式；空表达式保留所有候选
	Expr string

	// Catalog 用于给表达式补充影片元数据，可为 nil
	Catalog *catalog.Index
}

func (f *DSL) Name() string {
	return "filter.dsl"
}

func (f *DSL) ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}

	var movie *core.Movie
	if f.Catalog != nil {
		m, found, err := f.Catalog.Movie(ctx, item.ID)
		if err != nil {
			return false, err
		}
		if found {
			movie = m
		}
	}

	keep, err := dsl.NewEval(item, movie, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

var _ Filter = (*DSL)(nil)
