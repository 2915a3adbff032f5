package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/engine"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
	"github.com/rushteam/movierec/prefs"
)

// UserCF 是基于用户的协同过滤召回源（User-based CF, u2i）。
//
// 核心思想："兴趣相似的用户，喜欢相似的影片"
//
// 计算全部委托给 engine 包：对当前快照计算目标用户与其他用户的
// 皮尔逊相似度，再按相似度加权聚合邻居评分，产出未看影片的预测分。
// 这里只负责把结果包装成 Pipeline 的候选形态并打上解释标签。
//
// 目标用户不在快照内时返回空候选（冷启动由上层兜底）。
type UserCF struct {
	// Prefs 是评分快照的持有者；每次召回读当前快照，不触发 Load
	Prefs *prefs.PrefStore

	// TopK 最终返回的候选数量；<= 0 表示不截断
	TopK int

	// Similarity 相似度函数；nil 时使用 engine.Pearson
	Similarity engine.SimilarityFunc
}

func (r *UserCF) Name() string {
	return "recall.usercf" // u2i (User-to-Item)
}

func (r *UserCF) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserCF) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Prefs == nil || rctx == nil || rctx.UserID == 0 {
		return nil, nil
	}

	snap := r.Prefs.Snapshot()
	recs := engine.GetRecommendations(snap, rctx.UserID, r.Similarity)
	if len(recs) == 0 {
		return nil, nil
	}
	if r.TopK > 0 && len(recs) > r.TopK {
		recs = recs[:r.TopK]
	}

	out := make([]*core.Item, 0, len(recs))
	for _, rec := range recs {
		it := core.NewItem(rec.MovieID)
		it.Score = rec.Score
		it.PutLabel("recall_source", utils.Label{Value: "usercf", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// Process 让 UserCF 直接作为 Pipeline Node 使用：忽略输入 items，产出候选。
func (r *UserCF) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

var _ Source = (*UserCF)(nil)
var _ pipeline.Node = (*UserCF)(nil)
