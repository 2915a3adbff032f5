package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// Source 是召回源的抽象：给定请求上下文，产出一批候选影片。
type Source interface {
	// Name 返回召回源名称（写入 recall_source 标签）
	Name() string

	// Recall 生成候选集。没有候选时返回空结果，不是错误。
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
