package core

import "github.com/rushteam/movierec/pkg/utils"

// RecommendContext 承载请求级信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID int64  // 目标用户（整数 ID，与评分快照一致）
	Scene  string // 场景标识，如 "detail" / "homepage"

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 date_limit、query 等），
	// 由边界层校验并写入，Node 内只读取不解析
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
