// Package movierec 是一个电影推荐引擎（User-based Collaborative Filtering）。
//
// 设计要点：
// - 快照优先: 所有推荐计算都在内存快照（prefs.Snapshot）上完成，Load 整体替换，读算不混杂
// - Pipeline 可组合: 召回 → 过滤 → 截断 通过 Node 串联，配置驱动（YAML/JSON）
// - 存储可替换: core.Store 领域接口 + Memory/Redis 实现，评分与影片目录走同一套存储
package movierec

import "github.com/rushteam/movierec/pipeline"

// 轻量 facade：便于用户直接 import "movierec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
