// Package builders 提供内置 Node 的配置构建器。
// import 本包即注册纯配置 Node（rerank.topn、filter.dsl）；
// 依赖运行态对象的 Node（recall.usercf、filter.release_date）
// 需要调用 RegisterEngineNodes 显式注入依赖。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/movierec/catalog"
	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/conv"
	"github.com/rushteam/movierec/prefs"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
)

func init() {
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("filter.dsl", BuildDSLNode)
}

// RegisterEngineNodes 注册依赖评分快照/影片目录的 Node 构建器。
// p 不能为 nil；ix 可为 nil（此时 filter.release_date 与带目录的 filter.dsl 不可用）。
func RegisterEngineNodes(p *prefs.PrefStore, ix *catalog.Index) {
	config.Register("recall.usercf", func(cfg map[string]interface{}) (pipeline.Node, error) {
		if p == nil {
			return nil, fmt.Errorf("recall.usercf: pref store not provided")
		}
		return &recall.UserCF{
			Prefs: p,
			TopK:  int(conv.ConfigGetInt64(cfg, "top_k", 0)),
		}, nil
	})

	config.Register("filter.release_date", func(cfg map[string]interface{}) (pipeline.Node, error) {
		if ix == nil {
			return nil, fmt.Errorf("filter.release_date: catalog not provided")
		}
		raw := conv.ConfigGetString(cfg, "before", "")
		if raw == "" {
			return nil, fmt.Errorf("filter.release_date: before is required")
		}
		before, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("filter.release_date: parse before: %w", err)
		}
		return &filter.Node{
			Filters: []filter.Filter{
				&filter.ReleaseDate{Catalog: ix, Before: before},
			},
		}, nil
	})

	// 覆盖纯配置版本，让表达式能访问 movie.*
	config.Register("filter.dsl", func(cfg map[string]interface{}) (pipeline.Node, error) {
		node, err := buildDSLNode(cfg, ix)
		if err != nil {
			return nil, err
		}
		return node, nil
	})
}

// BuildTopNNode 构建 rerank.topn。
func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: int(conv.ConfigGetInt64(cfg, "n", 0)),
	}, nil
}

// BuildDSLNode 构建不带目录的 filter.dsl（表达式里 movie 恒为 null）。
func BuildDSLNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return buildDSLNode(cfg, nil)
}

func buildDSLNode(cfg map[string]interface{}, ix *catalog.Index) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("filter.dsl: expr is required")
	}
	return &filter.Node{
		Filters: []filter.Filter{
			&filter.DSL{Expr: expr, Catalog: ix},
		},
	}, nil
}
