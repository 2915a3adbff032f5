package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/movierec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("movie", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是推荐结果的表达式解释器，使用 CEL (Common Expression Language) 实现。
// 用于把"推荐策略"写成可配置的表达式，而不是硬编码在 Filter 里。
//
// 可访问的变量：
//   - item.id / item.score：候选影片 ID 与预测分
//   - label.xxx：候选上的解释标签（取 Label.Value）
//   - movie.title / movie.director / movie.year / movie.cast：影片元数据（无目录时为 null）
//   - rctx.user_id / rctx.scene：请求上下文
//
// 示例：
//   - `item.score > 30.0` → 只保留预测分高于 30 的候选
//   - `movie != null && movie.year < 2010` → 只保留 2010 年前的影片
//   - `label.recall_source.contains("usercf")` → 只保留用户协同过滤召回的候选
type Eval struct {
	item  *core.Item
	movie *core.Movie
	rctx  *core.RecommendContext
	env   *cel.Env
}

// NewEval 创建一个新的表达式解释器。movie 可以为 nil（目录查不到该影片时）。
func NewEval(item *core.Item, movie *core.Movie, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item:  item,
		movie: movie,
		rctx:  rctx,
		env:   env,
	}
}

// Evaluate 解析并执行表达式，返回布尔结果。
// 空表达式恒为 true。访问不存在的 key 会报错，存在性检查请用 `xxx != null`。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	item := map[string]interface{}{
		"id":    e.item.ID,
		"score": e.item.Score,
		"meta":  e.item.Meta,
	}

	// label.xxx 直接取 Label 的 Value，保持表达式简短
	labelAccessor := make(map[string]interface{})
	for k, v := range e.item.Labels {
		labelAccessor[k] = v.Value
	}

	var movie interface{}
	if e.movie != nil {
		year := 0
		if e.movie.ReleaseDate != nil {
			year = e.movie.ReleaseDate.Year()
		}
		movie = map[string]interface{}{
			"id":       e.movie.ID,
			"title":    e.movie.Title,
			"director": e.movie.Director,
			"cast":     e.movie.Cast,
			"year":     year,
		}
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx["user_id"] = e.rctx.UserID
		rctx["scene"] = e.rctx.Scene
		rctx["params"] = e.rctx.Params
	}

	return map[string]interface{}{
		"item":  item,
		"label": labelAccessor,
		"movie": movie,
		"rctx":  rctx,
	}
}
