// Package catalog 是影片目录的读侧视图：演员拆分、演员检索、按 ID 查找。
// Index 不持有缓存，每次查询都从 MovieSource 现算；目录变更无需任何失效逻辑。
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/movierec/core"
)

// Index 包装一个 core.MovieSource，提供目录查询。
type Index struct {
	source core.MovieSource
}

func NewIndex(source core.MovieSource) *Index {
	return &Index{source: source}
}

// Movie 按 ID 查找影片。不存在返回 (nil, false, nil)：查询路径上"缺失"不是错误。
func (ix *Index) Movie(ctx context.Context, id int64) (*core.Movie, bool, error) {
	m, err := ix.source.Movie(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return m, true, nil
}

// DistinctActors 返回目录中出现过的所有演员名，升序去重。
// 每部影片的 Cast 按逗号拆分并去除首尾空白；空白片段不产生演员。
func (ix *Index) DistinctActors(ctx context.Context) ([]string, error) {
	movies, err := ix.source.AllMovies(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, m := range movies {
		if strings.TrimSpace(m.Cast) == "" {
			continue
		}
		for _, name := range strings.Split(m.Cast, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			set[name] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// MoviesByActor 返回 Cast 文本中包含 name 的所有影片，大小写不敏感。
// 注意这是对原始 Cast 文本的子串匹配，不是对拆分后演员名的精确匹配：
// 查 "Hanks" 能命中 "Tom Hanks"，这是有意的宽松策略。
// 结果按影片 ID 升序（底层存储无序，这里排序保证确定性）。
func (ix *Index) MoviesByActor(ctx context.Context, name string) ([]*core.Movie, error) {
	movies, err := ix.source.AllMovies(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	out := make([]*core.Movie, 0)
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Cast), needle) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
