package core

import (
	"context"
	"fmt"
	"time"
)

// 评分值的合法区间。原始数据集使用 10 ~ 50 的整数评分（相当于 1.0 ~ 5.0 星 × 10）。
const (
	ScoreMin = 10
	ScoreMax = 50
)

// Movie 是影片元数据，加载后不可变，由目录存储（catalog）持有。
// Cast 保留原始的逗号拼接文本，演员拆分由读侧（catalog.Index）完成。
type Movie struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"release_date,omitempty"` // 可能未知/解析失败，此时为 nil
	Director    string     `json:"director"`
	Cast        string     `json:"cast"` // 逗号分隔的演员文本，如 "Tom Hanks, Meg Ryan"
}

// Rating 是一条显式评分记录：用户 × 影片 × 分数。
// 同一 (UserID, MovieID) 至多存在一条记录，由写侧（ingest / source 适配器）保证。
type Rating struct {
	UserID  int64 `json:"user_id"`
	MovieID int64 `json:"movie_id"`
	Score   int   `json:"score"` // [ScoreMin, ScoreMax] 区间内的整数
}

// Validate 在边界处校验评分值，算法核心不再做重复检查。
func (r Rating) Validate() error {
	if r.Score < ScoreMin || r.Score > ScoreMax {
		return NewDomainError(ModuleIngest, ErrorCodeInvalidInput,
			fmt.Sprintf("rating: score %d out of range [%d, %d]", r.Score, ScoreMin, ScoreMax))
	}
	return nil
}

// RatingSource 是评分数据的领域接口，prefs.PrefStore 从这里整体重建快照。
//
// 实现：
//   - prefs.StoreRatingSource（基于 core.Store，Redis/Memory 均可）
//   - feast.PrefSource（基于 Feast 在线特征库）
type RatingSource interface {
	// Name 返回数据源名称（用于日志/监控）
	Name() string

	// AllUsers 返回所有出现过评分的用户 ID
	AllUsers(ctx context.Context) ([]int64, error)

	// UserRatings 返回某个用户的评分向量 map[movieID]score。
	// 未知用户返回空 map，而不是错误。
	UserRatings(ctx context.Context, userID int64) (map[int64]float64, error)
}

// MovieSource 是影片目录的领域接口，catalog.Index 每次查询都从这里现算，不缓存。
type MovieSource interface {
	// Name 返回数据源名称
	Name() string

	// Movie 按 ID 查找影片；不存在时返回 ErrMovieNotFound
	Movie(ctx context.Context, id int64) (*Movie, error)

	// AllMovies 返回全量影片（用于演员拆分、子串检索等扫描型查询）
	AllMovies(ctx context.Context) ([]*Movie, error)
}

// ErrMovieNotFound 表示影片不存在。查询路径上这不是失败：调用方跳过即可。
var ErrMovieNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: movie not found")
