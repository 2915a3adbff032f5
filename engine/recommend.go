package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/movierec/catalog"
	"github.com/rushteam/movierec/prefs"
)

// Recommendation 是 (预测分, 影片) 对。
// 预测分是相似度加权平均，不保证落在评分区间 [ScoreMin, ScoreMax] 内。
type Recommendation struct {
	Score   float64
	MovieID int64
}

// GetRecommendations 为 person 生成未看影片的推荐列表，降序，不截断。
//
// 算法（User-based CF 加权聚合）：
//   - 只采用相似度 > 0 的邻居；负相似度整体剔除，不作为负权重参与
//   - 候选是邻居评过而 person 未评过的影片；person 评分恰为 0 的影片
//     也视作未评（历史遗留的"0 即未评"约定，合法评分区间不含 0）
//   - 预测分 = Σ(邻居分 × 相似度) / Σ(相似度)
//
// person 不在快照内、或没有任何正相似度邻居时返回 nil。
// 排序使用与 TopMatches 相同的升序后反转约定。
func GetRecommendations(snap prefs.Snapshot, person int64, sim SimilarityFunc) []Recommendation {
	mine, ok := snap[person]
	if !ok {
		return nil
	}
	if sim == nil {
		sim = Pearson
	}

	totals := make(map[int64]float64)
	simSums := make(map[int64]float64)

	for _, other := range snap.Users() {
		if other == person {
			continue
		}
		s := sim(mine, snap[other])
		if s <= 0 {
			continue
		}
		for movie, score := range snap[other] {
			if rated, seen := mine[movie]; seen && rated != 0 {
				continue
			}
			totals[movie] += score * s
			simSums[movie] += s
		}
	}

	if len(simSums) == 0 {
		return nil
	}

	rankings := make([]Recommendation, 0, len(totals))
	for movie, total := range totals {
		rankings = append(rankings, Recommendation{
			Score:   total / simSums[movie],
			MovieID: movie,
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Score != rankings[j].Score {
			return rankings[i].Score < rankings[j].Score
		}
		return rankings[i].MovieID < rankings[j].MovieID
	})
	reverseRecommendations(rankings)
	return rankings
}

// RecommendBefore 为 person 推荐至多 n 部影片，可选上映日期上限。
//
// dateLimit 非 nil 时：按推荐分从高到低过目录，只保留上映日期已知且
// 严格早于 dateLimit 的影片，凑满 n 部即停；目录里查不到的影片跳过。
// dateLimit 为 nil 时：直接返回前 n 条，不查目录。
// n < 0 表示不截断，n == 0 返回空。
//
// 相似度固定使用 Pearson（与展示层的默认口径一致）。
// person 不在快照内时返回空结果，不是错误。
func RecommendBefore(
	ctx context.Context,
	snap prefs.Snapshot,
	ix *catalog.Index,
	person int64,
	dateLimit *time.Time,
	n int,
) ([]Recommendation, error) {
	recs := GetRecommendations(snap, person, Pearson)
	if len(recs) == 0 {
		return nil, nil
	}

	if dateLimit == nil {
		if n >= 0 && len(recs) > n {
			recs = recs[:n]
		}
		return recs, nil
	}

	if n == 0 {
		return nil, nil
	}
	capHint := n
	if capHint < 0 {
		capHint = len(recs)
	}
	out := make([]Recommendation, 0, capHint)
	for _, rec := range recs {
		movie, found, err := ix.Movie(ctx, rec.MovieID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if movie.ReleaseDate == nil || !movie.ReleaseDate.Before(*dateLimit) {
			continue
		}
		out = append(out, rec)
		if n >= 0 && len(out) >= n {
			break
		}
	}
	return out, nil
}

func reverseRecommendations(s []Recommendation) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
