// Package engine 是推荐算法核心：用户相似度计算与加权聚合推荐。
// 所有计算都在 prefs.Snapshot 上同步完成，不做缓存、不做增量：
// 每次调用都对全量快照重新计算（O(用户数 × 共同评分数)），
// 目标数据规模下可接受；更大规模时相似度矩阵的预计算是第一优化点。
package engine

import (
	"math"
	"sort"

	"github.com/rushteam/movierec/prefs"
)

// SimilarityFunc 计算两个评分向量的相似度。
// 返回值约定在 [-1, 1]；无法定义时（无共同影片、方差为零）返回 0。
type SimilarityFunc func(a, b map[int64]float64) float64

// Pearson 计算两个用户在共同评分影片上的皮尔逊相关系数。
//
// 退化情形：
//   - 没有共同影片 → 0
//   - 任一用户对所有共同影片打了同一个分（分母为零）→ 0
//
// 交换两个参数结果不变（对称性，测试依赖这一点）。
func Pearson(a, b map[int64]float64) float64 {
	var n, sum1, sum2, sum1Sq, sum2Sq, pSum float64
	for movie, s1 := range a {
		s2, ok := b[movie]
		if !ok {
			continue
		}
		n++
		sum1 += s1
		sum2 += s2
		sum1Sq += s1 * s1
		sum2Sq += s2 * s2
		pSum += s1 * s2
	}
	if n == 0 {
		return 0
	}

	num := pSum - sum1*sum2/n
	den := math.Sqrt((sum1Sq - sum1*sum1/n) * (sum2Sq - sum2*sum2/n))
	if den == 0 {
		return 0
	}
	return num / den
}

// UserMatch 是 (相似度, 用户) 对。
type UserMatch struct {
	Score  float64
	UserID int64
}

// TopMatches 返回与 person 最相似的前 n 个用户，降序，不含 person 自身。
// person 不在快照内时返回 nil。sim 为 nil 时使用 Pearson。
//
// 排序约定：先按 (分数, 用户 ID) 升序排列，再整体反转。
// 反转同时翻转了同分条目的相对顺序（同分时用户 ID 大者在前），
// 这是对外承诺的平局规则，调整排序实现时必须保持。
func TopMatches(snap prefs.Snapshot, person int64, n int, sim SimilarityFunc) []UserMatch {
	if _, ok := snap[person]; !ok {
		return nil
	}
	if sim == nil {
		sim = Pearson
	}

	mine := snap[person]
	scores := make([]UserMatch, 0, len(snap))
	for _, other := range snap.Users() {
		if other == person {
			continue
		}
		scores = append(scores, UserMatch{
			Score:  sim(mine, snap[other]),
			UserID: other,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score < scores[j].Score
		}
		return scores[i].UserID < scores[j].UserID
	})
	reverseMatches(scores)

	if n >= 0 && len(scores) > n {
		scores = scores[:n]
	}
	return scores
}

func reverseMatches(s []UserMatch) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
