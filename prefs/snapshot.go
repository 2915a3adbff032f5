// Package prefs 维护推荐引擎计算所依赖的评分快照：
// map[userID]map[movieID]score 的两级映射，由 Load 从数据源整体重建。
package prefs

import (
	"sort"
)

// Snapshot 是某一时刻全量评分的只读视图。
// 分数是 [core.ScoreMin, core.ScoreMax] 区间的整数，为相似度计算方便存为 float64。
// 重建后不再修改；并发读取安全。
type Snapshot map[int64]map[int64]float64

// Get 返回用户的评分向量。未知用户返回 nil（查询路径上等价于空，不是错误）。
func (s Snapshot) Get(userID int64) map[int64]float64 {
	return s[userID]
}

// Users 返回快照内的所有用户 ID，升序（保证遍历确定性）。
func (s Snapshot) Users() []int64 {
	out := make([]int64, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Transpose 反转快照的两级映射：map[movieID]map[userID]score。
// 物品视角的反查表，后续做 item 侧分析时使用。
func (s Snapshot) Transpose() Snapshot {
	result := make(Snapshot, len(s))
	for user, ratings := range s {
		for movie, score := range ratings {
			if result[movie] == nil {
				result[movie] = make(map[int64]float64)
			}
			result[movie][user] = score
		}
	}
	return result
}

// UserActivity 是 (用户, 评分条数) 对。
type UserActivity struct {
	UserID int64
	Count  int
}

// MostActiveUsers 返回评分条数最多的前 n 个用户，按条数降序。
// 条数相同的用户之间顺序不确定（取决于 map 遍历顺序），调用方不应依赖。
func (s Snapshot) MostActiveUsers(n int) []UserActivity {
	if n <= 0 || len(s) == 0 {
		return nil
	}
	out := make([]UserActivity, 0, len(s))
	for user, ratings := range s {
		out = append(out, UserActivity{UserID: user, Count: len(ratings)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
