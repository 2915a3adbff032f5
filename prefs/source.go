package prefs

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/rushteam/movierec/core"
)

// StoreRatingSource 是基于 core.Store 的评分数据源适配器。
// 同一套 key 布局在 Memory/Redis 后端下通用：
//
//	用户评分向量：{KeyPrefix}:user:{userID} → JSON map[movieID]score
//	用户索引：    {KeyPrefix}:users         → JSON []userID
//	活跃度榜：    {KeyPrefix}:leaderboard   → zset member=userID score=评分条数
type StoreRatingSource struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewStoreRatingSource 创建一个基于 core.Store 的评分数据源。
func NewStoreRatingSource(s core.Store, keyPrefix string) *StoreRatingSource {
	if keyPrefix == "" {
		keyPrefix = "ratings"
	}
	return &StoreRatingSource{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *StoreRatingSource) Name() string { return "store_rating_source" }

func (a *StoreRatingSource) AllUsers(ctx context.Context) ([]int64, error) {
	data, err := a.store.Get(ctx, a.KeyPrefix+":users")
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []int64{}, nil
		}
		return nil, err
	}

	var result []int64
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *StoreRatingSource) UserRatings(ctx context.Context, userID int64) (map[int64]float64, error) {
	data, err := a.store.Get(ctx, a.userKey(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return make(map[int64]float64), nil
		}
		return nil, err
	}

	var result map[int64]float64
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveRatings 整体写入评分记录：按用户分组、落库、重建用户索引与活跃度榜。
// 写入方（ingest）已完成校验与未知影片剔除，这里只负责落库。
func (a *StoreRatingSource) SaveRatings(ctx context.Context, ratings []core.Rating) error {
	byUser := make(map[int64]map[int64]float64)
	for _, r := range ratings {
		if byUser[r.UserID] == nil {
			byUser[r.UserID] = make(map[int64]float64)
		}
		byUser[r.UserID][r.MovieID] = float64(r.Score)
	}

	kvs := make(map[string][]byte, len(byUser))
	users := make([]int64, 0, len(byUser))
	for user, vec := range byUser {
		data, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		kvs[a.userKey(user)] = data
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	if err := a.store.BatchSet(ctx, kvs); err != nil {
		return err
	}

	usersData, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, a.KeyPrefix+":users", usersData); err != nil {
		return err
	}

	// 活跃度榜是个可选的物化视图：后端支持 zset 才写，算不上失败。
	// 整体重建语义：先删旧榜再写，上一批导入的用户不能残留在榜上
	if kv, ok := a.store.(core.KeyValueStore); ok {
		lbKey := a.KeyPrefix + ":leaderboard"
		if err := kv.Delete(ctx, lbKey); err != nil {
			return err
		}
		for user, vec := range byUser {
			if err := kv.ZAdd(ctx, lbKey, float64(len(vec)), strconv.FormatInt(user, 10)); err != nil {
				return err
			}
		}
	}
	return nil
}

// MostActive 从活跃度榜读前 n 个用户。
// 这是 Snapshot.MostActiveUsers 的存储侧物化：无需加载快照即可查询，
// 数值一致，供展示层直接使用。后端不支持 zset 时返回 ErrStoreNotSupported。
func (a *StoreRatingSource) MostActive(ctx context.Context, n int) ([]UserActivity, error) {
	kv, ok := a.store.(core.KeyValueStore)
	if !ok {
		return nil, core.ErrStoreNotSupported
	}
	if n <= 0 {
		return nil, nil
	}

	lbKey := a.KeyPrefix + ":leaderboard"
	members, err := kv.ZRange(ctx, lbKey, 0, int64(n)-1)
	if err != nil {
		return nil, err
	}

	out := make([]UserActivity, 0, len(members))
	for _, member := range members {
		user, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		count, err := kv.ZScore(ctx, lbKey, member)
		if err != nil {
			continue
		}
		out = append(out, UserActivity{UserID: user, Count: int(count)})
	}
	return out, nil
}

func (a *StoreRatingSource) userKey(userID int64) string {
	return a.KeyPrefix + ":user:" + strconv.FormatInt(userID, 10)
}

// 确保实现 core.RatingSource 接口
var _ core.RatingSource = (*StoreRatingSource)(nil)
