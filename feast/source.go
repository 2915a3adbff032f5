package feast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/movierec/core"
)

// DefaultRatingsFeature 是评分向量在 Feast 里的默认特征名。
// 特征值约定为 JSON 字符串：map[movieID]score。
const DefaultRatingsFeature = "user_ratings:vector"

// UserLister 提供参与快照重建的用户全集。
// Feast 在线存储是按实体点查的，本身没有"列出所有实体"的能力，
// 所以用户全集要从旁路给出（离线产出的用户索引、或静态列表）。
type UserLister interface {
	AllUsers(ctx context.Context) ([]int64, error)
}

// StaticUsers 是固定用户列表形式的 UserLister。
type StaticUsers []int64

func (s StaticUsers) AllUsers(ctx context.Context) ([]int64, error) {
	return []int64(s), nil
}

// PrefSource 把 Feast 在线特征库适配为 core.RatingSource：
// 每个用户的评分向量作为一条在线特征拉取，供 prefs.PrefStore 重建快照。
type PrefSource struct {
	// Client 是 Feast 客户端；测试注入假实现即可
	Client Client

	// Users 提供用户全集（见 UserLister 注释）
	Users UserLister

	// Feature 是评分向量特征名；空值用 DefaultRatingsFeature
	Feature string

	// EntityKey 是实体 key 名；空值用 "user_id"
	EntityKey string
}

func (s *PrefSource) Name() string { return "feast_pref_source" }

func (s *PrefSource) AllUsers(ctx context.Context) ([]int64, error) {
	if s.Users == nil {
		return []int64{}, nil
	}
	return s.Users.AllUsers(ctx)
}

func (s *PrefSource) UserRatings(ctx context.Context, userID int64) (map[int64]float64, error) {
	if s.Client == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable, "feast: client not configured")
	}

	feature := s.Feature
	if feature == "" {
		feature = DefaultRatingsFeature
	}
	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = "user_id"
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{feature},
		EntityRows: []map[string]interface{}{{entityKey: userID}},
	})
	if err != nil {
		return nil, fmt.Errorf("feast: user %d ratings: %w", userID, err)
	}
	if len(resp.FeatureVectors) == 0 {
		return make(map[int64]float64), nil
	}

	raw, ok := resp.FeatureVectors[0].Values[feature]
	if !ok || raw == nil {
		// 特征缺失等价于"该用户没有评分"，不是错误
		return make(map[int64]float64), nil
	}

	var payload string
	switch v := raw.(type) {
	case string:
		payload = v
	case []byte:
		payload = string(v)
	default:
		return nil, fmt.Errorf("feast: user %d ratings: unexpected feature type %T", userID, raw)
	}

	var result map[int64]float64
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("feast: user %d ratings: decode vector: %w", userID, err)
	}
	return result, nil
}

// 确保实现 core.RatingSource 接口
var _ core.RatingSource = (*PrefSource)(nil)
