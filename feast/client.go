// Package feast 对接 Feast Feature Store 的在线特征服务。
//
// 在本项目中的用途：当评分向量已经作为用户特征物化到 Feast 在线存储时
//（离线产出用户评分向量 → materialize 到 online store），
// PrefSource 可以直接从 Feast 拉取每个用户的评分向量重建快照，
// 不需要再单独维护一份 Redis 评分库。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的客户端接口。
// 领域层只依赖这个接口；gRPC 实现见 GrpcClient，测试可注入假实现。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时预测）
	//
	// 参数：
	//   - Features: 特征名称列表，例如 ["user_ratings:vector"]
	//   - EntityRows: 实体行，例如 [{"user_id": 1001}]
	//
	// 返回每个实体行对应的特征向量。
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["user_ratings:vector"]
	Features []string

	// EntityRows 实体行，例如 [{"user_id": 1001}, {"user_id": 1002}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，默认用客户端的 Project）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration
	Auth     *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type  string // "static"
	Token string
}

// WithTimeout 设置请求超时
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 设置认证配置
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}
