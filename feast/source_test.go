package feast

import (
	"context"
	"os"
	"reflect"
	"testing"

	"github.com/rushteam/movierec/prefs"
)

// fakeClient 以内存 map 模拟在线特征库：entityKey=user_id，特征值为 JSON 评分向量。
type fakeClient struct {
	vectors map[int64]string
	calls   int
}

func (c *fakeClient) GetOnlineFeatures(_ context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	c.calls++
	resp := &GetOnlineFeaturesResponse{}
	for _, row := range req.EntityRows {
		userID, _ := row["user_id"].(int64)
		values := make(map[string]interface{})
		if v, ok := c.vectors[userID]; ok {
			for _, f := range req.Features {
				values[f] = v
			}
		}
		resp.FeatureVectors = append(resp.FeatureVectors, FeatureVector{Values: values})
	}
	return resp, nil
}

func (c *fakeClient) Close() error { return nil }

func TestPrefSource(t *testing.T) {
	client := &fakeClient{vectors: map[int64]string{
		100: `{"1": 40, "2": 30}`,
		101: `{"1": 42}`,
	}}
	source := &PrefSource{
		Client: client,
		Users:  StaticUsers{100, 101, 102},
	}

	t.Run("decodes rating vector", func(t *testing.T) {
		got, err := source.UserRatings(context.Background(), 100)
		if err != nil {
			t.Fatalf("user ratings: %v", err)
		}
		want := map[int64]float64{1: 40, 2: 30}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ratings = %v, want %v", got, want)
		}
	})

	t.Run("missing feature means no ratings", func(t *testing.T) {
		got, err := source.UserRatings(context.Background(), 102)
		if err != nil {
			t.Fatalf("user ratings: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ratings = %v, want empty", got)
		}
	})

	t.Run("malformed vector is an error", func(t *testing.T) {
		bad := &PrefSource{
			Client: &fakeClient{vectors: map[int64]string{7: `not json`}},
			Users:  StaticUsers{7},
		}
		if _, err := bad.UserRatings(context.Background(), 7); err == nil {
			t.Fatal("expected decode error")
		}
	})

	t.Run("rebuilds a snapshot end to end", func(t *testing.T) {
		p := prefs.New(source)
		if err := p.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
		snap := p.Snapshot()
		if got := snap.Get(101); got[1] != 42 {
			t.Errorf("snapshot user 101 = %v", got)
		}
		// 空向量用户不进快照
		if got := snap.Get(102); got != nil {
			t.Errorf("snapshot user 102 = %v, want absent", got)
		}
	})
}

// 对接真实 Feast Serving 的冒烟测试，默认跳过。
// 启动方式：FEAST_SERVING_ADDR=localhost:6566 go test -run TestGrpcClient_Live
func TestGrpcClient_Live(t *testing.T) {
	addr := os.Getenv("FEAST_SERVING_ADDR")
	if addr == "" {
		t.Skip("FEAST_SERVING_ADDR not set, skip live feast test")
	}

	client, err := NewGrpcClient("localhost", 6566, "movierec")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	resp, err := client.GetOnlineFeatures(context.Background(), &GetOnlineFeaturesRequest{
		Features:   []string{DefaultRatingsFeature},
		EntityRows: []map[string]interface{}{{"user_id": int64(100)}},
	})
	if err != nil {
		t.Fatalf("get online features: %v", err)
	}
	t.Logf("feature vectors: %d", len(resp.FeatureVectors))
}
