package feast

import (
	"context"
	"reflect"
	"testing"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	"github.com/feast-dev/feast/sdk/go/protos/feast/serving"
	"github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// sdkResponse 构造一个真实的 Serving 响应：每个 vector 是一行，
// 字段顺序与 fieldNames 对齐（SDK 的 Rows() 依赖这一点）。
func sdkResponse(fieldNames []string, vectors ...[]*types.Value) *feastsdk.OnlineFeaturesResponse {
	results := make([]*serving.GetOnlineFeaturesResponseV2_FieldVector, len(vectors))
	for i, values := range vectors {
		results[i] = &serving.GetOnlineFeaturesResponseV2_FieldVector{Values: values}
	}
	return &feastsdk.OnlineFeaturesResponse{
		RawResponse: &serving.GetOnlineFeaturesResponseV2{
			Metadata: &serving.GetOnlineFeaturesResponseMetadata{
				FieldNames: &serving.FieldList{Val: fieldNames},
			},
			Results: results,
		},
	}
}

func TestConvertFromSDKValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  interface{}
	}{
		{name: "string", input: feastsdk.StrVal(`{"10":40}`), want: `{"10":40}`},
		{name: "bytes", input: feastsdk.BytesVal([]byte(`{"10":40}`)), want: []byte(`{"10":40}`)},
		{name: "int64 flattens to float64", input: feastsdk.Int64Val(42), want: float64(42)},
		{name: "double", input: feastsdk.DoubleVal(3.5), want: 3.5},
		{name: "bool", input: feastsdk.BoolVal(true), want: float64(1)},
		{name: "empty oneof means missing", input: &types.Value{}, want: nil},
		{name: "nil value", input: (*types.Value)(nil), want: nil},
		{name: "not a proto value", input: "raw string", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertFromSDKValue(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("convertFromSDKValue(%v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapOnlineResponse(t *testing.T) {
	req := &GetOnlineFeaturesRequest{
		Features:   []string{DefaultRatingsFeature},
		EntityRows: []map[string]interface{}{{"user_id": int64(100)}, {"user_id": int64(102)}},
	}
	resp := sdkResponse(
		[]string{DefaultRatingsFeature},
		[]*types.Value{feastsdk.StrVal(`{"10":40,"20":20}`)},
		[]*types.Value{{}}, // 用户 102 没有物化数据
	)

	got, err := mapOnlineResponse(req, resp)
	if err != nil {
		t.Fatalf("map response: %v", err)
	}
	if len(got.FeatureVectors) != 2 {
		t.Fatalf("vectors = %d, want 2", len(got.FeatureVectors))
	}
	if v := got.FeatureVectors[0].Values[DefaultRatingsFeature]; v != `{"10":40,"20":20}` {
		t.Errorf("vector[0] = %#v, want the raw JSON string", v)
	}
	if _, ok := got.FeatureVectors[1].Values[DefaultRatingsFeature]; ok {
		t.Errorf("vector[1] = %v, want feature absent for the empty row", got.FeatureVectors[1].Values)
	}
}

func TestMapOnlineResponse_RowCountMismatch(t *testing.T) {
	req := &GetOnlineFeaturesRequest{
		Features:   []string{DefaultRatingsFeature},
		EntityRows: []map[string]interface{}{{"user_id": int64(100)}},
	}
	resp := sdkResponse([]string{DefaultRatingsFeature})
	if _, err := mapOnlineResponse(req, resp); err == nil {
		t.Fatal("expected row count mismatch error")
	}
}

// servingClient 用真实的 Serving proto 响应喂 PrefSource，
// 走与 GrpcClient 完全相同的 mapOnlineResponse 转换路径。
type servingClient struct {
	vectors map[int64]string
}

func (c *servingClient) GetOnlineFeatures(_ context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	fieldNames := req.Features
	rows := make([][]*types.Value, 0, len(req.EntityRows))
	for _, entityRow := range req.EntityRows {
		userID, _ := entityRow["user_id"].(int64)
		values := make([]*types.Value, len(fieldNames))
		for i := range fieldNames {
			if vec, ok := c.vectors[userID]; ok {
				values[i] = feastsdk.StrVal(vec)
			} else {
				values[i] = &types.Value{}
			}
		}
		rows = append(rows, values)
	}
	return mapOnlineResponse(req, sdkResponse(fieldNames, rows...))
}

func (c *servingClient) Close() error { return nil }

func TestPrefSource_DecodesServingValues(t *testing.T) {
	source := &PrefSource{
		Client: &servingClient{vectors: map[int64]string{
			100: `{"10":40,"20":20}`,
		}},
		Users: StaticUsers{100, 101},
	}

	got, err := source.UserRatings(context.Background(), 100)
	if err != nil {
		t.Fatalf("user ratings: %v", err)
	}
	want := map[int64]float64{10: 40, 20: 20}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ratings = %v, want %v", got, want)
	}

	// 未物化的用户走"无数据"分支，不是解码错误
	empty, err := source.UserRatings(context.Background(), 101)
	if err != nil {
		t.Fatalf("user ratings: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ratings = %v, want empty", empty)
	}
}
