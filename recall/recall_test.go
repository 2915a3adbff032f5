package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/prefs"
)

type mapRatingSource map[int64]map[int64]float64

func (mapRatingSource) Name() string { return "test.map" }

func (s mapRatingSource) AllUsers(_ context.Context) ([]int64, error) {
	users := make([]int64, 0, len(s))
	for id := range s {
		users = append(users, id)
	}
	return users, nil
}

func (s mapRatingSource) UserRatings(_ context.Context, userID int64) (map[int64]float64, error) {
	return s[userID], nil
}

func testPrefs(t *testing.T) *prefs.PrefStore {
	t.Helper()
	p := prefs.New(mapRatingSource{
		100: {1: 40, 2: 30},
		101: {1: 42, 2: 28, 3: 45},
		102: {1: 38, 2: 32, 4: 20},
	})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func TestUserCF(t *testing.T) {
	p := testPrefs(t)

	t.Run("produces unseen movies with labels", func(t *testing.T) {
		r := &UserCF{Prefs: p}
		items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: 100})
		if err != nil {
			t.Fatalf("recall: %v", err)
		}
		if len(items) == 0 {
			t.Fatal("expected candidates for user 100")
		}
		for _, it := range items {
			if it.ID == 1 || it.ID == 2 {
				t.Errorf("already rated movie %d in candidates", it.ID)
			}
			lbl, ok := it.Labels["recall_source"]
			if !ok || lbl.Value != "usercf" {
				t.Errorf("movie %d recall_source label = %+v", it.ID, lbl)
			}
		}
	})

	t.Run("topk truncates", func(t *testing.T) {
		r := &UserCF{Prefs: p, TopK: 1}
		items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: 100})
		if err != nil {
			t.Fatalf("recall: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("len(items) = %d, want 1", len(items))
		}
	})

	t.Run("unknown user yields empty", func(t *testing.T) {
		r := &UserCF{Prefs: p}
		items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: 999})
		if err != nil {
			t.Fatalf("recall: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("items = %v, want empty", items)
		}
	})

	t.Run("nil context yields empty", func(t *testing.T) {
		r := &UserCF{Prefs: p}
		items, err := r.Recall(context.Background(), nil)
		if err != nil || len(items) != 0 {
			t.Errorf("items = %v, err = %v", items, err)
		}
	})
}

type staticSource struct {
	name  string
	items []*core.Item
	err   error
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func TestFanout(t *testing.T) {
	ctx := context.Background()
	rctx := &core.RecommendContext{UserID: 1}

	t.Run("merges in registration order", func(t *testing.T) {
		n := &Fanout{Sources: []Source{
			&staticSource{name: "a", items: []*core.Item{core.NewItem(1), core.NewItem(2)}},
			&staticSource{name: "b", items: []*core.Item{core.NewItem(3)}},
		}}
		out, err := n.Process(ctx, rctx, nil)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		var ids []int64
		for _, it := range out {
			ids = append(ids, it.ID)
		}
		if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
			t.Errorf("ids = %v, want [1 2 3]", ids)
		}
	})

	t.Run("dedup keeps first source's item", func(t *testing.T) {
		first := core.NewItem(7)
		first.Score = 50
		second := core.NewItem(7)
		second.Score = 10
		n := &Fanout{
			Dedup: true,
			Sources: []Source{
				&staticSource{name: "a", items: []*core.Item{first}},
				&staticSource{name: "b", items: []*core.Item{second}},
			},
		}
		out, err := n.Process(ctx, rctx, nil)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("len(out) = %d, want 1", len(out))
		}
		if out[0].Score != 50 {
			t.Errorf("score = %v, want the first source's 50", out[0].Score)
		}
		// 重复命中时合并标签，记录两个来源
		if lbl := out[0].Labels["recall_source"]; lbl.Value == "a" {
			t.Errorf("recall_source = %+v, want merged sources", lbl)
		}
	})

	t.Run("failing source does not break the rest", func(t *testing.T) {
		n := &Fanout{Sources: []Source{
			&staticSource{name: "bad", err: errors.New("boom")},
			&staticSource{name: "ok", items: []*core.Item{core.NewItem(5)}},
		}}
		out, err := n.Process(ctx, rctx, nil)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if len(out) != 1 || out[0].ID != 5 {
			t.Errorf("out = %v, want only movie 5", out)
		}
	})
}
