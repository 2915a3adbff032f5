package engine

import (
	"math"
	"testing"

	"github.com/rushteam/movierec/prefs"
)

// 共享评分上一致/相反的小型快照，分数都在合法区间 [10, 50] 内
func testSnapshot() prefs.Snapshot {
	return prefs.Snapshot{
		1: {10: 40, 20: 20},
		2: {10: 10, 20: 50}, // 与用户 1 完全相反
		3: {10: 40, 20: 20}, // 与用户 1 完全一致
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		a    map[int64]float64
		b    map[int64]float64
		want float64
	}{
		{
			name: "identical ratings on shared movies",
			a:    map[int64]float64{10: 40, 20: 20},
			b:    map[int64]float64{10: 40, 20: 20},
			want: 1.0,
		},
		{
			name: "inverse pattern",
			a:    map[int64]float64{10: 40, 20: 20},
			b:    map[int64]float64{10: 10, 20: 50},
			want: -1.0,
		},
		{
			name: "no shared movies",
			a:    map[int64]float64{10: 40},
			b:    map[int64]float64{20: 40},
			want: 0,
		},
		{
			name: "both empty",
			a:    map[int64]float64{},
			b:    map[int64]float64{},
			want: 0,
		},
		{
			name: "zero variance in one user",
			a:    map[int64]float64{10: 30, 20: 30, 30: 30},
			b:    map[int64]float64{10: 10, 20: 30, 30: 50},
			want: 0,
		},
		{
			name: "single shared movie degenerates to zero variance",
			a:    map[int64]float64{10: 40, 30: 20},
			b:    map[int64]float64{10: 50, 40: 20},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pearson(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearson_Symmetry(t *testing.T) {
	snap := prefs.Snapshot{
		1: {10: 40, 20: 20, 30: 30},
		2: {10: 10, 20: 50, 40: 25},
		3: {10: 40, 20: 20},
		4: {50: 15},
		5: {},
	}
	users := snap.Users()
	for _, a := range users {
		for _, b := range users {
			ab := Pearson(snap[a], snap[b])
			ba := Pearson(snap[b], snap[a])
			if ab != ba {
				t.Errorf("Pearson(%d,%d) = %v, Pearson(%d,%d) = %v; want symmetric", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestPearson_Range(t *testing.T) {
	snap := prefs.Snapshot{
		1: {10: 40, 20: 20, 30: 35, 40: 10},
		2: {10: 15, 20: 45, 30: 20, 40: 50},
		3: {10: 42, 20: 23, 30: 31},
		4: {10: 30, 20: 30, 30: 30},
	}
	for _, a := range snap.Users() {
		for _, b := range snap.Users() {
			if a == b {
				continue
			}
			r := Pearson(snap[a], snap[b])
			if r < -1-1e-9 || r > 1+1e-9 {
				t.Errorf("Pearson(%d,%d) = %v, out of [-1, 1]", a, b, r)
			}
		}
	}
}

func TestTopMatches(t *testing.T) {
	snap := testSnapshot()

	t.Run("excludes self and ranks by similarity", func(t *testing.T) {
		got := TopMatches(snap, 1, 5, nil)
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		for _, m := range got {
			if m.UserID == 1 {
				t.Fatalf("topMatches must not include the query user")
			}
		}
		if got[0].UserID != 3 || math.Abs(got[0].Score-1.0) > 1e-9 {
			t.Errorf("best match = (%v, %d), want (1.0, 3)", got[0].Score, got[0].UserID)
		}
		if got[1].UserID != 2 || math.Abs(got[1].Score-(-1.0)) > 1e-9 {
			t.Errorf("second match = (%v, %d), want (-1.0, 2)", got[1].Score, got[1].UserID)
		}
	})

	t.Run("bounded by n", func(t *testing.T) {
		got := TopMatches(snap, 1, 1, nil)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
	})

	t.Run("unknown user yields empty result", func(t *testing.T) {
		if got := TopMatches(snap, 99, 5, nil); len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	// 同分条目的顺序来自"升序排序后整体反转"：
	// 升序得到 (…,2),(…,3)，反转后 3 在 2 前面（ID 大者在前）
	t.Run("tied scores come out in reversed post-sort order", func(t *testing.T) {
		tied := prefs.Snapshot{
			1: {10: 40, 20: 20},
			2: {10: 50, 20: 10},
			3: {10: 45, 20: 15},
			4: {10: 10, 20: 50},
		}
		got := TopMatches(tied, 1, 5, nil)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		wantOrder := []int64{3, 2, 4}
		for i, want := range wantOrder {
			if got[i].UserID != want {
				t.Errorf("got[%d].UserID = %d, want %d (order %v)", i, got[i].UserID, want, got)
			}
		}
		// 降序不变式
		for i := 1; i < len(got); i++ {
			if got[i].Score > got[i-1].Score {
				t.Errorf("scores not descending at %d: %v", i, got)
			}
		}
	})
}
