package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rushteam/movierec/catalog"
	"github.com/rushteam/movierec/prefs"
	"github.com/rushteam/movierec/store"
)

func TestParseMovies(t *testing.T) {
	input := strings.Join([]string{
		"1\tYou've Got Mail\t1998-12-18\tNora Ephron\tTom Hanks, Meg Ryan",
		"2\tUndated Movie\tnot-a-date\tSomeone\tSome Actor",
		"bad-id\tBroken Line",
		"",
		"3\tMinimal",
	}, "\n")

	movies, rejected := ParseMovies(strings.NewReader(input))

	if len(movies) != 3 {
		t.Fatalf("accepted %d movies, want 3", len(movies))
	}
	if movies[0].ID != 1 || movies[0].Title != "You've Got Mail" {
		t.Errorf("movies[0] = %+v", movies[0])
	}
	if movies[0].ReleaseDate == nil || movies[0].ReleaseDate.Year() != 1998 {
		t.Errorf("movies[0].ReleaseDate = %v, want 1998-12-18", movies[0].ReleaseDate)
	}
	if movies[0].Cast != "Tom Hanks, Meg Ryan" {
		t.Errorf("movies[0].Cast = %q", movies[0].Cast)
	}
	// 坏日期不算坏行，得到 nil ReleaseDate
	if movies[1].ReleaseDate != nil {
		t.Errorf("movies[1].ReleaseDate = %v, want nil", movies[1].ReleaseDate)
	}

	if len(rejected) != 1 {
		t.Fatalf("rejected = %v, want exactly the bad-id line", rejected)
	}
	if rejected[0].Line != 3 || !strings.Contains(rejected[0].Reason, "invalid movie id") {
		t.Errorf("rejected[0] = %+v", rejected[0])
	}
}

func TestParseRatings(t *testing.T) {
	input := strings.Join([]string{
		"1\t10\t40",
		"1\t20\t20",
		"2\t10\t99",  // 超出 [10,50]
		"2\t10",      // 字段不足
		"x\t10\t30",  // 非整数
		"2\t20\t50",
	}, "\n")

	ratings, rejected := ParseRatings(strings.NewReader(input))

	if len(ratings) != 3 {
		t.Fatalf("accepted %d ratings, want 3: %v", len(ratings), ratings)
	}
	// 接受的记录带着源文件行号（空行/坏行不挤乱编号）
	wantLines := []int{1, 2, 6}
	for i, r := range ratings {
		if r.Line != wantLines[i] {
			t.Errorf("ratings[%d].Line = %d, want %d", i, r.Line, wantLines[i])
		}
	}
	if ratings[2].UserID != 2 || ratings[2].MovieID != 20 || ratings[2].Score != 50 {
		t.Errorf("ratings[2] = %+v", ratings[2])
	}

	if len(rejected) != 3 {
		t.Fatalf("rejected %d records, want 3: %v", len(rejected), rejected)
	}
	for _, o := range rejected {
		if o.File != "ratings" || o.Line == 0 || o.Reason == "" {
			t.Errorf("outcome missing detail: %+v", o)
		}
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.txt")
	ratingsPath := filepath.Join(dir, "ratings.txt")

	moviesData := strings.Join([]string{
		"1\tYou've Got Mail\t1998-12-18\tNora Ephron\tTom Hanks, Meg Ryan",
		"2\tAlien\t1979-05-25\tRidley Scott\tSigourney Weaver",
	}, "\n")
	ratingsData := strings.Join([]string{
		"1\t1\t40",
		"1\t2\t20",
		"1\t1\t50",  // 重复 (user, movie)，保留首条
		"2\t99\t30", // 未知影片
		"2\t2\t45",
	}, "\n")

	if err := os.WriteFile(moviesPath, []byte(moviesData), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ratingsPath, []byte(ratingsData), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()

	ratingSource := prefs.NewStoreRatingSource(ms, "ratings")
	movieSource := catalog.NewStoreMovieSource(ms, "catalog")
	loader := &Loader{Movies: movieSource, Ratings: ratingSource}

	report, err := loader.Load(ctx, moviesPath, ratingsPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if report.Stats.Movies != 2 || report.Stats.Ratings != 3 {
		t.Errorf("stats = %+v, want 2 movies / 3 ratings", report.Stats)
	}
	if len(report.Rejected) != 2 {
		t.Fatalf("rejected = %v, want duplicate + unknown movie", report.Rejected)
	}
	// 被拒记录报真实行号：重复评分在第 3 行，未知影片在第 4 行
	if o := report.Rejected[0]; o.Line != 3 || !strings.Contains(o.Reason, "duplicate") {
		t.Errorf("rejected[0] = %+v, want duplicate at line 3", o)
	}
	if o := report.Rejected[1]; o.Line != 4 || !strings.Contains(o.Reason, "unknown movie") {
		t.Errorf("rejected[1] = %+v, want unknown movie at line 4", o)
	}

	// 落库结果可直接重建快照
	p := prefs.New(ratingSource)
	if err := p.Load(ctx); err != nil {
		t.Fatalf("prefs load: %v", err)
	}
	snap := p.Snapshot()
	if snap[1][1] != 40 { // 重复评分保留首条
		t.Errorf("snap[1][1] = %v, want 40", snap[1][1])
	}
	if _, ok := snap[2][99]; ok {
		t.Errorf("unknown movie rating must not reach the snapshot")
	}

	ix := catalog.NewIndex(movieSource)
	if _, found, err := ix.Movie(ctx, 2); err != nil || !found {
		t.Errorf("movie 2 not stored: found=%v err=%v", found, err)
	}
}
