package ingest

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/catalog"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/prefs"
)

// Loader 把解析结果写入目录与评分存储。
type Loader struct {
	Movies  *catalog.StoreMovieSource
	Ratings *prefs.StoreRatingSource
}

// Load 导入一对数据文件。两个文件并发解析，之后按影片集合过滤评分：
//   - 引用未知影片的评分被拒绝（带原因），不产生存储写入
//   - 同一 (user, movie) 的重复评分保留首条，其余被拒绝（带原因）
//
// I/O 或存储层故障返回 error；数据质量问题只体现在 Report.Rejected 里。
func (l *Loader) Load(ctx context.Context, moviesPath, ratingsPath string) (*Report, error) {
	var (
		movies     []*core.Movie
		ratings    []RatingRecord
		moviesBad  []RecordOutcome
		ratingsBad []RecordOutcome
	)

	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		f, err := os.Open(moviesPath)
		if err != nil {
			return fmt.Errorf("open movies file: %w", err)
		}
		defer f.Close()
		movies, moviesBad = ParseMovies(f)
		return nil
	})
	eg.Go(func() error {
		f, err := os.Open(ratingsPath)
		if err != nil {
			return fmt.Errorf("open ratings file: %w", err)
		}
		defer f.Close()
		ratings, ratingsBad = ParseRatings(f)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	report.Rejected = append(report.Rejected, moviesBad...)
	report.Rejected = append(report.Rejected, ratingsBad...)

	known := make(map[int64]struct{}, len(movies))
	for _, m := range movies {
		known[m.ID] = struct{}{}
	}

	type pair struct{ user, movie int64 }
	seen := make(map[pair]struct{}, len(ratings))
	accepted := make([]core.Rating, 0, len(ratings))
	for _, r := range ratings {
		if _, ok := known[r.MovieID]; !ok {
			report.Rejected = append(report.Rejected, RecordOutcome{
				File:   "ratings",
				Line:   r.Line,
				Reason: fmt.Sprintf("unknown movie %d", r.MovieID),
			})
			continue
		}
		p := pair{user: r.UserID, movie: r.MovieID}
		if _, dup := seen[p]; dup {
			report.Rejected = append(report.Rejected, RecordOutcome{
				File:   "ratings",
				Line:   r.Line,
				Reason: fmt.Sprintf("duplicate rating for user %d movie %d", r.UserID, r.MovieID),
			})
			continue
		}
		seen[p] = struct{}{}
		accepted = append(accepted, r.Rating)
	}

	if err := l.Movies.SaveMovies(ctx, movies); err != nil {
		return nil, fmt.Errorf("save movies: %w", err)
	}
	if err := l.Ratings.SaveRatings(ctx, accepted); err != nil {
		return nil, fmt.Errorf("save ratings: %w", err)
	}

	sort.Slice(report.Rejected, func(i, j int) bool {
		if report.Rejected[i].File != report.Rejected[j].File {
			return report.Rejected[i].File < report.Rejected[j].File
		}
		return report.Rejected[i].Line < report.Rejected[j].Line
	})
	report.Stats = Stats{Movies: len(movies), Ratings: len(accepted)}
	return report, nil
}
