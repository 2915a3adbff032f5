package catalog

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rushteam/movierec/core"
)

// StoreMovieSource 是基于 core.KeyValueStore 的影片目录适配器。
// 影片记录放在一个 Hash 里：{KeyPrefix}:movies，field=影片 ID，value=JSON。
// 单条查找走 HGet，全量扫描走 HGetAll。
type StoreMovieSource struct {
	store core.KeyValueStore

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewStoreMovieSource 创建一个基于 core.KeyValueStore 的目录数据源。
func NewStoreMovieSource(s core.KeyValueStore, keyPrefix string) *StoreMovieSource {
	if keyPrefix == "" {
		keyPrefix = "catalog"
	}
	return &StoreMovieSource{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *StoreMovieSource) Name() string { return "store_movie_source" }

func (a *StoreMovieSource) Movie(ctx context.Context, id int64) (*core.Movie, error) {
	data, err := a.store.HGet(ctx, a.hashKey(), strconv.FormatInt(id, 10))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrMovieNotFound
		}
		return nil, err
	}

	var m core.Movie
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (a *StoreMovieSource) AllMovies(ctx context.Context) ([]*core.Movie, error) {
	fields, err := a.store.HGetAll(ctx, a.hashKey())
	if err != nil {
		return nil, err
	}

	out := make([]*core.Movie, 0, len(fields))
	for _, data := range fields {
		var m core.Movie
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, nil
}

// SaveMovies 整体写入影片记录。写入方（ingest）已完成行级校验。
func (a *StoreMovieSource) SaveMovies(ctx context.Context, movies []*core.Movie) error {
	for _, m := range movies {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := a.store.HSet(ctx, a.hashKey(), strconv.FormatInt(m.ID, 10), data); err != nil {
			return err
		}
	}
	return nil
}

func (a *StoreMovieSource) hashKey() string {
	return a.KeyPrefix + ":movies"
}

// 确保实现 core.MovieSource 接口
var _ core.MovieSource = (*StoreMovieSource)(nil)
