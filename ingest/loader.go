// Package ingest 把平面文件数据集（tab 分隔的影片/评分记录）灌入存储。
//
// 策略只有一条（历史上"整批中止"与"静默跳过"两种口径并存，这里收敛为一种）：
// 宽松导入 + 结构化结果。坏行不会中止整批导入，但每一条被拒绝的记录都会以
// RecordOutcome（文件、行号、原因）的形式出现在 Report 里，绝不静默丢弃。
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/movierec/core"
)

// 文件格式：
//   movies:  id \t title \t date(YYYY-MM-DD) \t director \t cast(逗号分隔)
//   ratings: userID \t movieID \t score
const dateLayout = "2006-01-02"

// RecordOutcome 是一条被拒绝记录的结构化说明。
type RecordOutcome struct {
	File   string // "movies" / "ratings"
	Line   int    // 1-based 行号
	Reason string
}

func (o RecordOutcome) String() string {
	return fmt.Sprintf("%s:%d: %s", o.File, o.Line, o.Reason)
}

// Stats 是导入后的数据规模统计。
type Stats struct {
	Movies  int
	Ratings int
}

// Report 汇总一次导入的接受/拒绝情况。
type Report struct {
	Stats    Stats
	Rejected []RecordOutcome
}

// ParseMovies 逐行解析影片文件。
// id 与 title 是必需字段；上映日期解析失败不算坏行，得到 ReleaseDate 为 nil 的影片
//（原始数据集确实存在日期缺失的条目）；导演与演员字段可缺省为空。
func ParseMovies(r io.Reader) ([]*core.Movie, []RecordOutcome) {
	var (
		movies   []*core.Movie
		rejected []RecordOutcome
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			rejected = append(rejected, RecordOutcome{File: "movies", Line: line, Reason: "expected at least id and title"})
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			rejected = append(rejected, RecordOutcome{File: "movies", Line: line, Reason: "invalid movie id " + strconv.Quote(fields[0])})
			continue
		}

		m := &core.Movie{
			ID:    id,
			Title: fields[1],
		}
		if len(fields) > 2 {
			if d, err := time.Parse(dateLayout, strings.TrimSpace(fields[2])); err == nil {
				m.ReleaseDate = &d
			}
		}
		if len(fields) > 3 {
			m.Director = fields[3]
		}
		if len(fields) > 4 {
			m.Cast = fields[4]
		}
		movies = append(movies, m)
	}
	if err := scanner.Err(); err != nil {
		rejected = append(rejected, RecordOutcome{File: "movies", Line: line + 1, Reason: "read: " + err.Error()})
	}
	return movies, rejected
}

// RatingRecord 是一条已通过解析的评分及其源文件行号。
// 行号跟着记录走：后续的未知影片/重复剔除（Load 里做）也能报出真实行号。
type RatingRecord struct {
	core.Rating
	Line int // 1-based 行号
}

// ParseRatings 逐行解析评分文件。三个字段都必须是整数，分数必须落在
// [core.ScoreMin, core.ScoreMax] 区间内。未知影片的剔除在 Load 里做
//（解析阶段还没有影片集合）。
func ParseRatings(r io.Reader) ([]RatingRecord, []RecordOutcome) {
	var (
		ratings  []RatingRecord
		rejected []RecordOutcome
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			rejected = append(rejected, RecordOutcome{File: "ratings", Line: line, Reason: "expected userID, movieID, score"})
			continue
		}

		userID, err1 := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		movieID, err2 := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		score, err3 := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err1 != nil || err2 != nil || err3 != nil {
			rejected = append(rejected, RecordOutcome{File: "ratings", Line: line, Reason: "non-integer field"})
			continue
		}

		rating := core.Rating{UserID: userID, MovieID: movieID, Score: score}
		if err := rating.Validate(); err != nil {
			rejected = append(rejected, RecordOutcome{File: "ratings", Line: line, Reason: err.Error()})
			continue
		}
		ratings = append(ratings, RatingRecord{Rating: rating, Line: line})
	}
	if err := scanner.Err(); err != nil {
		rejected = append(rejected, RecordOutcome{File: "ratings", Line: line + 1, Reason: "read: " + err.Error()})
	}
	return ratings, rejected
}
