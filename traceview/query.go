package traceview

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sarchlab/boxstack/datarecording"
)

const defaultLimit = 1000

// tickQuery selects rows in the tick range [start, end]. A negative end has
// no upper limit.
type tickQuery struct {
	start, end    int
	limit, offset int
}

func parseQuery(r *http.Request) (tickQuery, error) {
	q := tickQuery{end: -1, limit: defaultLimit}

	fields := []struct {
		name string
		dst  *int
	}{
		{"start", &q.start},
		{"end", &q.end},
		{"limit", &q.limit},
		{"offset", &q.offset},
	}

	values := r.URL.Query()
	for _, f := range fields {
		v := values.Get(f.name)
		if v == "" {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return tickQuery{}, fmt.Errorf("%s must be an integer", f.name)
		}

		*f.dst = n
	}

	if q.start < 0 || q.limit < 0 || q.offset < 0 {
		return tickQuery{}, errors.New("negative start, limit or offset")
	}

	return q, nil
}

func (q tickQuery) params() datarecording.QueryParams {
	p := datarecording.QueryParams{
		Where:  "Tick >= ?",
		Args:   []any{q.start},
		Limit:  q.limit,
		Offset: q.offset,
	}

	if q.end >= 0 {
		p.Where = andWhere(p.Where, "Tick <= ?")
		p.Args = append(p.Args, q.end)
	}

	return p
}

func andWhere(where, cond string) string {
	if where == "" {
		return cond
	}

	return where + " AND " + cond
}
