package httpapi

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DrJonoG/job-search/internal/store"
)

// searchCacheTTL is short on purpose: job listings mutate on every
// search run, so a stale cache hit should only ever save a duplicate
// query within the same browsing session, not serve outdated results.
const searchCacheTTL = 30 * time.Second

// searchCache memoises store.Search results in Redis, keyed by the
// filter's content hash. It is a pure accelerator: any Redis error
// (including rdb being nil because REDIS_URL is unset) falls through
// to hitting Postgres directly.
type searchCache struct {
	rdb *redis.Client
	st  *store.Store
}

func newSearchCache(rdb *redis.Client, st *store.Store) *searchCache {
	return &searchCache{rdb: rdb, st: st}
}

func (sc *searchCache) Search(ctx context.Context, f store.SearchFilter) ([]map[string]any, error) {
	if sc.rdb == nil {
		return sc.st.Search(ctx, f)
	}

	key := "jobsearch:search:" + filterKey(f)
	if cached, err := sc.rdb.Get(ctx, key).Bytes(); err == nil {
		var rows []map[string]any
		if json.Unmarshal(cached, &rows) == nil {
			return rows, nil
		}
	}

	rows, err := sc.st.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(rows); err == nil {
		_ = sc.rdb.Set(ctx, key, encoded, searchCacheTTL).Err()
	}
	return rows, nil
}

func filterKey(f store.SearchFilter) string {
	salaryMin := "-"
	if f.SalaryMin != nil {
		salaryMin = fmt.Sprintf("%v", *f.SalaryMin)
	}
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%s|%v|%v|%s",
		f.Query, f.Source, f.Remote, f.JobType, salaryMin,
		f.PostedInLastDays, f.SortBy, f.Ascending, f.ExcludeNotInterested, f.Region)
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
