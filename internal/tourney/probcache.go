package tourney

import (
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/yourusername/bracket-value/internal/metrics"
)

// probCache memoizes rating-derived win probabilities for ordered pairs.
// Entries never expire; the cache is flushed whenever a rating changes.
type probCache struct {
	cache *cache.Cache
}

func newProbCache() *probCache {
	return &probCache{cache: cache.New(cache.NoExpiration, 0)}
}

func probKey(team1, team2 string) string {
	return team1 + "\x1f" + team2
}

func (pc *probCache) get(team1, team2 string) (decimal.Decimal, bool) {
	if v, found := pc.cache.Get(probKey(team1, team2)); found {
		if p, ok := v.(decimal.Decimal); ok {
			metrics.RecordCacheLookup(true)
			return p, true
		}
	}
	metrics.RecordCacheLookup(false)
	return decimal.Zero, false
}

// set stores p for team1 and its complement for the reversed pair.
func (pc *probCache) set(team1, team2 string, p decimal.Decimal) {
	pc.cache.Set(probKey(team1, team2), p, cache.NoExpiration)
	pc.cache.Set(probKey(team2, team1), decimal.NewFromInt(1).Sub(p), cache.NoExpiration)
}

func (pc *probCache) flush() {
	pc.cache.Flush()
}

func (pc *probCache) size() int {
	return pc.cache.ItemCount()
}
