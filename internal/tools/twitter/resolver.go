package twitter

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/alucardeht/x-mcp/internal/xapi"
)

// UserResolver maps usernames to user ids, remembering successful lookups
// for a while so repeated timeline fetches cost one upstream call.
type UserResolver struct {
	api   xapi.API
	cache *expirable.LRU[string, string]
}

// NewUserResolver with size <= 0 disables caching.
func NewUserResolver(api xapi.API, size int, ttl time.Duration) *UserResolver {
	r := &UserResolver{api: api}
	if size > 0 {
		r.cache = expirable.NewLRU[string, string](size, nil, ttl)
	}
	return r
}

// Resolve returns ("", false, nil) when the upstream has no such user.
func (r *UserResolver) Resolve(ctx context.Context, username string) (string, bool, error) {
	key := cacheKey(username)
	if r.cache != nil {
		if id, ok := r.cache.Get(key); ok {
			return id, true, nil
		}
	}

	user, err := r.api.GetUserByUsername(ctx, username)
	if err != nil {
		return "", false, err
	}
	if user == nil {
		return "", false, nil
	}

	r.Remember(username, user.ID)
	return user.ID, true, nil
}

func (r *UserResolver) Remember(username, id string) {
	if r.cache == nil || id == "" {
		return
	}
	r.cache.Add(cacheKey(username), id)
}

func (r *UserResolver) Len() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

// usernames are case-insensitive upstream
func cacheKey(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
