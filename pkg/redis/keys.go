package redis

import (
	"strconv"
	"strings"
)

// Every key lives under "sg:". Layout:
//
//	sg:rate_limit:<scope>
//	sg:session:access:<jti>
//	sg:generation:<store>
//	sg:metrics:<store>:g<generation>:<scope>
//	sg:lock:<name>
const keyNamespace = "sg"

func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func (c *Client) RateLimitKey(scope string) string { return key("rate_limit", scope) }

func (c *Client) AccessSessionKey(accessID string) string {
	return key("session", "access", accessID)
}

// GenerationKey is the per-store counter bumped on every sale write.
func (c *Client) GenerationKey(storeID int64) string { return key("generation", id(storeID)) }

// MetricsCacheKey scopes a cached computation to a store generation, so a
// bump orphans every older entry at once.
func (c *Client) MetricsCacheKey(storeID, generation int64, scope string) string {
	return key("metrics", id(storeID), "g"+id(generation), scope)
}

// MetricsCachePattern matches all cached computations of a store.
func (c *Client) MetricsCachePattern(storeID int64) string {
	return key("metrics", id(storeID), "*")
}

func (c *Client) LockKey(name string) string { return key("lock", name) }
