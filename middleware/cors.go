package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware restricts browser origins to allowList. Entries are either exact origins
// ("https://farm.example.com", or a bare host) or single-level wildcards ("*.example.com",
// "https://*.example.com"). Requests without an Origin header are never blocked.
func CORSMiddleware(allowList []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return OriginAllowed(origin, allowList)
		},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	})
}

// OriginAllowed matches a browser Origin header against the allow-list.
func OriginAllowed(origin string, allowList []string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	scheme := strings.ToLower(u.Scheme)

	for _, entry := range allowList {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if entry == "*" {
			return true
		}

		entryScheme := ""
		if i := strings.Index(entry, "://"); i >= 0 {
			entryScheme, entry = entry[:i], entry[i+3:]
		}
		if entryScheme != "" && entryScheme != scheme {
			continue
		}
		entry = strings.TrimSuffix(entry, "/")

		if suffix, ok := strings.CutPrefix(entry, "*."); ok {
			label, rest, found := strings.Cut(host, ".")
			if found && label != "" && rest == suffix {
				return true
			}
			continue
		}

		if entry == strings.ToLower(u.Host) || entry == host {
			return true
		}
	}
	return false
}
