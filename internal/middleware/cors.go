package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"

// OriginPolicy decides which origins may call the API. An empty list or a
// "*" entry allows every origin.
type OriginPolicy struct {
	any     bool
	allowed map[string]struct{}
}

func NewOriginPolicy(origins []string) *OriginPolicy {
	p := &OriginPolicy{allowed: make(map[string]struct{}, len(origins))}
	if len(origins) == 0 {
		p.any = true
	}
	for _, origin := range origins {
		if origin == "*" {
			p.any = true
			continue
		}
		p.allowed[origin] = struct{}{}
	}
	return p
}

func (p *OriginPolicy) Allows(origin string) bool {
	if p.any {
		return true
	}
	_, ok := p.allowed[origin]
	return ok
}

// CORS allows the configured origins with any method and header and with
// credentials. The request origin is echoed back because browsers reject a
// "*" origin on credentialed requests.
func CORS(policy *OriginPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		c.Writer.Header().Add("Vary", "Origin")
		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""

		if !policy.Allows(origin) {
			if preflight {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
				return
			}
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if preflight {
			methods := c.GetHeader("Access-Control-Request-Method")
			if methods == "" {
				methods = defaultAllowMethods
			}
			c.Writer.Header().Set("Access-Control-Allow-Methods", methods)
			if headers := c.GetHeader("Access-Control-Request-Headers"); headers != "" {
				c.Writer.Header().Set("Access-Control-Allow-Headers", headers)
			}
			c.Writer.Header().Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
