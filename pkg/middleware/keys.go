package middleware

import "github.com/gin-gonic/gin"

// limiterKey picks the rate limit bucket: the session user when
// authenticated (NAT friendly), otherwise the client IP.
func limiterKey(c *gin.Context) string {
	if rc := CurrentSession(c); rc.Authenticated && rc.UserID != "" {
		return "user:" + rc.UserID
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
