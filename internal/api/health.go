package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sys/unix"
)

func (s *Server) healthCheck(c *gin.Context) {
	payload := gin.H{
		"ok":               true,
		"status":           "healthy",
		"version":          s.version,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"resolvers_dir":    s.resolversDir,
		"proxy_configured": s.proxyURL != "",
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(s.configDir, &stat); err == nil {
		payload["disk"] = gin.H{
			"total_bytes": stat.Blocks * uint64(stat.Bsize),
			"free_bytes":  stat.Bavail * uint64(stat.Bsize),
		}
	}

	c.JSON(http.StatusOK, payload)
}
