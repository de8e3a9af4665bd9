package server

import (
	"crypto/subtle"
	"encoding/json"
	"os"

	"trade-bridge/src/broker/filebridge"
	"trade-bridge/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Bridge API: the authenticated push/poll surface for the external terminal
// process. The terminal pushes account/tick snapshots which land in the
// bridge file (the FileBridge source re-reads it), and polls for pending
// commands which are drained from the command file on each poll.
// -----------------------------------------------------------------------------

// bridgeAuth checks the shared secret, accepted as a header or a query
// parameter for clients that cannot set headers.
func (s *Server) bridgeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-Bridge-Secret")
		if secret == "" {
			secret = c.Query("secret")
		}

		if subtle.ConstantTimeCompare([]byte(secret), []byte(s.Config.Bridge.SharedSecret)) != 1 {
			s.Logger.Warning("Bridge request with bad secret from %s", c.ClientIP())
			c.AbortWithStatusJSON(401, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// -----------------------------------------------------------------------------

// postBridgeUpdate accepts a full bridge payload and rewrites the bridge
// file atomically so the FileBridge source never sees a torn write.
func (s *Server) postBridgeUpdate(c *gin.Context) {
	var payload models.MBridgeFile
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(400, gin.H{"error": "malformed payload"})
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.JSON(500, gin.H{"error": "encode failed"})
		return
	}

	path := s.Config.Broker.FilePath
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.Logger.Error("Failed to write bridge file: %v", err)
		c.JSON(500, gin.H{"error": "write failed"})
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.Logger.Error("Failed to swap bridge file: %v", err)
		c.JSON(500, gin.H{"error": "write failed"})
		return
	}

	c.JSON(200, gin.H{"status": "ok"})
}

// -----------------------------------------------------------------------------

// getBridgeCommands drains and returns every pending command. Commands are
// delivered at most once; the terminal must execute what it receives. The
// drain shares a lock with SubmitCommand so a concurrent append is never
// truncated away unserved.
func (s *Server) getBridgeCommands(c *gin.Context) {
	path := s.Config.Broker.CommandPath
	if path == "" {
		c.JSON(200, gin.H{"commands": []models.MBridgeCommand{}})
		return
	}

	commands, err := filebridge.DrainCommands(path)
	if err != nil {
		s.Logger.Error("Failed to drain command file: %v", err)
	}

	c.JSON(200, gin.H{"commands": commands})
}
