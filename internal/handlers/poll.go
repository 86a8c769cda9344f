package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// runPoll triggers an immediate poll cycle and returns its summary. The
// per-account single-flight lock still applies: accounts with a cycle
// already in flight are reported skipped, never run twice.
func (h *Handler) runPoll(c *gin.Context) {
	run := h.services.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status": "completed",
		"run":    run,
	})
}

// lastRun returns the most recent cycle summary.
func (h *Handler) lastRun(c *gin.Context) {
	run, ok := h.services.LastRun()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no poll cycle has completed yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}
