package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// recentLimit caps the dashboard's recent-activity feed.
const recentLimit = 10

// recentActivities handles GET /api/activities/recent.
func (s *Server) recentActivities(c *gin.Context) {
	activities, err := s.activities.Recent(c.Request.Context(), recentLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "error fetching activities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": activities})
}

// allActivities handles GET /api/activities.
func (s *Server) allActivities(c *gin.Context) {
	activities, err := s.activities.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "error fetching activities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(activities), "data": activities})
}

// deleteActivities handles DELETE /api/activities.
func (s *Server) deleteActivities(c *gin.Context) {
	if err := s.activities.DeleteAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "error deleting activities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "all activities deleted"})
}
