package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventmate-dev/eventmate/internal/model"
	"github.com/eventmate-dev/eventmate/internal/qr"
	"github.com/eventmate-dev/eventmate/internal/store"
)

type participantRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

// createParticipant handles POST /api/participants: direct registration
// outside a reconciliation run. The QR code is issued immediately.
func (s *Server) createParticipant(c *gin.Context) {
	var req participantRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.Name == "" || req.PhoneNumber == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "please provide all required fields"})
		return
	}

	p := model.Participant{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}
	err := s.participants.Create(c.Request.Context(), &p)
	if errors.Is(err, store.ErrDuplicateEmail) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "participant with this email already exists"})
		return
	}
	if errors.Is(err, store.ErrInvalidEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "please provide a valid email"})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("participant create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create participant"})
		return
	}

	if issued, qerr := s.issueQR(c, &p); qerr == nil {
		p = *issued
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
}

// listParticipants handles GET /api/participants.
func (s *Server) listParticipants(c *gin.Context) {
	q := store.Query{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Verified:  boolQuery(c, "verified"),
		Attended:  boolQuery(c, "attended"),
	}
	participants, err := s.participants.List(c.Request.Context(), q)
	if err != nil {
		s.log.Error().Err(err).Msg("participant list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to fetch participants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(participants), "data": participants})
}

// getParticipant handles GET /api/participants/:id.
func (s *Server) getParticipant(c *gin.Context) {
	p, err := s.participants.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "participant not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to fetch participant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

// updateParticipant handles PUT /api/participants/:id. Identity changes
// reissue the QR code, since its payload embeds name and email.
func (s *Server) updateParticipant(c *gin.Context) {
	var req participantRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	p := model.Participant{
		ID:          c.Param("id"),
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}
	err := s.participants.Update(c.Request.Context(), &p)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "participant not found"})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("id", p.ID).Msg("participant update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update participant"})
		return
	}

	updated, err := s.participants.Get(c.Request.Context(), p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update participant"})
		return
	}
	if issued, qerr := s.issueQR(c, updated); qerr == nil {
		updated = issued
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// deleteParticipant handles DELETE /api/participants/:id.
func (s *Server) deleteParticipant(c *gin.Context) {
	err := s.participants.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "participant not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to delete participant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "participant successfully deleted"})
}

// markAttended handles POST /api/participants/:id/attend: the check-in
// scan. Attendance never resets; scanning twice keeps the first
// timestamp.
func (s *Server) markAttended(c *gin.Context) {
	p, err := s.participants.MarkAttended(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "participant not found"})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("attendance marking failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to mark attendance"})
		return
	}
	s.activities.Log(c.Request.Context(), "Attendance marked", p.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

func (s *Server) issueQR(c *gin.Context, p *model.Participant) (*model.Participant, error) {
	dataURL, err := qr.DataURL(p)
	if err != nil {
		s.log.Error().Err(err).Str("id", p.ID).Msg("qr issuance failed")
		return nil, err
	}
	return s.participants.SetQRCode(c.Request.Context(), p.ID, dataURL)
}
