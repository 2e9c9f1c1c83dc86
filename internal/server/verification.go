package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/eventmate-dev/eventmate/internal/model"
	"github.com/eventmate-dev/eventmate/internal/roster"
	"github.com/eventmate-dev/eventmate/internal/store"
)

// verifyPayments handles POST /api/verification/verify-payments: a
// multipart upload of the payment-app PDF statement ("phonepeFile"), the
// registrant CSV ("participantsFile"), and the expected per-head amount.
// Validation failures reject before any parsing begins; a run that fails
// mid-way writes nothing.
func (s *Server) verifyPayments(c *gin.Context) {
	expectedAmount, err := decimal.NewFromString(c.PostForm("expectedAmount"))
	if err != nil || !expectedAmount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "valid expected payment amount is required"})
		return
	}

	statementFile, err := c.FormFile("phonepeFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "both statement and participants list are required"})
		return
	}
	rosterFile, err := c.FormFile("participantsFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "both statement and participants list are required"})
		return
	}
	if statementFile.Size > s.maxUpload || rosterFile.Size > s.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "uploaded file exceeds the size limit"})
		return
	}

	pdfBytes, err := readUpload(statementFile)
	if err != nil {
		s.log.Error().Err(err).Msg("statement upload unreadable")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "could not read statement file"})
		return
	}
	text, err := s.pdfText(pdfBytes)
	if err != nil {
		s.log.Error().Err(err).Msg("statement text extraction failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "could not read statement file"})
		return
	}

	rosterReader, err := rosterFile.Open()
	if err != nil {
		s.log.Error().Err(err).Msg("roster upload unreadable")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "could not read participants file"})
		return
	}
	defer rosterReader.Close()

	entries, err := roster.Parse(rosterReader)
	if err != nil {
		s.log.Error().Err(err).Msg("roster parse failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "could not read participants file"})
		return
	}

	txns := s.extractor.Extract(text)

	result, err := s.reconciler.Reconcile(c.Request.Context(), txns, entries, expectedAmount)
	if err != nil {
		s.log.Error().Err(err).Msg("reconciliation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "verification processing failed"})
		return
	}

	resp := gin.H{
		"success":       true,
		"verifiedCount": result.VerifiedCount,
		"totalCount":    result.TotalCount,
		"pending":       result.Pending,
		"participants":  rosterJSON(result.Participants),
	}
	if result.TransactionCount == 0 {
		resp["message"] = "no transactions found in statement"
	}
	c.JSON(http.StatusOK, resp)
}

// verificationResults handles GET /api/verification/results.
func (s *Server) verificationResults(c *gin.Context) {
	q := store.Query{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Verified:  boolQuery(c, "verified"),
		Attended:  boolQuery(c, "attended"),
	}

	participants, err := s.participants.List(c.Request.Context(), q)
	if err != nil {
		s.log.Error().Err(err).Msg("listing verification results failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
		return
	}

	verified := 0
	for _, p := range participants {
		if p.Verified {
			verified++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"verifiedCount": verified,
		"totalCount":    len(participants),
		"pending":       len(participants) - verified,
		"participants":  participants,
	})
}

// verifyParticipant handles PUT /api/verification/verify/:id.
func (s *Server) verifyParticipant(c *gin.Context) {
	s.setVerified(c, true, "Payment verified")
}

// unverifyParticipant handles PUT /api/verification/unverify/:id, the
// manual undo.
func (s *Server) unverifyParticipant(c *gin.Context) {
	s.setVerified(c, false, "Verification undone")
}

func (s *Server) setVerified(c *gin.Context, verified bool, action string) {
	id := c.Param("id")
	p, err := s.participants.SetVerified(c.Request.Context(), id, verified)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "participant not found"})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("verification override failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update verification status"})
		return
	}
	s.activities.Log(c.Request.Context(), action, p.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "verified": verified})
}

// deleteAllParticipants handles DELETE /api/verification/delete, the
// bulk reset that restarts an event cycle.
func (s *Server) deleteAllParticipants(c *gin.Context) {
	if err := s.participants.DeleteAll(c.Request.Context()); err != nil {
		s.log.Error().Err(err).Msg("bulk reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to delete all participants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// boolQuery returns a filter pointer only when the parameter is present
// and parses cleanly.
func boolQuery(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	switch raw {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

// rosterJSON shapes run results for the response envelope.
func rosterJSON(entries []model.RosterEntry) []gin.H {
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":          e.SequenceID,
			"name":        e.Name,
			"email":       e.Email,
			"phone":       e.Phone,
			"referenceId": e.ReferenceID,
			"amount":      e.Amount,
			"verified":    e.Verified,
		})
	}
	return out
}
