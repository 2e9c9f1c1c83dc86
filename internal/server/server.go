package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eventmate-dev/eventmate/internal/reconcile"
	"github.com/eventmate-dev/eventmate/internal/statement"
	"github.com/eventmate-dev/eventmate/internal/store"
)

// TextExtractor turns uploaded statement bytes into plain text. The
// extraction strategies themselves only ever see text.
type TextExtractor func(pdfBytes []byte) (string, error)

// Server wires the HTTP API to the stores and the reconciliation core.
// Handlers never touch the database directly; everything goes through
// the injected store interfaces.
type Server struct {
	participants store.ParticipantStore
	activities   store.ActivityStore
	reconciler   *reconcile.Service
	extractor    *statement.Extractor
	pdfText      TextExtractor
	maxUpload    int64 // bytes
	log          zerolog.Logger
}

// New creates a Server. pdfText defaults to statement.Text when nil.
func New(participants store.ParticipantStore, activities store.ActivityStore, reconciler *reconcile.Service, extractor *statement.Extractor, pdfText TextExtractor, maxUploadBytes int64, log zerolog.Logger) *Server {
	if pdfText == nil {
		pdfText = statement.Text
	}
	return &Server{
		participants: participants,
		activities:   activities,
		reconciler:   reconciler,
		extractor:    extractor,
		pdfText:      pdfText,
		maxUpload:    maxUploadBytes,
		log:          log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")

	v := api.Group("/verification")
	v.POST("/verify-payments", s.verifyPayments)
	v.GET("/results", s.verificationResults)
	v.PUT("/verify/:id", s.verifyParticipant)
	v.PUT("/unverify/:id", s.unverifyParticipant)
	v.DELETE("/delete", s.deleteAllParticipants)

	p := api.Group("/participants")
	p.POST("", s.createParticipant)
	p.GET("", s.listParticipants)
	p.GET("/:id", s.getParticipant)
	p.PUT("/:id", s.updateParticipant)
	p.DELETE("/:id", s.deleteParticipant)
	p.POST("/:id/attend", s.markAttended)

	a := api.Group("/activities")
	a.GET("", s.allActivities)
	a.GET("/recent", s.recentActivities)
	a.DELETE("", s.deleteActivities)

	return r
}
