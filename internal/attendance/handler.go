package attendance

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/internal/models"
	"github.com/unifecaf/checkin-api/pkg/response"
)

// meetingIDPattern accepts Zoom numeric IDs and Meet room codes.
var meetingIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// Lister is satisfied by *sink.Postgres.
type Lister interface {
	ListByMeeting(ctx context.Context, meetingID string) ([]models.CheckinRecord, error)
}

// Handler handles GET /zoom/meetings/:id/checkins.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// ListCheckins returns every check-in recorded for a meeting, oldest first.
func (h *Handler) ListCheckins(c *gin.Context) {
	meetingID := c.Param("id")
	if !meetingIDPattern.MatchString(meetingID) {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	list, err := h.repo.ListByMeeting(c.Request.Context(), meetingID)
	if err != nil {
		h.logger.Error("list checkins", zap.String("meeting_id", meetingID), zap.Error(err))
		response.Internal(c, "failed to list checkins")
		return
	}
	if list == nil {
		list = []models.CheckinRecord{}
	}
	response.OK(c, gin.H{"meeting_id": meetingID, "count": len(list), "checkins": list})
}
