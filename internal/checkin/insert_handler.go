package checkin

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/internal/middleware"
	"github.com/unifecaf/checkin-api/internal/models"
	"github.com/unifecaf/checkin-api/pkg/response"
)

// InsertRequest is the body posted by a forwarding peer.
type InsertRequest struct {
	Nome     text `json:"nome"`
	CPF      text `json:"cpf"`
	LinkZoom text `json:"link_zoom"`
	IP       text `json:"ip"`
}

// Insert handles the authenticated POST /zoom/checkin. The payload is validated again.
func (h *Handler) Insert(c *gin.Context) {
	var req InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, ErrMalformedBody.Error())
		return
	}
	name := SanitizeName(string(req.Nome))
	if !validName(name) {
		response.BadRequest(c, ErrInvalidName.Error())
		return
	}
	meetingURL := req.MeetingURL()
	if meetingURL == "" || !IsAllowedTarget(meetingURL) {
		response.BadRequest(c, ErrInvalidURL.Error())
		return
	}

	var clientIP string
	if ip := net.ParseIP(string(req.IP)); ip != nil {
		clientIP = ip.String()
	}
	meetingID := ExtractMeetingID(meetingURL)
	rec := models.NewCheckinRecord(name, SanitizeNationalID(string(req.CPF)), meetingURL, meetingID, clientIP)

	if err := h.sink.InsertRows(c.Request.Context(), []models.CheckinRecord{rec}); err != nil {
		h.logger.Error("peer checkin insert",
			zap.String("subject", c.GetString(middleware.ContextSubject)), zap.String("meeting_id", meetingID), zap.Error(err))
		response.BadGateway(c, err.Error())
		return
	}
	response.OK(c, gin.H{"inserted": true, "meeting_id": rec.MeetingID})
}

// MeetingURL returns link_zoom trimmed.
func (r InsertRequest) MeetingURL() string {
	return strings.TrimSpace(string(r.LinkZoom))
}
