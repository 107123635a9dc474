package checkin

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unifecaf/checkin-api/internal/models"
	"github.com/unifecaf/checkin-api/internal/sink"
	"github.com/unifecaf/checkin-api/pkg/response"
)

// Handler serves the public check-in form and the peer insertion endpoint.
type Handler struct {
	sink      sink.Sink
	forwarder Forwarder
	logger    *zap.Logger
}

// NewHandler creates a check-in handler. A nil forwarder disables the forwarding hop.
func NewHandler(s sink.Sink, forwarder Forwarder, logger *zap.Logger) *Handler {
	return &Handler{sink: s, forwarder: forwarder, logger: logger}
}

// Checkin handles the public POST /zoom/checkin and POST /checkin. Always answers 200.
func (h *Handler) Checkin(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CheckinFail(c, ErrMalformedBody.Error(), nil)
		return
	}

	name := SanitizeName(req.RawName())
	if !validName(name) {
		response.CheckinFail(c, ErrInvalidName.Error(), nil)
		return
	}
	meetingURL := req.MeetingURL()
	if meetingURL == "" || !IsAllowedTarget(meetingURL) {
		response.CheckinFail(c, ErrInvalidURL.Error(), nil)
		return
	}

	nationalID := SanitizeNationalID(string(req.CPF))
	meetingID := ExtractMeetingID(meetingURL)
	redirect := PublicRedirect(meetingURL, meetingID)
	clientIP := c.ClientIP()
	ctx := c.Request.Context()

	if h.forwarder != nil {
		res := h.forwarder.Forward(ctx, ForwardPayload{
			Name:       name,
			NationalID: optional(nationalID),
			MeetingURL: meetingURL,
			ClientIP:   optional(clientIP),
		})
		if res.OK() {
			response.Checkin(c, response.CheckinBody{OK: true, Redirect: redirect, Backend: res.Body})
			return
		}
		h.logger.Warn("forward failed, inserting directly",
			zap.String("meeting_id", meetingID), zap.Error(res.Err))
	}

	rec := models.NewCheckinRecord(name, nationalID, meetingURL, meetingID, clientIP)
	if err := h.sink.InsertRows(ctx, []models.CheckinRecord{rec}); err != nil {
		var rowErrs sink.InsertErrors
		if errors.As(err, &rowErrs) {
			h.logger.Error("checkin rows rejected", zap.String("meeting_id", meetingID), zap.Error(err))
			response.CheckinFail(c, ErrSinkInsertFailed.Error(), []sink.RowError(rowErrs))
			return
		}
		h.logger.Error("checkin insert", zap.String("meeting_id", meetingID), zap.Error(err))
		response.CheckinFail(c, ErrSinkCallFailed.Error(), err.Error())
		return
	}
	response.Checkin(c, response.CheckinBody{OK: true, Redirect: redirect, FallbackInsert: true})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
