package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard envelope for internal (peer and admin) endpoints.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CheckinBody is the public check-in envelope. The outcome is carried by OK, never by the status code.
type CheckinBody struct {
	OK             bool        `json:"ok"`
	Error          string      `json:"error,omitempty"`
	Details        interface{} `json:"details,omitempty"`
	Redirect       string      `json:"redirect,omitempty"`
	Backend        interface{} `json:"backend,omitempty"`
	FallbackInsert bool        `json:"fallback_insert,omitempty"`
}

// Checkin always sends 200 with the check-in envelope.
func Checkin(c *gin.Context, body CheckinBody) {
	c.JSON(http.StatusOK, body)
}

// CheckinFail sends 200 with ok=false and the given error message.
func CheckinFail(c *gin.Context, err string, details interface{}) {
	Checkin(c, CheckinBody{OK: false, Error: err, Details: details})
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// BadGateway sends 502 when a downstream store failed.
func BadGateway(c *gin.Context, err string) {
	c.JSON(http.StatusBadGateway, Body{Success: false, Error: err})
}
