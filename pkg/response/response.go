package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
)

// Body is the wire contract shared by every public endpoint. The enrollment
// form and the mobile app both key off the success flag and message text.
type Body struct {
	Success   bool        `json:"success"`
	Reference string      `json:"reference,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Detail    string      `json:"detail,omitempty"`
}

// Writer shapes responses, hiding error detail in production.
type Writer struct {
	exposeDetail bool
}

// NewWriter constructs a response writer. exposeDetail should be false in
// production so raw database errors never reach the client.
func NewWriter(exposeDetail bool) *Writer {
	return &Writer{exposeDetail: exposeDetail}
}

// OK sends a success payload with an optional data object.
func (w *Writer) OK(c *gin.Context, message string, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

// Submitted sends the enrollment success payload carrying the reference code.
func (w *Writer) Submitted(c *gin.Context, reference, message string) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, Body{Success: true, Reference: reference, Message: message})
}

// Error converts any error into the common failure shape.
func (w *Writer) Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	body := Body{Success: false, Message: appErr.Message}
	if w.exposeDetail && appErr.Err != nil {
		body.Detail = appErr.Err.Error()
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, body)
}
