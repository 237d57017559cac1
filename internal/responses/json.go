package responses

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope every endpoint answers with. Clients read
// Data on success and Error/Message otherwise.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  StatusError,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusCode, resp)
}

// Abort writes the error envelope and stops the remaining handlers.
func Abort(c *gin.Context, statusCode int, err error, message string) {
	c.Abort()
	Fail(c, statusCode, err, message)
}
