package logger

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LOG returns a sublogger scoped to the handled request
func LOG(c *gin.Context) *logrus.Entry {
	return NewSublogger("api").
		WithField("method", c.Request.Method).
		WithField("path", c.FullPath())
}

// LOGE aborts the request with the given status and returns a sublogger
// carrying the error. The response body matches the webhook contract.
func LOGE(c *gin.Context, err error, status int) *logrus.Entry {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})

	entry := LOG(c).WithField("status", status)
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}
