package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SentryRecovery reports panics to Sentry and answers 500
func SentryRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}

		hub := sentry.CurrentHub().Clone()
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetRequest(c.Request)
			if userID, ok := c.Get("user_id"); ok {
				scope.SetUser(sentry.User{ID: fmt.Sprint(userID)})
			}
			if requestID, ok := c.Get("request_id"); ok {
				scope.SetTag("request_id", fmt.Sprint(requestID))
			}
			hub.CaptureException(err)
		})

		logrus.Errorf("Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
