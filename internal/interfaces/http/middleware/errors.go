package middleware

import (
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// abortWithError stops the chain and writes the error envelope
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}
