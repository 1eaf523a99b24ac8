package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
)

// writeError maps a service error onto the JSON error contract:
// {error: <kind>, message: <detail>}.
func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"error":   string(apperrors.KindOf(err)),
		"message": err.Error(),
	})
}
