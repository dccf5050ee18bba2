package public

import (
	handlershared "github.com/mercato-api/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithData(c *gin.Context, code int, key string, data interface{}) {
	handlershared.RespondErrorWithData(c, code, key, data)
}
