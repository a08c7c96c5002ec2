package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/interfaces/http/middleware"
	"propdesk.backend/internal/interfaces/http/response"
	"propdesk.backend/pkg/utils"
)

func pagination(c *gin.Context) utils.PaginationParams {
	return utils.ParsePagination(c.Query("page"), c.Query("limit"))
}

// uuidParam parses a path parameter and writes a 400 when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID returns the resolved user id and writes a 401 when absent.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return uuid.Nil, false
	}
	return user.ID, true
}
