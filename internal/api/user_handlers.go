package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/exercisetracker/internal/service"
)

func PostUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateUserRequest
		if err := c.ShouldBind(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}

		if err := service.ValidateCreateUserRequest(&req); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to validate user")
			return
		}

		user, err := service.CreateUser(c.Request.Context(), app.UserRepo(), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save user")
			return
		}

		HandleSuccess(c, app.Logger(), user)
	}
}

func GetUsers(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := app.UserRepo().ListUsers(c.Request.Context())
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch users")
			return
		}

		HandleSuccess(c, app.Logger(), users)
	}
}
