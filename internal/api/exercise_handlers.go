package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/exercisetracker/internal/service"
)

func PostExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.GetUser(c.Request.Context(), app.UserRepo(), c.Param("id"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to look up user")
			return
		}

		var body service.CreateExerciseRequest
		if err := c.ShouldBind(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}

		resp, err := service.CreateExercise(c.Request.Context(), app.ExerciseRepo(), user, &body, app.Now())
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save exercise")
			return
		}

		HandleSuccess(c, app.Logger(), resp)
	}
}

func GetLogs(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.GetUser(c.Request.Context(), app.UserRepo(), c.Param("id"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to look up user")
			return
		}

		var q service.LogQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid query")
			return
		}
		filter, err := service.ParseLogQuery(&q)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Invalid query")
			return
		}

		exercises, err := app.ExerciseRepo().ListExercises(c.Request.Context(), user.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch logs")
			return
		}

		HandleSuccess(c, app.Logger(), service.BuildUserLog(user, service.FilterExercises(exercises, filter)))
	}
}
