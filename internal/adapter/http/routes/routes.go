package routes

import (
	"doitnow/internal/adapter/http/handler"
	"doitnow/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

type HandlersConfig struct {
	TodoHandler   *handler.TodoHandler
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
}

func SetupRouter(handlers HandlersConfig, deps middleware.Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.SetupGinMiddleware(router, deps)
	registerRoutes(router, handlers)

	return router
}

// SetupRouterForTests skips the middleware chain except recovery and CORS.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	registerRoutes(router, handlers)

	return router
}

func registerRoutes(router *gin.Engine, handlers HandlersConfig) {
	if handlers.HealthHandler != nil {
		router.GET("/health", handlers.HealthHandler.Health)
	}

	api := router.Group("/api")

	if handlers.TodoHandler != nil {
		setupTodoRoutes(api, handlers.TodoHandler)
	}

	if handlers.UserHandler != nil {
		setupUserRoutes(api, handlers.UserHandler)
	}
}

func setupTodoRoutes(api *gin.RouterGroup, todoHandler *handler.TodoHandler) {
	todos := api.Group("/todos")
	{
		todos.GET("", todoHandler.GetAllTodos)
		todos.GET("/due-date", todoHandler.GetTodosByDueDate)
		todos.GET("/:id", todoHandler.GetTodo)
		todos.POST("", todoHandler.CreateTodo)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.PATCH("/:id/toggle", todoHandler.ToggleTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
	}
}

func setupUserRoutes(api *gin.RouterGroup, userHandler *handler.UserHandler) {
	users := api.Group("/users")
	{
		users.GET("", userHandler.GetAllUsers)
		users.GET("/:id", userHandler.GetUser)
		users.GET("/username/:username", userHandler.GetUserByUsername)
		users.GET("/email/:email", userHandler.GetUserByEmail)
		users.POST("", userHandler.CreateUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}
}
