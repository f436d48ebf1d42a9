package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell/handlers"
	"inkwell/middleware"
)

// SetupRouter builds the route table. Routes behind RequireAuth carry a
// verified principal; ownership and admin checks happen in the handlers
// where the target record is known.
func SetupRouter(api *handlers.API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := middleware.RequireAuth(api.Tokens)

	// /api/auth
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", api.Register)
		authGroup.POST("/login", api.Login)
	}

	// /api/users
	users := router.Group("/api/users")
	{
		users.GET("/profile", authRequired, api.GetAllUsers)
		users.GET("/profile/:id", api.GetUserProfile)
		users.PUT("/profile/:id", authRequired, api.UpdateUserProfile)
		users.DELETE("/profile/:id", authRequired, api.DeleteUserProfile)
		users.POST("/profile/profile-photo-upload", authRequired, api.UploadProfilePhoto)
		users.GET("/count", authRequired, api.CountUsers)
	}

	// /api/posts
	posts := router.Group("/api/posts")
	{
		posts.POST("", authRequired, api.CreatePost)
		posts.GET("", api.GetPosts)
		posts.GET("/count", api.CountPosts)
		posts.GET("/:id", api.GetPost)
		posts.PUT("/:id", authRequired, api.UpdatePost)
		posts.DELETE("/:id", authRequired, api.DeletePost)
		posts.PUT("/update-image/:id", authRequired, api.UpdatePostImage)
		posts.PUT("/like/:id", authRequired, api.ToggleLike)
	}

	// /api/comments
	comments := router.Group("/api/comments")
	{
		comments.POST("", authRequired, api.CreateComment)
		comments.GET("", authRequired, api.GetAllComments)
		comments.PUT("/:id", authRequired, api.UpdateComment)
		comments.DELETE("/:id", authRequired, api.DeleteComment)
	}

	// /api/categories
	categories := router.Group("/api/categories")
	{
		categories.POST("", authRequired, api.CreateCategory)
		categories.GET("", api.GetAllCategories)
		categories.DELETE("/:id", authRequired, api.DeleteCategory)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "endpoint not found"})
	})

	return router
}
