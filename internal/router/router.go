package router

import (
	"qanda/internal/handlers"
	"qanda/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	questionHandler := handlers.NewQuestionHandler()
	answerHandler := handlers.NewAnswerHandler()
	voteHandler := handlers.NewVoteHandler()
	topicHandler := handlers.NewTopicHandler()
	userHandler := handlers.NewUserHandler()

	// Public Routes
	r.GET("/questions", questionHandler.List)            // question feed
	r.GET("/questions/:id", questionHandler.Detail)      // question with answers and tallies
	r.GET("/questions/:id/answers", answerHandler.List)  // answers of one question
	r.GET("/topics", topicHandler.List)                  // all topics
	r.POST("/topics", topicHandler.Create)               // create topic
	r.GET("/topics/:slug", topicHandler.Detail)          // topic with its questions
	r.GET("/votes", voteHandler.List)                    // vote listing + counts
	r.GET("/users/:id", userHandler.Profile)             // public profile

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/questions", questionHandler.Create)
		authorized.PUT("/questions/:id", questionHandler.Update)
		authorized.DELETE("/questions/:id", questionHandler.Delete)

		authorized.POST("/questions/:id/answers", answerHandler.Create)
		authorized.PUT("/answers/:id", answerHandler.Update)
		authorized.DELETE("/answers/:id", answerHandler.Delete)

		authorized.POST("/votes", voteHandler.Cast)     // toggle/switch vote
		authorized.DELETE("/votes", voteHandler.Remove) // explicit removal

		authorized.GET("/auth/me", authHandler.Me)
	}
}
