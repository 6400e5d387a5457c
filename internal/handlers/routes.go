package handlers

import "github.com/gin-gonic/gin"

// Routes groups the handlers and the middleware that guards them
type Routes struct {
	Auth          *AuthHandler
	Entries       *EntryHandler
	Users         *UsersHandler
	Feed          *FeedHandler
	AI            *AIHandler
	Calendar      *CalendarHandler
	Notifications *NotificationsHandler

	RequireAuth   gin.HandlerFunc
	OptionalAuth  gin.HandlerFunc
	RateLimit     gin.HandlerFunc
	MutationLimit gin.HandlerFunc
}

func passThrough(c *gin.Context) { c.Next() }

// Register mounts every route on v1
func (r Routes) Register(v1 *gin.RouterGroup) {
	rateLimit, mutationLimit := r.RateLimit, r.MutationLimit
	if rateLimit == nil {
		rateLimit = passThrough
	}
	if mutationLimit == nil {
		mutationLimit = passThrough
	}
	authed := []gin.HandlerFunc{r.RequireAuth, rateLimit}

	auth := v1.Group("/auth")
	{
		auth.POST("/session", rateLimit, r.Auth.SignIn)
		auth.DELETE("/session", append(authed, r.Auth.SignOut)...)
	}

	v1.GET("/feed", r.OptionalAuth, r.Feed.GetFeed)
	v1.GET("/feed/stream", r.OptionalAuth, r.Feed.StreamFeed)
	v1.GET("/map/markers", r.Feed.MapMarkers)

	entries := v1.Group("/entries")
	{
		entries.GET("/:id", r.Entries.GetEntry)

		protected := entries.Group("", authed...)
		protected.POST("", r.Entries.CreateEntry)
		protected.PUT("/:id", r.Entries.UpdateEntry)
		protected.DELETE("/:id", r.Entries.DeleteEntry)
		protected.POST("/:id/like", mutationLimit, r.Entries.ToggleLike)
		protected.POST("/:id/comments", mutationLimit, r.Entries.SubmitComment)
		protected.PUT("/:id/comments/:commentId", mutationLimit, r.Entries.EditComment)
		protected.DELETE("/:id/comments/:commentId", mutationLimit, r.Entries.DeleteComment)
	}

	users := v1.Group("/users")
	{
		users.GET("/me", append(authed, r.Users.GetMe)...)
		users.PUT("/me", append(authed, r.Users.UpdateMe)...)
		users.GET("/:uid", r.Users.GetUser)
		users.POST("/:uid/follow", append(authed, mutationLimit, r.Users.Follow)...)
		users.DELETE("/:uid/follow", append(authed, mutationLimit, r.Users.Unfollow)...)
	}

	v1.GET("/ai/status", r.AI.Status)
	aiGroup := v1.Group("/ai", authed...)
	{
		aiGroup.POST("/enhance", r.AI.Enhance)
		aiGroup.POST("/location-insight", r.AI.LocationInsight)
	}

	cal := v1.Group("/calendar")
	{
		cal.GET("", r.Calendar.ListEvents)
		cal.POST("/events", append(authed, r.Calendar.CreateEvent)...)
		cal.PUT("/events/:id", append(authed, r.Calendar.UpdateEvent)...)
		cal.DELETE("/events/:id", append(authed, r.Calendar.DeleteEvent)...)
	}

	if r.Notifications != nil {
		v1.POST("/notifications/register", append(authed, r.Notifications.RegisterPushToken)...)
	}
}
