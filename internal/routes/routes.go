package routes

import (
	"github.com/damoang/emoji-backend/internal/handler"
	"github.com/damoang/emoji-backend/internal/middleware"
	"github.com/damoang/emoji-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(router *gin.Engine, emojiHandler *handler.EmojiHandler, jwtManager *jwt.Manager) {
	api := router.Group("/api/v2")

	emoji := api.Group("/emoji", middleware.JWTAuth(jwtManager))

	// Groups
	groups := emoji.Group("/groups")
	{
		groups.GET("", emojiHandler.ListGroups)
		groups.POST("", emojiHandler.CreateGroup)
		groups.PUT("/sort", emojiHandler.BatchUpdateGroupSort)
		groups.PUT("/:group_id/name", emojiHandler.RenameGroup)
		groups.PUT("/:group_id/sort", emojiHandler.UpdateGroupSort)
		groups.DELETE("/:group_id", emojiHandler.DeleteGroup)

		// Group membership
		groups.GET("/:group_id/emojis", emojiHandler.ListGroupEmojis)
		groups.POST("/:group_id/emojis", emojiHandler.AddEmojiToGroup)
		groups.POST("/:group_id/emojis/url", emojiHandler.AddEmojiByURL)
		groups.PUT("/:group_id/emojis/sort", emojiHandler.BatchUpdateEmojiSort)
		groups.DELETE("/:group_id/emojis/:emoji_id", emojiHandler.RemoveEmojiFromGroup)
		groups.PUT("/:group_id/emojis/:emoji_id/name", emojiHandler.RenameEmojiInGroup)
		groups.PUT("/:group_id/emojis/:emoji_id/sort", emojiHandler.UpdateEmojiSort)
	}
}
