package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"userId" bson:"user_id"` // author
	Content       string             `json:"content" bson:"content"`
	MediaURL      string             `json:"mediaUrl,omitempty" bson:"media_url,omitempty"`
	LikesCount    int                `json:"likes" bson:"likes_count"`
	CommentsCount int                `json:"comments" bson:"comments_count"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}

// PostWithAuthor includes the author's public profile
type PostWithAuthor struct {
	Post
	Author UserCompact `json:"author"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=280"`
	MediaURL string `json:"mediaUrl,omitempty" validate:"omitempty,url"`
}
