package models

import "time"

// Like records a like on a post. The post itself lives in MongoDB and
// carries the like counter; this row keeps who liked what.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"postId" gorm:"index"` // MongoDB ObjectID as string
	UserID    uint      `json:"userId" gorm:"index"` // who liked the post
	CreatedAt time.Time `json:"createdAt"`
}
