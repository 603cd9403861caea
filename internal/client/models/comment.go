package models

import "time"

// CommentAuthor is the trimmed account shape the server embeds on comments.
type CommentAuthor struct {
	AccountUUID    string `json:"account_uuid"`
	DisplayName    string `json:"display_name"`
	ProfilePicture Image  `json:"profile_picture"`
}

// Comment belongs to exactly one of a post or an event; the foreign keys are
// mutually exclusive.
type Comment struct {
	CommentID   int64         `json:"comment_id"`
	Message     string        `json:"message"`
	CreatedDate time.Time     `json:"created_date"`
	Author      CommentAuthor `json:"account"`
	PostID      *int64        `json:"post_id,omitempty"`
	EventID     *int64        `json:"event_id,omitempty"`
}

// CommentsPage is an offset-paged slice of comments for one post or event.
type CommentsPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"has_more"`
}
