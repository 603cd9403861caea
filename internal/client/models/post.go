package models

import "time"

// Post is a member-authored content record. The server denormalizes a bounded
// comment preview onto every post it returns.
type Post struct {
	ID               int64     `json:"id"`
	AccountID        int64     `json:"account_id"`
	Description      string    `json:"description"`
	Image            Image     `json:"image"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
	Author           *Member   `json:"author,omitempty"`
	LatestComments   []Comment `json:"latest_comments"`
	TotalComments    int       `json:"total_comments"`
}

// PostsPage is one page of posts plus the metadata needed to advance.
type PostsPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
