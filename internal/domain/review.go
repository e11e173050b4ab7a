package domain

import "time"

// Review is an immutable entry in the review log. ProductID is an
// advisory reference; it may point at a product that no longer exists.
type Review struct {
	ID        string    `dynamodbav:"id"        json:"id"`
	ProductID int       `dynamodbav:"productId" json:"productId"`
	Rating    int       `dynamodbav:"rating"    json:"rating"`
	Comment   string    `dynamodbav:"comment"   json:"comment"`
	Timestamp time.Time `dynamodbav:"timestamp" json:"timestamp"`
}

type CreateReviewRequest struct {
	ProductID int    `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"required"`
}
