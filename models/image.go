package models

import (
	"time"
)

// Image is the metadata record of an uploaded object. Name is the object
// store key and never changes after insert.
type Image struct {
	ID          int64     `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	URL         string    `json:"url" bson:"url"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// DisplayImage is the read-only projection used for listings.
type DisplayImage struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (img Image) Display() DisplayImage {
	return DisplayImage{
		Name:        img.Name,
		URL:         img.URL,
		Description: img.Description,
	}
}
