package course

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("course not found")
	ErrConflict = errors.New("course was modified concurrently")
)

type Course struct {
	ID          int64     `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Category    string    `json:"category" bson:"category"`
	Author      string    `json:"author,omitempty" bson:"author,omitempty"`
	Tags        []string  `json:"tags" bson:"tags"`
	Date        time.Time `json:"date" bson:"date"`
	IsPublished bool      `json:"isPublished" bson:"isPublished"`
	Price       *int      `json:"price,omitempty" bson:"price,omitempty"`
	Version     int       `json:"-" bson:"version"`
}

// clone returns a deep copy so callers never share the tags slice or the
// price pointer with the stored record.
func (c Course) clone() Course {
	if c.Tags != nil {
		c.Tags = append([]string(nil), c.Tags...)
	}
	if c.Price != nil {
		p := *c.Price
		c.Price = &p
	}
	return c
}

// candidate renders the record in the shape accepted by Engine.Validate.
func (c Course) candidate() map[string]any {
	m := map[string]any{
		"name":        c.Name,
		"category":    c.Category,
		"tags":        append([]string(nil), c.Tags...),
		"date":        c.Date,
		"isPublished": c.IsPublished,
	}
	if c.Author != "" {
		m["author"] = c.Author
	}
	if c.Price != nil {
		m["price"] = *c.Price
	}
	return m
}

// Field names as they appear on the wire.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldCategory    = "category"
	FieldAuthor      = "author"
	FieldTags        = "tags"
	FieldDate        = "date"
	FieldIsPublished = "isPublished"
	FieldPrice       = "price"
)

var fields = []string{
	FieldID, FieldName, FieldCategory, FieldAuthor,
	FieldTags, FieldDate, FieldIsPublished, FieldPrice,
}

// Project returns the subset of c named by names. The id is always present
// and an empty list selects every field.
func Project(c Course, names []string) map[string]any {
	if len(names) == 0 {
		names = fields
	}

	out := map[string]any{FieldID: c.ID}
	for _, n := range names {
		switch n {
		case FieldName:
			out[n] = c.Name
		case FieldCategory:
			out[n] = c.Category
		case FieldAuthor:
			if c.Author != "" {
				out[n] = c.Author
			}
		case FieldTags:
			out[n] = c.Tags
		case FieldDate:
			out[n] = c.Date
		case FieldIsPublished:
			out[n] = c.IsPublished
		case FieldPrice:
			if c.Price != nil {
				out[n] = *c.Price
			}
		}
	}
	return out
}
