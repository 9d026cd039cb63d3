package valueobject

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// Title is a listing headline of 1 to 200 characters.
type Title struct {
	value string
}

// NewTitle trims and validates a title.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)
	if err := validation.Validate(s,
		validation.Required.Error("title is required"),
		validation.RuneLength(1, MaxTitleLength).Error("title must be at most 200 characters"),
	); err != nil {
		return Title{}, fmt.Errorf("%w: %v", ErrInvalidTitle, err)
	}
	return Title{value: s}, nil
}

func (t Title) String() string {
	return t.value
}

// Description is the free-text body of a listing, 1 to 5000 characters.
type Description struct {
	value string
}

// NewDescription trims and validates a description.
func NewDescription(s string) (Description, error) {
	s = strings.TrimSpace(s)
	if err := validation.Validate(s,
		validation.Required.Error("description is required"),
		validation.RuneLength(1, MaxDescriptionLength).Error("description must be at most 5000 characters"),
	); err != nil {
		return Description{}, fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}
	return Description{value: s}, nil
}

func (d Description) String() string {
	return d.value
}
