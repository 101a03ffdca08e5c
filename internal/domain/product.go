package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Product is a catalog item. Images is an array in memory; the flat record
// store keeps it as a single JSON string column (see EncodeImages and
// DecodeImages, the only two functions allowed to cross that boundary).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Type        string    `json:"type"`
	Cooling     string    `json:"cooling,omitempty"`
	Images      []string  `json:"images"`
	Featured    bool      `json:"featured"`
	New         bool      `json:"new"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EncodeImages serializes an image list into the single string form used by
// the record store. Every write path that stores images must go through here.
func EncodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(data), nil
}

// DecodeImages restores the image list from its stored string form. Every
// read path that surfaces images must go through here. An empty or absent
// value decodes to an empty list, never nil and never an error for the
// callers' sake of a well-formed response.
func DecodeImages(stored string) ([]string, error) {
	if stored == "" {
		return []string{}, nil
	}
	var images []string
	if err := json.Unmarshal([]byte(stored), &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if images == nil {
		images = []string{}
	}
	return images, nil
}
