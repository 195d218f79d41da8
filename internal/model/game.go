package model

import (
	"math"
	"strings"
)

// NoPlaytime marks a game whose playtime was not provided.
const NoPlaytime = -1

// Field bounds.
const (
	MaxTitleLength     = 100
	MaxPlatformLength  = 50
	MaxPublisherLength = 50
	MaxPlaytime        = 10000
	MaxPrice           = 10000
)

// Game represents one video game in the library.
type Game struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title" validate:"required,max=100"`
	Platform       string      `json:"platform" validate:"required,max=50"`
	Publisher      string      `json:"publisher" validate:"required,max=50"`
	ReleaseDate    Date        `json:"release_date"`
	CompletionDate *Date       `json:"completion_date,omitempty"`
	Playtime       int         `json:"playtime" validate:"min=-1,max=10000"`
	Price          float64     `json:"price" validate:"min=0,max=10000"`
	Categories     CategorySet `json:"categories"`
	ImagePath      string      `json:"image_path,omitempty"`
}

// HasPlaytime reports whether a playtime was recorded.
func (g *Game) HasPlaytime() bool {
	return g.Playtime != NoPlaytime
}

// Normalize trims text fields and rounds the price to cents.
func (g *Game) Normalize() {
	g.Title = strings.TrimSpace(g.Title)
	g.Platform = strings.TrimSpace(g.Platform)
	g.Publisher = strings.TrimSpace(g.Publisher)
	g.ImagePath = strings.TrimSpace(g.ImagePath)
	g.Price = math.Round(g.Price*100) / 100
}
