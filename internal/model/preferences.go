package model

// Preferences holds the user-facing toggles of the settings screen.
type Preferences struct {
	ConfirmDelete bool     `json:"confirm_delete"`
	ShowImages    bool     `json:"show_images"`
	LastView      Category `json:"last_view"`
}

// DefaultPreferences apply until the user changes a setting.
var DefaultPreferences = Preferences{
	ConfirmDelete: true,
	ShowImages:    true,
	LastView:      CategoryBacklog,
}
