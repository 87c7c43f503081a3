package models

import "time"

// ProfileID is the key of the single CMS profile row.
const ProfileID = "default"

// CMSProfile is the landing page content edited in the admin back office.
type CMSProfile struct {
	Hero                  Hero      `json:"hero"`
	About                 About     `json:"about"`
	Contact               Contact   `json:"contact"`
	ContactRecipientEmail string    `json:"contact_recipient_email"`
	UpdatedAt             time.Time `json:"updated_at,omitempty"`
}

type Hero struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	CTA      string   `json:"cta"`
	Images   []string `json:"images"`
}

type About struct {
	Title string      `json:"title"`
	Items []AboutItem `json:"items"`
}

type AboutItem struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Content string `json:"content"`
}

type Contact struct {
	Title     string `json:"title"`
	Tagline   string `json:"tagline"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
}

// DefaultCMSProfile is served until an admin saves content.
func DefaultCMSProfile() CMSProfile {
	return CMSProfile{
		Hero: Hero{Images: []string{"", "", ""}},
		About: About{
			Title: "About Us",
			Items: []AboutItem{
				{ID: "mission", Label: "Our Mission"},
				{ID: "vision", Label: "Our Vision"},
				{ID: "values", Label: "Our Values"},
			},
		},
	}
}

// ContactMessage is a message sent through the landing page contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
