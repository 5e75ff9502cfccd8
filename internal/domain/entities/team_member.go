package entities

// TeamMember is one entry of the public team page. Order determines
// display sequence; ties keep insertion order.
type TeamMember struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Order    int    `json:"order"`
	ImageURL string `json:"image_url,omitempty"`
}
