package domain

// StyleOption describes one handwriting style prior the model ships with.
type StyleOption struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
