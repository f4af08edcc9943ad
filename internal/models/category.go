package models

// CategoryRule assigns Name to transactions whose description contains any
// of Keywords, compared case-insensitively.
type CategoryRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}
