package googlebooks

import "strings"

// Volume is a Google Books volume.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo matches the volumeInfo object of the API response.
type VolumeInfo struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Categories    []string `json:"categories"`
	Language      string   `json:"language"`
	ImageLinks    struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
}

// CoverURL returns the best available thumbnail, upgraded to https.
func (v VolumeInfo) CoverURL() string {
	cover := v.ImageLinks.Thumbnail
	if cover == "" {
		cover = v.ImageLinks.SmallThumbnail
	}
	return strings.Replace(cover, "http://", "https://", 1)
}

// Subjects splits categories such as "Fiction / Science Fiction / General"
// into their parts, dropping duplicates.
func (v VolumeInfo) Subjects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, category := range v.Categories {
		for _, part := range strings.Split(category, "/") {
			part = strings.TrimSpace(part)
			key := strings.ToLower(part)
			if part == "" || key == "general" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, part)
		}
	}
	return out
}
