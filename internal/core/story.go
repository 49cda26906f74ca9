package core

// Story is one playable unit in an author's timeline. In the feed it is an
// image reference; the engine treats it as opaque.
type Story struct {
	ID        string `json:"id" toml:"id"`
	ImageName string `json:"image_name" toml:"image"`
}

// Author owns an ordered list of stories.
type Author struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	PhotoName string  `json:"photo_name"`
	Stories   []Story `json:"stories"`
}

// Timeline returns the author's stories as a timeline.
func (a *Author) Timeline() Timeline {
	if a == nil {
		return nil
	}
	return NewTimeline(a.Stories)
}
