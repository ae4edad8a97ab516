package models

// Result is what a driver observed after clicking a trigger on a served page.
type Result struct {
	URL       string `json:"url"`
	Trigger   string `json:"trigger"`
	Title     string `json:"title"`
	Timer     string `json:"timer"`
	Articles  int    `json:"articles"`
	PostsHTML string `json:"posts_html"`
	Text      string `json:"text"`
	HTMLHash  string `json:"html_hash"`
	RenderMS  int    `json:"render_ms"`
}
