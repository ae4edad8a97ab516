package dom

import "fmt"

// Element ids every page must carry.
const (
	GetTriggerID   = "get"
	FetchTriggerID = "fetch"
	TimerID        = "timer"
	ContainerID    = "posts"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<main>
<form method="post" action="/click/get"><button id="get" type="submit">Get posts</button></form>
<form method="post" action="/click/fetch"><button id="fetch" type="submit">Fetch posts</button></form>
<p>Time: <span id="timer"></span></p>
<section id="posts"></section>
</main>
</body>
</html>`

// NewPage returns the demo page: two triggers, a timer and an empty
// post container.
func NewPage(title string) *Document {
	doc, err := ParseString(fmt.Sprintf(pageTemplate, title))
	if err != nil {
		// the template is constant; html.Parse only fails on reader errors
		panic(err)
	}
	return doc
}
