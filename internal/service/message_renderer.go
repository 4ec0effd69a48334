package service

import (
	"fmt"

	"loginsight-webhook/internal/model"
)

// MessageRenderer formats a NormalizedEvent as the HTML body of a chat message.
type MessageRenderer interface {
	Render(event model.NormalizedEvent) string
}

const alertTemplate = `<span style="color:yellow"><b>%s</b></span> had a <span style="color:orange"><b>%s</b></span> event.<br> %s<br><span style="color:lime">%s</span><br><a href=%s>See more logs here</a>`

type htmlMessageRenderer struct{}

func NewMessageRenderer() MessageRenderer {
	return &htmlMessageRenderer{}
}

// Render interpolates values verbatim. The chat client renders the HTML, so
// payload content is not escaped.
func (r *htmlMessageRenderer) Render(event model.NormalizedEvent) string {
	return fmt.Sprintf(alertTemplate,
		event.Hostname,
		event.Alert,
		event.Description,
		event.Recommendation,
		event.URL,
	)
}
