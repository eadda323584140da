package compose

import (
	"fmt"
	"html"
	"strings"

	"evolve-engine/internal/domain"
	"evolve-engine/internal/scrape/util"
)

const (
	topicLimit = 48

	greeting = "Hi there,"
	pitch    = "I run lightweight automations for small businesses: lead capture, follow-ups, and task routing that keep teams moving without manual babysitting."
	cta      = "Are you open to a 10-minute teardown this week?"
	signOff  = "Best,"
)

type Email struct {
	Subject string
	Text    string
	HTML    string
}

type Composer struct {
	FromName string
}

// Topic is the lead title, else its snippet, else "your post".
func Topic(l domain.Lead) string {
	for _, s := range []string{l.Title, l.Snippet} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return "your post"
}

func (c Composer) Compose(l domain.Lead) Email {
	topic := util.Truncate(Topic(l), topicLimit)

	opener := fmt.Sprintf("I came across your thread \"%s\" and it sounded like you want traction without adding headcount.", topic)
	offer := fmt.Sprintf("If you want, I can draft a quick automation map tailored to what you mentioned (%s).", l.ThreadURL)
	paras := []string{greeting, opener, pitch, offer, cta}

	text := strings.Join(append(append([]string{}, paras...), signOff, c.FromName), "\n\n")

	var b strings.Builder
	for _, p := range paras {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>\n")
	}
	b.WriteString("<p>" + signOff + "<br />" + html.EscapeString(c.FromName) + "</p>")

	return Email{
		Subject: "Idea after your forum post about " + topic,
		Text:    text,
		HTML:    b.String(),
	}
}
