package solnotes

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/solnotes/solution"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, solutions []solution.Solution) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(solutions))
	for _, s := range solutions {
		pubDate := ""
		if t := s.Time(); !t.IsZero() {
			pubDate = t.Format(time.RFC1123Z)
		}
		u := BuildURL(base, "solutions", s.Slug)
		items = append(items, rssItem{
			Title:       s.Title,
			Link:        u,
			Description: Summary(s),
			Categories:  append([]string{s.Difficulty.Label()}, s.Tags...),
			PubDate:     pubDate,
			GUID:        u,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
