package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

// RSS renders the newest published posts as an RSS 2.0 channel in the
// requested locale. Titles and descriptions go through the XML encoder,
// so reserved characters in user content stay escaped.
func (s *Service) RSS(ctx context.Context, l locale.Locale) ([]byte, error) {
	published := true
	list, err := s.content.ListPosts(ctx, content.PostQuery{
		Published: &published,
		Locale:    l,
		Page:      1,
		Limit:     s.cfg.RSSLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble rss: %w", err)
	}

	channel := rssChannel{
		Title:       "SmartCrowds",
		Link:        s.pageURL(l, "blog"),
		Description: "Latest posts from SmartCrowds",
		Language:    string(l),
	}
	for _, post := range list.Items {
		published := post.CreatedAt
		if post.PublishedAt != nil {
			published = *post.PublishedAt
		}
		channel.Items = append(channel.Items, rssItem{
			Title:       post.DisplayTitle(l),
			Link:        s.pageURL(l, "blog/"+post.Slug),
			Description: post.DisplayExcerpt(l),
			Author:      post.AuthorName,
			GUID:        s.pageURL(l, "blog/"+post.Slug),
			PubDate:     published.UTC().Format(time.RFC1123Z),
		})
	}

	out, err := xml.MarshalIndent(rssFeed{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render rss: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
