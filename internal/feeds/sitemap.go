// Package feeds projects the published catalog into machine-readable
// surfaces: the per-locale XML sitemap and the RSS channel. Both are
// recomputed from storage on every request; nothing here is cached.
package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"golang.org/x/sync/errgroup"
)

// staticRoutes are the site pages that exist for every locale.
var staticRoutes = []string{"", "about", "events", "blog", "projects", "contact"}

// EventSource lists events for sitemap assembly.
type EventSource interface {
	List(ctx context.Context, filters events.Filters) ([]events.Event, error)
}

// ContentSource lists posts and projects for sitemap and RSS assembly.
type ContentSource interface {
	ListPosts(ctx context.Context, query content.PostQuery) (content.PostList, error)
	ListProjects(ctx context.Context, query content.ProjectQuery) ([]content.Project, error)
}

type Config struct {
	BaseURL  string
	Locales  []locale.Locale
	RSSLimit int
}

type Service struct {
	events  EventSource
	content ContentSource
	cfg     Config
	now     func() time.Time
}

func NewService(eventSource EventSource, contentSource ContentSource, cfg Config) *Service {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RSSLimit <= 0 {
		cfg.RSSLimit = 20
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = []locale.Locale{locale.Arabic, locale.English}
	}
	return &Service{events: eventSource, content: contentSource, cfg: cfg, now: time.Now}
}

// Entry is one sitemap URL. Alternates maps each locale to its
// translation of the same page; static routes carry the full map,
// detail pages carry their own locale variants.
type Entry struct {
	Loc          string
	LastModified time.Time
	Alternates   map[locale.Locale]string
}

// Sitemap assembles one entry per locale for every static route and
// every published event, post, and project. The three collection
// queries run concurrently.
func (s *Service) Sitemap(ctx context.Context) ([]Entry, error) {
	published := true

	var (
		eventItems   []events.Event
		postItems    []content.Post
		projectItems []content.Project
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		eventItems, err = s.events.List(gctx, events.Filters{Published: &published})
		return err
	})
	g.Go(func() error {
		var err error
		postItems, err = s.allPublishedPosts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		projectItems, err = s.content.ListProjects(gctx, content.ProjectQuery{Published: &published})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble sitemap: %w", err)
	}

	now := s.now().UTC()
	entries := make([]Entry, 0, len(staticRoutes)*len(s.cfg.Locales))

	for _, route := range staticRoutes {
		alternates := make(map[locale.Locale]string, len(s.cfg.Locales))
		for _, l := range s.cfg.Locales {
			alternates[l] = s.pageURL(l, route)
		}
		for _, l := range s.cfg.Locales {
			entries = append(entries, Entry{
				Loc:          s.pageURL(l, route),
				LastModified: now,
				Alternates:   alternates,
			})
		}
	}

	for _, event := range eventItems {
		entries = append(entries, s.localized("events/"+event.ULID, lastModified(event.UpdatedAt, event.Date, now))...)
	}
	for _, post := range postItems {
		natural := post.CreatedAt
		if post.PublishedAt != nil {
			natural = *post.PublishedAt
		}
		entries = append(entries, s.localized("blog/"+post.Slug, lastModified(post.UpdatedAt, natural, now))...)
	}
	for _, project := range projectItems {
		entries = append(entries, s.localized("projects/"+project.Slug, lastModified(project.UpdatedAt, project.CreatedAt, now))...)
	}
	return entries, nil
}

// SitemapXML renders the sitemap with xhtml alternate links, per the
// sitemaps.org extension for localized pages. Rendered by hand because
// encoding/xml cannot emit namespace-prefixed element names.
func (s *Service) SitemapXML(ctx context.Context) ([]byte, error) {
	entries, err := s.Sitemap(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">` + "\n")
	for _, entry := range entries {
		b.WriteString("  <url>\n")
		b.WriteString("    <loc>" + escapeXML(entry.Loc) + "</loc>\n")
		b.WriteString("    <lastmod>" + entry.LastModified.UTC().Format(time.RFC3339) + "</lastmod>\n")
		locales := make([]string, 0, len(entry.Alternates))
		for l := range entry.Alternates {
			locales = append(locales, string(l))
		}
		sort.Strings(locales)
		for _, l := range locales {
			href := entry.Alternates[locale.Locale(l)]
			b.WriteString(`    <xhtml:link rel="alternate" hreflang="` + l + `" href="` + escapeXML(href) + `"/>` + "\n")
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString("</urlset>\n")
	return []byte(b.String()), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(value string) string {
	return xmlEscaper.Replace(value)
}

// feedPageSize matches the content service page cap.
const feedPageSize = 50

// allPublishedPosts walks every page of the published post catalog;
// the sitemap carries one entry per post, not just the newest page.
func (s *Service) allPublishedPosts(ctx context.Context) ([]content.Post, error) {
	published := true
	var posts []content.Post
	for page := 1; ; page++ {
		list, err := s.content.ListPosts(ctx, content.PostQuery{
			Published: &published,
			Page:      page,
			Limit:     feedPageSize,
		})
		if err != nil {
			return nil, err
		}
		posts = append(posts, list.Items...)
		if len(list.Items) == 0 || page >= list.Pagination.TotalPages {
			return posts, nil
		}
	}
}

func (s *Service) pageURL(l locale.Locale, route string) string {
	if route == "" {
		return s.cfg.BaseURL + "/" + string(l)
	}
	return s.cfg.BaseURL + "/" + string(l) + "/" + route
}

func (s *Service) localized(path string, lastMod time.Time) []Entry {
	alternates := make(map[locale.Locale]string, len(s.cfg.Locales))
	for _, l := range s.cfg.Locales {
		alternates[l] = s.pageURL(l, path)
	}
	entries := make([]Entry, 0, len(s.cfg.Locales))
	for _, l := range s.cfg.Locales {
		entries = append(entries, Entry{
			Loc:          s.pageURL(l, path),
			LastModified: lastMod,
			Alternates:   alternates,
		})
	}
	return entries
}

// lastModified picks the freshest honest timestamp: the row's update
// time when present, otherwise the entity's natural date, otherwise now.
func lastModified(updatedAt, natural, now time.Time) time.Time {
	if !updatedAt.IsZero() {
		return updatedAt
	}
	if !natural.IsZero() {
		return natural
	}
	return now
}

