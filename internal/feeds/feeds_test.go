package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/stretchr/testify/require"
)

type fakeSources struct {
	events   []events.Event
	posts    []content.Post
	projects []content.Project

	eventFilters events.Filters
	postQuery    content.PostQuery
}

func (f *fakeSources) List(_ context.Context, filters events.Filters) ([]events.Event, error) {
	f.eventFilters = filters
	return f.events, nil
}

func (f *fakeSources) ListPosts(_ context.Context, query content.PostQuery) (content.PostList, error) {
	f.postQuery = query
	page := query.Page
	if page < 1 {
		page = 1
	}
	items := f.posts
	totalPages := 1
	if query.Limit > 0 {
		totalPages = (len(f.posts) + query.Limit - 1) / query.Limit
		start := (page - 1) * query.Limit
		if start > len(items) {
			start = len(items)
		}
		end := start + query.Limit
		if end > len(items) {
			end = len(items)
		}
		items = items[start:end]
	}
	return content.PostList{
		Items: items,
		Pagination: content.Pagination{
			Page:       page,
			Limit:      query.Limit,
			Total:      len(f.posts),
			TotalPages: totalPages,
		},
	}, nil
}

func (f *fakeSources) ListProjects(_ context.Context, query content.ProjectQuery) ([]content.Project, error) {
	return f.projects, nil
}

func newTestService(sources *fakeSources) *Service {
	svc := NewService(sources, sources, Config{
		BaseURL: "https://smartcrowds.example",
		Locales: []locale.Locale{locale.Arabic, locale.English},
	})
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSitemapStaticRoutesPerLocale(t *testing.T) {
	sources := &fakeSources{}
	svc := newTestService(sources)

	entries, err := svc.Sitemap(context.Background())

	require.NoError(t, err)
	// Six static routes, each emitted once per locale.
	require.Len(t, entries, 12)
	byLoc := map[string]Entry{}
	for _, entry := range entries {
		byLoc[entry.Loc] = entry
	}
	home, ok := byLoc["https://smartcrowds.example/ar"]
	require.True(t, ok)
	require.Equal(t, "https://smartcrowds.example/en", home.Alternates[locale.English])
	require.Equal(t, "https://smartcrowds.example/ar", home.Alternates[locale.Arabic])
	require.Contains(t, byLoc, "https://smartcrowds.example/en/projects")
}

func TestSitemapQueriesPublishedOnly(t *testing.T) {
	sources := &fakeSources{}
	svc := newTestService(sources)

	_, err := svc.Sitemap(context.Background())

	require.NoError(t, err)
	require.NotNil(t, sources.eventFilters.Published)
	require.True(t, *sources.eventFilters.Published)
	require.NotNil(t, sources.postQuery.Published)
	require.True(t, *sources.postQuery.Published)
}

func TestSitemapLastModifiedPriority(t *testing.T) {
	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	eventDate := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	sources := &fakeSources{
		events: []events.Event{
			{ULID: "01EVENTWITHUPDATE000000000", Date: eventDate, UpdatedAt: updated},
			{ULID: "01EVENTNOUPDATE00000000000", Date: eventDate},
			{ULID: "01EVENTBARE000000000000000"},
		},
	}
	svc := newTestService(sources)

	entries, err := svc.Sitemap(context.Background())
	require.NoError(t, err)

	lastModByLoc := map[string]time.Time{}
	for _, entry := range entries {
		lastModByLoc[entry.Loc] = entry.LastModified
	}
	require.Equal(t, updated, lastModByLoc["https://smartcrowds.example/ar/events/01EVENTWITHUPDATE000000000"])
	require.Equal(t, eventDate, lastModByLoc["https://smartcrowds.example/ar/events/01EVENTNOUPDATE00000000000"])
	require.Equal(t, svc.now(), lastModByLoc["https://smartcrowds.example/ar/events/01EVENTBARE000000000000000"])
}

func TestSitemapUsesPublishedAtForPosts(t *testing.T) {
	publishedAt := time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)
	sources := &fakeSources{
		posts: []content.Post{{
			Slug:        "launch-day",
			PublishedAt: &publishedAt,
			CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	svc := newTestService(sources)

	entries, err := svc.Sitemap(context.Background())
	require.NoError(t, err)

	for _, entry := range entries {
		if entry.Loc == "https://smartcrowds.example/en/blog/launch-day" {
			require.Equal(t, publishedAt, entry.LastModified)
			return
		}
	}
	t.Fatal("post entry missing from sitemap")
}

func TestSitemapIncludesEveryPublishedPost(t *testing.T) {
	sources := &fakeSources{}
	for i := 0; i < 60; i++ {
		sources.posts = append(sources.posts, content.Post{
			Slug:      fmt.Sprintf("post-%02d", i),
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	svc := newTestService(sources)

	entries, err := svc.Sitemap(context.Background())
	require.NoError(t, err)

	blogLocs := map[string]bool{}
	for _, entry := range entries {
		if strings.Contains(entry.Loc, "/blog/") {
			blogLocs[entry.Loc] = true
		}
	}
	// Every post once per locale, including those past the 50-row page cap.
	require.Len(t, blogLocs, 120)
	require.Contains(t, blogLocs, "https://smartcrowds.example/ar/blog/post-59")
	require.Contains(t, blogLocs, "https://smartcrowds.example/en/blog/post-59")
}

func TestSitemapXMLCarriesAlternateLinks(t *testing.T) {
	sources := &fakeSources{
		projects: []content.Project{{Slug: "expo-build", CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}},
	}
	svc := newTestService(sources)

	out, err := svc.SitemapXML(context.Background())

	require.NoError(t, err)
	text := string(out)
	require.True(t, strings.HasPrefix(text, xml.Header))
	require.Contains(t, text, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	require.Contains(t, text, `hreflang="ar"`)
	require.Contains(t, text, `href="https://smartcrowds.example/ar/projects/expo-build"`)
	require.Contains(t, text, `href="https://smartcrowds.example/en/projects/expo-build"`)
}

func TestRSSLimitsAndResolvesLocale(t *testing.T) {
	publishedAt := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	sources := &fakeSources{}
	for i := 0; i < 25; i++ {
		sources.posts = append(sources.posts, content.Post{
			Title: "English", TitleAr: "عربي", Slug: "post", PublishedAt: &publishedAt,
		})
	}
	svc := newTestService(sources)

	out, err := svc.RSS(context.Background(), locale.Arabic)

	require.NoError(t, err)
	require.Equal(t, 20, sources.postQuery.Limit)
	require.Equal(t, 20, strings.Count(string(out), "<item>"))
	require.Contains(t, string(out), "<title>عربي</title>")
	require.Contains(t, string(out), "<language>ar</language>")
}

func TestRSSEscapeRoundTrip(t *testing.T) {
	publishedAt := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	title := `Tom & Jerry <live> "quoted" it's`
	sources := &fakeSources{
		posts: []content.Post{{
			Title: title, Excerpt: `a < b & c > d`, Slug: "escaped", PublishedAt: &publishedAt,
		}},
	}
	svc := newTestService(sources)

	out, err := svc.RSS(context.Background(), locale.English)
	require.NoError(t, err)

	// Reserved characters never appear raw inside element content.
	require.NotContains(t, string(out), "<live>")
	require.Contains(t, string(out), "&amp;")

	// Decoding the rendered feed restores the original strings exactly.
	var decoded struct {
		Channel struct {
			Items []struct {
				Title       string `xml:"title"`
				Description string `xml:"description"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(out, &decoded))
	require.Len(t, decoded.Channel.Items, 1)
	require.Equal(t, title, decoded.Channel.Items[0].Title)
	require.Equal(t, `a < b & c > d`, decoded.Channel.Items[0].Description)
}
