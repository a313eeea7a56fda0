package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
)

func TestPostRoundTripWithTaxonomy(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	category, err := repo.Content().CreateCategory(ctx, content.TaxonomyParams{
		Name: "News", NameAr: "أخبار",
	}, "news")
	require.NoError(t, err)
	tag, err := repo.Content().CreateTag(ctx, content.TaxonomyParams{
		Name: "Launch",
	}, "launch")
	require.NoError(t, err)

	created, err := repo.Content().CreatePost(ctx, content.PostParams{
		Title:         "Launch Day",
		TitleAr:       "يوم الإطلاق",
		Excerpt:       "We are live",
		Content:       "<p>Welcome</p>",
		Published:     true,
		Keywords:      []string{"launch", "news"},
		CategoryULIDs: []string{category.ULID},
		TagULIDs:      []string{tag.ULID},
	}, "launch-day")
	require.NoError(t, err)
	require.Equal(t, "launch-day", created.Slug)
	require.NotNil(t, created.PublishedAt)
	require.Len(t, created.Categories, 1)
	require.Len(t, created.Tags, 1)

	bySlug, err := repo.Content().GetPostBySlug(ctx, "launch-day")
	require.NoError(t, err)
	require.Equal(t, created.ULID, bySlug.ULID)
	require.Equal(t, "news", bySlug.Categories[0].Slug)
	require.Equal(t, []string{"launch", "news"}, bySlug.Keywords)
}

func TestUpdatePostKeepsSlugAndRewritesTaxonomy(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	category, err := repo.Content().CreateCategory(ctx, content.TaxonomyParams{Name: "News"}, "news")
	require.NoError(t, err)

	created, err := repo.Content().CreatePost(ctx, content.PostParams{
		Title:         "Original",
		Published:     false,
		CategoryULIDs: []string{category.ULID},
	}, "original")
	require.NoError(t, err)
	require.Nil(t, created.PublishedAt)

	updated, err := repo.Content().UpdatePost(ctx, created.ULID, content.PostParams{
		Title:     "Renamed",
		Published: true,
	})
	require.NoError(t, err)
	require.Equal(t, "original", updated.Slug)
	require.Equal(t, "Renamed", updated.Title)
	require.NotNil(t, updated.PublishedAt)
	require.Empty(t, updated.Categories)
}

func TestListPostsPaginationAndFilters(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	category, err := repo.Content().CreateCategory(ctx, content.TaxonomyParams{Name: "News"}, "news")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		params := content.PostParams{
			Title:     fmt.Sprintf("Post %d", i),
			Published: true,
		}
		if i%2 == 0 {
			params.CategoryULIDs = []string{category.ULID}
		}
		_, err := repo.Content().CreatePost(ctx, params, fmt.Sprintf("post-%d", i))
		require.NoError(t, err)
		// Keep published_at strictly ordered.
		time.Sleep(5 * time.Millisecond)
	}
	_, err = repo.Content().CreatePost(ctx, content.PostParams{Title: "Draft"}, "draft")
	require.NoError(t, err)

	published := true
	items, total, err := repo.Content().ListPosts(ctx, content.PostQuery{
		Published: &published,
		Page:      1,
		Limit:     2,
	})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, items, 2)
	require.Equal(t, "Post 4", items[0].Title)
	require.Equal(t, "Post 3", items[1].Title)

	// Category filter narrows to the even posts.
	items, total, err = repo.Content().ListPosts(ctx, content.PostQuery{
		Published:    &published,
		CategorySlug: "news",
		Page:         1,
		Limit:        10,
	})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, items, 3)

	// Page past the end still reports true totals.
	items, total, err = repo.Content().ListPosts(ctx, content.PostQuery{
		Published: &published,
		Page:      9,
		Limit:     2,
	})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Empty(t, items)
}

func TestProjectImagesOrdered(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	created, err := repo.Content().CreateProject(ctx, content.ProjectParams{
		Title:     "Stadium Activation",
		Published: true,
		Images: []content.ProjectImage{
			{ImageURL: "https://cdn.example.com/b.jpg", Order: 2},
			{ImageURL: "https://cdn.example.com/a.jpg", Order: 1},
		},
	}, "stadium-activation")
	require.NoError(t, err)

	fetched, err := repo.Content().GetProjectBySlug(ctx, "stadium-activation")
	require.NoError(t, err)
	require.Len(t, fetched.Images, 2)
	require.Equal(t, "https://cdn.example.com/a.jpg", fetched.Images[0].ImageURL)
	require.Equal(t, "https://cdn.example.com/b.jpg", fetched.Images[1].ImageURL)
	require.Equal(t, created.ULID, fetched.ULID)
}

func TestProjectImagesExplicitOrderIncludingZero(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	// Zero is a real order value, not an "unset" marker: a gallery
	// submitted as [2, 0, 1] reads back as [0, 1, 2] with distinct
	// positions.
	_, err = repo.Content().CreateProject(ctx, content.ProjectParams{
		Title:     "Mall Launch",
		Published: true,
		Images: []content.ProjectImage{
			{ImageURL: "https://cdn.example.com/last.jpg", Order: 2},
			{ImageURL: "https://cdn.example.com/first.jpg", Order: 0},
			{ImageURL: "https://cdn.example.com/middle.jpg", Order: 1},
		},
	}, "mall-launch")
	require.NoError(t, err)

	fetched, err := repo.Content().GetProjectBySlug(ctx, "mall-launch")
	require.NoError(t, err)
	require.Len(t, fetched.Images, 3)
	require.Equal(t, "https://cdn.example.com/first.jpg", fetched.Images[0].ImageURL)
	require.Equal(t, "https://cdn.example.com/middle.jpg", fetched.Images[1].ImageURL)
	require.Equal(t, "https://cdn.example.com/last.jpg", fetched.Images[2].ImageURL)
	seen := map[int]bool{}
	for _, image := range fetched.Images {
		require.False(t, seen[image.Order])
		seen[image.Order] = true
	}
}

func TestProjectImagesSubmissionOrderBreaksTies(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	// All-zero orders fall back to submission order.
	_, err = repo.Content().CreateProject(ctx, content.ProjectParams{
		Title:     "Expo Booth",
		Published: true,
		Images: []content.ProjectImage{
			{ImageURL: "https://cdn.example.com/one.jpg"},
			{ImageURL: "https://cdn.example.com/two.jpg"},
			{ImageURL: "https://cdn.example.com/three.jpg"},
		},
	}, "expo-booth")
	require.NoError(t, err)

	fetched, err := repo.Content().GetProjectBySlug(ctx, "expo-booth")
	require.NoError(t, err)
	require.Len(t, fetched.Images, 3)
	require.Equal(t, "https://cdn.example.com/one.jpg", fetched.Images[0].ImageURL)
	require.Equal(t, "https://cdn.example.com/two.jpg", fetched.Images[1].ImageURL)
	require.Equal(t, "https://cdn.example.com/three.jpg", fetched.Images[2].ImageURL)
}

func TestListClientsOrderAndPublishedFilter(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	_, err = repo.Content().CreateClient(ctx, content.ClientParams{
		Name: "Beta", LogoURL: "https://cdn.example.com/beta.png", Published: true, Order: 2,
	})
	require.NoError(t, err)
	_, err = repo.Content().CreateClient(ctx, content.ClientParams{
		Name: "Alpha", LogoURL: "https://cdn.example.com/alpha.png", Published: true, Order: 1,
	})
	require.NoError(t, err)
	_, err = repo.Content().CreateClient(ctx, content.ClientParams{
		Name: "Hidden", LogoURL: "https://cdn.example.com/hidden.png", Published: false, Order: 0,
	})
	require.NoError(t, err)

	clients, err := repo.Content().ListClients(ctx, true)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	require.Equal(t, "Alpha", clients[0].Name)
	require.Equal(t, "Beta", clients[1].Name)

	all, err := repo.Content().ListClients(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestSlugExistsPerCollection(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	_, err = repo.Content().CreatePost(ctx, content.PostParams{Title: "Launch"}, "launch")
	require.NoError(t, err)

	exists, err := repo.Content().SlugExists(ctx, content.SlugPosts, "launch")
	require.NoError(t, err)
	require.True(t, exists)

	// Same slug is free in another collection.
	exists, err = repo.Content().SlugExists(ctx, content.SlugProjects, "launch")
	require.NoError(t, err)
	require.False(t, exists)
}
