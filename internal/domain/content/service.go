package content

import (
	"context"
	"fmt"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/slug"
	"github.com/dreamtoapp/smartcrowds-server/internal/sanitize"
	"github.com/dreamtoapp/smartcrowds-server/internal/validation"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Service is the bilingual content aggregator: post/project/client CRUD
// for admin screens plus the paginated, locale-resolved public listings.
type Service struct {
	repo      Repository
	validator *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New()}
}

// CreatePost assigns the slug once, from the primary title, and sanitizes
// rich-text bodies. The slug survives later title edits.
func (s *Service) CreatePost(ctx context.Context, params PostParams) (*Post, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(params.FeaturedImage, "featuredImage"); err != nil {
		return nil, err
	}
	s.sanitizePost(&params)

	postSlug, err := s.assignSlug(ctx, SlugPosts, firstNonEmpty(params.Title, params.TitleAr))
	if err != nil {
		return nil, err
	}
	return s.repo.CreatePost(ctx, params, postSlug)
}

func (s *Service) UpdatePost(ctx context.Context, ulid string, params PostParams) (*Post, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(params.FeaturedImage, "featuredImage"); err != nil {
		return nil, err
	}
	s.sanitizePost(&params)
	return s.repo.UpdatePost(ctx, ulid, params)
}

func (s *Service) GetPost(ctx context.Context, ulid string) (*Post, error) {
	return s.repo.GetPost(ctx, ulid)
}

func (s *Service) GetPostBySlug(ctx context.Context, slugValue string) (*Post, error) {
	return s.repo.GetPostBySlug(ctx, slugValue)
}

func (s *Service) DeletePost(ctx context.Context, ulid string) error {
	return s.repo.DeletePost(ctx, ulid)
}

// ListPosts pages the post collection. Pages are 1-indexed; a page past
// the end returns no items but reports the true totals so the caller can
// render accurate pagination controls.
func (s *Service) ListPosts(ctx context.Context, query PostQuery) (PostList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = defaultPageSize
	}
	if query.Limit > maxPageSize {
		query.Limit = maxPageSize
	}

	items, total, err := s.repo.ListPosts(ctx, query)
	if err != nil {
		return PostList{}, err
	}

	totalPages := (total + query.Limit - 1) / query.Limit
	return PostList{
		Items: items,
		Pagination: Pagination{
			Page:       query.Page,
			Limit:      query.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *Service) CreateProject(ctx context.Context, params ProjectParams) (*Project, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	s.sanitizeProject(&params)

	projectSlug, err := s.assignSlug(ctx, SlugProjects, firstNonEmpty(params.Title, params.TitleAr))
	if err != nil {
		return nil, err
	}
	return s.repo.CreateProject(ctx, params, projectSlug)
}

func (s *Service) UpdateProject(ctx context.Context, ulid string, params ProjectParams) (*Project, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	s.sanitizeProject(&params)
	return s.repo.UpdateProject(ctx, ulid, params)
}

func (s *Service) GetProject(ctx context.Context, ulid string) (*Project, error) {
	return s.repo.GetProject(ctx, ulid)
}

func (s *Service) GetProjectBySlug(ctx context.Context, slugValue string) (*Project, error) {
	return s.repo.GetProjectBySlug(ctx, slugValue)
}

func (s *Service) ListProjects(ctx context.Context, query ProjectQuery) ([]Project, error) {
	return s.repo.ListProjects(ctx, query)
}

func (s *Service) DeleteProject(ctx context.Context, ulid string) error {
	return s.repo.DeleteProject(ctx, ulid)
}

func (s *Service) CreateClient(ctx context.Context, params ClientParams) (*Client, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(params.LogoURL, "logoUrl"); err != nil {
		return nil, err
	}
	if err := validation.ValidateURL(params.WebsiteURL, "websiteUrl"); err != nil {
		return nil, err
	}
	params.Name = sanitize.Text(params.Name)
	return s.repo.CreateClient(ctx, params)
}

func (s *Service) UpdateClient(ctx context.Context, ulid string, params ClientParams) (*Client, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	params.Name = sanitize.Text(params.Name)
	return s.repo.UpdateClient(ctx, ulid, params)
}

// ListClients returns the logo wall in display order: ascending explicit
// order, ties broken by newest first.
func (s *Service) ListClients(ctx context.Context, publishedOnly bool) ([]Client, error) {
	return s.repo.ListClients(ctx, publishedOnly)
}

func (s *Service) DeleteClient(ctx context.Context, ulid string) error {
	return s.repo.DeleteClient(ctx, ulid)
}

func (s *Service) CreateCategory(ctx context.Context, params TaxonomyParams) (*Category, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	categorySlug, err := s.assignSlug(ctx, SlugCategories, firstNonEmpty(params.Name, params.NameAr))
	if err != nil {
		return nil, err
	}
	return s.repo.CreateCategory(ctx, params, categorySlug)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) DeleteCategory(ctx context.Context, ulid string) error {
	return s.repo.DeleteCategory(ctx, ulid)
}

func (s *Service) CreateTag(ctx context.Context, params TaxonomyParams) (*Tag, error) {
	if err := validation.Check(s.validator, params); err != nil {
		return nil, err
	}
	tagSlug, err := s.assignSlug(ctx, SlugTags, firstNonEmpty(params.Name, params.NameAr))
	if err != nil {
		return nil, err
	}
	return s.repo.CreateTag(ctx, params, tagSlug)
}

func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *Service) DeleteTag(ctx context.Context, ulid string) error {
	return s.repo.DeleteTag(ctx, ulid)
}

func (s *Service) assignSlug(ctx context.Context, kind SlugKind, title string) (string, error) {
	var lookupErr error
	assigned := slug.Unique(slug.Generate(title), func(candidate string) bool {
		if lookupErr != nil {
			return false
		}
		exists, err := s.repo.SlugExists(ctx, kind, candidate)
		if err != nil {
			lookupErr = err
			return false
		}
		return exists
	})
	if lookupErr != nil {
		return "", fmt.Errorf("assign %s slug: %w", kind, lookupErr)
	}
	return assigned, nil
}

func (s *Service) sanitizePost(params *PostParams) {
	params.Title = sanitize.Text(params.Title)
	params.TitleAr = sanitize.Text(params.TitleAr)
	params.Excerpt = sanitize.Text(params.Excerpt)
	params.ExcerptAr = sanitize.Text(params.ExcerptAr)
	params.Content = sanitize.HTML(params.Content)
	params.ContentAr = sanitize.HTML(params.ContentAr)
	params.AuthorName = sanitize.Text(params.AuthorName)
	params.Keywords = sanitize.TextSlice(params.Keywords)
}

func (s *Service) sanitizeProject(params *ProjectParams) {
	params.Title = sanitize.Text(params.Title)
	params.TitleAr = sanitize.Text(params.TitleAr)
	params.Description = sanitize.HTML(params.Description)
	params.DescriptionAr = sanitize.HTML(params.DescriptionAr)
	for i := range params.Images {
		params.Images[i].Alt = sanitize.Text(params.Images[i].Alt)
		params.Images[i].AltAr = sanitize.Text(params.Images[i].AltAr)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
