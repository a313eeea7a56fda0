// Package content manages the bilingual publishing entities: blog posts
// with their category/tag taxonomy, project portfolios, and client logos.
// Listing is locale-aware but locale never filters — it only decides which
// twin field a display string prefers.
package content

import (
	"context"
	"errors"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTagNotFound      = errors.New("tag not found")
)

type Post struct {
	ID             string
	ULID           string
	Title          string
	TitleAr        string
	Slug           string
	Excerpt        string
	ExcerptAr      string
	Content        string
	ContentAr      string
	FeaturedImage  string
	AuthorName     string
	Published      bool
	PublishedAt    *time.Time
	Locale         string
	SEOTitle       string
	SEODescription string
	Keywords       []string
	Categories     []Category
	Tags           []Tag
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p Post) DisplayTitle(l locale.Locale) string {
	return locale.Resolve(l, p.TitleAr, p.Title)
}

func (p Post) DisplayExcerpt(l locale.Locale) string {
	return locale.Resolve(l, p.ExcerptAr, p.Excerpt)
}

func (p Post) DisplayContent(l locale.Locale) string {
	return locale.Resolve(l, p.ContentAr, p.Content)
}

type Category struct {
	ID        string
	ULID      string
	Name      string
	NameAr    string
	Slug      string
	CreatedAt time.Time
}

func (c Category) DisplayName(l locale.Locale) string {
	return locale.Resolve(l, c.NameAr, c.Name)
}

type Tag struct {
	ID        string
	ULID      string
	Name      string
	NameAr    string
	Slug      string
	CreatedAt time.Time
}

func (t Tag) DisplayName(l locale.Locale) string {
	return locale.Resolve(l, t.NameAr, t.Name)
}

type Project struct {
	ID            string
	ULID          string
	Title         string
	TitleAr       string
	Slug          string
	Description   string
	DescriptionAr string
	Images        []ProjectImage
	StartDate     *time.Time
	EndDate       *time.Time
	Featured      bool
	Published     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Project) DisplayTitle(l locale.Locale) string {
	return locale.Resolve(l, p.TitleAr, p.Title)
}

func (p Project) DisplayDescription(l locale.Locale) string {
	return locale.Resolve(l, p.DescriptionAr, p.Description)
}

// ProjectImage is one entry of a project's ordered gallery.
type ProjectImage struct {
	ImageURL string `json:"imageUrl" validate:"required"`
	Alt      string `json:"alt" validate:"max=300"`
	AltAr    string `json:"altAr" validate:"max=300"`
	Order    int    `json:"order" validate:"gte=0"`
}

// Client is a logo-wall entry. Order sorts ascending; equal orders break
// ties by newest creation first.
type Client struct {
	ID         string
	ULID       string
	Name       string
	LogoURL    string
	WebsiteURL string
	Published  bool
	Order      int
	CreatedAt  time.Time
}

type PostParams struct {
	Title          string   `json:"title" validate:"required,max=200"`
	TitleAr        string   `json:"titleAr" validate:"max=200"`
	Excerpt        string   `json:"excerpt" validate:"max=1000"`
	ExcerptAr      string   `json:"excerptAr" validate:"max=1000"`
	Content        string   `json:"content"`
	ContentAr      string   `json:"contentAr"`
	FeaturedImage  string   `json:"featuredImage"`
	AuthorName     string   `json:"authorName" validate:"max=120"`
	Published      bool     `json:"published"`
	Locale         string   `json:"locale" validate:"omitempty,oneof=ar en"`
	SEOTitle       string   `json:"seoTitle" validate:"max=200"`
	SEODescription string   `json:"seoDescription" validate:"max=500"`
	Keywords       []string `json:"keywords" validate:"max=20,dive,max=60"`
	CategoryULIDs  []string `json:"categoryIds"`
	TagULIDs       []string `json:"tagIds"`
}

type ProjectParams struct {
	Title         string         `json:"title" validate:"required,max=200"`
	TitleAr       string         `json:"titleAr" validate:"max=200"`
	Description   string         `json:"description"`
	DescriptionAr string         `json:"descriptionAr"`
	Images        []ProjectImage `json:"images" validate:"dive"`
	StartDate     *time.Time     `json:"startDate"`
	EndDate       *time.Time     `json:"endDate"`
	Featured      bool           `json:"featured"`
	Published     bool           `json:"published"`
}

type ClientParams struct {
	Name       string `json:"name" validate:"required,max=200"`
	LogoURL    string `json:"logoUrl" validate:"required"`
	WebsiteURL string `json:"websiteUrl"`
	Published  bool   `json:"published"`
	Order      int    `json:"order" validate:"gte=0"`
}

type TaxonomyParams struct {
	Name   string `json:"name" validate:"required,max=120"`
	NameAr string `json:"nameAr" validate:"max=120"`
}

// PostQuery narrows and pages a post listing. Page is 1-indexed; Locale
// decides twin-field preference only, never filtering.
type PostQuery struct {
	Locale       locale.Locale
	Published    *bool
	CategorySlug string
	TagSlug      string
	Page         int
	Limit        int
}

// Pagination reports the true totals even when the requested page lies
// past the end.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type PostList struct {
	Items      []Post
	Pagination Pagination
}

type ProjectQuery struct {
	Published *bool
	Featured  *bool
}

// SlugKind names a slug collection; slugs are unique per collection.
type SlugKind string

const (
	SlugPosts      SlugKind = "posts"
	SlugProjects   SlugKind = "projects"
	SlugCategories SlugKind = "categories"
	SlugTags       SlugKind = "tags"
)

// Repository is the persistence contract for publishing entities.
// Slugs are written once at create; update paths never change them.
type Repository interface {
	CreatePost(ctx context.Context, params PostParams, slug string) (*Post, error)
	UpdatePost(ctx context.Context, ulid string, params PostParams) (*Post, error)
	GetPost(ctx context.Context, ulid string) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	ListPosts(ctx context.Context, query PostQuery) ([]Post, int, error)
	DeletePost(ctx context.Context, ulid string) error

	CreateProject(ctx context.Context, params ProjectParams, slug string) (*Project, error)
	UpdateProject(ctx context.Context, ulid string, params ProjectParams) (*Project, error)
	GetProject(ctx context.Context, ulid string) (*Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*Project, error)
	ListProjects(ctx context.Context, query ProjectQuery) ([]Project, error)
	DeleteProject(ctx context.Context, ulid string) error

	CreateClient(ctx context.Context, params ClientParams) (*Client, error)
	UpdateClient(ctx context.Context, ulid string, params ClientParams) (*Client, error)
	ListClients(ctx context.Context, publishedOnly bool) ([]Client, error)
	DeleteClient(ctx context.Context, ulid string) error

	CreateCategory(ctx context.Context, params TaxonomyParams, slug string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, ulid string) error

	CreateTag(ctx context.Context, params TaxonomyParams, slug string) (*Tag, error)
	ListTags(ctx context.Context) ([]Tag, error)
	DeleteTag(ctx context.Context, ulid string) error

	SlugExists(ctx context.Context, kind SlugKind, slug string) (bool, error)
}
