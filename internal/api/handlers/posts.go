package handlers

import (
	"net/http"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

type PostsHandler struct {
	Service       *content.Service
	Env           string
	DefaultLocale locale.Locale
}

func NewPostsHandler(service *content.Service, env string, defaultLocale locale.Locale) *PostsHandler {
	return &PostsHandler{Service: service, Env: env, DefaultLocale: defaultLocale}
}

type taxonomyPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NameAr      string `json:"nameAr,omitempty"`
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
}

type postPayload struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	TitleAr        string            `json:"titleAr,omitempty"`
	DisplayTitle   string            `json:"displayTitle"`
	Slug           string            `json:"slug"`
	Excerpt        string            `json:"excerpt,omitempty"`
	DisplayExcerpt string            `json:"displayExcerpt,omitempty"`
	Content        string            `json:"content,omitempty"`
	DisplayContent string            `json:"displayContent,omitempty"`
	FeaturedImage  string            `json:"featuredImage,omitempty"`
	AuthorName     string            `json:"authorName,omitempty"`
	Published      bool              `json:"published"`
	PublishedAt    *time.Time        `json:"publishedAt,omitempty"`
	SEOTitle       string            `json:"seoTitle,omitempty"`
	SEODescription string            `json:"seoDescription,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	Categories     []taxonomyPayload `json:"categories,omitempty"`
	Tags           []taxonomyPayload `json:"tags,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func toPostPayload(post *content.Post, l locale.Locale) postPayload {
	payload := postPayload{
		ID:             post.ULID,
		Title:          post.Title,
		TitleAr:        post.TitleAr,
		DisplayTitle:   post.DisplayTitle(l),
		Slug:           post.Slug,
		Excerpt:        post.Excerpt,
		DisplayExcerpt: post.DisplayExcerpt(l),
		Content:        post.Content,
		DisplayContent: post.DisplayContent(l),
		FeaturedImage:  post.FeaturedImage,
		AuthorName:     post.AuthorName,
		Published:      post.Published,
		PublishedAt:    post.PublishedAt,
		SEOTitle:       post.SEOTitle,
		SEODescription: post.SEODescription,
		Keywords:       post.Keywords,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}
	for _, category := range post.Categories {
		payload.Categories = append(payload.Categories, taxonomyPayload{
			ID: category.ULID, Name: category.Name, NameAr: category.NameAr,
			DisplayName: category.DisplayName(l), Slug: category.Slug,
		})
	}
	for _, tag := range post.Tags {
		payload.Tags = append(payload.Tags, taxonomyPayload{
			ID: tag.ULID, Name: tag.Name, NameAr: tag.NameAr,
			DisplayName: tag.DisplayName(l), Slug: tag.Slug,
		})
	}
	return payload
}

// ListPublic pages through published posts only.
func (h *PostsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	published := true
	h.list(w, r, &published)
}

// ListAdmin pages through every post, drafts included, unless
// ?published= narrows it.
func (h *PostsHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queryBool(r, "published"))
}

func (h *PostsHandler) list(w http.ResponseWriter, r *http.Request, published *bool) {
	l := localeFrom(r, h.DefaultLocale)
	query := content.PostQuery{
		Locale:       l,
		Published:    published,
		CategorySlug: r.URL.Query().Get("category"),
		TagSlug:      r.URL.Query().Get("tag"),
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
	}

	list, err := h.Service.ListPosts(r.Context(), query)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	payloads := make([]postPayload, 0, len(list.Items))
	for i := range list.Items {
		payloads = append(payloads, toPostPayload(&list.Items[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      payloads,
		"pagination": list.Pagination,
	})
}

// GetBySlug serves the public post detail page.
func (h *PostsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	post, err := h.Service.GetPostBySlug(r.Context(), pathParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toPostPayload(post, l))
}

func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	post, err := h.Service.GetPost(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toPostPayload(post, l))
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params content.PostParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	post, err := h.Service.CreatePost(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toPostPayload(post, h.DefaultLocale))
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params content.PostParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	post, err := h.Service.UpdatePost(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toPostPayload(post, h.DefaultLocale))
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePost(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
