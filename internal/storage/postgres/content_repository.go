package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/ids"
)

var _ content.Repository = (*ContentRepository)(nil)

func (r *ContentRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type postRow struct {
	ID             string
	ULID           string
	Title          string
	TitleAr        *string
	Slug           string
	Excerpt        *string
	ExcerptAr      *string
	Content        *string
	ContentAr      *string
	FeaturedImage  *string
	AuthorName     *string
	Published      bool
	PublishedAt    pgtype.Timestamptz
	Locale         *string
	SEOTitle       *string
	SEODescription *string
	Keywords       []string
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

const postColumns = `
p.id, p.ulid, p.title, p.title_ar, p.slug, p.excerpt, p.excerpt_ar,
p.content, p.content_ar, p.featured_image, p.author_name,
p.published, p.published_at, p.locale, p.seo_title, p.seo_description, p.keywords,
p.created_at, p.updated_at`

func (row postRow) toDomain() content.Post {
	return content.Post{
		ID:             row.ID,
		ULID:           row.ULID,
		Title:          row.Title,
		TitleAr:        derefString(row.TitleAr),
		Slug:           row.Slug,
		Excerpt:        derefString(row.Excerpt),
		ExcerptAr:      derefString(row.ExcerptAr),
		Content:        derefString(row.Content),
		ContentAr:      derefString(row.ContentAr),
		FeaturedImage:  derefString(row.FeaturedImage),
		AuthorName:     derefString(row.AuthorName),
		Published:      row.Published,
		PublishedAt:    timePtrOf(row.PublishedAt),
		Locale:         derefString(row.Locale),
		SEOTitle:       derefString(row.SEOTitle),
		SEODescription: derefString(row.SEODescription),
		Keywords:       row.Keywords,
		CreatedAt:      timeOf(row.CreatedAt),
		UpdatedAt:      timeOf(row.UpdatedAt),
	}
}

func scanPostRow(row pgx.Row) (*content.Post, error) {
	var r postRow
	if err := row.Scan(
		&r.ID, &r.ULID, &r.Title, &r.TitleAr, &r.Slug, &r.Excerpt, &r.ExcerptAr,
		&r.Content, &r.ContentAr, &r.FeaturedImage, &r.AuthorName,
		&r.Published, &r.PublishedAt, &r.Locale, &r.SEOTitle, &r.SEODescription, &r.Keywords,
		&r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	post := r.toDomain()
	return &post, nil
}

func (r *ContentRepository) CreatePost(ctx context.Context, params content.PostParams, slug string) (*content.Post, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint post ulid: %w", err)
	}

	var post *content.Post
	err = r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		created, err := scanPostRow(tx.QueryRow(ctx, `
INSERT INTO posts AS p
    (ulid, title, title_ar, slug, excerpt, excerpt_ar, content, content_ar,
     featured_image, author_name, published, published_at, locale,
     seo_title, seo_description, keywords)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
        CASE WHEN $11 THEN now() END, $12, $13, $14, $15)
RETURNING `+postColumns,
			ulid, params.Title, textOrNil(params.TitleAr), slug,
			textOrNil(params.Excerpt), textOrNil(params.ExcerptAr),
			textOrNil(params.Content), textOrNil(params.ContentAr),
			textOrNil(params.FeaturedImage), textOrNil(params.AuthorName),
			params.Published, textOrNil(params.Locale),
			textOrNil(params.SEOTitle), textOrNil(params.SEODescription),
			params.Keywords,
		))
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		if err := setPostTaxonomy(ctx, tx, created.ID, params.CategoryULIDs, params.TagULIDs); err != nil {
			return err
		}
		post = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.attachTaxonomy(ctx, post)
}

func (r *ContentRepository) UpdatePost(ctx context.Context, ulid string, params content.PostParams) (*content.Post, error) {
	var post *content.Post
	err := r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		updated, err := scanPostRow(tx.QueryRow(ctx, `
UPDATE posts AS p
   SET title = $2, title_ar = $3, excerpt = $4, excerpt_ar = $5,
       content = $6, content_ar = $7, featured_image = $8, author_name = $9,
       published = $10,
       published_at = CASE
           WHEN $10 AND p.published_at IS NULL THEN now()
           WHEN NOT $10 THEN NULL
           ELSE p.published_at
       END,
       locale = $11, seo_title = $12, seo_description = $13, keywords = $14,
       updated_at = now()
 WHERE p.ulid = $1
RETURNING `+postColumns,
			ulid, params.Title, textOrNil(params.TitleAr),
			textOrNil(params.Excerpt), textOrNil(params.ExcerptAr),
			textOrNil(params.Content), textOrNil(params.ContentAr),
			textOrNil(params.FeaturedImage), textOrNil(params.AuthorName),
			params.Published, textOrNil(params.Locale),
			textOrNil(params.SEOTitle), textOrNil(params.SEODescription),
			params.Keywords,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return content.ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if err := setPostTaxonomy(ctx, tx, updated.ID, params.CategoryULIDs, params.TagULIDs); err != nil {
			return err
		}
		post = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.attachTaxonomy(ctx, post)
}

// setPostTaxonomy rewrites the join rows whole; ULIDs that resolve to no
// taxonomy row are skipped silently.
func setPostTaxonomy(ctx context.Context, tx pgx.Tx, postID string, categoryULIDs []string, tagULIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post categories: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	if len(categoryULIDs) > 0 {
		if _, err := tx.Exec(ctx, `
INSERT INTO post_categories (post_id, category_id)
SELECT $1, c.id FROM categories c WHERE c.ulid = ANY($2)
ON CONFLICT DO NOTHING`, postID, categoryULIDs); err != nil {
			return fmt.Errorf("set post categories: %w", err)
		}
	}
	if len(tagULIDs) > 0 {
		if _, err := tx.Exec(ctx, `
INSERT INTO post_tags (post_id, tag_id)
SELECT $1, t.id FROM tags t WHERE t.ulid = ANY($2)
ON CONFLICT DO NOTHING`, postID, tagULIDs); err != nil {
			return fmt.Errorf("set post tags: %w", err)
		}
	}
	return nil
}

func (r *ContentRepository) GetPost(ctx context.Context, ulid string) (*content.Post, error) {
	post, err := scanPostRow(r.queryer().QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.ulid = $1`, ulid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, content.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return r.attachTaxonomy(ctx, post)
}

func (r *ContentRepository) GetPostBySlug(ctx context.Context, slug string) (*content.Post, error) {
	post, err := scanPostRow(r.queryer().QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, content.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return r.attachTaxonomy(ctx, post)
}

// ListPosts pages the collection ordered by published_at falling back to
// created_at, newest first. Locale is display-only and never filters.
func (r *ContentRepository) ListPosts(ctx context.Context, query content.PostQuery) ([]content.Post, int, error) {
	where := `
   ($1::boolean IS NULL OR p.published = $1)
   AND ($2 = '' OR EXISTS (
       SELECT 1 FROM post_categories pc JOIN categories c ON c.id = pc.category_id
        WHERE pc.post_id = p.id AND c.slug = $2))
   AND ($3 = '' OR EXISTS (
       SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
        WHERE pt.post_id = p.id AND t.slug = $3))`

	var total int
	if err := r.queryer().QueryRow(ctx,
		`SELECT count(*) FROM posts p WHERE `+where,
		query.Published, query.CategorySlug, query.TagSlug,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	rows, err := r.queryer().Query(ctx, `
SELECT `+postColumns+`
  FROM posts p
 WHERE `+where+`
 ORDER BY COALESCE(p.published_at, p.created_at) DESC
 LIMIT $4 OFFSET $5`,
		query.Published, query.CategorySlug, query.TagSlug, query.Limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := make([]content.Post, 0, query.Limit)
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan posts: %w", err)
		}
		items = append(items, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts: %w", err)
	}

	if err := r.attachTaxonomyBatch(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ContentRepository) DeletePost(ctx context.Context, ulid string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM posts WHERE ulid = $1`, ulid)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrPostNotFound
	}
	return nil
}

func (r *ContentRepository) attachTaxonomy(ctx context.Context, post *content.Post) (*content.Post, error) {
	items := []content.Post{*post}
	if err := r.attachTaxonomyBatch(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// attachTaxonomyBatch loads categories and tags for a page of posts in two
// queries instead of two per post.
func (r *ContentRepository) attachTaxonomyBatch(ctx context.Context, posts []content.Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]int, len(posts))
	postIDs := make([]string, 0, len(posts))
	for i := range posts {
		index[posts[i].ID] = i
		postIDs = append(postIDs, posts[i].ID)
		posts[i].Categories = []content.Category{}
		posts[i].Tags = []content.Tag{}
	}

	rows, err := r.queryer().Query(ctx, `
SELECT pc.post_id, c.id, c.ulid, c.name, c.name_ar, c.slug, c.created_at
  FROM post_categories pc
  JOIN categories c ON c.id = pc.category_id
 WHERE pc.post_id = ANY($1)
 ORDER BY c.name ASC`, postIDs)
	if err != nil {
		return fmt.Errorf("load post categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID string
		var row taxonomyRow
		if err := rows.Scan(&postID, &row.ID, &row.ULID, &row.Name, &row.NameAr, &row.Slug, &row.CreatedAt); err != nil {
			return fmt.Errorf("scan post categories: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Categories = append(posts[i].Categories, row.toDomain())
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate post categories: %w", err)
	}

	tagRows, err := r.queryer().Query(ctx, `
SELECT pt.post_id, t.id, t.ulid, t.name, t.name_ar, t.slug, t.created_at
  FROM post_tags pt
  JOIN tags t ON t.id = pt.tag_id
 WHERE pt.post_id = ANY($1)
 ORDER BY t.name ASC`, postIDs)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var postID string
		var row taxonomyRow
		if err := tagRows.Scan(&postID, &row.ID, &row.ULID, &row.Name, &row.NameAr, &row.Slug, &row.CreatedAt); err != nil {
			return fmt.Errorf("scan post tags: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, content.Tag(row.toDomain()))
		}
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("iterate post tags: %w", err)
	}
	return nil
}

type projectRow struct {
	ID            string
	ULID          string
	Title         string
	TitleAr       *string
	Slug          string
	Description   *string
	DescriptionAr *string
	StartDate     pgtype.Timestamptz
	EndDate       pgtype.Timestamptz
	Featured      bool
	Published     bool
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

const projectColumns = `
p.id, p.ulid, p.title, p.title_ar, p.slug, p.description, p.description_ar,
p.start_date, p.end_date, p.featured, p.published, p.created_at, p.updated_at`

func (row projectRow) toDomain() content.Project {
	return content.Project{
		ID:            row.ID,
		ULID:          row.ULID,
		Title:         row.Title,
		TitleAr:       derefString(row.TitleAr),
		Slug:          row.Slug,
		Description:   derefString(row.Description),
		DescriptionAr: derefString(row.DescriptionAr),
		Images:        []content.ProjectImage{},
		StartDate:     timePtrOf(row.StartDate),
		EndDate:       timePtrOf(row.EndDate),
		Featured:      row.Featured,
		Published:     row.Published,
		CreatedAt:     timeOf(row.CreatedAt),
		UpdatedAt:     timeOf(row.UpdatedAt),
	}
}

func scanProjectRow(row pgx.Row) (*content.Project, error) {
	var r projectRow
	if err := row.Scan(
		&r.ID, &r.ULID, &r.Title, &r.TitleAr, &r.Slug, &r.Description, &r.DescriptionAr,
		&r.StartDate, &r.EndDate, &r.Featured, &r.Published, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	project := r.toDomain()
	return &project, nil
}

func (r *ContentRepository) CreateProject(ctx context.Context, params content.ProjectParams, slug string) (*content.Project, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint project ulid: %w", err)
	}

	var project *content.Project
	err = r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		created, err := scanProjectRow(tx.QueryRow(ctx, `
INSERT INTO projects AS p
    (ulid, title, title_ar, slug, description, description_ar,
     start_date, end_date, featured, published)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+projectColumns,
			ulid, params.Title, textOrNil(params.TitleAr), slug,
			textOrNil(params.Description), textOrNil(params.DescriptionAr),
			params.StartDate, params.EndDate, params.Featured, params.Published,
		))
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		if err := setProjectImages(ctx, tx, created.ID, params.Images); err != nil {
			return err
		}
		created.Images = orderedImages(params.Images)
		project = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *ContentRepository) UpdateProject(ctx context.Context, ulid string, params content.ProjectParams) (*content.Project, error) {
	var project *content.Project
	err := r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		updated, err := scanProjectRow(tx.QueryRow(ctx, `
UPDATE projects AS p
   SET title = $2, title_ar = $3, description = $4, description_ar = $5,
       start_date = $6, end_date = $7, featured = $8, published = $9,
       updated_at = now()
 WHERE p.ulid = $1
RETURNING `+projectColumns,
			ulid, params.Title, textOrNil(params.TitleAr),
			textOrNil(params.Description), textOrNil(params.DescriptionAr),
			params.StartDate, params.EndDate, params.Featured, params.Published,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return content.ErrProjectNotFound
		}
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		if err := setProjectImages(ctx, tx, updated.ID, params.Images); err != nil {
			return err
		}
		updated.Images = orderedImages(params.Images)
		project = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// setProjectImages rewrites the gallery whole. Positions are stored
// dense from zero: explicit Order governs, submission order breaks ties.
func setProjectImages(ctx context.Context, tx pgx.Tx, projectID string, images []content.ProjectImage) error {
	if _, err := tx.Exec(ctx, `DELETE FROM project_images WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("clear project images: %w", err)
	}
	for _, image := range orderedImages(images) {
		if _, err := tx.Exec(ctx, `
INSERT INTO project_images (project_id, image_url, alt, alt_ar, position)
VALUES ($1, $2, $3, $4, $5)`,
			projectID, image.ImageURL, textOrNil(image.Alt), textOrNil(image.AltAr), image.Order,
		); err != nil {
			return fmt.Errorf("set project images: %w", err)
		}
	}
	return nil
}

// orderedImages sorts a submitted gallery by explicit Order, keeps
// submission order for equal values, and renumbers densely from zero
// so no two rows share a position.
func orderedImages(images []content.ProjectImage) []content.ProjectImage {
	ordered := make([]content.ProjectImage, len(images))
	copy(ordered, images)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	for i := range ordered {
		ordered[i].Order = i
	}
	return ordered
}

func (r *ContentRepository) GetProject(ctx context.Context, ulid string) (*content.Project, error) {
	project, err := scanProjectRow(r.queryer().QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.ulid = $1`, ulid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, content.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	items := []content.Project{*project}
	if err := r.attachImagesBatch(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *ContentRepository) GetProjectBySlug(ctx context.Context, slug string) (*content.Project, error) {
	project, err := scanProjectRow(r.queryer().QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, content.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project by slug: %w", err)
	}
	items := []content.Project{*project}
	if err := r.attachImagesBatch(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *ContentRepository) ListProjects(ctx context.Context, query content.ProjectQuery) ([]content.Project, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+projectColumns+`
  FROM projects p
 WHERE ($1::boolean IS NULL OR p.published = $1)
   AND ($2::boolean IS NULL OR p.featured = $2)
 ORDER BY p.created_at DESC`,
		query.Published, query.Featured,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]content.Project, 0)
	for rows.Next() {
		project, err := scanProjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan projects: %w", err)
		}
		items = append(items, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	if err := r.attachImagesBatch(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ContentRepository) attachImagesBatch(ctx context.Context, projects []content.Project) error {
	if len(projects) == 0 {
		return nil
	}
	index := make(map[string]int, len(projects))
	projectIDs := make([]string, 0, len(projects))
	for i := range projects {
		index[projects[i].ID] = i
		projectIDs = append(projectIDs, projects[i].ID)
		projects[i].Images = []content.ProjectImage{}
	}

	rows, err := r.queryer().Query(ctx, `
SELECT project_id, image_url, alt, alt_ar, position
  FROM project_images
 WHERE project_id = ANY($1)
 ORDER BY position ASC`, projectIDs)
	if err != nil {
		return fmt.Errorf("load project images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var projectID string
		var imageURL string
		var alt, altAr *string
		var position int
		if err := rows.Scan(&projectID, &imageURL, &alt, &altAr, &position); err != nil {
			return fmt.Errorf("scan project images: %w", err)
		}
		if i, ok := index[projectID]; ok {
			projects[i].Images = append(projects[i].Images, content.ProjectImage{
				ImageURL: imageURL,
				Alt:      derefString(alt),
				AltAr:    derefString(altAr),
				Order:    position,
			})
		}
	}
	return rows.Err()
}

func (r *ContentRepository) DeleteProject(ctx context.Context, ulid string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM projects WHERE ulid = $1`, ulid)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrProjectNotFound
	}
	return nil
}

const clientColumns = `id, ulid, name, logo_url, website_url, published, position, created_at`

func scanClient(row pgx.Row) (*content.Client, error) {
	var c content.Client
	var websiteURL *string
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&c.ID, &c.ULID, &c.Name, &c.LogoURL, &websiteURL, &c.Published, &c.Order, &createdAt); err != nil {
		return nil, err
	}
	c.WebsiteURL = derefString(websiteURL)
	c.CreatedAt = timeOf(createdAt)
	return &c, nil
}

func (r *ContentRepository) CreateClient(ctx context.Context, params content.ClientParams) (*content.Client, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint client ulid: %w", err)
	}

	client, err := scanClient(r.queryer().QueryRow(ctx, `
INSERT INTO clients (ulid, name, logo_url, website_url, published, position)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+clientColumns,
		ulid, params.Name, params.LogoURL, textOrNil(params.WebsiteURL),
		params.Published, params.Order,
	))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func (r *ContentRepository) UpdateClient(ctx context.Context, ulid string, params content.ClientParams) (*content.Client, error) {
	client, err := scanClient(r.queryer().QueryRow(ctx, `
UPDATE clients
   SET name = $2, logo_url = $3, website_url = $4, published = $5, position = $6
 WHERE ulid = $1
RETURNING `+clientColumns,
		ulid, params.Name, params.LogoURL, textOrNil(params.WebsiteURL),
		params.Published, params.Order,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, content.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

func (r *ContentRepository) ListClients(ctx context.Context, publishedOnly bool) ([]content.Client, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+clientColumns+`
  FROM clients
 WHERE (NOT $1::boolean OR published)
 ORDER BY position ASC, created_at DESC`, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	items := make([]content.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clients: %w", err)
		}
		items = append(items, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return items, nil
}

func (r *ContentRepository) DeleteClient(ctx context.Context, ulid string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM clients WHERE ulid = $1`, ulid)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrClientNotFound
	}
	return nil
}

type taxonomyRow struct {
	ID        string
	ULID      string
	Name      string
	NameAr    *string
	Slug      string
	CreatedAt pgtype.Timestamptz
}

func (row taxonomyRow) toDomain() content.Category {
	return content.Category{
		ID:        row.ID,
		ULID:      row.ULID,
		Name:      row.Name,
		NameAr:    derefString(row.NameAr),
		Slug:      row.Slug,
		CreatedAt: timeOf(row.CreatedAt),
	}
}

const taxonomyColumns = `id, ulid, name, name_ar, slug, created_at`

func (r *ContentRepository) CreateCategory(ctx context.Context, params content.TaxonomyParams, slug string) (*content.Category, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint category ulid: %w", err)
	}

	var row taxonomyRow
	if err := r.queryer().QueryRow(ctx, `
INSERT INTO categories (ulid, name, name_ar, slug)
VALUES ($1, $2, $3, $4)
RETURNING `+taxonomyColumns,
		ulid, params.Name, textOrNil(params.NameAr), slug,
	).Scan(&row.ID, &row.ULID, &row.Name, &row.NameAr, &row.Slug, &row.CreatedAt); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	category := row.toDomain()
	return &category, nil
}

func (r *ContentRepository) ListCategories(ctx context.Context) ([]content.Category, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT `+taxonomyColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := make([]content.Category, 0)
	for rows.Next() {
		var row taxonomyRow
		if err := rows.Scan(&row.ID, &row.ULID, &row.Name, &row.NameAr, &row.Slug, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan categories: %w", err)
		}
		items = append(items, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return items, nil
}

func (r *ContentRepository) DeleteCategory(ctx context.Context, ulid string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM categories WHERE ulid = $1`, ulid)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrCategoryNotFound
	}
	return nil
}

func (r *ContentRepository) CreateTag(ctx context.Context, params content.TaxonomyParams, slug string) (*content.Tag, error) {
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint tag ulid: %w", err)
	}

	var row taxonomyRow
	if err := r.queryer().QueryRow(ctx, `
INSERT INTO tags (ulid, name, name_ar, slug)
VALUES ($1, $2, $3, $4)
RETURNING `+taxonomyColumns,
		ulid, params.Name, textOrNil(params.NameAr), slug,
	).Scan(&row.ID, &row.ULID, &row.Name, &row.NameAr, &row.Slug, &row.CreatedAt); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	tag := content.Tag(row.toDomain())
	return &tag, nil
}

func (r *ContentRepository) ListTags(ctx context.Context) ([]content.Tag, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT `+taxonomyColumns+` FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	items := make([]content.Tag, 0)
	for rows.Next() {
		var row taxonomyRow
		if err := rows.Scan(&row.ID, &row.ULID, &row.Name, &row.NameAr, &row.Slug, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tags: %w", err)
		}
		items = append(items, content.Tag(row.toDomain()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return items, nil
}

func (r *ContentRepository) DeleteTag(ctx context.Context, ulid string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM tags WHERE ulid = $1`, ulid)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrTagNotFound
	}
	return nil
}

// slugTables whitelists the collections SlugExists may probe.
var slugTables = map[content.SlugKind]string{
	content.SlugPosts:      "posts",
	content.SlugProjects:   "projects",
	content.SlugCategories: "categories",
	content.SlugTags:       "tags",
}

func (r *ContentRepository) SlugExists(ctx context.Context, kind content.SlugKind, slug string) (bool, error) {
	table, ok := slugTables[kind]
	if !ok {
		return false, fmt.Errorf("slug exists: unknown collection %q", kind)
	}
	var exists bool
	if err := r.queryer().QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)`, table), slug,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

func (r *ContentRepository) inTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	if r.tx != nil {
		return fn(ctx, r.tx)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
