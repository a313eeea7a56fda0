// Package api assembles the HTTP router and middleware chain.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/dreamtoapp/smartcrowds-server/internal/api/handlers"
	"github.com/dreamtoapp/smartcrowds-server/internal/api/middleware"
	"github.com/dreamtoapp/smartcrowds-server/internal/config"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/guard"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
	"github.com/dreamtoapp/smartcrowds-server/internal/feeds"
	"github.com/dreamtoapp/smartcrowds-server/internal/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies carries the wired services the router exposes.
type Dependencies struct {
	Pool          *pgxpool.Pool
	Events        *events.Service
	Registrations *events.RegistrationService
	Lookups       *lookups.Service
	Content       *content.Service
	Feeds         *feeds.Service
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Dependencies) http.Handler {
	defaultLocale := locale.Parse(cfg.Site.DefaultLocale, locale.Arabic)
	env := cfg.Environment

	eventsHandler := handlers.NewEventsHandler(deps.Events, env, defaultLocale)
	registrationsHandler := handlers.NewRegistrationsHandler(deps.Registrations, env, defaultLocale)
	lookupsHandler := handlers.NewLookupsHandler(deps.Lookups, env, defaultLocale)
	postsHandler := handlers.NewPostsHandler(deps.Content, env, defaultLocale)
	projectsHandler := handlers.NewProjectsHandler(deps.Content, env, defaultLocale)
	clientsHandler := handlers.NewClientsHandler(deps.Content, env)
	taxonomyHandler := handlers.NewTaxonomyHandler(deps.Content, env, defaultLocale)
	feedsHandler := handlers.NewFeedsHandler(deps.Feeds, env, defaultLocale)

	registerTier := middleware.WithRateLimitTierHandler(middleware.TierRegister)

	mux := http.NewServeMux()

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(deps.Pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/sitemap.xml", http.HandlerFunc(feedsHandler.Sitemap))
	mux.Handle("/rss.xml", http.HandlerFunc(feedsHandler.RSS))

	// Public catalog.
	mux.Handle("/api/v1/events", http.HandlerFunc(eventsHandler.ListPublic))
	mux.Handle("/api/v1/events/{id}", http.HandlerFunc(eventsHandler.Get))
	mux.Handle("/api/v1/events/{id}/register", methodMux(map[string]http.Handler{
		http.MethodPost: registerTier(http.HandlerFunc(registrationsHandler.Register)),
	}))
	mux.Handle("/api/v1/posts", http.HandlerFunc(postsHandler.ListPublic))
	mux.Handle("/api/v1/posts/{slug}", http.HandlerFunc(postsHandler.GetBySlug))
	mux.Handle("/api/v1/projects", http.HandlerFunc(projectsHandler.ListPublic))
	mux.Handle("/api/v1/projects/{slug}", http.HandlerFunc(projectsHandler.GetBySlug))
	mux.Handle("/api/v1/clients", http.HandlerFunc(clientsHandler.ListPublic))
	mux.Handle("/api/v1/categories", http.HandlerFunc(taxonomyHandler.ListCategories))
	mux.Handle("/api/v1/tags", http.HandlerFunc(taxonomyHandler.ListTags))

	// Admin surface. Authentication is terminated upstream.
	mux.Handle("/api/v1/admin/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.ListAdmin),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	mux.Handle("/api/v1/admin/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPatch:  http.HandlerFunc(eventsHandler.Update),
		http.MethodDelete: http.HandlerFunc(eventsHandler.Delete),
	}))
	mux.Handle("/api/v1/admin/events/{id}/publish", methodMux(map[string]http.Handler{
		http.MethodPost: eventsHandler.SetFlag(events.FlagPublished),
	}))
	mux.Handle("/api/v1/admin/events/{id}/accept-jobs", methodMux(map[string]http.Handler{
		http.MethodPost: eventsHandler.SetFlag(events.FlagAcceptJobs),
	}))
	mux.Handle("/api/v1/admin/events/{id}/complete", methodMux(map[string]http.Handler{
		http.MethodPost: eventsHandler.SetFlag(events.FlagCompleted),
	}))
	mux.Handle("/api/v1/admin/events/{id}/requirements", methodMux(map[string]http.Handler{
		http.MethodPut: http.HandlerFunc(eventsHandler.SetRequirements),
	}))
	mux.Handle("/api/v1/admin/events/{id}/job-requirements", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.ListJobRequirements),
		http.MethodPost: http.HandlerFunc(eventsHandler.AddJobRequirement),
	}))
	mux.Handle("/api/v1/admin/job-requirements/{id}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(eventsHandler.UpdateJobRequirement),
		http.MethodDelete: http.HandlerFunc(eventsHandler.RemoveJobRequirement),
	}))
	mux.Handle("/api/v1/admin/events/{id}/subscribers", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(registrationsHandler.ListSubscribers),
	}))
	mux.Handle("/api/v1/admin/events/{id}/subscribers/export", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(registrationsHandler.ExportCSV),
	}))

	registerLookupRoutes(mux, lookupsHandler)
	registerContentRoutes(mux, postsHandler, projectsHandler, clientsHandler, taxonomyHandler)

	// Outermost first: headers, correlation, logging, metrics, rate limit.
	var handler http.Handler = mux
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)
	return handler
}

func registerLookupRoutes(mux *http.ServeMux, h *handlers.LookupsHandler) {
	mux.Handle("/api/v1/admin/jobs", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(h.ListJobs),
		http.MethodPost: http.HandlerFunc(h.CreateJob),
	}))
	mux.Handle("/api/v1/admin/jobs/{id}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(h.UpdateJob),
		http.MethodDelete: h.Delete(guard.KindJob),
	}))
	mux.Handle("/api/v1/admin/jobs/{id}/usage", h.Usage(guard.KindJob))

	mux.Handle("/api/v1/admin/locations", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(h.ListLocations),
		http.MethodPost: http.HandlerFunc(h.CreateLocation),
	}))
	mux.Handle("/api/v1/admin/locations/{id}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(h.UpdateLocation),
		http.MethodDelete: h.Delete(guard.KindLocation),
	}))
	mux.Handle("/api/v1/admin/locations/{id}/usage", h.Usage(guard.KindLocation))

	mux.Handle("/api/v1/admin/nationalities", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(h.ListNationalities),
		http.MethodPost: http.HandlerFunc(h.CreateNationality),
	}))
	mux.Handle("/api/v1/admin/nationalities/{id}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(h.UpdateNationality),
		http.MethodDelete: h.Delete(guard.KindNationality),
	}))
	mux.Handle("/api/v1/admin/nationalities/{id}/usage", h.Usage(guard.KindNationality))
}

func registerContentRoutes(mux *http.ServeMux, posts *handlers.PostsHandler, projects *handlers.ProjectsHandler, clients *handlers.ClientsHandler, taxonomy *handlers.TaxonomyHandler) {
	mux.Handle("/api/v1/admin/posts", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(posts.ListAdmin),
		http.MethodPost: http.HandlerFunc(posts.Create),
	}))
	mux.Handle("/api/v1/admin/posts/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(posts.Get),
		http.MethodPatch:  http.HandlerFunc(posts.Update),
		http.MethodDelete: http.HandlerFunc(posts.Delete),
	}))

	mux.Handle("/api/v1/admin/projects", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(projects.ListAdmin),
		http.MethodPost: http.HandlerFunc(projects.Create),
	}))
	mux.Handle("/api/v1/admin/projects/{id}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(projects.Update),
		http.MethodDelete: http.HandlerFunc(projects.Delete),
	}))

	mux.Handle("/api/v1/admin/clients", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(clients.ListAdmin),
		http.MethodPost: http.HandlerFunc(clients.Create),
	}))
	mux.Handle("/api/v1/admin/clients/{id}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(clients.Update),
		http.MethodDelete: http.HandlerFunc(clients.Delete),
	}))

	mux.Handle("/api/v1/admin/categories", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(taxonomy.ListCategories),
		http.MethodPost: http.HandlerFunc(taxonomy.CreateCategory),
	}))
	mux.Handle("/api/v1/admin/categories/{id}", methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(taxonomy.DeleteCategory),
	}))
	mux.Handle("/api/v1/admin/tags", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(taxonomy.ListTags),
		http.MethodPost: http.HandlerFunc(taxonomy.CreateTag),
	}))
	mux.Handle("/api/v1/admin/tags/{id}", methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(taxonomy.DeleteTag),
	}))
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
