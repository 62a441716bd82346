package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/gangwonlab/tour-concierge/internal/api"
	"github.com/gangwonlab/tour-concierge/internal/container"
)

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(c *container.Container) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Static views work with or without a model credential.
		r.Get("/reviews/stats", c.ReviewHandler.GetStats)
		r.Get("/places/top", c.ReviewHandler.GetTopPlaces)

		r.Get("/accommodations", c.CatalogHandler.GetAccommodations)
		r.Get("/accommodations/compare", c.CatalogHandler.CompareAccommodations)
		r.Get("/restaurants", c.CatalogHandler.GetRestaurants)
		r.Get("/attractions", c.CatalogHandler.GetAttractions)
		r.Get("/seasonal", c.CatalogHandler.GetSeasonal)

		r.Post("/itineraries", c.ItineraryHandler.Generate)
		r.Post("/itineraries/estimate", c.ItineraryHandler.Estimate)
		r.Get("/packages", c.ItineraryHandler.ListPackages)
		r.Get("/packages/{packageIndex}/export", c.ItineraryHandler.ExportPackage)

		// Chat routes need the model credential.
		r.Route("/chat/sessions", func(r chi.Router) {
			if c.ChatHandler == nil {
				r.HandleFunc("/*", chatUnavailable)
				r.HandleFunc("/", chatUnavailable)
				return
			}
			r.Post("/", c.ChatHandler.CreateSession)
			r.Get("/{sessionID}", c.ChatHandler.GetSession)
			r.Post("/{sessionID}/messages", c.ChatHandler.SendMessage)
			r.Post("/{sessionID}/messages/stream", c.ChatHandler.SendMessageStream)
		})
	})

	return r
}

func chatUnavailable(w http.ResponseWriter, r *http.Request) {
	api.ErrorResponse(w, r, http.StatusServiceUnavailable,
		"chat is not configured: set GEMINI_API_KEY or the configured key file")
}
