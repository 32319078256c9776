package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"collab-backend/pkg/auth"
	"collab-backend/pkg/metrics"
)

// Pinger reports database health; *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Users          UserService
	Profiles       ProfileService
	Inquiries      InquiryService
	Campaigns      CampaignService
	Social         SocialService
	JWT            *auth.JWTService
	DB             Pinger
	Metrics        *metrics.Metrics
	Log            *zap.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration // zero disables the per-request deadline
}

func NewRouter(d Deps) http.Handler {
	log := d.Log.Named("http")
	users := NewUserController(d.Users, log)
	profiles := NewProfileController(d.Profiles, log)
	inquiries := NewInquiryController(d.Inquiries, log)
	campaigns := NewCampaignController(d.Campaigns, log)
	social := NewSocialController(d.Social, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observe(d.Metrics, log))
	r.Use(middleware.Recoverer)
	r.Use(cors(d.CORSOrigins))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.Get("/healthz", healthz(d.DB))
	r.Handle("/metrics", d.Metrics.Handler())

	r.Post("/register", users.Register)
	r.Get("/auth/{provider}/login", users.Login)
	r.Get("/auth/{provider}/callback", users.Callback)
	r.Get("/social/{platform}/callback", social.Callback)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(d.JWT))

		r.Get("/me", users.Me)
		r.Put("/me/role", users.ChangeRole)

		r.Route("/influencers", func(r chi.Router) {
			r.Get("/", profiles.Search)
			r.Put("/me/profile", profiles.UpsertInfluencer)
			r.Put("/me/agent", profiles.UpdateAgent)
			r.Get("/me/social/{platform}/connect", social.Connect)
			r.Post("/me/social/sync", social.Sync)
			r.Get("/{id}", profiles.GetInfluencer)
		})

		r.Put("/businesses/me/profile", profiles.UpsertBusiness)
		r.Get("/businesses/me/profile", profiles.GetBusiness)

		r.Route("/inquiries", func(r chi.Router) {
			r.Post("/", inquiries.Create)
			r.Get("/", inquiries.List)
			r.Get("/{id}", inquiries.Get)
			r.Get("/{id}/messages", inquiries.GetMessages)
			r.Post("/{id}/messages", inquiries.SendMessage)
			r.Post("/{id}/decision", inquiries.Decide)
			r.Post("/{id}/regenerate", inquiries.Regenerate)
			r.Get("/{id}/logs", inquiries.Logs)
		})
		r.Post("/messages/{id}/approve", inquiries.ApproveMessage)
		r.Post("/messages/{id}/reject", inquiries.RejectMessage)

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", campaigns.Create)
			r.Get("/", campaigns.List)
			r.Get("/{id}", campaigns.Get)
			r.Post("/{id}/match", campaigns.Match)
			r.Get("/{id}/candidates", campaigns.Candidates)
			r.Post("/{id}/outreach/draft", campaigns.DraftOutreach)
			r.Post("/{id}/outreach/send", campaigns.SendOutreach)
			r.Post("/{id}/close", campaigns.Close)
		})
	})
	return r
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
