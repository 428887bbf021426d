package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agripredict/service-api/internal/account"
	"github.com/agripredict/service-api/internal/analytics"
	"github.com/agripredict/service-api/internal/auth"
	"github.com/agripredict/service-api/internal/chat"
	"github.com/agripredict/service-api/internal/contact"
	"github.com/agripredict/service-api/internal/crop"
	"github.com/agripredict/service-api/internal/learning"
	"github.com/agripredict/service-api/internal/upload"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deps collects the handlers and middleware the router mounts.
type Deps struct {
	Auth      *auth.Middleware
	Accounts  *account.Handler
	Contact   *contact.Handler
	Learning  *learning.Handler
	Analytics *analytics.Handler
	Crop      *crop.Handler
	Chat      *chat.Handler
	Upload    *upload.Handler
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// Method patterns keep wiring simple and testable without a router dependency.
func RegisterRoutes(logger *zap.SugaredLogger, d Deps) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","message":"Server is running"}`))
	})

	// users: public
	mux.HandleFunc("POST /api/users/register", d.Accounts.Register)
	mux.HandleFunc("POST /api/users/login", d.Accounts.Login)
	mux.HandleFunc("POST /api/users/logout", d.Accounts.Logout)

	// users: own profile
	mux.Handle("GET /api/users/profile", d.Auth.Protected(d.Accounts.GetProfile))
	mux.Handle("PUT /api/users/profile", d.Auth.Protected(d.Accounts.UpdateProfile))

	// users: admin
	mux.Handle("GET /api/users", d.Auth.AdminOnly(d.Accounts.List))
	mux.Handle("GET /api/users/{id}", d.Auth.AdminOnly(d.Accounts.GetByID))
	mux.Handle("PUT /api/users/{id}", d.Auth.AdminOnly(d.Accounts.UpdateByID))
	mux.Handle("DELETE /api/users/{id}", d.Auth.AdminOnly(d.Accounts.DeleteByID))
	mux.Handle("PUT /api/users/{id}/approve", d.Auth.AdminOnly(d.Accounts.Approve))
	mux.Handle("PUT /api/users/{id}/reject", d.Auth.AdminOnly(d.Accounts.Reject))

	// contact inbox
	mux.HandleFunc("POST /api/contact", d.Contact.Save)
	mux.Handle("GET /api/contact", d.Auth.AdminOnly(d.Contact.List))
	mux.Handle("DELETE /api/contact/{id}", d.Auth.AdminOnly(d.Contact.Delete))

	// learning tips
	mux.HandleFunc("GET /api/learning", d.Learning.List)
	mux.HandleFunc("GET /api/learning/category/{category}", d.Learning.ByCategory)
	mux.Handle("POST /api/learning", d.Auth.AdminOnly(d.Learning.Create))
	mux.Handle("PUT /api/learning/{id}", d.Auth.AdminOnly(d.Learning.Update))
	mux.Handle("DELETE /api/learning/{id}", d.Auth.AdminOnly(d.Learning.Delete))

	// analytics
	mux.Handle("GET /api/analytics/user-roles", d.Auth.AdminOnly(d.Analytics.RoleStats))
	mux.Handle("GET /api/analytics/monthly-signups", d.Auth.AdminOnly(d.Analytics.MonthlySignups))

	// crop recommendation
	mux.Handle("POST /api/crop/recommend", d.Auth.OptionalAuth(http.HandlerFunc(d.Crop.Recommend)))
	mux.HandleFunc("POST /api/crop/recommend/bulk", d.Crop.RecommendBulk)
	mux.Handle("GET /api/crop/history", d.Auth.Protected(d.Crop.History))

	// chat assistant
	mux.HandleFunc("POST /api/chat/ai", d.Chat.Ask)

	// media uploads feed the admin CMS, so writing is admin-gated;
	// serving is public
	mux.Handle("POST /api/upload/{type}", d.Auth.AdminOnly(d.Upload.Save))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Upload.Dir()))))

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
