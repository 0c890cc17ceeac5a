package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	appidentity "github.com/coderr/backend/internal/application/identity"
	"github.com/coderr/backend/internal/application/offer"
	"github.com/coderr/backend/internal/application/order"
	"github.com/coderr/backend/internal/application/review"
	"github.com/coderr/backend/internal/application/stats"
	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/infrastructure/auth"
	"github.com/coderr/backend/internal/infrastructure/cache"
	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/coderr/backend/internal/infrastructure/event"
	"github.com/coderr/backend/internal/infrastructure/logger"
	"github.com/coderr/backend/internal/infrastructure/persistence"
	"github.com/coderr/backend/internal/infrastructure/persistence/models"
	"github.com/coderr/backend/internal/infrastructure/storage"
	"github.com/coderr/backend/internal/interfaces/http/handler"
	"github.com/coderr/backend/internal/interfaces/http/middleware"
	"github.com/coderr/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

// TestJWTSecret signs the tokens of every App
const TestJWTSecret = "test-secret-key-32-characters-long"

// App is the complete HTTP stack over an in-memory sqlite database
type App struct {
	Engine    *gin.Engine
	DB        *persistence.Database
	Storage   *storage.StubObjectStorage
	JWT       *auth.JWTService
	Blacklist *auth.InMemoryTokenBlacklist
	Cache     *cache.InMemoryCache
	Bus       *event.InMemoryEventBus
	Events    *EventRecorder
	Logs      *observer.ObservedLogs
}

// NewApp wires repositories, services, handlers and middleware the way the
// server does, with in-process backends.
func NewApp(t *testing.T) *App {
	t.Helper()

	db, err := persistence.NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	}, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	return NewAppWithDatabase(t, db)
}

// NewAppWithDatabase wires the stack over a database whose schema is already
// in place. The caller owns db.
func NewAppWithDatabase(t *testing.T, db *persistence.Database) *App {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	userRepo := persistence.NewGormUserRepository(db.DB)
	offerRepo := persistence.NewGormOfferRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)

	objects := storage.NewStubObjectStorage("http://localhost:8000/media")
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                TestJWTSecret,
		AccessTokenExpiration: time.Hour,
		Issuer:                "coderr-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	statsCache := cache.NewInMemoryCache(time.Minute)
	bus := event.NewInMemoryEventBus(log)

	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)
	profileService := appidentity.NewProfileService(userRepo, objects, log)
	offerService := offer.NewService(offerRepo, userRepo, objects, offer.DefaultPagination, log)
	orderService := order.NewService(orderRepo, offerRepo, userRepo, log)
	reviewService := review.NewService(reviewRepo, userRepo, log)
	statsService := stats.NewService(userRepo, offerRepo, reviewRepo, statsCache, time.Minute, log)

	authService.SetEventPublisher(bus)
	profileService.SetEventPublisher(bus)
	offerService.SetEventPublisher(bus)
	orderService.SetEventPublisher(bus)
	reviewService.SetEventPublisher(bus)
	bus.Subscribe(stats.NewInvalidationHandler(statsService, log))
	recorder := NewEventRecorder()
	bus.Subscribe(recorder)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(middleware.DefaultCORSConfig()),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.BodyLimit(5<<20),
	)
	router.Setup(engine, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Profile: handler.NewProfileHandler(profileService),
		Offer:   handler.NewOfferHandler(offerService),
		Order:   handler.NewOrderHandler(orderService),
		Review:  handler.NewReviewHandler(reviewService),
		Stats:   handler.NewStatsHandler(statsService),
		System:  handler.NewSystemHandler(db, objects, "test"),
	}, router.Guards{
		Authenticated: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		Business: middleware.RequireProfileType(userRepo, identity.ProfileTypeBusiness),
		Customer: middleware.RequireProfileType(userRepo, identity.ProfileTypeCustomer),
	})

	t.Cleanup(func() { _ = statsCache.Close() })

	return &App{
		Engine:    engine,
		DB:        db,
		Storage:   objects,
		JWT:       jwtService,
		Blacklist: blacklist,
		Cache:     statsCache,
		Bus:       bus,
		Events:    recorder,
		Logs:      logs,
	}
}

// Do sends a request. body may be nil, a string sent verbatim, or a value
// encoded as JSON. An empty token sends no Authorization header.
func (a *App) Do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		reader = ToJSONReader(t, b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

// Upload posts a single-file multipart form
func (a *App) Upload(t *testing.T, path, field, filename, contentType string, data []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

// RegisterUser registers through the API and returns the new user id and token
func (a *App) RegisterUser(t *testing.T, username, profileType string) (uint, string) {
	t.Helper()

	w := a.Do(t, http.MethodPost, "/api/registration/", map[string]string{
		"username":          username,
		"email":             username + "@example.com",
		"password":          "s3cret-pass",
		"repeated_password": "s3cret-pass",
		"type":              profileType,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := DecodeAs[appidentity.AuthResponse](t, w)
	return resp.UserID, resp.Token
}

// MakeStaff grants the staff flag to a user
func (a *App) MakeStaff(t *testing.T, userID uint) {
	t.Helper()
	require.NoError(t, a.DB.DB.Model(&models.UserModel{}).Where("id = ?", userID).Update("is_staff", true).Error)
}

// OfferBody returns a valid create-offer body whose tier prices start at basePrice
func OfferBody(title string, basePrice, baseDays int) map[string]any {
	detail := func(name, offerType string, factor, daysOffset int) map[string]any {
		return map[string]any{
			"title":                 name,
			"revisions":             factor,
			"delivery_time_in_days": baseDays + daysOffset,
			"price":                 basePrice * factor,
			"features":              []string{"Logo Design", "Visitenkarte"},
			"offer_type":            offerType,
		}
	}
	return map[string]any{
		"title":       title,
		"description": "Ein umfassendes Grafikdesign-Paket",
		"details": []map[string]any{
			detail("Basic Design", "basic", 1, 2),
			detail("Standard Design", "standard", 2, 1),
			detail("Premium Design", "premium", 3, 0),
		},
	}
}

// CreateOffer creates an offer through the API and returns its response
func (a *App) CreateOffer(t *testing.T, token, title string, basePrice, baseDays int) offer.OfferResponse {
	t.Helper()

	w := a.Do(t, http.MethodPost, "/api/offers/", OfferBody(title, basePrice, baseDays), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return DecodeAs[offer.OfferResponse](t, w)
}

// DetailID returns the id of the detail with the given offer_type
func DetailID(t *testing.T, o offer.OfferResponse, offerType string) uint {
	t.Helper()
	for _, d := range o.Details {
		if d.OfferType == offerType {
			return d.ID
		}
	}
	require.FailNow(t, "detail not found", offerType)
	return 0
}

// Decode parses a JSON object body
func Decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	return DecodeAs[map[string]any](t, w)
}

// DecodeAs parses the body into T
func DecodeAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ErrorCode returns error.code of an error envelope
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := Decode(t, w)
	errInfo, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	code, _ := errInfo["code"].(string)
	return code
}

// ErrorFields returns the field names listed in error.details
func ErrorFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	body := Decode(t, w)
	errInfo, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	details, _ := errInfo["details"].([]any)
	fields := make([]string, 0, len(details))
	for _, d := range details {
		if m, ok := d.(map[string]any); ok {
			if f, ok := m["field"].(string); ok {
				fields = append(fields, f)
			}
		}
	}
	return fields
}
