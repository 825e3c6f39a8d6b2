// Package controller holds the gin HTTP handlers for the API service.
package controller

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/coprra/coprra/internal/cache"
	"github.com/coprra/coprra/internal/pricing"
	redisrepo "github.com/coprra/coprra/internal/repository/redis"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookie = "coprra_session"

// thirty days, matching the preference TTL
const sessionCookieMaxAge = 30 * 24 * 60 * 60

var languageRe = regexp.MustCompile(`^[a-z]{2}$`)

var supportedLanguages = map[string]struct{}{
	"en": {},
	"ar": {},
	"fr": {},
	"de": {},
	"es": {},
}

// Controller handles the health check and the session preference endpoints.
type Controller struct {
	db          *sql.DB
	cache       cache.Store
	prefs       *redisrepo.PreferenceRepository
	currencies  *pricing.Table
	storagePath string
}

// New creates a new Controller with its dependencies.
func New(db *sql.DB, cacheStore cache.Store, prefs *redisrepo.PreferenceRepository, currencies *pricing.Table, storagePath string) *Controller {
	return &Controller{
		db:          db,
		cache:       cacheStore,
		prefs:       prefs,
		currencies:  currencies,
		storagePath: storagePath,
	}
}

// Health reports per-dependency checks for database, cache and storage.
// Any failing check makes the composite status unhealthy with a 503.
func (con *Controller) Health(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	if err := con.db.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := con.cache.Ping(ctx); err != nil {
		checks["cache"] = err.Error()
		healthy = false
	} else {
		checks["cache"] = "ok"
	}

	if err := storageWritable(con.storagePath); err != nil {
		checks["storage"] = err.Error()
		healthy = false
	} else {
		checks["storage"] = "ok"
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

// storageWritable verifies the storage directory accepts writes.
func storageWritable(path string) error {
	probe := filepath.Join(path, ".healthcheck")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}

// Language stores the visitor's language preference under their session.
func (con *Controller) Language(c *gin.Context) {
	code := c.Param("code")
	if !languageRe.MatchString(code) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid language code"})
		return
	}
	if _, ok := supportedLanguages[code]; !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unsupported language"})
		return
	}

	sessionID := con.sessionID(c)
	if err := con.prefs.SetLanguage(c.Request.Context(), sessionID, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store preference"})
		return
	}
	con.respondPrefs(c, sessionID)
}

// Currency stores the visitor's display currency preference under their session.
func (con *Controller) Currency(c *gin.Context) {
	code := c.Param("code")
	if !con.currencies.Known(code) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unsupported currency"})
		return
	}

	sessionID := con.sessionID(c)
	if err := con.prefs.SetCurrency(c.Request.Context(), sessionID, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store preference"})
		return
	}
	con.respondPrefs(c, sessionID)
}

func (con *Controller) respondPrefs(c *gin.Context, sessionID string) {
	prefs, err := con.prefs.Get(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"language": prefs.Language,
		"currency": prefs.Currency,
	})
}

// sessionID returns the visitor's session cookie, minting one when absent.
func (con *Controller) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, sessionCookieMaxAge, "/", "", false, true)
	return id
}

// sessionPrefs resolves the request's stored preferences, falling back to
// defaults for anonymous visitors.
func sessionPrefs(c *gin.Context, prefs *redisrepo.PreferenceRepository) redisrepo.Preferences {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		return prefs.Defaults()
	}
	p, err := prefs.Get(c.Request.Context(), id)
	if err != nil {
		return prefs.Defaults()
	}
	return p
}
