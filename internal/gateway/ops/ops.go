// Package ops serves the operator HTTP API: record inspection, manual trust
// overrides, role management, and the processing activity feed.
package ops

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/louisbranch/castellan/internal/gateway/domain"
	"github.com/louisbranch/castellan/internal/gateway/storage"
)

// Store is the user-record surface the ops API reads and writes.
type Store interface {
	GetUser(ctx context.Context, id string) (storage.UserRecord, error)
	ListUsers(ctx context.Context, trustStatus string, limit int) ([]storage.UserRecord, error)
	SetUserTrustStatus(ctx context.Context, id string, trustStatus string) error
	SetUserRole(ctx context.Context, id string, role string) error
	CountUsersByTrustStatus(ctx context.Context) (map[string]int, error)
}

// Journal is the activity feed surface.
type Journal interface {
	ListJournal(ctx context.Context, limit int) ([]storage.JournalRecord, error)
}

// Config carries the ops API dependencies.
type Config struct {
	JWTSecret string
	Store     Store
	Journal   Journal
}

// NewRouter builds the operator router. Without a JWT secret only /healthz
// is served.
func NewRouter(cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		log.Printf("gateway: ops api disabled, no jwt secret configured")
		return router
	}

	h := &handler{store: cfg.Store, journal: cfg.Journal}
	api := router.Group("/api/v1", authMiddleware([]byte(secret)))

	mentor := api.Group("", requireRole(domain.RoleMentor, domain.RoleOwner))
	mentor.GET("/users", h.listUsers)
	mentor.GET("/users/:id", h.getUser)
	mentor.PATCH("/users/:id/trust", h.setTrustStatus)
	mentor.GET("/stats", h.stats)
	mentor.GET("/activity", h.activity)

	api.PATCH("/users/:id/role", requireRole(domain.RoleOwner), h.setRole)

	return router
}

type handler struct {
	store   Store
	journal Journal
}

type userSummary struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username,omitempty"`
	FirstName          string     `json:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty"`
	Language           string     `json:"language"`
	Role               string     `json:"role"`
	TrustStatus        string     `json:"trust_status"`
	HeroUpdatedAt      *time.Time `json:"hero_updated_at,omitempty"`
	EquipmentUpdatedAt *time.Time `json:"equipment_updated_at,omitempty"`
	NumbersUpdatedAt   *time.Time `json:"numbers_updated_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type userDetail struct {
	userSummary
	HeroText      string `json:"hero_text,omitempty"`
	EquipmentText string `json:"equipment_text,omitempty"`
	NumbersText   string `json:"numbers_text,omitempty"`
}

type journalEntry struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserSummary(record storage.UserRecord) userSummary {
	return userSummary{
		ID:                 record.ID,
		Username:           record.Username,
		FirstName:          record.FirstName,
		LastName:           record.LastName,
		Language:           record.Language,
		Role:               record.Role,
		TrustStatus:        record.TrustStatus,
		HeroUpdatedAt:      record.HeroUpdatedAt,
		EquipmentUpdatedAt: record.EquipmentUpdatedAt,
		NumbersUpdatedAt:   record.NumbersUpdatedAt,
		CreatedAt:          record.CreatedAt,
	}
}

func (h *handler) getUser(c *gin.Context) {
	record, err := h.store.GetUser(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, userDetail{
		userSummary:   toUserSummary(record),
		HeroText:      record.HeroText,
		EquipmentText: record.EquipmentText,
		NumbersText:   record.NumbersText,
	})
}

func (h *handler) listUsers(c *gin.Context) {
	trustStatus := strings.TrimSpace(c.Query("trust"))
	if trustStatus != "" && !validTrustStatus(trustStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown trust status"})
		return
	}
	limit := parseLimit(c.Query("limit"))

	records, err := h.store.ListUsers(c.Request.Context(), trustStatus, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	users := make([]userSummary, 0, len(records))
	for _, record := range records {
		users = append(users, toUserSummary(record))
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *handler) setTrustStatus(c *gin.Context) {
	var input struct {
		TrustStatus string `json:"trust_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validTrustStatus(input.TrustStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown trust status"})
		return
	}

	err := h.store.SetUserTrustStatus(c.Request.Context(), c.Param("id"), input.TrustStatus)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("gateway: ops trust override for user %s to %s by %s", c.Param("id"), input.TrustStatus, c.GetString(contextKeySubject))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handler) setRole(c *gin.Context) {
	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	err := h.store.SetUserRole(c.Request.Context(), c.Param("id"), input.Role)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("gateway: ops role change for user %s to %s by %s", c.Param("id"), input.Role, c.GetString(contextKeySubject))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *handler) stats(c *gin.Context) {
	counts, err := h.store.CountUsersByTrustStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total := 0
	for _, count := range counts {
		total += count
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "by_trust_status": counts})
}

func (h *handler) activity(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))
	records, err := h.journal.ListJournal(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entries := make([]journalEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, journalEntry{
			ID:        record.ID,
			Identity:  record.Identity,
			Outcome:   record.Outcome,
			Detail:    record.Detail,
			CreatedAt: record.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func validTrustStatus(value string) bool {
	switch value {
	case string(domain.TrustUnset), string(domain.TrustTrusted), string(domain.TrustUntrusted):
		return true
	}
	return false
}

func validRole(value string) bool {
	switch value {
	case domain.RolePlayer, domain.RoleMentor, domain.RoleOwner:
		return true
	}
	return false
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
