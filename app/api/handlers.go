package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/appkivawa/pulseboard/app/aggregator"
	"github.com/appkivawa/pulseboard/app/cfg"
	"github.com/appkivawa/pulseboard/app/compose"
	"github.com/appkivawa/pulseboard/app/database"
	"github.com/appkivawa/pulseboard/app/explore"
	"github.com/appkivawa/pulseboard/app/reconcile"
	"github.com/appkivawa/pulseboard/app/savestate"
	"github.com/appkivawa/pulseboard/app/tasks"
)

const (
	prefViewMode    = "view_mode"
	defaultViewMode = "feed"
	defaultUserID   = "default"
)

func NewHandler(fetcher FetcherInterface, builder *compose.Builder,
	saveState *savestate.Manager, reconciler ReconcilerInterface,
	registry *explore.Registry, contentRepo database.ContentRepository,
	savedRepo database.SavedItemRepository, prefsRepo database.PrefsRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	cfg := cfg.Get()

	return &Handler{
		fetcher:      fetcher,
		builder:      builder,
		saveState:    saveState,
		reconciler:   reconciler,
		registry:     registry,
		contentRepo:  contentRepo,
		savedRepo:    savedRepo,
		prefsRepo:    prefsRepo,
		scheduler:    scheduler,
		feedLimit:    cfg.FeedLimit,
		exploreLimit: cfg.ExploreLimit,
		retention:    time.Duration(cfg.RetentionDays) * 24 * time.Hour,
	}
}

// userID resolves the acting user from the X-User-ID header. Single-profile
// deployments omit the header and share one implicit user.
func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

// GetFeed composes the sectioned feed from a fresh upstream snapshot. When the
// upstream is unreachable the last successful snapshot is served instead,
// marked stale with the failure attached, so a transient outage degrades the
// feed rather than blanking it.
func (h *Handler) GetFeed(c *gin.Context) {
	user := userID(c)

	if err := h.saveState.Load(user); err != nil {
		slog.Error("Failed to load saved state", "user", user, "error", err)
	}

	resp, err := h.fetcher.FetchFeed(c.Request.Context(), h.feedLimit)
	if err != nil {
		slog.Error("Upstream feed fetch failed", "error", err)

		h.lastGood.mu.Lock()
		cached := h.lastGood.resp
		fetchedAt := h.lastGood.fetchedAt
		h.lastGood.mu.Unlock()

		if cached == nil {
			c.JSON(upstreamStatus(err), gin.H{"error": upstreamMessage(err)})
			return
		}

		sections := h.builder.Run(cached, time.Now())
		h.saveState.MergeSections(user, sections)

		c.JSON(http.StatusOK, gin.H{
			"sections":     sections,
			"generated_at": time.Now().UTC().Format(time.RFC3339),
			"stale":        true,
			"stale_since":  fetchedAt.UTC().Format(time.RFC3339),
			"error":        upstreamMessage(err),
		})
		return
	}

	h.lastGood.mu.Lock()
	h.lastGood.resp = resp
	h.lastGood.fetchedAt = time.Now()
	h.lastGood.mu.Unlock()

	sections := h.builder.Run(resp, time.Now())
	h.saveState.MergeSections(user, sections)

	c.JSON(http.StatusOK, gin.H{
		"sections":     sections,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"stale":        false,
	})
}

// GetExplore drives the caller's explore stream. Plain requests load the first
// page, served from the shared cache when fresh; ?cursor (or ?more=true)
// appends the next page; ?refresh=1 discards the cache and refetches; ?filter
// switches the content kind and bypasses the cache when it differs from the
// cached filter.
func (h *Handler) GetExplore(c *gin.Context) {
	user := userID(c)

	if err := h.saveState.Load(user); err != nil {
		slog.Error("Failed to load saved state", "user", user, "error", err)
	}

	paginator := h.registry.Get(user)

	var snapshot explore.Snapshot
	var err error

	switch {
	case c.Query("more") == "true" || c.Query("cursor") != "":
		snapshot, err = paginator.LoadMore(c.Request.Context())
	case c.Query("refresh") == "1" || c.Query("refresh") == "true":
		snapshot, err = paginator.Refresh(c.Request.Context())
	case c.Request.URL.Query().Has("filter"):
		snapshot, err = paginator.SetFilter(c.Request.Context(), c.Query("filter"))
	default:
		snapshot, err = paginator.Load(c.Request.Context())
	}

	if err != nil {
		switch {
		case errors.Is(err, explore.ErrSuperseded):
			// A newer request already replaced this one; its state is current.
		case errors.Is(err, explore.ErrNotLoaded):
			c.JSON(http.StatusConflict, gin.H{"error": "no further page to load"})
			return
		default:
			slog.Error("Explore fetch failed", "user", user, "error", err)
			c.JSON(upstreamStatus(err), gin.H{"error": upstreamMessage(err)})
			return
		}
	}

	items := make([]compose.FeedItem, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		items = append(items, compose.NewFeedItem(it))
	}
	h.saveState.MergeItems(user, items)

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"nextCursor": snapshot.Cursor,
		"hasMore":    snapshot.HasMore,
		"state":      snapshot.State,
		"filter":     snapshot.Filter,
	})
}

type saveRequest struct {
	ID       string `json:"id" binding:"required"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url"`
	Kind     string `json:"kind"`
	Provider string `json:"provider"`
}

// SaveToggle flips the saved state of one item. Items still carrying an
// ephemeral upstream id are reconciled to a durable id first; the toggle then
// applies optimistically, and a failed persist is reported through sync_status
// without rolling the flip back. A toggle racing an in-flight one for the same
// item is dropped with applied=false.
func (h *Handler) SaveToggle(c *gin.Context) {
	user := userID(c)

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ref, err := reconcile.ParseRef(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	durableID, err := h.reconciler.Resolve(ref, reconcile.Fields{
		Title:    req.Title,
		URL:      req.URL,
		ImageURL: req.ImageURL,
		Kind:     req.Kind,
		Provider: req.Provider,
	})
	if err != nil {
		slog.Error("Content id reconciliation failed", "user", user, "id", req.ID, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.saveState.Load(user); err != nil {
		slog.Error("Failed to load saved state", "user", user, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load saved state"})
		return
	}

	result, err := h.saveState.Toggle(user, string(durableID))

	response := gin.H{
		"id":          string(durableID),
		"saved":       result.Saved,
		"sync_status": result.Status,
		"applied":     result.Applied,
	}
	if err != nil {
		// The flip already applied locally; surface the persist failure
		// alongside it rather than pretending the toggle did not happen.
		slog.Error("Saved state persist failed", "user", user, "id", string(durableID), "error", err)
		response["error"] = savestate.ErrPersist.Error()
	}

	c.JSON(http.StatusOK, response)
}

// GetViewPref returns the persisted view mode, defaulting to the feed view
// when none was ever set.
func (h *Handler) GetViewPref(c *gin.Context) {
	user := userID(c)

	mode, err := h.prefsRepo.GetPref(user, prefViewMode)
	if err != nil {
		slog.Error("Failed to get view pref", "user", user, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read preference"})
		return
	}
	if mode == "" {
		mode = defaultViewMode
	}

	c.JSON(http.StatusOK, gin.H{"view_mode": mode})
}

type viewPrefRequest struct {
	ViewMode string `json:"view_mode" binding:"required"`
}

func (h *Handler) SetViewPref(c *gin.Context) {
	user := userID(c)

	var req viewPrefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.ViewMode != "feed" && req.ViewMode != "explore" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "view_mode must be \"feed\" or \"explore\""})
		return
	}

	if err := h.prefsRepo.SetPref(user, prefViewMode, req.ViewMode); err != nil {
		slog.Error("Failed to set view pref", "user", user, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store preference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"view_mode": req.ViewMode})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if contentCount, err := h.contentRepo.GetContentCount(); err == nil {
		health["content_items"] = contentCount
	}

	if savedCount, err := h.savedRepo.GetSavedItemCount(); err == nil {
		health["saved_items"] = savedCount
	}

	c.JSON(http.StatusOK, health)
}

// APIWarmExplore enqueues an immediate explore cache warm ahead of schedule.
func (h *Handler) APIWarmExplore(c *gin.Context) {
	task := tasks.NewWarmExploreTask(h.fetcher, h.registry.Cache(), h.exploreLimit)

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing warm task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue warm task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// APIPruneContent enqueues an immediate prune of unreferenced durable records.
func (h *Handler) APIPruneContent(c *gin.Context) {
	task := tasks.NewPruneContentTask(h.contentRepo, h.retention)

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing prune task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue prune task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// upstreamStatus maps the aggregator error taxonomy to response codes:
// transport failures read as a bad gateway, logical failures as an upstream
// contract violation.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, aggregator.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, aggregator.ErrLogical):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func upstreamMessage(err error) string {
	switch {
	case errors.Is(err, aggregator.ErrUnavailable):
		return "content service unavailable"
	case errors.Is(err, aggregator.ErrLogical):
		return "content service returned an invalid response"
	default:
		return "internal error"
	}
}
