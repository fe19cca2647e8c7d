package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/newsdesk/app/database"
	"github.com/lysyi3m/newsdesk/app/feed"
	"github.com/lysyi3m/newsdesk/app/news"
	"github.com/lysyi3m/newsdesk/app/store"
	"github.com/lysyi3m/newsdesk/app/tasks"
	"github.com/lysyi3m/newsdesk/app/textfmt"
)

const feedMaxItems = 50

func NewHandler(newsStore NewsStore, configCache *feed.ConfigCache, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		store:       newsStore,
		generator:   feed.NewGenerator(),
		configCache: configCache,
		scheduler:   scheduler,
		now:         time.Now,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	state := h.store.State()

	c.JSON(http.StatusOK, gin.H{
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"stories":               len(state.Stories),
		"bookmarks":             state.BookmarkCount,
		"loading":               state.Loading,
		"loaded_configurations": h.configCache.GetConfigCount(),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	stories := h.store.Stories(store.Filter{})
	if len(stories) > feedMaxItems {
		stories = stories[:feedMaxItems]
	}

	rss, err := h.generator.Run(stories)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(stories)))
	if len(stories) > 0 {
		c.Header("X-Last-Updated", time.UnixMilli(stories[0].Timestamp).In(time.Local).Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.stateResponse(h.store.State()))
}

func (h *Handler) ClearError(c *gin.Context) {
	h.store.ClearError()
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListNews(c *gin.Context) {
	filter := store.Filter{City: c.Query("city")}

	if topic := c.Query("topic"); topic != "" {
		parsed, err := news.ParseTopic(topic)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown topic", "topic": topic})
			return
		}
		filter.Topic = parsed
	}

	if bookmarked := c.Query("bookmarked"); bookmarked != "" {
		value, err := strconv.ParseBool(bookmarked)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bookmarked parameter"})
			return
		}
		filter.BookmarkedOnly = value
	}

	stories := h.storyResponses(h.store.Stories(filter))
	c.JSON(http.StatusOK, gin.H{
		"stories": stories,
		"total":   len(stories),
	})
}

func (h *Handler) ListBookmarks(c *gin.Context) {
	stories := h.storyResponses(h.store.Stories(store.Filter{BookmarkedOnly: true}))
	c.JSON(http.StatusOK, gin.H{
		"stories": stories,
		"total":   len(stories),
	})
}

func (h *Handler) GetNews(c *gin.Context) {
	id := c.Param("id")

	story, ok := h.store.Story(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
		return
	}

	c.JSON(http.StatusOK, h.storyResponse(story))
}

func (h *Handler) SubmitNews(c *gin.Context) {
	var submission news.Submission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if topic, err := news.ParseTopic(string(submission.Topic)); err == nil {
		submission.Topic = topic
	}

	if err := submission.Validate(); err != nil {
		var inputErr *news.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission", "fields": inputErr.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	story, err := h.store.SubmitNews(c.Request.Context(), submission)
	if err != nil {
		var rejection *news.RejectionError
		var storageErr *database.StorageError

		switch {
		case errors.As(err, &rejection):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rejection.Reason, "rule": rejection.Rule})
		case errors.Is(err, news.ErrPipelineFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": store.SubmitFailedMessage})
		case errors.As(err, &storageErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": store.SaveFailedMessage})
		default:
			slog.Error("Unexpected submit error", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": store.SubmitFailedMessage})
		}
		return
	}

	c.JSON(http.StatusCreated, h.storyResponse(story))
}

func (h *Handler) ReloadNews(c *gin.Context) {
	if err := h.store.LoadNews(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": store.LoadFailedMessage})
		return
	}

	c.JSON(http.StatusOK, h.stateResponse(h.store.State()))
}

func (h *Handler) ToggleBookmark(c *gin.Context) {
	id := c.Param("id")

	bookmarked, err := h.store.ToggleBookmark(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      store.BookmarkFailedMessage,
			"id":         id,
			"bookmarked": bookmarked,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             id,
		"bookmarked":     bookmarked,
		"bookmark_count": h.store.BookmarkCount(),
	})
}

func (h *Handler) ListCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cities": h.store.Cities()})
}

func (h *Handler) ListTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": news.Topics})
}

func (h *Handler) APIListImports(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		sources = append(sources, map[string]interface{}{
			"name":           config.Name,
			"path":           config.Path,
			"city":           config.City,
			"topic":          config.Topic,
			"publisher_name": config.PublisherName,
			"enabled":        config.Settings.Enabled,
			"max_items":      config.Settings.MaxItems,
			"filters":        len(config.Filters),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIRunImport(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Import source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Import source configuration not found"})
		return
	}

	config, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	if err := h.scheduler.ImportSource(name); err != nil {
		slog.Error("Error enqueueing import task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue import task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Configuration reloaded and import enqueued successfully",
		"source": gin.H{
			"name": config.Name,
			"city": config.City,
			"path": config.Path,
		},
	})
}

func (h *Handler) stateResponse(state store.State) StateResponse {
	return StateResponse{
		Stories:       h.storyResponses(state.Stories),
		Loading:       state.Loading,
		Error:         state.Error,
		BookmarkCount: state.BookmarkCount,
	}
}

func (h *Handler) storyResponses(stories []news.Story) []StoryResponse {
	now := h.now()

	responses := make([]StoryResponse, len(stories))
	for i, story := range stories {
		responses[i] = newStoryResponse(story, now)
	}
	return responses
}

func (h *Handler) storyResponse(story news.Story) StoryResponse {
	return newStoryResponse(story, h.now())
}

func newStoryResponse(story news.Story, now time.Time) StoryResponse {
	return StoryResponse{
		ID:            story.ID,
		EditedTitle:   story.EditedTitle,
		EditedSummary: story.EditedSummary,
		City:          story.City,
		Topic:         story.Topic,
		PublisherName: story.PublisherName,
		MaskedPhone:   story.MaskedPhone,
		ImageURI:      story.ImageURI,
		Timestamp:     story.Timestamp,
		IsBookmarked:  story.IsBookmarked,
		TimeAgo:       textfmt.TimeAgo(time.UnixMilli(story.Timestamp), now),
	}
}
