package handle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"llm-relay/api/internal/apperr"
	"llm-relay/api/internal/content"
)

const (
	FileTypeImage = "image"
	FileTypeFile  = "file"
)

type ProcessRequest struct {
	FileType   string   `json:"fileType"`
	UserPrompt string   `json:"userPrompt"`
	ImageURLs  []string `json:"imageUrls"`
	FileURL    string   `json:"fileUrl"`
}

type ProcessResponse struct {
	Result string `json:"result"`
}

// Process handles POST /process.
func (h *Handle) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log := h.logger(c)
			log.Error().Err(err).Msg("Input error")
			c.JSON(http.StatusRequestEntityTooLarge, ProcessResponse{
				Result: fmt.Sprintf("Input error: request body exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		h.fail(c, apperr.Wrap(apperr.Validation, "bad json", err))
		return
	}

	items, err := h.collect(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	text, err := h.dispatch(c.Request.Context(), req.UserPrompt, items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ProcessResponse{Result: text})
}

// collect validates req and loads its content through the cache. The first
// failing URL aborts the whole request.
func (h *Handle) collect(ctx context.Context, req ProcessRequest) ([]content.Content, error) {
	if strings.TrimSpace(req.FileType) == "" || strings.TrimSpace(req.UserPrompt) == "" {
		return nil, apperr.New(apperr.Validation, "File type and prompt are required.")
	}

	switch req.FileType {
	case FileTypeImage:
		if len(req.ImageURLs) == 0 {
			return nil, apperr.New(apperr.Validation, "Image URLs are required for image processing.")
		}
		items := make([]content.Content, 0, len(req.ImageURLs))
		for _, u := range req.ImageURLs {
			v, err := h.loader.GetOrFetch(ctx, u, content.KindImage)
			if err != nil {
				return nil, loadError("image", u, err)
			}
			items = append(items, v)
		}
		if len(items) == 0 {
			return nil, apperr.New(apperr.Validation, "No valid images were found from the provided URLs.")
		}
		return items, nil

	case FileTypeFile:
		if strings.TrimSpace(req.FileURL) == "" {
			return nil, apperr.New(apperr.Validation, "File URL is required for file processing.")
		}
		v, err := h.loader.GetOrFetch(ctx, req.FileURL, content.KindDocument)
		if err != nil {
			return nil, loadError("file", req.FileURL, err)
		}
		return []content.Content{v}, nil

	default:
		return nil, apperr.New(apperr.Validation, "Invalid file type.")
	}
}

func (h *Handle) dispatch(ctx context.Context, prompt string, items []content.Content) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.modelTimeout)
	defer cancel()

	start := time.Now()
	text, err := h.engine.Generate(ctx, prompt, items)
	h.metrics.RecordModelCall(h.engine.Name(), err, time.Since(start))
	return text, err
}

// loadError keeps the failure class of err and names the offending URL.
func loadError(what, url string, err error) error {
	return apperr.Wrap(apperr.KindOf(err), fmt.Sprintf("Error loading %s from URL %s", what, url), err)
}

func (h *Handle) fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	log := h.logger(c)
	if status == http.StatusBadRequest {
		log.Error().Err(err).Str("kind", apperr.KindOf(err).String()).Msg("Input error")
		c.JSON(status, ProcessResponse{Result: "Input error: " + err.Error()})
		return
	}
	log.Error().Err(err).Str("kind", apperr.KindOf(err).String()).Msg("Internal error")
	c.JSON(status, ProcessResponse{Result: "Internal error: " + err.Error()})
}
