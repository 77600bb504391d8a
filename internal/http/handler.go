package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ocr-ai-service/internal/config"
	"ocr-ai-service/internal/domain/ocr"
	"ocr-ai-service/internal/extract"
	"ocr-ai-service/internal/service"
	"ocr-ai-service/internal/utils"
)

type Handler struct {
	ocrService *service.OCRService
	vision     *extract.VisionExtractor
	config     *config.Config
	log        zerolog.Logger
}

func NewHandler(
	ocrService *service.OCRService,
	vision *extract.VisionExtractor,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		ocrService: ocrService,
		vision:     vision,
		config:     cfg,
		log:        log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api/v1")
	{
		api.POST("/ocr", h.processImage)
		api.GET("/results/:id", h.getResult)
		api.GET("/files", h.listFiles)
		api.GET("/test-api", h.testAPI)
	}
}

func (h *Handler) processImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("no file provided"))
		return
	}
	if fileHeader.Size > h.config.Storage.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse("file too large"))
		return
	}
	if !utils.AllowedExtension(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, errorResponse("file type not allowed"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("cannot read uploaded file"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("cannot read uploaded file"))
		return
	}

	strategy := strings.TrimSpace(c.PostForm("strategy"))
	if strategy == "" {
		strategy = ocr.StrategyOCR
	}
	languages := strings.TrimSpace(c.PostForm("languages"))
	if languages == "" {
		languages = h.config.OCR.Languages
	}

	id := utils.TimestampID(time.Now())
	filename := id + "_" + utils.SanitizeFilename(fileHeader.Filename)
	h.saveUpload(requestLogger(c, h.log), filename, image)

	req := ocr.ExtractionRequest{
		ID:        id,
		Filename:  filename,
		Image:     image,
		Strategy:  strategy,
		Languages: languages,
		Mode:      strings.TrimSpace(c.PostForm("analysis_type")),
	}

	record, err := h.ocrService.Process(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) getResult(c *gin.Context) {
	record, err := h.ocrService.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) listFiles(c *gin.Context) {
	entries, err := os.ReadDir(h.config.Storage.UploadDir)
	if err != nil {
		requestLogger(c, h.log).Error().Err(err).Msg("failed to list uploads")
		c.JSON(http.StatusInternalServerError, errorResponse("cannot list files"))
		return
	}

	files := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !utils.AllowedExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, gin.H{
			"filename": entry.Name(),
			"size":     info.Size(),
			"modified": info.ModTime().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *Handler) testAPI(c *gin.Context) {
	if h.vision == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("vision model not configured"))
		return
	}
	reply, err := h.vision.Ping(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"response": reply,
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ocr-ai-service",
		"debug_info": gin.H{
			"api_key_configured":    h.config.OpenAI.APIKey != "",
			"upload_folder_exists":  dirExists(h.config.Storage.UploadDir),
			"results_folder_exists": dirExists(h.config.Storage.ResultsDir),
			"storage_backend":       h.config.Storage.Backend,
		},
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, ocr.ErrImageDecode):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, ocr.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, ocr.ErrOCREngine), errors.Is(err, ocr.ErrRemoteExtraction):
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
	default:
		requestLogger(c, h.log).Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Sprintf("server error: %v", err)))
	}
}

// saveUpload keeps a copy of the raw upload next to the results. Failure to
// archive the upload is logged but never fails the request.
func (h *Handler) saveUpload(log zerolog.Logger, filename string, image []byte) {
	path := filepath.Join(h.config.Storage.UploadDir, filename)
	if err := os.WriteFile(path, image, 0o644); err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("failed to archive upload")
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
