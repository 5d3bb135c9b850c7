package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/photo-inspect/internal/imageproc"
	"github.com/example/photo-inspect/internal/usecase"
)

// MaxUploadSize bounds a single uploaded image.
const MaxUploadSize = 10 << 20

const (
	serviceName    = "vehicle-photo-inspect"
	serviceVersion = "1.0.0"
)

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, uc *usecase.AnalysisUseCase) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   serviceName,
			"version":   serviceVersion,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/health", func(c *gin.Context) {
		status := uc.Health()
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"service":       serviceName,
			"version":       serviceVersion,
			"timestamp":     time.Now().Format(time.RFC3339),
			"openai_status": status.OpenAIStatus,
			"rules_loaded":  status.RulesLoaded,
			"data_directories": gin.H{
				"images":   status.ImagesDir,
				"training": status.TrainingDir,
			},
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/analyze", func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
			return
		}
		if !acceptableContentType(file) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported content type"})
			return
		}

		data, err := readUpload(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}

		report, err := uc.AnalyzeImage(c.Request.Context(), data, file.Filename, boolFlag(c, "training_mode"), boolFlag(c, "extended"))
		if err != nil {
			if errors.Is(err, imageproc.ErrInvalidImage) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image file"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, report)
	})

	router.POST("/analyze_batch", func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image is required"})
			return
		}

		items := make([]usecase.BatchItem, 0, len(files))
		for _, file := range files {
			// Read failures surface as per-item decode errors
			// instead of aborting the whole batch.
			data, _ := readUpload(file)
			items = append(items, usecase.BatchItem{Data: data, Filename: file.Filename})
		}

		reports := uc.AnalyzeBatch(c.Request.Context(), items, boolFlag(c, "training_mode"))
		c.JSON(http.StatusOK, gin.H{"results": reports})
	})

	router.POST("/train", func(c *gin.Context) {
		var req struct {
			RuleID    string `json:"ruleId" binding:"required"`
			IsCorrect *bool  `json:"isCorrect" binding:"required"`
			ImageID   string `json:"imageId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := uc.Train(c.Request.Context(), req.RuleID, req.ImageID, *req.IsCorrect); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Training feedback recorded",
		})
	})
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

func acceptableContentType(file *multipart.FileHeader) bool {
	ct := file.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		return true
	}
	return strings.HasPrefix(ct, "image/")
}

// boolFlag reads an optional boolean from form data or the query
// string; anything unparseable counts as false.
func boolFlag(c *gin.Context, name string) bool {
	value := c.PostForm(name)
	if value == "" {
		value = c.Query(name)
	}
	parsed, err := strconv.ParseBool(value)
	return err == nil && parsed
}
