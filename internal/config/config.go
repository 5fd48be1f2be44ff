package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	DocsplitAPIKey string

	// Directories
	SourceDir   string
	DataDir     string
	ExamDir     string
	TextbookDir string

	// Batch workers
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// OCR tools
	TesseractPath   string
	PdftoppmPath    string
	OCRmyPDFPath    string
	OCRLanguage     string
	PageOCRTimeout  time.Duration
	FileOCRTimeout  time.Duration
	TesseractBudget int
	OCRRenderDPI    int

	// Boundary scoring
	ScoreIntentNearby int
	ScoreNearTop      int
	ScoreTitlePrefix  int
	MinBoundaryScore  int

	// Text density thresholds (chars of stripped page text)
	SparseDocChars   int
	ImagePageChars   int
	SkipPageChars    int
	ContentPageChars int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocsplitAPIKey: os.Getenv("DOCSPLIT_API_KEY"),

		SourceDir:   envOr("SOURCE_DIR", "./data/source"),
		DataDir:     envOr("DATA_DIR", "./data"),
		ExamDir:     envOr("EXAM_DIR", "./data/exams"),
		TextbookDir: envOr("TEXTBOOK_DIR", "./data/600je"),

		WorkerCount:  envInt("WORKER_COUNT", 1),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		TesseractPath:   envOr("TESSERACT_PATH", "tesseract"),
		PdftoppmPath:    envOr("PDFTOPPM_PATH", "pdftoppm"),
		OCRmyPDFPath:    envOr("OCRMYPDF_PATH", "ocrmypdf"),
		OCRLanguage:     envOr("OCR_LANGUAGE", "kor+eng"),
		PageOCRTimeout:  envDuration("PAGE_OCR_TIMEOUT", 30*time.Second),
		FileOCRTimeout:  envDuration("FILE_OCR_TIMEOUT", 180*time.Second),
		TesseractBudget: envInt("TESSERACT_BUDGET_SECONDS", 60),
		OCRRenderDPI:    envInt("OCR_RENDER_DPI", 150),

		ScoreIntentNearby: envInt("SCORE_INTENT_NEARBY", 10),
		ScoreNearTop:      envInt("SCORE_NEAR_TOP", 3),
		ScoreTitlePrefix:  envInt("SCORE_TITLE_PREFIX", 5),
		MinBoundaryScore:  envInt("MIN_BOUNDARY_SCORE", 3),

		SparseDocChars:   envInt("SPARSE_DOC_CHARS", 200),
		ImagePageChars:   envInt("IMAGE_PAGE_CHARS", 50),
		SkipPageChars:    envInt("SKIP_PAGE_CHARS", 30),
		ContentPageChars: envInt("CONTENT_PAGE_CHARS", 10),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.PageOCRTimeout <= 0 {
		cfg.PageOCRTimeout = 30 * time.Second
	}
	if cfg.FileOCRTimeout <= 0 {
		cfg.FileOCRTimeout = 180 * time.Second
	}
	if cfg.TesseractBudget <= 0 {
		cfg.TesseractBudget = 60
	}
	if cfg.OCRRenderDPI <= 0 {
		cfg.OCRRenderDPI = 150
	}
	if cfg.MinBoundaryScore <= 0 {
		cfg.MinBoundaryScore = 3
	}
	if cfg.SparseDocChars <= 0 {
		cfg.SparseDocChars = 200
	}
	if cfg.ImagePageChars <= 0 {
		cfg.ImagePageChars = 50
	}
	if cfg.SkipPageChars <= 0 {
		cfg.SkipPageChars = 30
	}
	if cfg.ContentPageChars <= 0 {
		cfg.ContentPageChars = 10
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocsplitAPIKey == "" {
		return fmt.Errorf("DOCSPLIT_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
