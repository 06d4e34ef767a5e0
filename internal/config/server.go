package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	scanHandler "github.com/Brianleach11/Brain-Tumor-Classification/internal/api/scan/handler"
	scanService "github.com/Brianleach11/Brain-Tumor-Classification/internal/api/scan/service"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/classifier"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/middleware"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/saliency"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/web"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/drive"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/gemini"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/s3"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/utils"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	geminiClient gemini.IGemini
	registry     *classifier.Registry
	renderer     *saliency.Renderer
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

// WithModels provisions both weight files and loads the two classifiers.
// A corrupt or truncated cache file fails here, at startup.
func WithModels() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before models")
		}

		var s3Client s3.ItfS3
		if os.Getenv("AWS_BUCKET_NAME") != "" {
			client, err := s3.New()
			if err != nil {
				return fmt.Errorf("failed to create S3 client: %w", err)
			}
			s3Client = client
		}

		provisioner := classifier.NewProvisioner(s.log, drive.New(), s3Client)
		cnnPath, xceptionPath, err := provisioner.EnsureModels(context.Background())
		if err != nil {
			return fmt.Errorf("failed to provision model weights: %w", err)
		}

		cnn, err := classifier.LoadCNN(cnnPath)
		if err != nil {
			return err
		}

		xception, err := classifier.LoadXception(xceptionPath)
		if err != nil {
			return err
		}

		s.registry = classifier.NewRegistry(cnn, xception)
		return nil
	}
}

func WithSaliencyRenderer() ServerOption {
	return func(s *Server) error {
		outputDir := os.Getenv("SALIENCY_OUTPUT_DIR")
		if outputDir == "" {
			outputDir = "saliency_maps"
		}
		s.renderer = saliency.New(outputDir)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	scanServices := scanService.NewScanService(s.log, s.registry, s.renderer, s.geminiClient)
	scanHandlers := scanHandler.New(s.log, s.validator, s.middleware, scanServices, s.utils)

	s.setupHealthCheck()
	s.setupFrontend()
	s.handlers = append(s.handlers, scanHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	s.engine.Static("/saliency_maps", s.renderer.OutputDir())

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func (s *Server) setupFrontend() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		ctx.Type("html")
		return ctx.Send(web.IndexHTML)
	})
}
