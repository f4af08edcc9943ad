package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

// ErrorResponse is returned for requests that never reach the pipeline.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// BanksResponse lists the registered bank parsers in detection order.
type BanksResponse struct {
	Banks []string `json:"banks"`
}

// Handler serves the extraction API.
type Handler struct {
	Pipeline *pipeline.Pipeline
	Logger   *slog.Logger
}

// NewApp returns a fiber app with every route registered.
func NewApp(h *Handler, sc config.ServerConfig) *fiber.App {
	cfg := fiber.Config{
		AppName:      "statement-extractor",
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}
	if sc.BodyLimitMB > 0 {
		cfg.BodyLimit = sc.BodyLimitMB << 20
	}
	app := fiber.New(cfg)
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes mounts the handlers on router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/api/health", h.HandleHealth)
	router.Get("/api/banks", h.HandleBanks)
	router.Post("/api/extract", h.HandleExtract)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// HandleBanks lists the supported banks.
func (h *Handler) HandleBanks(c *fiber.Ctx) error {
	return c.JSON(BanksResponse{Banks: h.Pipeline.Registry().SupportedBanks()})
}

// HandleExtract runs the pipeline on an uploaded statement.
//
// The statement comes from the multipart field "file" or, failing that,
// the form field "content". Optional fields: "bank" forces a parser,
// "account" labels the transactions, "fileType" overrides the extension,
// and "format=csv" returns CSV instead of JSON.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	in, err := readInput(c)
	if err != nil {
		var fe *fiber.Error
		status := fiber.StatusBadRequest
		if errors.As(err, &fe) {
			status = fe.Code
		}
		return writeError(c, status, err.Error())
	}

	res := h.Pipeline.Extract(c.UserContext(), in)
	h.logger().Info("extract request",
		"filename", in.Filename,
		"success", res.Success,
		"source", res.Source,
		"transactions", len(res.Transactions))

	status := fiber.StatusOK
	if !res.Success {
		status = fiber.StatusUnprocessableEntity
	}

	if strings.EqualFold(c.FormValue("format"), "csv") && res.Success {
		var buf bytes.Buffer
		w := &writer.CSVWriter{IncludeHeader: c.FormValue("header") != "false"}
		if err := w.Write(&buf, res); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Status(status).Send(buf.Bytes())
	}
	return c.Status(status).JSON(res)
}

func readInput(c *fiber.Ctx) (pipeline.Input, error) {
	in := pipeline.Input{
		Bank:    strings.TrimSpace(c.FormValue("bank")),
		Account: strings.TrimSpace(c.FormValue("account")),
	}

	fh, err := c.FormFile("file")
	if err != nil {
		in.Content = c.FormValue("content")
		if strings.TrimSpace(in.Content) == "" {
			return in, fiber.NewError(fiber.StatusBadRequest, "no statement supplied: use multipart field 'file' or form field 'content'")
		}
		in.Filename = c.FormValue("filename")
		in.FileType = fileType(c.FormValue("fileType"), in.Filename)
		return in, nil
	}

	f, err := fh.Open()
	if err != nil {
		return in, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to open upload: %v", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return in, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
	}

	in.Filename = fh.Filename
	in.FileType = fileType(c.FormValue("fileType"), fh.Filename)
	content, err := extractor.Decode(data, in.FileType)
	switch {
	case errors.Is(err, extractor.ErrUnsupported):
		return in, fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())
	case err != nil:
		return in, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	in.Content = content
	return in, nil
}

func fileType(tag, filename string) models.FileType {
	if tag != "" {
		return models.ParseFileType(tag)
	}
	return models.InferFileType(filename)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Success: false, Error: msg})
}
