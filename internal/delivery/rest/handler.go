package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/infrastructure/metrics"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
	"github.com/yourusername/price-monitor/internal/usecase"
)

// query parameters that are not filters
var reservedParams = map[string]bool{"format": true, "bins": true}

// Handler stateless HTTP adapter: every request carries its files and edits
type Handler struct {
	reports       usecase.ReportUseCase
	metrics       *metrics.Registry
	histogramBins int
}

// NewHandler metrics may be nil
func NewHandler(reports usecase.ReportUseCase, reg *metrics.Registry, histogramBins int) *Handler {
	return &Handler{reports: reports, metrics: reg, histogramBins: histogramBins}
}

// NewApp fiber app with every route registered
func NewApp(h *Handler, maxUploadBytes int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "price-monitor",
		BodyLimit: maxUploadBytes,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	h.Register(app)
	return app
}

// Register routes
func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if h.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.metrics.Handler()))
	}

	api := app.Group("/api")
	api.Post("/report", h.Report)
	api.Post("/export", h.Export)
}

// Report POST /api/report, multipart form:
// inventory (file), reference (files), reference_site (one per reference,
// optional), edits (JSON list); filters and sort come from the query string
func (h *Handler) Report(c *fiber.Ctx) error {
	report, status, err := h.run(c)
	if err != nil && report == nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(status).JSON(newReportResponse(report, h.histogramBins))
}

// Export POST /api/export?format=csv|xlsx|sqlite, same form as Report
func (h *Handler) Export(c *fiber.Ctx) error {
	report, status, err := h.run(c)
	if err != nil && report == nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	if report.State != entity.StateReady {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(newReportResponse(report, 0))
	}

	format := c.Query("format", "csv")
	data, exp, err := h.reports.Export(c.UserContext(), report, format)
	if errors.Is(err, entity.ErrUnsupportedExport) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		log.Printf("❌ export %s: %v", format, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}

	name := fmt.Sprintf("report_prezzi_%s.%s", report.GeneratedAt.Format("20060102_1504"), exp.Extension())
	c.Set(fiber.HeaderContentType, exp.ContentType())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}

// run parses the request and executes the pipeline; status is the HTTP
// status to answer with
func (h *Handler) run(c *fiber.Ctx) (*entity.Report, int, error) {
	filter, order, err := usecase.ParseViewArgs(queryArgs(c))
	if err != nil {
		return nil, fiber.StatusBadRequest, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.StatusBadRequest, fmt.Errorf("multipart form expected: %w", err)
	}
	in, err := readInputs(form)
	if err != nil {
		return nil, fiber.StatusBadRequest, err
	}
	in.Filter = filter
	in.Sort = order

	report, err := h.reports.Run(c.UserContext(), in)
	switch {
	case report == nil:
		return nil, fiber.StatusInternalServerError, err
	case report.State == entity.StateFailed:
		return report, fiber.StatusUnprocessableEntity, err
	case report.State == entity.StateAwaitingInput:
		return report, fiber.StatusBadRequest, nil
	}
	return report, fiber.StatusOK, nil
}

func queryArgs(c *fiber.Ctx) map[string][]string {
	args := make(map[string][]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if reservedParams[k] {
			return
		}
		args[k] = append(args[k], string(value))
	})
	return args
}

func readInputs(form *multipart.Form) (usecase.ReportInputs, error) {
	var in usecase.ReportInputs

	if files := form.File["inventory"]; len(files) > 0 {
		inv, err := readSourceFile(files[0], "")
		if err != nil {
			return in, err
		}
		if enc := firstValue(form.Value["inventory_encoding"]); enc != "" {
			inv.Encoding = enc
		}
		in.Inventory = &inv
	}

	sites := form.Value["reference_site"]
	for i, fh := range form.File["reference"] {
		site := ""
		if i < len(sites) {
			site = sites[i]
		}
		ref, err := readSourceFile(fh, site)
		if err != nil {
			return in, err
		}
		in.References = append(in.References, ref)
	}

	if raw := firstValue(form.Value["edits"]); raw != "" {
		edits, err := parseEdits(raw)
		if err != nil {
			return in, err
		}
		in.Edits = edits
	}
	return in, nil
}

func readSourceFile(fh *multipart.FileHeader, site string) (entity.SourceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return entity.SourceFile{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return entity.SourceFile{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return entity.SourceFile{Name: fh.Filename, Data: data, Site: strings.TrimSpace(site)}, nil
}

func parseEdits(raw string) ([]entity.Edit, error) {
	var reqs []editRequest
	if err := json.Unmarshal([]byte(raw), &reqs); err != nil {
		return nil, fmt.Errorf("edits: %w", err)
	}

	edits := make([]entity.Edit, 0, len(reqs))
	for i, r := range reqs {
		kind, ok := entity.ParseEditKind(r.Kind)
		if !ok {
			return nil, fmt.Errorf("edits[%d]: unknown kind %q", i, r.Kind)
		}
		edit := entity.Edit{ID: uuid.New().String(), Kind: kind, CreatedAt: time.Now()}
		if strings.TrimSpace(r.Amount) != "" {
			amount, err := parser.ParsePrice(r.Amount)
			if err != nil {
				return nil, fmt.Errorf("edits[%d]: %w", i, err)
			}
			edit.Amount = amount
		}
		if strings.TrimSpace(r.Filter) != "" {
			filter, _, err := usecase.ParseViewArgs(usecase.SplitArgs(r.Filter))
			if err != nil {
				return nil, fmt.Errorf("edits[%d]: %w", i, err)
			}
			edit.Filter = filter
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func firstValue(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
