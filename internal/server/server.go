package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pgmkit/xdsl2agrum/internal/convert"
	"github.com/pgmkit/xdsl2agrum/internal/ctxlog"
	"github.com/pgmkit/xdsl2agrum/internal/emit"
	cerrors "github.com/pgmkit/xdsl2agrum/internal/errors"
	"github.com/pgmkit/xdsl2agrum/internal/validate"
)

const localRequestID = "request_id"

// Server wraps the fiber application with the conversion pipeline and an
// LRU cache of finished artifacts keyed by document digest and mode.
type Server struct {
	app    *fiber.App
	logger *slog.Logger
	cache  *lru.Cache[string, *convert.Artifact]
	config *Config
}

// New assembles the HTTP server around cfg. The logger is shared by the
// request middleware and the conversion pipeline.
func New(cfg *Config, logger *slog.Logger) (*Server, error) {
	cache, err := lru.New[string, *convert.Artifact](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to size artifact cache: %w", err)
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:   "xdsl2agrum",
			BodyLimit: cfg.BodyLimit,
		}),
		logger: logger,
		cache:  cache,
		config: cfg,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	// Every response carries a request id for log correlation; clients may
	// supply their own.
	s.app.Use(func(c fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set("X-Request-ID", id)
		s.logger.Debug("request received.", "method", c.Method(), "path", c.Path(), "request_id", id)
		return c.Next()
	})

	// ── Pages ─────────────────────────────────────────────────────────
	s.app.Get("/", s.handleIndex)
	s.app.Get("/health", s.handleHealth)

	// ── Conversion ────────────────────────────────────────────────────
	s.app.Post("/convert", s.handleConvert)
}

// Listen blocks serving HTTP until the listener fails.
func (s *Server) Listen() error {
	s.logger.Info("🌐 HTTP server listening.", "addr", s.config.Addr)
	return s.app.Listen(s.config.Addr)
}

// App exposes the underlying fiber application, primarily for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

const indexHTML = `<!doctype html>
<html>
<head><title>xdsl2agrum</title></head>
<body>
  <h1>XDSL to pyAgrum</h1>
  <p>Upload an XDSL influence diagram and get back the Python script that
  rebuilds it with pyAgrum.</p>
  <form action="/convert" method="post" enctype="multipart/form-data">
    <input type="file" name="file" accept=".xdsl,.xml" required>
    <label><input type="checkbox" name="download" value="1"> download as file</label>
    <button type="submit">Convert</button>
  </form>
</body>
</html>
`

func (s *Server) handleIndex(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexHTML)
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleConvert(c fiber.Ctx) error {
	data, err := documentBytes(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(data) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty document"})
	}

	mode := convert.ModeScript
	if m := c.FormValue("mode"); m != "" {
		mode, err = convert.ParseMode(m)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	download := c.FormValue("download") != ""

	requestID, _ := c.Locals(localRequestID).(string)
	logger := s.logger.With("request_id", requestID)

	key := artifactKey(data, mode)
	if artifact, ok := s.cache.Get(key); ok {
		logger.Debug("artifact cache hit.", "network", artifact.Network, "mode", mode.String())
		return s.respond(c, artifact, download)
	}

	ctx := ctxlog.WithLogger(c.Context(), logger)
	artifact, err := convert.Convert(ctx, data, mode)
	if err != nil {
		return s.conversionError(c, err)
	}
	s.cache.Add(key, artifact)
	logger.Info("🏁 Conversion finished.", "network", artifact.Network, "mode", mode.String(), "bytes", len(data))

	return s.respond(c, artifact, download)
}

// documentBytes pulls the XDSL source from the multipart "file" field, or
// falls back to the raw request body for curl-style uploads.
func documentBytes(c fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return bytes.Clone(c.Body()), nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

// artifactKey fingerprints a document and mode pair for the cache.
func artifactKey(data []byte, mode convert.Mode) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ":" + mode.String()
}

func (s *Server) respond(c fiber.Ctx, artifact *convert.Artifact, download bool) error {
	if artifact.Mode == convert.ModeDiagram {
		return c.JSON(diagramPayload(artifact.Diagram))
	}

	c.Set(fiber.HeaderContentType, "text/x-python; charset=utf-8")
	if download {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", artifact.Network+".py"))
	}
	return c.SendString(artifact.Script)
}

// conversionError maps pipeline failures onto HTTP semantics: a validation
// report is the client's problem to fix (422 with the full problem list),
// an uninterpretable document is a plain bad request, anything else is on
// us.
func (s *Server) conversionError(c fiber.Ctx, err error) error {
	var report *validate.Report
	if errors.As(err, &report) {
		problems := make([]problemPayload, 0, len(report.Problems()))
		for _, p := range report.Problems() {
			code, message := cerrors.Describe(p)
			problems = append(problems, problemPayload{Code: code, Message: message})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    "document is not convertible",
			"problems": problems,
		})
	}

	code, message := cerrors.Describe(err)
	status := fiber.StatusInternalServerError
	if cerrors.ErrMalformedDocument.Equal(err) {
		status = fiber.StatusBadRequest
	}
	payload := fiber.Map{"error": message}
	if code != "" {
		payload["code"] = code
	}
	return c.Status(status).JSON(payload)
}

// problemPayload is the wire form of one validation problem.
type problemPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type diagramNodePayload struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	States []string  `json:"states,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

type arcPayload struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

type diagramDocPayload struct {
	Name  string               `json:"name"`
	Nodes []diagramNodePayload `json:"nodes"`
	Arcs  []arcPayload         `json:"arcs"`
}

func diagramPayload(d *emit.Diagram) diagramDocPayload {
	doc := diagramDocPayload{
		Name:  d.Name,
		Nodes: make([]diagramNodePayload, 0, len(d.Nodes)),
		Arcs:  make([]arcPayload, 0, len(d.Arcs)),
	}
	for _, n := range d.Nodes {
		doc.Nodes = append(doc.Nodes, diagramNodePayload{
			ID:     n.ID,
			Kind:   n.Kind.String(),
			States: n.States,
			Values: n.Values,
		})
	}
	for _, a := range d.Arcs {
		doc.Arcs = append(doc.Arcs, arcPayload{Parent: a.Parent, Child: a.Child})
	}
	return doc
}
