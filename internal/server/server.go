package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ironsheep/faraway-scorer/internal/imaging"
	"github.com/ironsheep/faraway-scorer/internal/pipeline"
	"github.com/ironsheep/faraway-scorer/internal/scoresheet"
	"github.com/ironsheep/faraway-scorer/internal/scoring"
	"github.com/ironsheep/faraway-scorer/pkg/logger"
)

// Name and Version are reported in the initialize handshake.
const (
	Name    = "faraway-scorer"
	Version = "0.2.0"
)

// Server handles MCP protocol communication
type Server struct {
	cache      *imaging.ImageCache
	analyzer   *pipeline.Analyzer
	detector   pipeline.Detector
	calculator *scoring.Calculator
	cropDir    string
	log        logger.Logger

	in  io.Reader
	out io.Writer

	// mu guards sheet; the store is written under it too.
	mu    sync.Mutex
	store scoresheet.Store
	sheet *scoresheet.Sheet
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithAnalyzer enables layout_analyze.
func WithAnalyzer(a *pipeline.Analyzer) Option {
	return func(s *Server) {
		s.analyzer = a
		s.calculator = a.Calculator()
	}
}

// WithDetector enables layout_detect.
func WithDetector(d pipeline.Detector) Option {
	return func(s *Server) { s.detector = d }
}

// WithStore persists the score sheet. The sheet already in the store, if
// any, becomes the current sheet.
func WithStore(st scoresheet.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithCropDir saves every region of layout_analyze as a JPEG under dir.
func WithCropDir(dir string) Option {
	return func(s *Server) { s.cropDir = dir }
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:      imaging.NewImageCache(),
		calculator: scoring.New(nil),
		log:        logger.Nop(),
		in:         os.Stdin,
		out:        os.Stdout,
		store:      scoresheet.NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(s)
	}

	sheet, ok, err := scoresheet.Load(s.store)
	switch {
	case err != nil:
		s.log.Warn(context.Background(), "stored score sheet unreadable", logger.Error(err))
	case ok:
		s.sheet = sheet
	}
	return s
}

// Run reads requests until the input ends or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn(ctx, "failed to parse request", logger.Error(err))
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error(ctx, "failed to encode response", logger.Error(err))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    Name,
				"version": Version,
			},
		},
	}
}
