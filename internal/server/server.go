package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/ironsheep/image-patterns-mcp/internal/config"
	"github.com/ironsheep/image-patterns-mcp/internal/imaging"
	"github.com/ironsheep/image-patterns-mcp/internal/pipeline"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// maxResults bounds how many analyses are kept in memory.
const maxResults = 16

// Server handles MCP protocol communication
type Server struct {
	cache  *imaging.ImageCache
	cfg    *config.Config
	logger *slog.Logger

	mu      sync.Mutex
	results map[string]*pipeline.Analysis // by run id
	latest  map[string]string             // image path -> run id
	order   []string                      // run ids, oldest first
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

// New creates a new MCP server instance. A nil cfg uses config.Default and
// a nil logger uses slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cache:   imaging.NewImageCache(),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "server")),
		results: make(map[string]*pipeline.Analysis),
		latest:  make(map[string]string),
	}
}

// Serve handles newline-delimited JSON-RPC requests from r until EOF,
// writing responses to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
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
				"name":    "image-patterns-mcp",
				"version": Version,
			},
		},
	}
}

// remember stores an analysis, evicting the oldest beyond maxResults.
func (s *Server) remember(a *pipeline.Analysis) {
	id := a.Result.RunID.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[id] = a
	s.latest[pathKey(a.Path)] = id
	s.order = append(s.order, id)
	for len(s.order) > maxResults {
		old := s.order[0]
		s.order = s.order[1:]
		if evicted, ok := s.results[old]; ok {
			delete(s.results, old)
			// Drop the decoded image once no retained run refers to it.
			if key := pathKey(evicted.Path); s.latest[key] == old {
				delete(s.latest, key)
				s.cache.Evict(evicted.Path)
			}
		}
	}
}

// lookup finds an analysis by run id, or the latest one for path.
func (s *Server) lookup(runID, path string) (*pipeline.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID != "" {
		if a, ok := s.results[runID]; ok {
			return a, nil
		}
		return nil, fmt.Errorf("unknown run_id %s; call pattern_recognize first", runID)
	}
	if path == "" {
		return nil, fmt.Errorf("either run_id or path is required")
	}
	if id, ok := s.latest[pathKey(path)]; ok {
		return s.results[id], nil
	}
	return nil, fmt.Errorf("no recognition run for %s; call pattern_recognize first", path)
}

// pathKey normalizes an image path so that equivalent spellings, including
// decomposed Unicode from macOS clients, select the same run.
func pathKey(path string) string {
	return norm.NFC.String(filepath.Clean(path))
}
