package server

import (
	"encoding/json"
	"fmt"
	"image"
	"math/rand"

	"github.com/mvickers/pattern-scout/internal/imaging"
	"github.com/mvickers/pattern-scout/internal/locate"
	"github.com/mvickers/pattern-scout/internal/mask"
	"github.com/mvickers/pattern-scout/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "locate_patterns").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "locate_patterns":
		return s.handleLocatePatterns(args)
	case "detect_text_exclusions":
		return s.handleDetectTextExclusions(args)
	case "dominant_color":
		return s.handleDominantColor(args)
	case "image_info":
		return s.handleImageInfo(args)
	case "list_references":
		return s.handleListReferences(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadPatterns returns the reference set for dir, building it on first use.
func (s *Server) loadPatterns(dir string) ([]*locate.ReferencePattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pats, ok := s.patterns[dir]; ok {
		return pats, nil
	}
	pats, err := locate.LoadReferenceDir(s.cache, dir, s.cfg.Locate)
	if err != nil {
		return nil, err
	}
	s.patterns[dir] = pats
	return pats, nil
}

// === Pattern Localization ===

type locatePatternsArgs struct {
	TargetPath   string        `json:"target_path"`
	ReferenceDir string        `json:"reference_dir"`
	Exclusions   []mask.Region `json:"exclusions"`

	// TextExclusions adds automatically detected text regions to the
	// explicit exclusion list before localization.
	TextExclusions bool `json:"text_exclusions"`
}

func (s *Server) handleLocatePatterns(args json.RawMessage) (interface{}, error) {
	var a locatePatternsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.TargetPath == "" {
		return nil, fmt.Errorf("target_path is required")
	}
	dir := a.ReferenceDir
	if dir == "" {
		dir = s.cfg.ReferenceDir
	}

	patterns, err := s.loadPatterns(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}

	target, err := s.cache.Load(a.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load target: %w", err)
	}

	exclusions := a.Exclusions
	if a.TextExclusions {
		names := make([]string, len(patterns))
		for i, p := range patterns {
			names[i] = p.Name
		}
		text, err := s.textExclusions(a.TargetPath, target, names)
		if err != nil {
			return nil, err
		}
		exclusions = append(exclusions, text...)
	}

	targetFeatures := locate.BuildTargetFeatures(target, s.cfg.Locate)
	pipeline := locate.New(s.cfg.Locate, s.logger)
	set := pipeline.Run(target, targetFeatures, patterns, exclusions)

	return map[string]interface{}{
		"patterns":    set.Patterns,
		"total":       set.Total(),
		"target_path": a.TargetPath,
	}, nil
}

// textExclusions picks the configured exclusion source: Tesseract when
// enabled, the edge-density heuristic otherwise.
func (s *Server) textExclusions(path string, img image.Image, names []string) ([]mask.Region, error) {
	if s.cfg.OCR.Enabled {
		src := ocr.TextExclusionSource{
			Language:       s.cfg.OCR.Language,
			MinConfidence:  s.cfg.OCR.MinConfidence,
			PatternNames:   names,
			NameSimilarity: s.cfg.OCR.NameSimilarity,
		}
		regions, err := src.Exclusions(path)
		if err != nil {
			return nil, fmt.Errorf("ocr failed: %w", err)
		}
		return regions, nil
	}
	return ocr.HeuristicTextRegions(img, s.cfg.OCR.MinConfidence), nil
}

// === Text Exclusion Detection ===

type detectTextExclusionsArgs struct {
	Path string `json:"path"`

	// Method is "ocr" or "heuristic". Empty picks from configuration.
	Method string `json:"method"`

	// MinConfidence overrides the configured confidence floor when > 0.
	MinConfidence float64 `json:"min_confidence"`

	// PatternNames restricts OCR exclusions to words resembling these
	// names. Ignored by the heuristic method.
	PatternNames []string `json:"pattern_names"`
}

func (s *Server) handleDetectTextExclusions(args json.RawMessage) (interface{}, error) {
	var a detectTextExclusionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	method := a.Method
	if method == "" {
		if s.cfg.OCR.Enabled {
			method = "ocr"
		} else {
			method = "heuristic"
		}
	}
	minConf := a.MinConfidence
	if minConf <= 0 {
		minConf = s.cfg.OCR.MinConfidence
	}

	var regions []mask.Region
	switch method {
	case "ocr":
		src := ocr.TextExclusionSource{
			Language:       s.cfg.OCR.Language,
			MinConfidence:  minConf,
			PatternNames:   a.PatternNames,
			NameSimilarity: s.cfg.OCR.NameSimilarity,
		}
		var err error
		regions, err = src.Exclusions(a.Path)
		if err != nil {
			return nil, fmt.Errorf("ocr failed: %w", err)
		}
	case "heuristic":
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load image: %w", err)
		}
		regions = ocr.HeuristicTextRegions(img, minConf)
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}

	if regions == nil {
		regions = []mask.Region{}
	}
	return map[string]interface{}{
		"regions": regions,
		"count":   len(regions),
		"method":  method,
	}, nil
}

// === Color Analysis ===

type dominantColorArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleDominantColor(args json.RawMessage) (interface{}, error) {
	var a dominantColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	rng := rand.New(rand.NewSource(s.cfg.Locate.Seed))
	c := imaging.DominantColor(img, rng)
	return map[string]interface{}{
		"color": c,
		"hex":   fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
	}, nil
}

// === Image Information ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Reference Inventory ===

type listReferencesArgs struct {
	ReferenceDir string `json:"reference_dir"`
}

// referenceSummary describes one loaded reference pattern.
type referenceSummary struct {
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Features int    `json:"features"`
}

func (s *Server) handleListReferences(args json.RawMessage) (interface{}, error) {
	var a listReferencesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	dir := a.ReferenceDir
	if dir == "" {
		dir = s.cfg.ReferenceDir
	}

	patterns, err := s.loadPatterns(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}

	summaries := make([]referenceSummary, len(patterns))
	for i, p := range patterns {
		summaries[i] = referenceSummary{
			Name:     p.Name,
			Width:    p.Width,
			Height:   p.Height,
			Features: p.Descriptors.Len(),
		}
	}
	return map[string]interface{}{
		"references": summaries,
		"count":      len(summaries),
	}, nil
}
