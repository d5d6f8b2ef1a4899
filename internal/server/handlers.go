package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/faraway-scorer/internal/attributes"
	"github.com/ironsheep/faraway-scorer/internal/detection"
	"github.com/ironsheep/faraway-scorer/internal/geometry"
	"github.com/ironsheep/faraway-scorer/internal/imaging"
	"github.com/ironsheep/faraway-scorer/internal/pipeline"
	"github.com/ironsheep/faraway-scorer/internal/scoresheet"
	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
	"github.com/ironsheep/faraway-scorer/pkg/logger"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "layout_analyze", "score_calculate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errNoSheet is returned by score sheet tools before scoresheet_new.
var errNoSheet = errors.New("no score sheet; call scoresheet_new first")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn(ctx, "tool failed", logger.String("tool", params.Name), logger.Error(err))
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Game Layout
	case "layout_analyze":
		return s.handleLayoutAnalyze(ctx, args)
	case "layout_detect":
		return s.handleLayoutDetect(ctx, args)
	case "letterbox_compute":
		return s.handleLetterboxCompute(args)

	// Scoring
	case "score_calculate":
		return s.handleScoreCalculate(args)

	// Score Sheet
	case "scoresheet_new":
		return s.handleScoresheetNew(args)
	case "scoresheet_record":
		return s.handleScoresheetRecord(args)
	case "scoresheet_add_round":
		return s.handleScoresheetAddRound()
	case "scoresheet_summary":
		return s.handleScoresheetSummary()

	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments; absent arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Game Layout Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

// analyzeResult is an Analysis plus the files written for its regions.
type analyzeResult struct {
	*pipeline.Analysis
	Crops []string `json:"crops,omitempty"`
}

func (s *Server) handleLayoutAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.analyzer == nil {
		return nil, errors.New("layout analysis is not configured")
	}
	var a pathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	an, err := s.analyzer.Analyze(ctx, img)
	if err != nil {
		return nil, err
	}

	out := analyzeResult{Analysis: an}
	if s.cropDir != "" {
		for _, group := range []struct {
			prefix  string
			regions []pipeline.Region
		}{{an.ID + "_card", an.Cards}, {an.ID + "_temple", an.Temples}} {
			crops := make([]imaging.CroppedRegion, len(group.regions))
			for i, r := range group.regions {
				crops[i] = r.CroppedRegion
			}
			paths, err := imaging.SaveRegions(s.cropDir, group.prefix, crops)
			if err != nil {
				return nil, err
			}
			out.Crops = append(out.Crops, paths...)
		}
	}
	return out, nil
}

type layoutDetectArgs struct {
	Path      string   `json:"path"`
	Model     string   `json:"model"`
	Threshold *float64 `json:"threshold"`
}

// labeledDetection is a Detection with its class label.
type labeledDetection struct {
	detection.Detection
	Label string `json:"label,omitempty"`
}

func (s *Server) handleLayoutDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.detector == nil {
		return nil, errors.New("detection is not configured")
	}
	var a layoutDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Model == "" {
		return nil, errors.New("model is required")
	}
	threshold := pipeline.DefaultSceneThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := s.detector.Detect(ctx, img, threshold, a.Model)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("model %s is not loaded", a.Model)
	}

	tax := taxonomyFor(a.Model)
	out := make([]labeledDetection, len(res.Detections))
	for i, d := range res.Detections {
		out[i] = labeledDetection{Detection: d}
		if tax != nil {
			out[i].Label, _ = tax.Label(d.ClassID)
		}
	}
	return map[string]interface{}{
		"model":      a.Model,
		"count":      len(out),
		"detections": out,
	}, nil
}

func taxonomyFor(model string) *taxonomy.Taxonomy {
	set := taxonomy.Default()
	switch model {
	case pipeline.SceneModel:
		return set.Scene
	case pipeline.CardModel:
		return set.Card
	case pipeline.TempleModel:
		return set.Temple
	default:
		return nil
	}
}

type letterboxArgs struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	InputSize int `json:"input_size"`
}

func (s *Server) handleLetterboxCompute(args json.RawMessage) (interface{}, error) {
	var a letterboxArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.InputSize == 0 {
		a.InputSize = detection.DefaultInputSize
	}
	return geometry.ComputeLetterbox(a.Width, a.Height, a.InputSize)
}

// === Scoring Handlers ===

type scoreArgs struct {
	Cards   []attributes.Record `json:"cards"`
	Temples []attributes.Record `json:"temples"`
}

func (s *Server) handleScoreCalculate(args json.RawMessage) (interface{}, error) {
	var a scoreArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.calculator.Calculate(a.Cards, a.Temples), nil
}

// === Score Sheet Handlers ===

type scoresheetNewArgs struct {
	Players []string `json:"players"`
}

type scoresheetRecordArgs struct {
	Player string `json:"player"`
	Round  int    `json:"round"`
	Score  int    `json:"score"`
}

// sheetView is the tool representation of a sheet.
type sheetView struct {
	ID      string                     `json:"id"`
	Rounds  int                        `json:"rounds"`
	Players []scoresheet.PlayerSummary `json:"players"`
}

func viewOf(sh *scoresheet.Sheet) sheetView {
	return sheetView{ID: sh.ID, Rounds: sh.Rounds, Players: sh.Summary()}
}

func (s *Server) handleScoresheetNew(args json.RawMessage) (interface{}, error) {
	var a scoresheetNewArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	sh, err := scoresheet.New(a.Players)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := scoresheet.Save(s.store, sh); err != nil {
		return nil, err
	}
	s.sheet = sh
	return viewOf(sh), nil
}

func (s *Server) handleScoresheetRecord(args json.RawMessage) (interface{}, error) {
	var a scoresheetRecordArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheet == nil {
		return nil, errNoSheet
	}
	p := s.sheet.PlayerIndex(a.Player)
	if p < 0 {
		return nil, fmt.Errorf("unknown player %q", a.Player)
	}
	if err := s.sheet.SetScore(p, a.Round-1, a.Score); err != nil {
		return nil, err
	}
	if err := scoresheet.Save(s.store, s.sheet); err != nil {
		return nil, err
	}
	return viewOf(s.sheet), nil
}

func (s *Server) handleScoresheetAddRound() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheet == nil {
		return nil, errNoSheet
	}
	s.sheet.AddRound()
	if err := scoresheet.Save(s.store, s.sheet); err != nil {
		return nil, err
	}
	return viewOf(s.sheet), nil
}

func (s *Server) handleScoresheetSummary() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheet == nil {
		return nil, errNoSheet
	}
	return viewOf(s.sheet), nil
}

// === Basic Image Information Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}
