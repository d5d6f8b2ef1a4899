package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func recordListProperty(what string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": what + " in table order, left to right. Each has color, value, multiplier, conditions and options.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"color":      map[string]interface{}{"type": "string"},
				"value":      map[string]interface{}{"description": "Integer or a value_N label"},
				"multiplier": map[string]interface{}{"type": "string"},
				"conditions": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"options":    map[string]interface{}{"description": "List of option labels, or a map of label to bool"},
			},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Game Layout
		{
			Name:        "layout_analyze",
			Description: "Analyze a photo of a finished Faraway table: find cards and temples, read their attributes and compute the final score with a step-by-step trace.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "layout_detect",
			Description: "Run one registered detector model on an image and return its raw detections with normalized boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"model": map[string]interface{}{
						"type":        "string",
						"description": "Registered model name",
						"enum":        []string{"SCENE_MODEL", "CARD_MODEL", "TEMPLE_MODEL"},
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Minimum detection score. Default 0.2",
						"default":     0.2,
					},
				},
				"required": []string{"path", "model"},
			},
		},
		{
			Name:        "letterbox_compute",
			Description: "Compute the aspect-preserving resize and padding that maps an image onto a square model input.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Source image width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Source image height in pixels",
					},
					"input_size": map[string]interface{}{
						"type":        "integer",
						"description": "Square model input edge. Default 640",
						"default":     640,
					},
				},
				"required": []string{"width", "height"},
			},
		},

		// Scoring
		{
			Name:        "score_calculate",
			Description: "Score a layout given as attribute records. Cards are scored right to left, each seeing only cards to its right plus every temple; temples see all cards.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cards":   recordListProperty("Cards"),
					"temples": recordListProperty("Temples"),
				},
				"required": []string{"cards"},
			},
		},

		// Score Sheet
		{
			Name:        "scoresheet_new",
			Description: "Start a new score sheet for the given players, replacing the current one.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"players": map[string]interface{}{
						"type":        "array",
						"description": "Player names in seating order",
						"items":       map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"players"},
			},
		},
		{
			Name:        "scoresheet_record",
			Description: "Record a player's score for a round.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"player": map[string]interface{}{
						"type":        "string",
						"description": "Player name (case-insensitive)",
					},
					"round": map[string]interface{}{
						"type":        "integer",
						"description": "Round number, starting at 1",
					},
					"score": map[string]interface{}{
						"type":        "integer",
						"description": "Score for the round",
					},
				},
				"required": []string{"player", "round", "score"},
			},
		},
		{
			Name:        "scoresheet_add_round",
			Description: "Append a round with every score at zero.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "scoresheet_summary",
			Description: "Return totals, averages and round wins for every player.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded JPEG. Use this to inspect a card the detector misread.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
