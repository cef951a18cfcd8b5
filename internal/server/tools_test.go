package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	want := []string{
		"locate_patterns",
		"detect_text_exclusions",
		"dominant_color",
		"image_info",
		"list_references",
	}
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}

	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}
	for _, name := range want {
		if _, ok := byName[name]; !ok {
			t.Errorf("missing tool definition: %s", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("tool has empty name")
			}
			if tool.Description == "" {
				t.Error("tool has empty description")
			}
			if tool.InputSchema == nil {
				t.Fatal("tool has nil input schema")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("schema type = %v, want object", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("schema has no properties map")
			}
		})
	}
}

func TestToolDefinitions_RequiredFields(t *testing.T) {
	required := map[string][]string{
		"locate_patterns":        {"target_path"},
		"detect_text_exclusions": {"path"},
		"dominant_color":         {"path"},
		"image_info":             {"path"},
		"list_references":        nil,
	}

	for _, tool := range GetToolDefinitions() {
		want, ok := required[tool.Name]
		if !ok {
			t.Errorf("unexpected tool %s", tool.Name)
			continue
		}
		got, _ := tool.InputSchema["required"].([]string)
		if len(got) != len(want) {
			t.Errorf("%s: required = %v, want %v", tool.Name, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: required[%d] = %s, want %s", tool.Name, i, got[i], want[i])
			}
		}
	}
}

func TestToolDefinitions_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(GetToolDefinitions())
	if err != nil {
		t.Fatalf("tool definitions do not marshal: %v", err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("marshaled definitions do not round-trip: %v", err)
	}
	for _, tool := range decoded {
		if _, ok := tool["inputSchema"]; !ok {
			t.Errorf("tool %v is missing inputSchema after marshal", tool["name"])
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/list",
	})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result is not a map: %T", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools has unexpected type: %T", result["tools"])
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("tools/list returned %d tools, want %d", len(tools), len(GetToolDefinitions()))
	}
}
