package cli

import (
	"encoding/json"
	"strings"
)

// SchemaCmd outputs JSON Schema for gdbtap output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (value,reply,toggle,breakpoints,status,error). Default: all"`
}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"value":       valueSchema(),
		"reply":       replySchema(),
		"toggle":      toggleSchema(),
		"breakpoints": breakpointsSchema(),
		"status":      statusSchema(),
		"error":       errorSchema(),
	}

	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = []string{"value", "reply", "toggle", "breakpoints", "status", "error"}
	}

	out := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "gdbtap Output Schemas",
		"description": "JSON Schema definitions for all gdbtap NDJSON output types",
		"definitions": map[string]interface{}{},
	}

	defs := out["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func baseEventProperties(eventType string) map[string]interface{} {
	return map[string]interface{}{
		"type": map[string]interface{}{
			"type":  "string",
			"const": eventType,
		},
		"schemaVersion": map[string]interface{}{
			"type":        "integer",
			"description": "NDJSON event contract version",
		},
	}
}

func valueSchema() map[string]interface{} {
	props := baseEventProperties("value")
	props["command"] = map[string]interface{}{
		"type":        "string",
		"description": "Debugger command that produced the value",
	}
	props["value"] = map[string]interface{}{
		"type":        "string",
		"description": "Extracted value text",
	}
	return map[string]interface{}{
		"type":        "object",
		"title":       "Evaluated Value",
		"description": "Result of evaluating one expression",
		"properties":  props,
		"required":    []string{"type", "schemaVersion", "command", "value"},
	}
}

func replySchema() map[string]interface{} {
	props := baseEventProperties("reply")
	props["command"] = map[string]interface{}{
		"type":        "string",
		"description": "Debugger command that was sent",
	}
	props["lines"] = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Raw reply lines with prompts stripped",
	}
	return map[string]interface{}{
		"type":        "object",
		"title":       "Raw Reply",
		"description": "Complete reply of one debugger command",
		"properties":  props,
		"required":    []string{"type", "schemaVersion", "command", "lines"},
	}
}

func breakpointSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":      map[string]interface{}{"type": "integer", "description": "Debugger-assigned breakpoint number"},
			"file":    map[string]interface{}{"type": "string", "description": "Source file as printed by the debugger"},
			"line":    map[string]interface{}{"type": "integer", "description": "1-based source line"},
			"enabled": map[string]interface{}{"type": "boolean"},
		},
		"required": []string{"id", "file", "line", "enabled"},
	}
}

func toggleSchema() map[string]interface{} {
	props := baseEventProperties("toggle")
	props["action"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"added", "removed"},
		"description": "What the toggle did",
	}
	props["breakpoint"] = breakpointSchema()
	return map[string]interface{}{
		"type":        "object",
		"title":       "Breakpoint Toggle",
		"description": "Outcome of toggling a breakpoint at a location",
		"properties":  props,
		"required":    []string{"type", "schemaVersion", "action", "breakpoint"},
	}
}

func breakpointsSchema() map[string]interface{} {
	props := baseEventProperties("breakpoints")
	props["count"] = map[string]interface{}{"type": "integer"}
	props["breakpoints"] = map[string]interface{}{
		"type":  "array",
		"items": breakpointSchema(),
	}
	return map[string]interface{}{
		"type":        "object",
		"title":       "Breakpoint Table",
		"description": "Current breakpoints as reported by the debugger",
		"properties":  props,
		"required":    []string{"type", "schemaVersion", "count", "breakpoints"},
	}
}

func statusSchema() map[string]interface{} {
	props := baseEventProperties("status")
	props["active"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Whether a debugger pane was located",
	}
	props["pane_id"] = map[string]interface{}{
		"type":        "string",
		"description": "Tmux pane id hosting the debugger, when active",
	}
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session Status",
		"description": "Debugger session discovery state",
		"properties":  props,
		"required":    []string{"type", "schemaVersion", "active"},
	}
}

func errorSchema() map[string]interface{} {
	props := baseEventProperties("error")
	props["code"] = map[string]interface{}{
		"type": "string",
		"enum": []string{
			"invalid_input", "not_available", "command_failed",
			"timeout", "cancelled", "access_denied", "expression_invalid",
		},
		"description": "Stable error kind",
	}
	props["message"] = map[string]interface{}{"type": "string"}
	props["hint"] = map[string]interface{}{
		"type":        "string",
		"description": "What to try next",
	}
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Machine-readable failure",
		"properties":  props,
		"required":    []string{"type", "schemaVersion", "code", "message"},
	}
}
