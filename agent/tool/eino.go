package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
)

const inputParam = "input"

// Arg is one named string argument of a MultiArgTool.
type Arg struct {
	Name     string
	Desc     string
	Required bool
}

// MultiArgTool receives its arguments as the raw JSON object instead of a single input string.
type MultiArgTool interface {
	contractx.Tool
	Args() []Arg
}

// ToEino adapts tools for an eino ToolsNode.
func ToEino(tools []contractx.Tool) []einotool.BaseTool {
	out := make([]einotool.BaseTool, 0, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		out = append(out, einoTool{tool: t})
	}
	return out
}

type einoTool struct {
	tool contractx.Tool
}

func (e einoTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		inputParam: {Type: schema.String, Desc: "Tool input", Required: false},
	}
	if multi, ok := e.tool.(MultiArgTool); ok {
		params = make(map[string]*schema.ParameterInfo, len(multi.Args()))
		for _, a := range multi.Args() {
			params[a.Name] = &schema.ParameterInfo{Type: schema.String, Desc: a.Desc, Required: a.Required}
		}
	}
	return &schema.ToolInfo{
		Name:        e.tool.Name(),
		Desc:        e.tool.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun reports malformed arguments back to the model instead of failing the run.
func (e einoTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...einotool.Option) (string, error) {
	var args map[string]any
	if raw := strings.TrimSpace(argumentsInJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return fmt.Sprintf("invalid arguments for tool=%s: %v", e.tool.Name(), err), nil
		}
	}

	input := stringArg(args, inputParam)
	if _, ok := e.tool.(MultiArgTool); ok {
		input = argumentsInJSON
	}

	started := time.Now()
	out, err := e.tool.Invoke(ctx, input)
	log.Ctx(ctx).Debug().
		Str("tool", e.tool.Name()).
		Int("input_len", len(input)).
		Int("output_len", len(out)).
		Dur("took", time.Since(started)).
		Err(err).
		Msg("tool call")
	return out, err
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
