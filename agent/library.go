package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Library resolves a function call into its response.
type Library func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse

// Function is the generic contract for anything callable from a chat,
// experts and plain tools alike.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary assembles functions into a single Library.
func NewLibrary(functions ...Function) Library {
	index := make(map[string]Function, len(functions))
	for _, f := range functions {
		index[f.Declaration().Name] = f
	}
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		f, ok := index[call.Name]
		if !ok {
			return &genai.FunctionResponse{
				ID:   call.ID,
				Name: call.Name,
				Response: map[string]any{
					"error": fmt.Sprintf("unknown function %q", call.Name),
				},
			}
		}
		return f.Call(ctx, call.ID, call.Args)
	}
}

// Declarations collects the declarations of a set of functions, ready to
// be handed to a model configuration.
func Declarations(functions ...Function) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		decls = append(decls, f.Declaration())
	}
	return decls
}

// Func is a Function built from a declaration and a closure.
type Func struct {
	Decl *genai.FunctionDeclaration
	Fn   func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	fresp := &genai.FunctionResponse{
		ID:       id,
		Name:     f.Decl.Name,
		Response: map[string]any{},
	}
	out, err := f.Fn(ctx, args)
	if err != nil {
		fresp.Response["error"] = err.Error()
		return fresp
	}
	fresp.Response["output"] = out
	return fresp
}
