package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"shareline"
	"shareline/docs"
	"shareline/renderer"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	fns := make([]Function, 0, len(experts))
	for _, e := range experts {
		fns = append(fns, e)
	}
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: Declarations(fns...)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user tracks the shareholders of a company across monthly registry snapshots. He is here
			to understand who is buying, who is selling, and how positions evolved over time.

			Devise a plan of questions to ask each expert and come up with the best response to the
			user's request. The user will assume you already looked at his registry before answering.
		`}}},
		},
		Library: NewLibrary(fns...),
	}
}

// NewResearcher returns an expert grounded on Google Search, for questions
// about the institutions and funds behind the names in the registry.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is an expert researcher,
		well aware of financial institutions, mutual funds and foreign investors,
		and of the latest news about them.
		Ask the Researcher whenever you need recent or grounding information about a shareholder.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert researcher. You can search and find anything related to
			financial institutions, mutual funds, foreign portfolio investors and markets.
			You leverage Google Search to ground your assertions in a solid truth.
			You can get the latest news too, and you know how to relate them to the user's request.
			`}}},
		},
	}
}

// NewAnalyst returns the expert in charge of the user's shareholder registry.
// It reads the registry through load so the chat always sees the stored state.
func NewAnalyst(load func(context.Context) (*shareline.Registry, error), policy shareline.Policy) *Expert {
	lib := []Function{
		newMovers(load, policy),
		newHolderHistory(load),
		newUploads(load),
	}

	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. He is in charge of reading the user's shareholder registry.
		He can rank buyers and sellers over a period, recall the full share history of a holder,
		and list the snapshot uploads the registry was built from.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: Declarations(lib...)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an analyst in charge of the user's shareholder registry.
			You know how to use the Tools to extract relevant information about the holders.
			You are part of a team of experts, yours is everything recorded in the registry.
			Pardon the approximative language of the others and figure out what they meant.

			Use the available tools to get information about
			  - top buyers and sellers over a period
			  - the share history of a single holder
			  - the snapshot uploads the registry was built from
			`}}},
		},
		Library: NewLibrary(lib...),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func newMovers(load func(context.Context) (*shareline.Registry, error), policy shareline.Policy) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Movers",
			Description: `Movers ranks the shareholders that bought or sold the most between two dates.
			The dates snap to the nearest registry snapshots inside the period.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start": {
						Type:        genai.TypeString,
						Description: "Start of the period. " + must(docs.GetTopic("dates")),
					},
					"end": {
						Type:        genai.TypeString,
						Description: "End of the period. Today is the default.",
					},
					"mode": {
						Type:        genai.TypeString,
						Description: `Either "buyers" or "sellers". Buyers is the default.`,
						Enum:        []string{"buyers", "sellers"},
					},
				},
				Required: []string{"start"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted ranking of holders by net share change over the period.",
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			reg, err := load(ctx)
			if err != nil {
				return "", fmt.Errorf("could not load registry: %w", err)
			}
			start, err := argDate(args, "start", shareline.Date{})
			if err != nil {
				return "", err
			}
			end, err := argDate(args, "end", shareline.Today())
			if err != nil {
				return "", err
			}
			mode := shareline.Buyers
			if s, _ := args["mode"].(string); s == "sellers" {
				mode = shareline.Sellers
			}
			w, resolved := reg.ResolveWindow(start, end)
			entities := reg.Select(shareline.Active(policy))
			return renderer.RankMarkdown(&renderer.RankReport{
				Mode:     mode,
				Window:   w,
				Resolved: resolved,
				Deltas:   shareline.Rank(entities, w, mode),
				Limit:    20,
			}), nil
		},
	}
}

func newHolderHistory(load func(context.Context) (*shareline.Registry, error)) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "HolderHistory",
			Description: `HolderHistory recalls every recorded position of the holders whose
			name or description matches the given text, one line per snapshot date.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"match": {
						Type:        genai.TypeString,
						Description: "Case-insensitive substring of the holder's name or description.",
					},
				},
				Required: []string{"match"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown list of the matching holders with their dated share history.",
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			match, _ := args["match"].(string)
			if strings.TrimSpace(match) == "" {
				return "", fmt.Errorf("argument 'match' must not be empty")
			}
			reg, err := load(ctx)
			if err != nil {
				return "", fmt.Errorf("could not load registry: %w", err)
			}
			entities := reg.Select(shareline.ByMatch(match))
			if len(entities) == 0 {
				return fmt.Sprintf("no holder matches %q", match), nil
			}
			var b strings.Builder
			for _, e := range entities {
				fmt.Fprintf(&b, "## %s (%s)\n\n", e.Name, e.Category)
				for day, shares := range e.Shares().Values() {
					fmt.Fprintf(&b, "- %s: %s\n", day, shares)
				}
				b.WriteString("\n")
			}
			return b.String(), nil
		},
	}
}

func newUploads(load func(context.Context) (*shareline.Registry, error)) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Uploads",
			Description: `Uploads lists the snapshot files the registry was built from,
			with their snapshot date and record count.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the ingested snapshots.",
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			reg, err := load(ctx)
			if err != nil {
				return "", fmt.Errorf("could not load registry: %w", err)
			}
			return renderer.UploadsMarkdown(reg.Uploads()), nil
		},
	}
}

func argDate(args map[string]any, name string, fallback shareline.Date) (shareline.Date, error) {
	iv, ok := args[name]
	if !ok {
		return fallback, nil
	}
	s, ok := iv.(string)
	if !ok {
		return fallback, fmt.Errorf("argument %q is not a string as expected but %T", name, iv)
	}
	d, err := shareline.ParseDate(s)
	if err != nil {
		return fallback, fmt.Errorf("argument %q must be a valid date, got %q. Below is the doc about the date format\n\n%s", name, s, must(docs.GetTopic("dates")))
	}
	return d, nil
}
