package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/mvoronin/speech-apps/db"
	"github.com/mvoronin/speech-apps/issues"
	"github.com/mvoronin/speech-apps/logger"
)

const steamSystemPrompt = "You are a helpful assistant with access to a SQLite database containing a single table named " +
	"'steam_games'. Available columns are: appid, name, release_date, english, developer, publisher, " +
	"platforms, required_age, categories, genres, steamspy_tags, achievements, positive_ratings, " +
	"negative_ratings, average_playtime, median_playtime, owners, price. " +
	"Always reference this table exactly by name and only use the listed columns."

// maxToolRounds bounds the tool-calling loop for a single user turn.
const maxToolRounds = 8

// Usage aggregates token accounting across all completions of one turn.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Reply is the agent's answer to one user message.
type Reply struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Agent answers questions about the Steam database, running SQL and
// creating GitHub issues through OpenAI tool calls.
type Agent struct {
	client *Client
	store  *db.SteamDB
	github *issues.Client
}

// NewAgent wires the chat client to its tool backends.
func NewAgent(client *Client, store *db.SteamDB, github *issues.Client) *Agent {
	return &Agent{client: client, store: store, github: github}
}

// Generate runs the tool-calling loop over the conversation history and
// returns the assistant's final text reply.
func (a *Agent) Generate(ctx context.Context, history []openai.ChatCompletionMessage) (*Reply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: steamSystemPrompt,
	})
	messages = append(messages, history...)

	var usage Usage
	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.API.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       a.client.Model,
			Temperature: a.client.Temperature,
			Messages:    messages,
			Tools:       agentTools(),
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}
		usage.InputTokens += resp.Usage.PromptTokens
		usage.OutputTokens += resp.Usage.CompletionTokens
		usage.TotalTokens += resp.Usage.TotalTokens

		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("chat completion returned no choices")
		}
		msg := resp.Choices[0].Message

		if len(msg.ToolCalls) == 0 {
			logger.Logf("Message was generated: %s", msg.Content)
			return &Reply{Content: msg.Content, Usage: usage}, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			logger.Logf("Tool call requested: %s with args %s", call.Function.Name, call.Function.Arguments)
			result := a.callTool(ctx, call.Function.Name, call.Function.Arguments)
			logger.Logf("Tool result: %s", result)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}
	return nil, fmt.Errorf("tool call limit reached after %d rounds", maxToolRounds)
}

// callTool dispatches one tool call. Failures are serialized into the tool
// output so the model can react to them instead of aborting the turn.
func (a *Agent) callTool(ctx context.Context, name, rawArgs string) string {
	var args map[string]any
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return toolError(fmt.Errorf("invalid tool arguments: %w", err))
		}
	}

	switch name {
	case "execute_sql_query":
		query, _ := args["query"].(string)
		params := stringSliceArg(args, "parameters")
		anyParams := make([]any, len(params))
		for i, p := range params {
			anyParams[i] = p
		}
		rows, err := a.store.ExecuteQuery(ctx, query, anyParams...)
		if err != nil {
			return toolError(err)
		}
		return toolJSON(map[string]any{"rows": rows, "count": len(rows)})

	case "search_game_by_name":
		gameName, _ := args["name"].(string)
		limit := intArg(args, "limit", 5)
		rows, err := a.store.SearchGames(ctx, gameName, limit)
		if err != nil {
			return toolError(err)
		}
		return toolJSON(map[string]any{"rows": rows, "count": len(rows)})

	case "get_genre_counts":
		limit := intArg(args, "limit", 10)
		counts, err := a.store.GenreCounts(ctx, limit)
		if err != nil {
			return toolError(err)
		}
		return toolJSON(map[string]any{"genres": counts})

	case "create_github_issue":
		title, _ := args["title"].(string)
		body, _ := args["body"].(string)
		labels := stringSliceArg(args, "labels")
		issue, err := a.github.Create(ctx, title, body, labels)
		if err != nil {
			logger.Logf("Failed to create GitHub issue: %v", err)
			return toolError(err)
		}
		return toolJSON(map[string]any{
			"number": issue.Number,
			"title":  issue.Title,
			"url":    issue.HTMLURL,
		})
	}
	return toolError(fmt.Errorf("unknown function call: %s", name))
}

func agentTools() []openai.Tool {
	return []openai.Tool{
		functionTool("execute_sql_query",
			"Executes a SQL SELECT query and returns the result.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "SQL SELECT statement."},
					"parameters": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Parameters for ? placeholders in the query.",
					},
				},
				"required": []string{"query"},
			}),
		functionTool("search_game_by_name",
			"Returns games whose names contain the provided text.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":  map[string]any{"type": "string", "description": "Substring of the game title."},
					"limit": map[string]any{"type": "integer", "description": "Maximum number of results."},
				},
				"required": []string{"name"},
			}),
		functionTool("get_genre_counts",
			"Returns counts of games per genre for chart visualizations.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{"type": "integer", "description": "How many genres to return."},
				},
			}),
		functionTool("create_github_issue",
			"Creates a GitHub issue with the provided title, body and optional labels.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string", "description": "Issue title."},
					"body":  map[string]any{"type": "string", "description": "Issue body content."},
					"labels": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Optional list of labels to assign.",
					},
				},
				"required": []string{"title", "body"},
			}),
	}
}

func functionTool(name, description string, parameters map[string]any) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

func toolJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(err)
	}
	return string(data)
}

func toolError(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}

func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
