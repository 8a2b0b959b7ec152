// Package automation turns free-text commands into stored, executed workflows.
package automation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/manya-08/ai-workflow-automator-project/internal/llm"
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
	"github.com/manya-08/ai-workflow-automator-project/internal/prompt"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

const (
	msgMissingCommand = "No 'command' provided in the request body. Please send your automation request here."
	msgRateLimited    = "Gemini API rate limit exceeded. Please try again later."
	msgUnavailable    = "Gemini API Error: Model not found or unavailable. This often indicates a quota limit on the free tier or an incorrect model name."
	msgParseFailed    = "AI could not generate a valid workflow plan (JSON parse error). Please refine your command."
	msgUnexpected     = "An unexpected error occurred during AI processing."
)

// Interpretation is a successfully parsed command.
type Interpretation struct {
	Command     string
	Workflow    models.Workflow
	RawResponse string
	Warnings    []string
}

// Interpreter asks the completion API to structure a command.
type Interpreter struct {
	completer llm.Completer
	logger    Logger
}

// NewInterpreter creates a new Interpreter.
func NewInterpreter(completer llm.Completer, logger Logger) *Interpreter {
	return &Interpreter{completer: completer, logger: logger}
}

// Interpret renders the prompt for command, calls the completion API once and
// decodes the reply. All failures are returned as *Error.
func (i *Interpreter) Interpret(ctx context.Context, command string) (*Interpretation, error) {
	if strings.TrimSpace(command) == "" {
		return nil, newError(KindClientInput, http.StatusBadRequest, msgMissingCommand, nil)
	}

	text, err := prompt.Render(command)
	if err != nil {
		return nil, newError(KindUnexpected, http.StatusInternalServerError, msgUnexpected, err)
	}

	i.logger.Info("sending command to completion API", "command", command)
	raw, err := i.completer.Complete(ctx, text)
	if err != nil {
		e := classifyUpstream(err)
		i.logger.Error("completion request failed", "kind", e.Kind, "status", e.HTTPStatus(), "error", err)
		return nil, e
	}

	value, err := decodeJSON(StripCodeFence(raw))
	if err != nil {
		i.logger.Error("completion was not valid JSON", "raw_response", raw, "error", err)
		e := newError(KindResponseParse, http.StatusInternalServerError, msgParseFailed, err)
		e.RawResponse = raw
		return nil, e
	}

	interp := &Interpretation{Command: command, RawResponse: raw}

	var listLen int
	if list, ok := value.([]interface{}); ok && len(list) > 0 {
		listLen = len(list)
		value = list[0]
	}

	wf, ok := value.(map[string]interface{})
	if !ok {
		msg := fmt.Sprintf("Gemini response was not a dictionary or list of dictionaries. Received type: %s, Raw content: '%s'", jsonKind(value), raw)
		i.logger.Error("completion had unexpected shape", "type", jsonKind(value))
		e := newError(KindResponseShape, http.StatusBadRequest, msg, nil)
		e.RawResponse = raw
		return nil, e
	}

	if listLen > 0 {
		note := fmt.Sprintf("completion returned a list of %d workflows; using the first", listLen)
		if listLen > 1 {
			note += fmt.Sprintf(" and discarding %d", listLen-1)
		}
		i.logger.Warn(note)
		interp.Warnings = append(interp.Warnings, note)
	}

	interp.Workflow = models.Workflow(wf)
	i.logger.Debug("completion parsed", "workflow", wf)
	return interp, nil
}

func classifyUpstream(err error) *Error {
	var blocked *llm.BlockedError
	if errors.As(err, &blocked) {
		msg := "Prompt blocked by safety settings. Details: " + blocked.Feedback
		return newError(KindSafetyRejection, http.StatusBadRequest, msg, err)
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			e := newError(KindRateLimited, http.StatusTooManyRequests, msgRateLimited, err)
			e.Details = apiErr.Message
			return e
		case http.StatusNotFound:
			e := newError(KindUpstreamUnavailable, http.StatusNotFound, msgUnavailable, err)
			e.Details = apiErr.Message
			return e
		}
		status := apiErr.Code
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		e := newError(KindUpstreamOther, status, "Gemini API Error: "+apiErr.Message, err)
		e.Details = apiErr.Message
		return e
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindUnexpected, http.StatusInternalServerError, msgUnexpected, err)
	}
	return newError(KindUpstreamOther, http.StatusInternalServerError, "Gemini API Error: "+err.Error(), err)
}

// StripCodeFence removes a surrounding ``` fence, with or without a language
// tag, from a completion. Unfenced text is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimLeftFunc(s[3:], func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '+'
	})
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// decodeJSON decodes exactly one JSON value, keeping number literals intact.
func decodeJSON(s string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid character after top-level JSON value")
	}
	return v, nil
}

func jsonKind(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case []interface{}:
		if len(t) == 0 {
			return "empty list"
		}
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
