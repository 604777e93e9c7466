// Package generation calls the external text-generation service. A single
// ordered list of candidate model identifiers is tried in turn; the
// fallback list is the only retry mechanism. Failures come back as error
// values carrying the last provider message, never as panics.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ModelFactory resolves a candidate into a usable chat model. Production
// code builds provider SDK clients; tests inject fakes.
type ModelFactory func(ctx context.Context, candidate Candidate) (model.BaseChatModel, error)

// Result is a successful generation
type Result struct {
	Text  string
	Model string
}

// Client tries candidate models in order, with one long timeout covering
// the whole call. It holds no session state; callers decide what to store.
type Client struct {
	candidates []Candidate
	factory    ModelFactory
	timeout    time.Duration
}

// NewClient creates a generation client over the given ordered candidates
func NewClient(candidates []Candidate, factory ModelFactory, timeout time.Duration) *Client {
	return &Client{
		candidates: candidates,
		factory:    factory,
		timeout:    timeout,
	}
}

// Generate performs a whole-response call. Candidates are attempted in
// order; the first that answers wins and later ones are not tried. If all
// fail, the returned error carries the last underlying provider message.
func (c *Client) Generate(ctx context.Context, promptText string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []*schema.Message{schema.UserMessage(promptText)}

	var lastErr error
	for _, cand := range c.candidates {
		cm, err := c.factory(ctx, cand)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand, err)
			log.Printf("Generation: cannot build model %s: %v", cand, err)
			continue
		}

		msg, err := cm.Generate(ctx, messages)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand, err)
			if isModelNotFound(err) {
				log.Printf("Generation: model %s not available, trying next candidate", cand)
			} else {
				log.Printf("Generation: model %s failed: %v", cand, err)
			}
			continue
		}

		text := ""
		if msg != nil {
			text = strings.TrimSpace(msg.Content)
		}
		if text == "" {
			lastErr = fmt.Errorf("%s: empty response", cand)
			continue
		}

		return &Result{Text: text, Model: cand.String()}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no candidate models configured")
	}
	return nil, fmt.Errorf("all candidate models failed: %w", lastErr)
}

// Stream opens an incremental channel against the first candidate that
// accepts the request. The returned stream is finite and non-restartable;
// a new call is required for another sequence.
func (c *Client) Stream(ctx context.Context, promptText string) (*Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	messages := []*schema.Message{schema.UserMessage(promptText)}

	var lastErr error
	for _, cand := range c.candidates {
		cm, err := c.factory(ctx, cand)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand, err)
			continue
		}

		reader, err := cm.Stream(ctx, messages)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand, err)
			if isModelNotFound(err) {
				log.Printf("Generation: model %s not available for streaming, trying next candidate", cand)
			} else {
				log.Printf("Generation: streaming with %s failed: %v", cand, err)
			}
			continue
		}

		return &Stream{reader: reader, cancel: cancel, model: cand.String()}, nil
	}

	cancel()
	if lastErr == nil {
		lastErr = errors.New("no candidate models configured")
	}
	return nil, fmt.Errorf("all candidate models failed: %w", lastErr)
}

// Stream yields text fragments as they arrive and accumulates them into a
// running buffer. After Recv returns io.EOF, Text() holds the authoritative
// completed value.
type Stream struct {
	reader *schema.StreamReader[*schema.Message]
	cancel context.CancelFunc
	buf    strings.Builder
	model  string
}

// Recv returns the next text fragment, or io.EOF when the channel closes.
// Any error, io.EOF included, releases the call's timeout context; the
// accumulated Text() stays readable.
func (s *Stream) Recv() (string, error) {
	msg, err := s.reader.Recv()
	if err != nil {
		s.cancel()
		return "", err
	}
	if msg == nil {
		return "", nil
	}
	s.buf.WriteString(msg.Content)
	return msg.Content, nil
}

// Text returns the accumulated output received so far
func (s *Stream) Text() string {
	return s.buf.String()
}

// Model returns the candidate identifier serving this stream
func (s *Stream) Model() string {
	return s.model
}

// Close releases the underlying reader and the call's timeout context.
// Callers must always Close, even after a Recv error; abandoning a stream
// without it holds the timeout context until it expires. Close is safe to
// call after Recv has already released the context.
func (s *Stream) Close() {
	s.reader.Close()
	s.cancel()
}
