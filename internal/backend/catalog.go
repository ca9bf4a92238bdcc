package backend

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type Question struct {
	ID   string `json:"id" mapstructure:"id"`
	Text string `json:"text" mapstructure:"text"`
}

type Item interface{}

// Questions returns the question bank in the order the server sent it.
func (c *Client) Questions(ctx context.Context) ([]Question, error) {
	var items []Item
	if err := c.getJSON(ctx, c.HTTPClient, c.url(questionsPath), &items); err != nil {
		return nil, err
	}

	// Question ids come back as numbers or strings depending on the bank.
	var questions []Question
	cfg := &mapstructure.DecoderConfig{
		Result:           &questions,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	return questions, nil
}

// Roles returns the list of target role names verbatim.
func (c *Client) Roles(ctx context.Context) ([]string, error) {
	var roles []string
	if err := c.getJSON(ctx, c.HTTPClient, c.url(rolesPath), &roles); err != nil {
		return nil, err
	}

	return roles, nil
}
