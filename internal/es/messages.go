package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/teamchat/internal/models"
)

// MessageIndex stores channel messages for full text search.
type MessageIndex struct {
	ES    *elasticsearch.Client
	Index string

	// Refresh is passed to index requests; tests set it to "true".
	Refresh string
}

func NewMessageIndex(client *elasticsearch.Client, index string) *MessageIndex {
	return &MessageIndex{ES: client, Index: index}
}

func (m *MessageIndex) IndexMessage(ctx context.Context, msg models.Message) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return fmt.Errorf("index message: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		m.ES.Index.WithContext(ctx),
		m.ES.Index.WithDocumentID(strconv.FormatUint(uint64(msg.ID), 10)),
	}
	if m.Refresh != "" {
		opts = append(opts, m.ES.Index.WithRefresh(m.Refresh))
	}

	res, err := m.ES.Index(m.Index, &buf, opts...)
	if err != nil {
		return fmt.Errorf("index message: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index message", res)
	}
	return nil
}

func (m *MessageIndex) SearchMessages(ctx context.Context, channelID uint, query string, from, size int) (int64, []models.Message, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"text"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"channel_id": channelID},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search messages: %w", err)
	}

	res, err := m.ES.Search(
		m.ES.Search.WithContext(ctx),
		m.ES.Search.WithIndex(m.Index),
		m.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search messages: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search messages", res)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 }                            `json:"total"`
			Hits  []struct{ Source models.Message `json:"_source"` } `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search messages: decode: %w", err)
	}

	msgs := make([]models.Message, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		msgs[i] = hit.Source
	}
	return r.Hits.Total.Value, msgs, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
