package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

type shardsPublished struct {
	Dates       []string  `json:"dates"`
	PublishedAt time.Time `json:"published_at"`
}

func encodeSearchEvent(event domain.SearchEvent) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode search event: %w", err)
	}
	return raw, nil
}

func decodeSearchEvent(raw []byte) (domain.SearchEvent, error) {
	var event domain.SearchEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return domain.SearchEvent{}, domain.WrapError(domain.ErrInvalidInput, "decode search event", err)
	}
	if event.ID == "" {
		return domain.SearchEvent{}, domain.WrapError(domain.ErrInvalidInput, "decode search event", errors.New("missing id"))
	}
	return event, nil
}

func encodeShardsPublished(dates []string, at time.Time) ([]byte, error) {
	if dates == nil {
		dates = []string{}
	}
	raw, err := json.Marshal(shardsPublished{Dates: dates, PublishedAt: at})
	if err != nil {
		return nil, fmt.Errorf("encode shards notice: %w", err)
	}
	return raw, nil
}

// decodeShardsPublished also accepts an empty body as "something changed".
func decodeShardsPublished(raw []byte) (shardsPublished, error) {
	if len(raw) == 0 {
		return shardsPublished{Dates: []string{}}, nil
	}
	var notice shardsPublished
	if err := json.Unmarshal(raw, &notice); err != nil {
		return shardsPublished{}, domain.WrapError(domain.ErrInvalidInput, "decode shards notice", err)
	}
	if notice.Dates == nil {
		notice.Dates = []string{}
	}
	return notice, nil
}
