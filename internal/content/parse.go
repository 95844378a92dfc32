package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/leeaandrob/stockcal/internal/models"
)

// ErrParse means the model reply could not be turned into a dataset document.
var ErrParse = errors.New("unparsable model reply")

// wrapperKeys are the object keys a model may wrap the item array in.
var wrapperKeys = map[models.Kind][]string{
	models.KindHotTrends:  {"trends", "hotTrends", "hot_trends", "items", "data"},
	models.KindStrategies: {"strategies", "items", "data"},
}

// ExtractJSON strips the markdown code fence models tend to wrap JSON in.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	return strings.TrimSpace(text)
}

// ParseDocument decodes a model reply into the document for kind. The reply
// may be a bare array of items or an object wrapping one.
func ParseDocument(kind models.Kind, reply string) (models.Document, error) {
	keys, ok := wrapperKeys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	text := ExtractJSON(reply)
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrParse)
	}

	items, err := itemsJSON([]byte(text), keys)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	switch kind {
	case models.KindHotTrends:
		d := &models.HotTrendsDocument{}
		err = json.Unmarshal(items, &d.Trends)
		doc = d
	case models.KindStrategies:
		d := &models.StrategiesDocument{}
		err = json.Unmarshal(items, &d.Strategies)
		doc = d
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if doc.Len() == 0 {
		return nil, fmt.Errorf("%w: no %s in reply", ErrParse, kind)
	}
	if i := firstUnnamed(doc); i >= 0 {
		return nil, fmt.Errorf("%w: %s record %d has no id or name", ErrParse, kind, i)
	}
	return doc, nil
}

// firstUnnamed returns the index of the first record carrying neither an id
// nor its display name, or -1. Such records come from replies of another
// shape (and from null elements) and decode to zero values.
func firstUnnamed(doc models.Document) int {
	switch d := doc.(type) {
	case *models.HotTrendsDocument:
		for i, t := range d.Trends {
			if t.ID == "" && t.Name == "" {
				return i
			}
		}
	case *models.StrategiesDocument:
		for i, s := range d.Strategies {
			if s.ID == "" && s.Title == "" {
				return i
			}
		}
	}
	return -1
}

func itemsJSON(data []byte, keys []string) (json.RawMessage, error) {
	switch data[0] {
	case '[':
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: malformed JSON array", ErrParse)
		}
		return data, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		for _, key := range keys {
			if raw, ok := obj[key]; ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '[' {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%w: object has none of %v", ErrParse, keys)

	default:
		return nil, fmt.Errorf("%w: reply is not JSON", ErrParse)
	}
}
