// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MirrorChapter is one chapter entry of the mirror document.
type MirrorChapter struct {
	Title       string            `json:"title"`
	Volume      string            `json:"volume"`
	Groups      map[string]string `json:"groups"`
	LastUpdated string            `json:"last_updated"`
}

// Mirror keeps one JSON metadata document per series.
type Mirror struct {
	bucket *Bucket
}

// NewMirror stores documents in bucket.
func NewMirror(bucket *Bucket) *Mirror {
	return &Mirror{bucket: bucket}
}

/*
UpsertChapter inserts or replaces the chapter keyed by number in the document
at key, creating the document with title when it does not exist yet.

Description: fields of the document the engine does not know are kept as
they are.
*/
func (m *Mirror) UpsertChapter(ctx context.Context, key, title, number string, chapter MirrorChapter) error {
	document, err := m.load(ctx, key)
	if err != nil {
		return err
	}

	if _, ok := document["title"]; !ok {
		encoded, _ := json.Marshal(title)
		document["title"] = encoded
	}

	chapters := map[string]json.RawMessage{}
	if raw, ok := document["chapters"]; ok {
		if err := json.Unmarshal(raw, &chapters); err != nil {
			return fmt.Errorf("objectstore: mirror %s chapters: %w", key, err)
		}
	}

	entry, err := json.Marshal(chapter)
	if err != nil {
		return fmt.Errorf("objectstore: mirror entry: %w", err)
	}
	chapters[number] = entry

	if document["chapters"], err = json.Marshal(chapters); err != nil {
		return fmt.Errorf("objectstore: mirror chapters: %w", err)
	}

	body, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("objectstore: mirror document: %w", err)
	}
	return m.bucket.Put(ctx, key, "application/json", bytes.NewReader(body))
}

func (m *Mirror) load(ctx context.Context, key string) (map[string]json.RawMessage, error) {
	reader, err := m.bucket.Open(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("objectstore: read mirror %s: %w", key, err)
	}

	document := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &document); err != nil {
			return nil, fmt.Errorf("objectstore: parse mirror %s: %w", key, err)
		}
	}
	return document, nil
}
