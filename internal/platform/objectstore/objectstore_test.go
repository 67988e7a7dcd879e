// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/platform/objectstore"
)

type memoryS3 struct {
	objects map[string][]byte
}

func (m *memoryS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	output := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range keys {
		output.Contents = append(output.Contents, types.Object{Key: aws.String(key)})
	}
	return output, nil
}

func (m *memoryS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (m *memoryS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func TestBucket_ListAndOpen(t *testing.T) {
	api := &memoryS3{objects: map[string][]byte{
		"series/ch1/002.png": []byte("b"),
		"series/ch1/001.png": []byte("a"),
		"series/ch10/001.png": []byte("x"),
	}}
	bucket := objectstore.NewBucket(api, "pages")
	ctx := context.Background()

	keys, err := bucket.List(ctx, "series/ch1")
	require.NoError(t, err)
	assert.Equal(t, []string{"series/ch1/001.png", "series/ch1/002.png"}, keys)

	reader, err := bucket.Open(ctx, keys[0])
	require.NoError(t, err)
	content, _ := io.ReadAll(reader)
	assert.Equal(t, "a", string(content))

	_, err = bucket.Open(ctx, "missing")
	assert.ErrorIs(t, err, objectstore.ErrNotFound)
}

func TestMirror_UpsertChapter(t *testing.T) {
	api := &memoryS3{objects: map[string][]byte{
		"mirror/blue.json": []byte(`{"title":"Blue","cover":"c.png","chapters":{"1":{"title":"One"}}}`),
	}}
	mirror := objectstore.NewMirror(objectstore.NewBucket(api, "mirror"))
	ctx := context.Background()

	err := mirror.UpsertChapter(ctx, "mirror/blue.json", "Ignored", "2", objectstore.MirrorChapter{
		Title:  "Two",
		Groups: map[string]string{"Milize": "/proxy/api/mangadex/chapter/abc/"},
	})
	require.NoError(t, err)

	var document struct {
		Title    string                              `json:"title"`
		Cover    string                              `json:"cover"`
		Chapters map[string]objectstore.MirrorChapter `json:"chapters"`
	}
	require.NoError(t, json.Unmarshal(api.objects["mirror/blue.json"], &document))
	assert.Equal(t, "Blue", document.Title)
	assert.Equal(t, "c.png", document.Cover)
	assert.Equal(t, "One", document.Chapters["1"].Title)
	assert.Equal(t, "Two", document.Chapters["2"].Title)

	t.Run("creates a missing document", func(t *testing.T) {
		err := mirror.UpsertChapter(ctx, "mirror/new.json", "New", "1", objectstore.MirrorChapter{Title: "Start"})
		require.NoError(t, err)
		assert.Contains(t, string(api.objects["mirror/new.json"]), `"title": "New"`)
	})
}
