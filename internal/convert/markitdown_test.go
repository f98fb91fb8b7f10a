// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	images   map[string]bool
	output   string
	runErr   error
	gotImage string
}

func (f *fakeRuntime) Name() string { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if f.images[image] {
		return nil
	}
	return errors.New("no such image")
}

func (f *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	f.gotImage = image
	if f.runErr != nil {
		return f.runErr
	}
	if _, err := io.Copy(io.Discard, stdin); err != nil {
		return err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestNewMarkitdownConverter(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{DefaultImage: true}}

	conv, err := NewMarkitdownConverter(context.Background(), rt, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultImage, conv.image)

	_, err = NewMarkitdownConverter(context.Background(), rt, "other:1")
	assert.ErrorContains(t, err, "markitdown image not available in fake")
}

func TestMarkitdownConvert(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "scores.docx")
	require.NoError(t, os.WriteFile(doc, []byte("docx bytes"), 0o644))

	t.Run("returns container output", func(t *testing.T) {
		rt := &fakeRuntime{images: map[string]bool{DefaultImage: true}, output: "| 1 | 2 |\n"}
		conv, err := NewMarkitdownConverter(context.Background(), rt, "")
		require.NoError(t, err)

		md, err := conv.Convert(context.Background(), doc)
		require.NoError(t, err)
		assert.Equal(t, "| 1 | 2 |\n", md)
		assert.Equal(t, DefaultImage, rt.gotImage)
	})

	t.Run("empty output is an error", func(t *testing.T) {
		rt := &fakeRuntime{images: map[string]bool{DefaultImage: true}}
		conv, _ := NewMarkitdownConverter(context.Background(), rt, "")

		_, err := conv.Convert(context.Background(), doc)
		assert.ErrorContains(t, err, "empty output")
	})

	t.Run("runtime failure is wrapped", func(t *testing.T) {
		rt := &fakeRuntime{images: map[string]bool{DefaultImage: true}, runErr: errors.New("boom")}
		conv, _ := NewMarkitdownConverter(context.Background(), rt, "")

		_, err := conv.Convert(context.Background(), doc)
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("missing document", func(t *testing.T) {
		rt := &fakeRuntime{images: map[string]bool{DefaultImage: true}}
		conv, _ := NewMarkitdownConverter(context.Background(), rt, "")

		_, err := conv.Convert(context.Background(), filepath.Join(t.TempDir(), "none.pdf"))
		assert.ErrorContains(t, err, "opening")
	})
}
