package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type engineFunc func(ctx context.Context, image []byte, lang string) (string, error)

func (f engineFunc) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	return f(ctx, image, lang)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		var gotLang string
		res := Run(ctx, engineFunc(func(_ context.Context, _ []byte, lang string) (string, error) {
			gotLang = lang
			return "RESPONSABLE\nJUAN PEREZ", nil
		}), []byte{1}, "")

		assert.True(t, res.OK())
		assert.Equal(t, "RESPONSABLE\nJUAN PEREZ", res.Text)
		assert.Equal(t, DefaultLanguage, gotLang)
	})

	t.Run("ok but empty is not a failure", func(t *testing.T) {
		res := Run(ctx, engineFunc(func(context.Context, []byte, string) (string, error) {
			return "", nil
		}), []byte{1}, "spa")
		assert.True(t, res.OK())
		assert.Empty(t, res.Text)
	})

	t.Run("engine error", func(t *testing.T) {
		res := Run(ctx, engineFunc(func(context.Context, []byte, string) (string, error) {
			return "", errors.New("tesseract: bad image")
		}), []byte{1}, "spa")
		assert.False(t, res.OK())
		assert.EqualError(t, res.Err, "tesseract: bad image")
	})

	t.Run("engine panic", func(t *testing.T) {
		res := Run(ctx, engineFunc(func(context.Context, []byte, string) (string, error) {
			panic("segfault")
		}), []byte{1}, "spa")
		assert.False(t, res.OK())
		assert.Contains(t, res.Err.Error(), "segfault")
	})

	t.Run("empty image", func(t *testing.T) {
		res := Run(ctx, engineFunc(func(context.Context, []byte, string) (string, error) {
			t.Fatal("engine must not be called")
			return "", nil
		}), nil, "spa")
		assert.ErrorIs(t, res.Err, ErrEmptyImage)
	})
}
