package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutGetDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://farm.test/")
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Put(ctx, "1/2/photo.png", []byte("data"))
	require.NoError(t, err)

	data, err := store.Get(ctx, "1/2/photo.png")
	assert.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
	assert.Equal(t, "http://farm.test/media/1/2/photo.png", store.URL("1/2/photo.png"))

	assert.NoError(t, store.Delete(ctx, "1/2/photo.png"))
	_, err = store.Get(ctx, "1/2/photo.png")
	assert.Equal(t, ErrObjectNotFound, err)

	assert.NoError(t, store.Delete(ctx, "1/2/photo.png"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	err = store.Put(context.Background(), "../escape.png", []byte("x"))
	assert.Equal(t, ErrInvalidKey, err)

	assert.Equal(t, "", store.URL(""))
}

func TestProcessPhoto_CropsAndScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	for x := 0; x < 300; x++ {
		for y := 0; y < 100; y++ {
			src.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := ProcessPhoto(buf.Bytes())
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, PhotoSize, img.Bounds().Dx())
	assert.Equal(t, PhotoSize, img.Bounds().Dy())
}

func TestProcessPhoto_RejectsText(t *testing.T) {
	_, err := ProcessPhoto([]byte("not an image at all"))
	assert.Equal(t, ErrUnsupportedPhoto, err)
}

func TestPhotoKey(t *testing.T) {
	key := PhotoKey(3, 7)
	assert.True(t, strings.HasPrefix(key, "3/7/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, PhotoKey(3, 7))
}
