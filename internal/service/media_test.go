package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scribbles/internal/model"
)

type fakeObjectStore struct {
	key          string
	body         []byte
	contentType  string
	cacheControl string
	err          error
}

func (f *fakeObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key, f.body, f.contentType, f.cacheControl = key, body, contentType, cacheControl
	return "https://cdn.example.com/" + key, nil
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, url string) (string, []byte) {
	t.Helper()
	rest, ok := strings.CutPrefix(url, "data:")
	require.True(t, ok, "not a data URL: %.40s", url)
	contentType, payload, ok := strings.Cut(rest, ";base64,")
	require.True(t, ok)
	data, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	return contentType, data
}

func TestMediaService_IngestImage_DataURL(t *testing.T) {
	svc := NewMediaService(nil, 0, 1920, zap.NewNop())
	data := encodePNG(t, 40, 20)

	result, err := svc.IngestImage(context.Background(), bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)

	contentType, decoded := decodeDataURL(t, result.URL)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, data, decoded, "small images are kept as uploaded")
	assert.Empty(t, result.Key)
}

func TestMediaService_IngestImage_Downsizes(t *testing.T) {
	svc := NewMediaService(nil, 0, 100, zap.NewNop())
	data := encodePNG(t, 400, 200)

	result, err := svc.IngestImage(context.Background(), bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)

	contentType, decoded := decodeDataURL(t, result.URL)
	assert.Equal(t, "image/png", contentType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(decoded))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestMediaService_IngestImage_SniffsContentType(t *testing.T) {
	svc := NewMediaService(nil, 0, 1920, zap.NewNop())
	data := encodePNG(t, 10, 10)

	result, err := svc.IngestImage(context.Background(), bytes.NewReader(data), int64(len(data)), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "data:image/png;base64,"))
}

func TestMediaService_IngestImage_Rejections(t *testing.T) {
	small := encodePNG(t, 10, 10)

	tests := []struct {
		name        string
		data        []byte
		size        int64
		contentType string
		wantErr     error
	}{
		{"declared size too large", small, 1 << 30, "image/png", model.ErrFileTooLarge},
		{"actual size too large", bytes.Repeat([]byte{0}, 2048), 10, "image/png", model.ErrFileTooLarge},
		{"not an image", []byte("hello"), 5, "text/plain", model.ErrInvalidImageType},
		{"sniffed as text", []byte("hello"), 5, "", model.ErrInvalidImageType},
		{"svg", []byte("<svg/>"), 6, "image/svg+xml", model.ErrInvalidImageType},
	}

	svc := NewMediaService(nil, 1024, 1920, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.IngestImage(context.Background(), bytes.NewReader(tt.data), tt.size, tt.contentType)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMediaService_IngestImage_CorruptImage(t *testing.T) {
	svc := NewMediaService(nil, 0, 1920, zap.NewNop())
	data := []byte("\x89PNG\r\n\x1a\nbroken")

	_, err := svc.IngestImage(context.Background(), bytes.NewReader(data), int64(len(data)), "image/png")
	assert.Error(t, err)
}

func TestMediaService_IngestImage_ObjectStore(t *testing.T) {
	objects := &fakeObjectStore{}
	svc := NewMediaService(objects, 0, 1920, zap.NewNop())
	data := encodePNG(t, 10, 10)

	result, err := svc.IngestImage(context.Background(), bytes.NewReader(data), int64(len(data)), "image/png; charset=binary")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "images/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+result.Key, result.URL)
	assert.Equal(t, "image/png", objects.contentType)
	assert.Equal(t, model.ImageCacheControl, objects.cacheControl)
	assert.Equal(t, data, objects.body)
}

func TestMediaService_IngestImage_ObjectStoreFailure(t *testing.T) {
	uploadErr := errors.New("bucket gone")
	svc := NewMediaService(&fakeObjectStore{err: uploadErr}, 0, 1920, zap.NewNop())
	data := encodePNG(t, 10, 10)

	_, err := svc.IngestImage(context.Background(), bytes.NewReader(data), int64(len(data)), "image/png")
	assert.ErrorIs(t, err, uploadErr)
}
