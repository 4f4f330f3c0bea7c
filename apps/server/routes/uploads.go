package routes

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/finboard/finboard/pkg/fstore"
)

// maxAvatarBytes bounds a single avatar upload.
const maxAvatarBytes = 5 << 20

// maxFormBytes bounds the whole multipart body: one avatar plus text fields.
const maxFormBytes = maxAvatarBytes + 1<<20

// saveAvatar validates and persists an uploaded avatar, returning its
// storage key.
func saveAvatar(ctx context.Context, assets fstore.Store, fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxAvatarBytes {
		return "", huma.Error400BadRequest("avatar must be 5MB or smaller")
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", huma.Error400BadRequest("avatar must be an image")
	}

	f, err := fh.Open()
	if err != nil {
		return "", huma.Error500InternalServerError("failed to read upload", err)
	}
	defer f.Close()

	key, err := assets.Save(ctx, fh.Filename, f, fh.Size, contentType)
	if err != nil {
		return "", huma.Error500InternalServerError("failed to store avatar", err)
	}
	return key, nil
}

// formValue returns the first value for a key and whether the key was sent.
// The distinction drives partial updates: absent means keep, present but
// empty means clear.
func formValue(form *multipart.Form, key string) (string, bool) {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
