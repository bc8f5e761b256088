package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AssetService stores profile pictures and hands back a public URL.
// Writes are plain disk writes outside any game transaction; the game
// document only ever sees the resulting URL.
type AssetService struct {
	uploadDir     string
	publicBaseURL string
}

func NewAssetService(uploadDir, publicBaseURL string) (*AssetService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &AssetService{uploadDir: uploadDir, publicBaseURL: publicBaseURL}, nil
}

var extensionByContentType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

var ErrUnsupportedImageType = errors.New("unsupported image type")

// SaveProfilePicture writes the payload under the player's uid and
// returns the URL clients load it from. Re-uploading replaces the
// previous picture.
func (s *AssetService) SaveProfilePicture(uid string, data []byte, contentType string) (string, error) {
	ext, ok := extensionByContentType[contentType]
	if !ok {
		return "", ErrUnsupportedImageType
	}

	filename := uid + ext
	if err := os.WriteFile(filepath.Join(s.uploadDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write profile picture: %w", err)
	}
	return s.publicBaseURL + "/uploads/" + filename, nil
}
