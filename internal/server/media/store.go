// Package media stores user images in S3-compatible object storage.
package media

import "context"

// Asset is an uploaded object. PublicID is what Delete takes.
type Asset struct {
	URL      string
	PublicID string
}

// Store uploads local files and deletes them again by public id.
type Store interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
