// Package assets loads the report logo from a configurable backend.
package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

var ErrNotFound = errors.New("asset not found")

type Driver string

const (
	DriverNone Driver = "none"
	DriverFS   Driver = "fs"
	DriverS3   Driver = "s3"
	DriverHTTP Driver = "http"
)

// Source returns the bytes stored under key.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// None never has anything.
type None struct{}

func (None) Fetch(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

// Logo is one asset bound to its source, fetched under a deadline.
type Logo struct {
	src     Source
	key     string
	timeout time.Duration
}

func NewLogo(src Source, key string, timeout time.Duration) *Logo {
	return &Logo{src: src, key: key, timeout: timeout}
}

// Load returns ErrNotFound for a nil Logo.
func (l *Logo) Load(ctx context.Context) ([]byte, error) {
	if l == nil || l.src == nil {
		return nil, ErrNotFound
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.src.Fetch(ctx, l.key)
}

type Config struct {
	Driver     Driver
	Path       string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	URL        string
	Timeout    time.Duration
}

// Open builds the logo for the configured driver.
//
//	fs:   Path is a file; its directory becomes the root
//	s3:   Path is the object key in S3Bucket
//	http: URL is fetched as is
func Open(ctx context.Context, cfg Config) (*Logo, error) {
	switch cfg.Driver {
	case DriverNone, "":
		return NewLogo(None{}, "", cfg.Timeout), nil
	case DriverFS:
		src, err := NewFilesystem(filepath.Dir(cfg.Path))
		if err != nil {
			return nil, err
		}
		return NewLogo(src, filepath.Base(cfg.Path), cfg.Timeout), nil
	case DriverS3:
		src, err := NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3Endpoint != "",
		})
		if err != nil {
			return nil, err
		}
		return NewLogo(src, cfg.Path, cfg.Timeout), nil
	case DriverHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("logo url required for http driver")
		}
		return NewLogo(NewHTTP(cfg.Timeout), cfg.URL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown logo driver %s", cfg.Driver)
	}
}
