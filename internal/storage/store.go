// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package storage stores uploaded files in an S3-compatible object store
// such as MinIO.
package storage

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"go.filebox.dev/filebox/internal/debug"
)

var ErrNotFound = errors.New("object not found")

// Object is a stored file opened for reading. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	// Size is -1 when the store did not report it.
	Size int64
}

type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

func New(ctx context.Context, c Config) (*Store, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	client := newClient(c)
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   c.Bucket,
	}, nil
}

func (s *Store) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return errors.Wrapf(err, "check bucket %s", s.bucket)
	}

	debug.Log("bucket %s does not exist, creating it", s.bucket)
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return errors.Wrapf(err, "create bucket %s", s.bucket)
	}
	return nil
}

// Put uploads body under key. The size of body does not need to be known;
// large bodies are sent as a multipart upload.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return errors.Wrapf(err, "upload %s", key)
	}
	return nil
}

// Get opens the object stored under key. It returns ErrNotFound if there is
// none.
func (s *Store) Get(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", key)
	}
	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        size,
	}, nil
}
