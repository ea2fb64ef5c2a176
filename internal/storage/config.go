// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package storage

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// DefaultRegion is the region MinIO reports when none is configured.
const DefaultRegion = "us-east-1"

// Config describes how to reach an S3-compatible object store.
type Config struct {
	// Endpoint is host:port, or a full URL.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (c Config) endpointURL() string {
	if strings.Contains(c.Endpoint, "://") {
		return c.Endpoint
	}
	if c.UseSSL {
		return "https://" + c.Endpoint
	}
	return "http://" + c.Endpoint
}

func (c Config) validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("storage endpoint is required")
	case c.Bucket == "":
		return errors.New("storage bucket is required")
	case c.AccessKey == "" || c.SecretKey == "":
		return errors.New("storage credentials are required")
	}
	return nil
}

// newClient builds a client from c alone. Shared AWS config files and
// AWS_* profile variables are not consulted.
func newClient(c Config) *s3.Client {
	region := c.Region
	if region == "" {
		region = DefaultRegion
	}
	awsConfig := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
	}
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.endpointURL())
		// MinIO serves buckets as path prefixes, not subdomains.
		o.UsePathStyle = true
	})
}
