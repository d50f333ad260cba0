// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package artifact

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 client built by NewS3Client.
type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from the default AWS configuration,
// applying the optional overrides.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loaders []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, "failed to load AWS config", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store mirrors artifacts to s3://<Bucket>/<Prefix>/<Host>/<name>.txt.
type S3Store struct {
	Client S3API
	Bucket string
	Prefix string
	Host   string
}

// Key returns the object key for an artifact name.
func (s *S3Store) Key(name string) string {
	return path.Join(s.Prefix, SanitizeSegment(s.Host), SanitizeSegment(name)+".txt")
}

func (s *S3Store) Save(ctx context.Context, a Artifact) error {
	key := s.Key(a.Name)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Content),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		writes.WithLabelValues("s3", "error").Inc()
		return errors.WrapWithContext(errors.ErrCodePersistence, "failed to upload artifact to S3", err,
			map[string]any{"bucket": s.Bucket, "key": key, "artifact": a.Name})
	}

	writes.WithLabelValues("s3", "ok").Inc()
	return nil
}
