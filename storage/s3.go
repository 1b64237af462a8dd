package storage

import (
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type s3store struct {
	bucket string
	client *s3.S3
}

type s3item struct {
	key   string
	store *s3store
}

func (i s3item) Key() string {
	return i.key
}

func (i s3item) PublicURL() string {
	return fmt.Sprintf("http://%s/%s/%s", i.store.client.Endpoint, i.store.bucket, i.key)
}

func (i s3item) Contents() (io.ReadCloser, error) {
	resp, err := i.store.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(i.store.bucket),
		Key:    aws.String(i.key),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *s3store) Add(key string, r io.ReadSeeker) (Item, error) {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return nil, err
	}
	return s3item{key: key, store: s}, nil
}

func (s *s3store) Get(key string) (Item, error) {
	_, err := s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ErrNotFound
	}
	return s3item{key: key, store: s}, nil
}

func (s *s3store) Remove(key string) error {
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *s3store) List() ([]Item, error) {
	objects, err := s.client.ListObjects(&s3.ListObjectsInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, o := range objects.Contents {
		items = append(items, s3item{key: *o.Key, store: s})
	}
	return items, nil
}

// S3Config groups the credentials and addressing of one bucket.
type S3Config struct {
	Bucket   string
	Endpoint string
	Region   string

	Id     string
	Secret string
	Token  string

	DisableSSL     bool
	ForcePathStyle bool
}

// S3 returns a Store backed by an s3 compatible bucket.
func S3(config S3Config) (Store, error) {
	client := s3.New(session.New(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(config.Id, config.Secret, config.Token),
		DisableSSL:       aws.Bool(config.DisableSSL),
		S3ForcePathStyle: aws.Bool(config.ForcePathStyle),
		Region:           aws.String(config.Region),
		Endpoint:         aws.String(config.Endpoint)}))
	return &s3store{client: client, bucket: config.Bucket}, nil
}
