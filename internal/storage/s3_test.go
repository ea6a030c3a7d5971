package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	objects map[string]string
	headErr error
	deleted []string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadReturnsPublicURL(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	s := newS3Storage(fake, "photos", "https://cdn.test/")

	url, err := s.Upload(context.Background(), "meals/u1/m1", strings.NewReader("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn.test/meals/u1/m1" {
		t.Errorf("url = %q", url)
	}
	if fake.objects["meals/u1/m1"] != "jpeg" {
		t.Errorf("object not stored: %v", fake.objects)
	}
}

func TestDeleteMissingObject(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	s := newS3Storage(fake, "photos", "https://cdn.test")

	err := s.Delete(context.Background(), "meals/u1/gone")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if len(fake.deleted) != 0 {
		t.Errorf("DeleteObject should not be called, got %v", fake.deleted)
	}
}

func TestDeleteExistingObject(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"meals/u1/m1": "x"}}
	s := newS3Storage(fake, "photos", "https://cdn.test")

	if err := s.Delete(context.Background(), "meals/u1/m1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deleted) != 1 {
		t.Errorf("expected one delete, got %v", fake.deleted)
	}
}

func TestDeletePropagatesOtherErrors(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}, headErr: errors.New("access denied")}
	s := newS3Storage(fake, "photos", "https://cdn.test")

	err := s.Delete(context.Background(), "meals/u1/m1")
	if err == nil || errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected a non-not-found error, got %v", err)
	}
}
