package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shuliangfu/render-sub000/pkg/metadata"
)

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	raw, ok := f.objects[*params.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(raw))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	raw, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = raw
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	store := NewS3Store(newFakeS3(), "bucket")
	ctx := context.Background()

	if err := store.Set(ctx, "k", &metadata.Metadata{Title: "T"}, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil || got == nil || got.Title != "T" {
		t.Errorf("got %+v, %v", got, err)
	}
}

func TestS3StoreMissReadsAsNil(t *testing.T) {
	store := NewS3Store(newFakeS3(), "bucket")
	got, err := store.Get(context.Background(), "absent")
	if got != nil || err != nil {
		t.Errorf("miss should be (nil, nil), got %v, %v", got, err)
	}
}

func TestS3StoreLazyExpiry(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "bucket")
	ctx := context.Background()

	store.Set(ctx, "k", &metadata.Metadata{Title: "T"}, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if got, _ := store.Get(ctx, "k"); got != nil {
		t.Error("expired entry should read as a miss")
	}
	if len(fake.objects) != 0 {
		t.Error("expired entry should be deleted on read")
	}
}

func TestS3StorePrefix(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "bucket", WithS3Prefix("md/"))
	store.Set(context.Background(), "k", &metadata.Metadata{Title: "T"}, 0)

	if _, ok := fake.objects["md/k"]; !ok {
		t.Errorf("object key should carry the prefix, got %v", keysOf(fake.objects))
	}
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
