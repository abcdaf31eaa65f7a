package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	putInput *s3.PutObjectInput
	getKey   string
	body     []byte
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInput = params
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.getKey = *params.Key
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestSaveAppliesPrefixAndCountsBytes(t *testing.T) {
	fake := &fakeS3{}
	store := &Store{client: fake, bucket: "cv-bucket", prefix: normalizePrefix("documents")}

	payload := []byte("plain text resume content")
	key, size, mimeType, err := store.Save(context.Background(), "emp-1", "resume.txt", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("expected text/plain mime, got %s", mimeType)
	}
	if fake.putInput == nil {
		t.Fatal("expected PutObject call")
	}
	if got := *fake.putInput.Key; !strings.HasPrefix(got, "documents/") {
		t.Fatalf("expected prefixed object key, got %s", got)
	}
	if strings.HasPrefix(key, "documents/") {
		t.Fatalf("storage key must not embed the bucket prefix, got %s", key)
	}
}

func TestOpenRoundTrips(t *testing.T) {
	fake := &fakeS3{}
	store := &Store{client: fake, bucket: "cv-bucket"}

	payload := []byte("resume bytes")
	key, _, _, err := store.Save(context.Background(), "emp-2", "cv.txt", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	body, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer body.Close()

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}
	if fake.getKey != key {
		t.Fatalf("expected get key %s, got %s", key, fake.getKey)
	}
}

func TestSaveRejectsTraversalName(t *testing.T) {
	store := &Store{client: &fakeS3{}, bucket: "cv-bucket"}
	if _, _, _, err := store.Save(context.Background(), "emp-3", "../../etc/passwd", strings.NewReader("x")); err == nil {
		t.Fatal("expected traversal rejection")
	}
}
