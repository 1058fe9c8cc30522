package vecindex

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	getErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func newFakeS3Store() (*S3Store, *fakeS3) {
	api := &fakeS3{objects: map[string][]byte{}}
	return &S3Store{client: api, bucket: "templates", key: "templates/face.json"}, api
}

func TestS3Store_SaveLoadRoundTrip(t *testing.T) {
	store, _ := newFakeS3Store()
	ctx := context.Background()

	want := map[string][]float32{"u1": {1, 0}, "u2": {0, 1}}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(got))
	}
	for userID, vec := range want {
		loaded, ok := got[userID]
		if !ok || len(loaded) != len(vec) {
			t.Fatalf("vector for %s missing or truncated: %v", userID, loaded)
		}
		for i := range vec {
			if loaded[i] != vec[i] {
				t.Fatalf("vector for %s differs at %d: %v vs %v", userID, i, loaded[i], vec[i])
			}
		}
	}
}

func TestS3Store_LoadMissingKeyIsEmpty(t *testing.T) {
	store, _ := newFakeS3Store()

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("missing key must load as empty snapshot, got %v", got)
	}
}

func TestS3Store_SaveErrorPropagates(t *testing.T) {
	store, api := newFakeS3Store()
	api.putErr = errors.New("access denied")

	if err := store.Save(context.Background(), map[string][]float32{"u1": {1}}); err == nil {
		t.Fatal("expected Save error")
	}
}

func TestS3Store_BacksFlatIndex(t *testing.T) {
	store, _ := newFakeS3Store()
	ctx := context.Background()

	idx, err := NewFlat(ctx, 2, store)
	if err != nil {
		t.Fatalf("NewFlat error: %v", err)
	}
	if err := idx.Upsert(ctx, "u1", []float32{3, 4}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	// A fresh index over the same bucket sees the enrollment.
	idx2, err := NewFlat(ctx, 2, store)
	if err != nil {
		t.Fatalf("NewFlat reload error: %v", err)
	}
	got, err := idx2.Search(ctx, []float32{3, 4}, 1)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u1" || got[0].Score < 0.999 {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}
