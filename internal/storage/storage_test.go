package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

func TestIsNoSuchKeyMatchesS3Codes(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{minio.ErrorResponse{Code: "NoSuchKey"}, true},
		{fmt.Errorf("remove: %w", minio.ErrorResponse{Code: "NotFound"}), true},
		{minio.ErrorResponse{Code: "AccessDenied"}, false},
		{errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := isNoSuchKey(tc.err); got != tc.want {
			t.Errorf("isNoSuchKey(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	objects := []ObjectMeta{
		{Key: "a", LastModified: base},
		{Key: "c", LastModified: base.Add(time.Hour)},
		{Key: "b", LastModified: base},
	}
	SortNewestFirst(objects)
	got := objects[0].Key + objects[1].Key + objects[2].Key
	if got != "cba" {
		t.Fatalf("order = %s", got)
	}
}
