package queue

import (
	"reflect"
	"testing"
)

func TestJobRoundTrip(t *testing.T) {
	job := AnalysisJob{
		RequestID:  "request-456",
		EmployeeID: "emp-123",
		FilePath:   "cv/emp-123/resume.pdf",
		Source:     "hr-portal",
		MimeType:   "application/pdf",
		FileName:   "resume.pdf",
		Version:    1,
	}

	payload, err := EncodeJob(job)
	if err != nil {
		t.Fatalf("encode job: %v", err)
	}

	got, err := DecodeJob(payload)
	if err != nil {
		t.Fatalf("decode job: %v", err)
	}

	if !reflect.DeepEqual(got, job) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, job)
	}
}

func TestEncodeJobDefaultsVersion(t *testing.T) {
	payload, err := EncodeJob(AnalysisJob{RequestID: "r", EmployeeID: "e", FilePath: "f"})
	if err != nil {
		t.Fatalf("encode job: %v", err)
	}
	got, err := DecodeJob(payload)
	if err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("expected version 1, got %d", got.Version)
	}
}

func TestDecodeJobRejectsMissingIDs(t *testing.T) {
	if _, err := DecodeJob([]byte(`{"filePath":"x"}`)); err == nil {
		t.Fatal("expected error for missing ids")
	}
	if _, err := DecodeJob([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
