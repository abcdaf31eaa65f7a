package queue

import (
	"encoding/json"
	"fmt"
)

// AnalysisJob is the payload sent to the analysis worker.
type AnalysisJob struct {
	RequestID  string `json:"requestId"`
	EmployeeID string `json:"employeeId"`
	FilePath   string `json:"filePath"`
	Source     string `json:"source,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	FileName   string `json:"fileName,omitempty"`
	Version    int    `json:"version"`
}

const messageVersion = 1

// EncodeJob returns the JSON representation of a job.
func EncodeJob(job AnalysisJob) ([]byte, error) {
	if job.Version == 0 {
		job.Version = messageVersion
	}
	return json.Marshal(job)
}

// DecodeJob parses a JSON payload into an AnalysisJob.
func DecodeJob(payload []byte) (AnalysisJob, error) {
	var job AnalysisJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return AnalysisJob{}, err
	}
	if job.RequestID == "" || job.EmployeeID == "" {
		return AnalysisJob{}, fmt.Errorf("analysis job missing ids: %s", payload)
	}
	return job, nil
}
