package tasks

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewResumeExportTask(t *testing.T) {
	task, err := NewResumeExportTask(ResumeExportPayload{ResumeID: "r1", UserID: "u1", CorrelationID: "c1"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TypeResumeExport {
		t.Fatalf("type = %q", task.Type())
	}
	var p ResumeExportPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatal(err)
	}
	if p.ResumeID != "r1" || p.UserID != "u1" || p.CorrelationID != "c1" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestExportObjectKeyOrdersByTime(t *testing.T) {
	at := time.Date(2026, 3, 9, 8, 7, 6, 5e6, time.FixedZone("CST", 8*3600))
	key := ExportObjectKey("u1", "r1", at)
	if key != "exports/u1/r1/20260309T000706.005Z.json" {
		t.Fatalf("key = %q", key)
	}
	later := ExportObjectKey("u1", "r1", at.Add(time.Second))
	if !strings.HasPrefix(later, ExportPrefix("u1", "r1")) || later <= key {
		t.Fatalf("later key %q must sort after %q", later, key)
	}
}
