package receiver

import (
	"bytes"
	"compress/gzip"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type recordingSink struct {
	mu      sync.Mutex
	lines   []string
	sources []string
}

func (s *recordingSink) Ingest(source string, lines []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, source)
	s.lines = append(s.lines, lines...)
	return len(lines)
}

func stringAttr(key, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key:   key,
		Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: value}},
	}
}

func stringRecord(body string) *logspb.LogRecord {
	return &logspb.LogRecord{
		Body: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: body}},
	}
}

func testRequest() *collogspb.ExportLogsServiceRequest {
	return &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{{
			Resource: &resourcepb.Resource{Attributes: []*commonpb.KeyValue{
				stringAttr("service.name", "syslog"),
				stringAttr("host.name", "sw-core-1"),
			}},
			ScopeLogs: []*logspb.ScopeLogs{{
				LogRecords: []*logspb.LogRecord{
					stringRecord("%LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down"),
					stringRecord("%SYS-2-MALLOCFAIL: Memory allocation failed\n%SYS-3-CPUHOG: Task ran for 2004 msec"),
					{Body: &commonpb.AnyValue{Value: &commonpb.AnyValue_KvlistValue{KvlistValue: &commonpb.KeyValueList{}}}},
				},
			}},
		}},
	}
}

func TestExtractBatches(t *testing.T) {
	batches, skipped := extractBatches(testRequest())
	if len(batches) != 1 {
		t.Fatalf("Expected 1 batch, got %d", len(batches))
	}
	if batches[0].source != "sw-core-1" {
		t.Errorf("Expected host.name to win over service.name, got %q", batches[0].source)
	}
	lines := batches[0].lines
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %v", len(lines), lines)
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped record, got %d", skipped)
	}
	if lines[2] != "%SYS-3-CPUHOG: Task ran for 2004 msec" {
		t.Errorf("Unexpected split line: %q", lines[2])
	}
}

func TestResourceSource(t *testing.T) {
	tests := []struct {
		name string
		res  *resourcepb.Resource
		want string
	}{
		{"nil resource", nil, ""},
		{"no attributes", &resourcepb.Resource{}, ""},
		{"service only", &resourcepb.Resource{Attributes: []*commonpb.KeyValue{stringAttr("service.name", "edge-rtr")}}, "edge-rtr"},
		{"empty host falls through", &resourcepb.Resource{Attributes: []*commonpb.KeyValue{
			stringAttr("host.name", ""),
			stringAttr("net.host.name", "10.0.0.1"),
		}}, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resourceSource(tt.res); got != tt.want {
				t.Errorf("resourceSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleLogs(t *testing.T) {
	protoBody, err := proto.Marshal(testRequest())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	jsonBody, err := protojson.Marshal(testRequest())
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(protoBody)
	zw.Close()

	tests := []struct {
		name        string
		body        []byte
		contentType string
		encoding    string
		wantStatus  int
		wantLines   int
	}{
		{"protobuf", protoBody, "application/x-protobuf", "", http.StatusOK, 3},
		{"json", jsonBody, "application/json", "", http.StatusOK, 3},
		{"gzip", gz.Bytes(), "application/x-protobuf", "gzip", http.StatusOK, 3},
		{"no content type", protoBody, "", "", http.StatusOK, 3},
		{"json with charset", jsonBody, "application/json; charset=utf-8", "", http.StatusOK, 3},
		{"garbage", []byte("{not otlp"), "application/json", "", http.StatusBadRequest, 0},
		{"bad gzip", []byte("plain"), "application/x-protobuf", "gzip", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			r := NewHTTPReceiver(":0", sink)

			req := httptest.NewRequest(http.MethodPost, "/v1/logs", bytes.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if tt.encoding != "" {
				req.Header.Set("Content-Encoding", tt.encoding)
			}
			w := httptest.NewRecorder()
			r.Handler().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if len(sink.lines) != tt.wantLines {
				t.Errorf("Expected %d lines ingested, got %d", tt.wantLines, len(sink.lines))
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp collogspb.ExportLogsServiceResponse
			if w.Header().Get("Content-Type") == "application/json" {
				if err := protojson.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("response is not OTLP JSON: %v", err)
				}
			} else if err := proto.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not protobuf: %v", err)
			}
			if resp.GetPartialSuccess().GetRejectedLogRecords() != 1 {
				t.Errorf("Expected 1 rejected record, got %v", resp.GetPartialSuccess())
			}
		})
	}
}

func TestHandleLogs_MethodNotAllowed(t *testing.T) {
	r := NewHTTPReceiver(":0", &recordingSink{})
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/logs", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestGRPCExport(t *testing.T) {
	sink := &recordingSink{}
	r := NewGRPCReceiver("bufnet", sink)

	lis := bufconn.Listen(1 << 20)
	go r.Serve(lis)
	defer r.Shutdown(context.Background())

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	client := collogspb.NewLogsServiceClient(conn)
	resp, err := client.Export(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if resp.GetPartialSuccess().GetRejectedLogRecords() != 1 {
		t.Errorf("Expected 1 rejected record, got %v", resp.GetPartialSuccess())
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(sink.lines))
	}
}
