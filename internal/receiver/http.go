// Package receiver implements OTLP HTTP and gRPC log endpoints that feed the
// live classification.
package receiver

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// maxBodyBytes bounds a single decompressed export request.
const maxBodyBytes = 32 << 20

const (
	contentTypeProto = "application/x-protobuf"
	contentTypeJSON  = "application/json"
)

// HTTPReceiver handles OTLP HTTP log requests.
type HTTPReceiver struct {
	sink   Ingester
	server *http.Server
}

// NewHTTPReceiver creates a new HTTP receiver.
func NewHTTPReceiver(addr string, sink Ingester) *HTTPReceiver {
	r := &HTTPReceiver{sink: sink}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/logs", r.handleLogs)
	mux.HandleFunc("/health", r.handleHealth)

	r.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return r
}

// Handler returns the receiver's HTTP handler.
func (r *HTTPReceiver) Handler() http.Handler {
	return r.server.Handler
}

// Start starts the HTTP server.
func (r *HTTPReceiver) Start() error {
	return r.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (r *HTTPReceiver) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}

// handleLogs handles OTLP logs export requests. The response uses the
// request's encoding.
func (r *HTTPReceiver) handleLogs(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer req.Body.Close()

	body, status, err := readBody(req)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	var exportReq collogspb.ExportLogsServiceRequest
	if err := decodeRequest(mediaType, body, &exportReq); err != nil {
		slog.Warn("failed to parse OTLP logs request", "content_type", mediaType, "bytes", len(body), "error", err)
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}

	r.writeResponse(w, mediaType, ingest(r.sink, &exportReq))
}

// readBody returns the decompressed request body, or the status to fail with.
func readBody(req *http.Request) ([]byte, int, error) {
	reader := req.Body
	if req.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(req.Body)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("decompressing body: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes+1))
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, http.StatusRequestEntityTooLarge, errors.New("request body too large")
	}
	return body, http.StatusOK, nil
}

// decodeRequest picks the codec from the content type. Senders that omit it
// get protobuf first, then JSON.
func decodeRequest(mediaType string, body []byte, out *collogspb.ExportLogsServiceRequest) error {
	jsonOpts := protojson.UnmarshalOptions{DiscardUnknown: true}
	switch mediaType {
	case contentTypeProto:
		return proto.Unmarshal(body, out)
	case contentTypeJSON:
		return jsonOpts.Unmarshal(body, out)
	}

	protoErr := proto.Unmarshal(body, out)
	if protoErr == nil {
		return nil
	}
	proto.Reset(out)
	if jsonErr := jsonOpts.Unmarshal(body, out); jsonErr != nil {
		return fmt.Errorf("protobuf error: %v, json error: %v", protoErr, jsonErr)
	}
	return nil
}

// ingest feeds the request into sink and reports structured bodies as rejected.
func ingest(sink Ingester, req *collogspb.ExportLogsServiceRequest) *collogspb.ExportLogsServiceResponse {
	batches, skipped := extractBatches(req)
	lines, classified := 0, 0
	for _, b := range batches {
		lines += len(b.lines)
		classified += sink.Ingest(b.source, b.lines)
	}
	slog.Debug("ingested OTLP logs", "resources", len(batches), "lines", lines, "classified", classified, "skipped", skipped)

	resp := &collogspb.ExportLogsServiceResponse{}
	if skipped > 0 {
		resp.PartialSuccess = &collogspb.ExportLogsPartialSuccess{
			RejectedLogRecords: skipped,
			ErrorMessage:       "log records without a text body are not classified",
		}
	}
	return resp
}

// handleHealth handles health check requests.
func (r *HTTPReceiver) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeResponse encodes resp like the request: JSON for JSON senders,
// protobuf otherwise.
func (r *HTTPReceiver) writeResponse(w http.ResponseWriter, mediaType string, resp proto.Message) {
	var (
		data []byte
		err  error
	)
	if mediaType == contentTypeJSON {
		data, err = protojson.Marshal(resp)
	} else {
		mediaType = contentTypeProto
		data, err = proto.Marshal(resp)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
