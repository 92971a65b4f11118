package receiver

import (
	"strconv"
	"strings"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
)

// Ingester consumes log lines extracted from OTLP requests. source names the
// sending device and may be empty.
type Ingester interface {
	Ingest(source string, lines []string) int
}

// sourceAttributes are checked in order to name the device behind a resource.
// The collector's syslog receiver fills host.name from the syslog header.
var sourceAttributes = []string{"host.name", "net.host.name", "service.name"}

// batch holds the text lines of one resource.
type batch struct {
	source string
	lines  []string
}

// extractBatches returns the body of every log record as text, one entry per
// line, grouped by resource. Records with structured (map or array) bodies
// are skipped.
func extractBatches(req *collogspb.ExportLogsServiceRequest) (batches []batch, skipped int64) {
	for _, rl := range req.GetResourceLogs() {
		b := batch{source: resourceSource(rl.GetResource())}
		for _, sl := range rl.GetScopeLogs() {
			for _, rec := range sl.GetLogRecords() {
				text, ok := bodyText(rec.GetBody())
				if !ok {
					skipped++
					continue
				}
				b.lines = append(b.lines, strings.Split(text, "\n")...)
			}
		}
		if len(b.lines) > 0 {
			batches = append(batches, b)
		}
	}
	return batches, skipped
}

func resourceSource(res *resourcepb.Resource) string {
	for _, key := range sourceAttributes {
		for _, kv := range res.GetAttributes() {
			if kv.GetKey() != key {
				continue
			}
			if v := kv.GetValue().GetStringValue(); v != "" {
				return v
			}
		}
	}
	return ""
}

func bodyText(v *commonpb.AnyValue) (string, bool) {
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue, true
	case *commonpb.AnyValue_BytesValue:
		return string(val.BytesValue), true
	case *commonpb.AnyValue_IntValue:
		return strconv.FormatInt(val.IntValue, 10), true
	case *commonpb.AnyValue_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'g', -1, 64), true
	case *commonpb.AnyValue_BoolValue:
		return strconv.FormatBool(val.BoolValue), true
	default:
		return "", false
	}
}
