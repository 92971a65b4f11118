package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/fidde/cisco_log_triage/internal/classifier"
	"github.com/fidde/cisco_log_triage/internal/rules"
	"github.com/fidde/cisco_log_triage/internal/textdecode"
	"github.com/fidde/cisco_log_triage/pkg/models"
	"github.com/google/uuid"
)

// ClassifyFileName is the download name of a classification report.
const ClassifyFileName = "Critical_Warning_Logs.txt"

// ClassifyRequest is the JSON form of a classify call.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse wraps a report with run metadata.
type ClassifyResponse struct {
	RunID    string        `json:"run_id"`
	RuleSet  string        `json:"rule_set"`
	Source   string        `json:"source"`
	Encoding string        `json:"encoding,omitempty"`
	Bytes    int           `json:"bytes"`
	Warnings []string      `json:"warnings,omitempty"`
	Report   models.Report `json:"report"`
	Markdown string        `json:"markdown"`
}

// logInput is the decoded text of a classify request.
type logInput struct {
	text     string
	source   string
	encoding string
	size     int
}

// classify runs the classifier on submitted log text.
// POST /api/v1/classify?format=json|markdown|text&download=1&profile=NAME
func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	c, err := s.classifierFor(r.URL.Query().Get("profile"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes)
	in, err := readLogInput(r, s.deps.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.deps.MaxUploadBytes))
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := c.Classify(in.text)
	runID := uuid.NewString()

	slog.Info("classified log",
		"run_id", runID,
		"source", in.source,
		"lines", report.TotalLines,
		"issues", report.IssuesFound,
		"groups", report.UniqueIssues(),
		"status", report.Status)

	warnings := append([]string(nil), c.Warnings()...)
	if strings.TrimSpace(in.text) == "" {
		warnings = append(warnings, "no log text submitted")
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	download := wantsDownload(r)

	fileName := ""
	if download {
		fileName = ClassifyFileName
	}

	switch {
	case format == "text":
		s.respondText(w, "text/plain; charset=utf-8", fileName, classifier.PlainText(report))
	case format == "markdown" || download:
		s.respondText(w, "text/markdown; charset=utf-8", fileName, classifier.Markdown(report))
	case format == "" || format == "json":
		s.respondJSON(w, http.StatusOK, ClassifyResponse{
			RunID:    runID,
			RuleSet:  c.Rules().Name,
			Source:   in.source,
			Encoding: in.encoding,
			Bytes:    in.size,
			Warnings: warnings,
			Report:   report,
			Markdown: classifier.Markdown(report),
		})
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q (supported: json, markdown, text)", format))
	}
}

// classifierFor returns the server classifier, or one built from a named profile.
func (s *Server) classifierFor(profile string) (*classifier.Classifier, error) {
	if profile == "" {
		if s.deps.Classifier == nil {
			return nil, models.ErrNilRules
		}
		return s.deps.Classifier, nil
	}
	rs, err := rules.Profile(profile)
	if err != nil {
		return nil, err
	}
	return classifier.New(rs)
}

// readLogInput extracts log text from a JSON, form, multipart or raw body.
// An uploaded file takes precedence over a text field.
func readLogInput(r *http.Request, maxBytes int64) (logInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var req ClassifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return logInput{}, err
			}
			return logInput{}, fmt.Errorf("invalid request body: %w", err)
		}
		return logInput{text: req.Text, source: "json", size: len(req.Text)}, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return logInput{}, err
		}
		file, _, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return logInput{}, fmt.Errorf("reading upload: %w", err)
			}
			return decodedInput(data, "file"), nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return logInput{}, fmt.Errorf("reading upload: %w", err)
		}
		text := r.FormValue("text")
		return logInput{text: text, source: "form", size: len(text)}, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return logInput{}, err
		}
		text := r.PostFormValue("text")
		return logInput{text: text, source: "form", size: len(text)}, nil

	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return logInput{}, err
		}
		return decodedInput(data, "body"), nil
	}
}

func decodedInput(data []byte, source string) logInput {
	text, enc := textdecode.Decode(data)
	return logInput{text: text, source: source, encoding: enc, size: len(data)}
}
