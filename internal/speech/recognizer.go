// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecognitionCode classifies why a listening attempt produced no transcript.
type RecognitionCode string

const (
	// CodePermissionDenied means the microphone could not be opened.
	CodePermissionDenied RecognitionCode = "permission-denied"
	// CodeNoSpeech means the attempt ended without any speech heard. A
	// session that ends silently, with neither transcript nor explicit
	// failure, is classified here rather than as success.
	CodeNoSpeech RecognitionCode = "no-speech"
	// CodeUnavailable means no recognition engine exists on this system.
	CodeUnavailable RecognitionCode = "unavailable"
	// CodeAborted means the caller cancelled the attempt.
	CodeAborted RecognitionCode = "aborted"
	// CodeOther covers everything else.
	CodeOther RecognitionCode = "other"
)

// RecognitionError is a classified listening failure.
type RecognitionError struct {
	Code RecognitionCode
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing text for this failure.
func (e *RecognitionError) Message() string {
	switch e.Code {
	case CodePermissionDenied:
		return "Microphone access denied. Please check your audio permissions."
	case CodeNoSpeech:
		return "I didn't catch that. Please try speaking again."
	case CodeUnavailable:
		return "Speech recognition isn't available on this system."
	case CodeAborted:
		return "Listening cancelled."
	default:
		return "Something went wrong while listening. Please try again."
	}
}

// Recognizer captures one single-shot listening attempt and returns the
// final transcript. Exactly one attempt may be active at a time; the
// practice overlay enforces that by resetting on every open and close.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Transcriber converts a recorded audio file to text. The tutor client
// satisfies this with its Whisper endpoint.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Recorder captures microphone audio to a file and returns its path.
type Recorder interface {
	Record(ctx context.Context) (string, error)
}

// maxListenSeconds bounds one listening attempt. Practice phrases are
// short; anything longer is dead air.
const maxListenSeconds = 8

// CommandRecorder records a mono 16 kHz WAV with arecord or sox.
type CommandRecorder struct {
	binary string
}

// NewCommandRecorder locates a recording binary.
func NewCommandRecorder() (*CommandRecorder, error) {
	candidates := []string{"arecord", "rec", "sox"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"rec", "sox"}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return &CommandRecorder{binary: path}, nil
		}
	}
	return nil, fmt.Errorf("%w: no audio recording binary found", ErrUnavailable)
}

// Record captures one clip and returns the temp file path. The caller
// removes the file.
func (r *CommandRecorder) Record(ctx context.Context) (string, error) {
	path := filepath.Join(os.TempDir(), "aelis-"+uuid.NewString()+".wav")

	ctx, cancel := context.WithTimeout(ctx, (maxListenSeconds+2)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, r.recordArgs(path)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("record: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return path, nil
}

func (r *CommandRecorder) recordArgs(path string) []string {
	dur := strconv.Itoa(maxListenSeconds)
	if strings.HasSuffix(r.binary, "arecord") {
		return []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", dur, path}
	}
	// rec/sox
	return []string{"-q", "-r", "16000", "-c", "1", path, "trim", "0", dur}
}

// TranscribeRecognizer implements Recognizer by recording a clip and
// sending it to a Transcriber.
type TranscribeRecognizer struct {
	recorder    Recorder
	transcriber Transcriber
}

// NewTranscribeRecognizer wires a recorder to a transcriber.
func NewTranscribeRecognizer(rec Recorder, tr Transcriber) *TranscribeRecognizer {
	return &TranscribeRecognizer{recorder: rec, transcriber: tr}
}

// Listen runs one capture-and-transcribe attempt. Failures come back as
// *RecognitionError; an attempt that ends with an empty transcript is
// no-speech, never success.
func (t *TranscribeRecognizer) Listen(ctx context.Context) (string, error) {
	audioPath, err := t.recorder.Record(ctx)
	if err != nil {
		return "", classifyRecordError(err)
	}
	defer os.Remove(audioPath)

	transcript, err := t.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", &RecognitionError{Code: CodeAborted, Err: err}
		}
		return "", &RecognitionError{Code: CodeOther, Err: err}
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", &RecognitionError{Code: CodeNoSpeech}
	}
	return transcript, nil
}

// classifyRecordError maps capture failures onto the recognition taxonomy.
func classifyRecordError(err error) *RecognitionError {
	switch {
	case errors.Is(err, context.Canceled):
		return &RecognitionError{Code: CodeAborted, Err: err}
	case errors.Is(err, ErrUnavailable):
		return &RecognitionError{Code: CodeUnavailable, Err: err}
	case isPermissionFailure(err):
		return &RecognitionError{Code: CodePermissionDenied, Err: err}
	default:
		return &RecognitionError{Code: CodeOther, Err: err}
	}
}

// isPermissionFailure sniffs the recorder's stderr for the handful of
// phrases ALSA and sox use when the device cannot be opened.
func isPermissionFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"permission denied",
		"cannot open audio device",
		"device or resource busy",
		"no such audio device",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
