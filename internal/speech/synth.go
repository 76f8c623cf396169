// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Synthesizer speaks short phrases aloud. Speak always preempts whatever is
// still playing; there is never more than one utterance in flight.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Stop()
	Voices() []Voice
}

// baseWordsPerMinute is the nominal speech tempo SpeakingRate scales.
const baseWordsPerMinute = 175

// CommandSynthesizer shells out to the platform TTS binary: say on macOS,
// espeak-ng (or espeak) elsewhere. Playback is asynchronous; the child
// process is killed when a new utterance preempts it.
type CommandSynthesizer struct {
	binary   string
	voices   []Voice
	voice    Voice
	hasVoice bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandSynthesizer locates a TTS binary and selects a voice for the
// target language. Returns ErrUnavailable when the platform has none.
func NewCommandSynthesizer() (*CommandSynthesizer, error) {
	binary, err := findSpeechBinary()
	if err != nil {
		return nil, err
	}

	s := &CommandSynthesizer{binary: binary}
	s.voices = s.listVoices()
	s.voice, s.hasVoice = SelectVoice(s.voices, TargetLanguage)
	return s, nil
}

func findSpeechBinary() (string, error) {
	candidates := []string{"espeak-ng", "espeak"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"say"}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no text-to-speech binary found", ErrUnavailable)
}

// Speak starts asynchronous playback of text, cancelling any prior
// utterance first. The returned error covers only startup; playback
// failures are silent, matching the fire-and-forget contract.
func (s *CommandSynthesizer) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	playCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	cmd := exec.CommandContext(playCtx, s.binary, s.speakArgs(text)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	go func() {
		_ = cmd.Wait()
		cancel()
	}()
	return nil
}

// Stop cancels in-flight playback.
func (s *CommandSynthesizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Voices returns the voices the engine reported at startup.
func (s *CommandSynthesizer) Voices() []Voice {
	return s.voices
}

// speakArgs builds the engine invocation for one utterance.
func (s *CommandSynthesizer) speakArgs(text string) []string {
	rate := float64(SpeakingRate)
	wpm := strconv.Itoa(int(baseWordsPerMinute * rate))
	if strings.HasSuffix(s.binary, "say") {
		args := []string{"-r", wpm}
		if s.hasVoice {
			args = append(args, "-v", s.voice.Name)
		}
		return append(args, text)
	}
	args := []string{"-s", wpm}
	if s.hasVoice {
		args = append(args, "-v", s.voice.Name)
	} else {
		args = append(args, "-v", "fr")
	}
	return append(args, text)
}

// listVoices asks the engine what it has installed. An empty result is
// fine; speakArgs then falls back to the engine default.
func (s *CommandSynthesizer) listVoices() []Voice {
	if strings.HasSuffix(s.binary, "say") {
		out, err := exec.Command(s.binary, "-v", "?").Output()
		if err != nil {
			return nil
		}
		return parseSayVoices(string(out))
	}
	out, err := exec.Command(s.binary, "--voices").Output()
	if err != nil {
		return nil
	}
	return parseEspeakVoices(string(out))
}

// parseSayVoices parses `say -v ?` output. Lines look like:
//
//	Amélie              fr_CA    # Bonjour! Je m'appelle Amélie.
func parseSayVoices(out string) []Voice {
	var voices []Voice
	for _, line := range strings.Split(out, "\n") {
		idx := strings.Index(line, "#")
		if idx > 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// The language tag is the last field; multi-word names precede it.
		voices = append(voices, Voice{
			Name: strings.Join(fields[:len(fields)-1], " "),
			Lang: fields[len(fields)-1],
		})
	}
	return voices
}

// parseEspeakVoices parses `espeak-ng --voices` output. Lines look like:
//
//	 5  fr-FR          M  french               fr            (fr 5)
func parseEspeakVoices(out string) []Voice {
	var voices []Voice
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if i == 0 { // header row
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{
			Name: fields[3],
			Lang: fields[1],
		})
	}
	return voices
}
