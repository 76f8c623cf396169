// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech wraps the platform's text-to-speech and microphone
// capabilities behind small interfaces the UI can inject fakes for.
//
// Both capabilities are optional. When a platform engine is missing the
// feature goes inert with a one-time notice; nothing in this package ever
// terminates the process.
package speech

import (
	"errors"

	"golang.org/x/text/language"
)

// ErrUnavailable means the platform has no usable engine for the capability.
var ErrUnavailable = errors.New("speech: capability unavailable")

// TargetLanguage is the language tag all playback and recognition binds to.
const TargetLanguage = "fr-FR"

// PreferredProvider is favored when several voices match the target tag
// exactly. Provider quality varies a lot; this one is consistently clear.
const PreferredProvider = "google"

// SpeakingRate slows playback slightly below natural speed for learners.
const SpeakingRate = 0.9

// Voice describes one installed synthesis voice.
type Voice struct {
	Name     string
	Lang     string // BCP 47 tag as reported by the engine
	Provider string
	Default  bool
}

// SelectVoice picks the best voice for a target tag. Preference order:
// exact tag match from the preferred provider, any exact tag match, any
// voice whose base language matches, the engine default, none.
func SelectVoice(voices []Voice, target string) (Voice, bool) {
	want, err := language.Parse(target)
	if err != nil {
		return Voice{}, false
	}
	wantBase, _ := want.Base()

	var exact, prefix, def *Voice
	for i := range voices {
		v := &voices[i]
		tag, err := language.Parse(v.Lang)
		if err != nil {
			continue
		}
		if tag == want {
			if v.Provider == PreferredProvider {
				return *v, true
			}
			if exact == nil {
				exact = v
			}
		}
		if base, _ := tag.Base(); base == wantBase && prefix == nil {
			prefix = v
		}
		if v.Default && def == nil {
			def = v
		}
	}

	switch {
	case exact != nil:
		return *exact, true
	case prefix != nil:
		return *prefix, true
	case def != nil:
		return *def, true
	}
	return Voice{}, false
}
