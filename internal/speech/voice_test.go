// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectVoicePrefersProviderOnExactMatch(t *testing.T) {
	voices := []Voice{
		{Name: "Thomas", Lang: "fr-FR"},
		{Name: "Google français", Lang: "fr-FR", Provider: "google"},
		{Name: "Samantha", Lang: "en-US", Default: true},
	}

	v, ok := SelectVoice(voices, "fr-FR")
	require.True(t, ok)
	assert.Equal(t, "Google français", v.Name)
}

func TestSelectVoiceExactMatchWithoutProvider(t *testing.T) {
	voices := []Voice{
		{Name: "Amélie", Lang: "fr-CA"},
		{Name: "Thomas", Lang: "fr-FR"},
	}

	v, ok := SelectVoice(voices, "fr-FR")
	require.True(t, ok)
	assert.Equal(t, "Thomas", v.Name)
}

func TestSelectVoiceLanguagePrefixFallback(t *testing.T) {
	// Only a generic "fr" voice and an unrelated "en-US" voice: the "fr"
	// voice wins on base-language match.
	voices := []Voice{
		{Name: "Samantha", Lang: "en-US"},
		{Name: "french", Lang: "fr"},
	}

	v, ok := SelectVoice(voices, "fr-FR")
	require.True(t, ok)
	assert.Equal(t, "french", v.Name)
}

func TestSelectVoiceRegionalCountsAsPrefix(t *testing.T) {
	voices := []Voice{
		{Name: "Amélie", Lang: "fr-CA"},
		{Name: "Samantha", Lang: "en-US", Default: true},
	}

	v, ok := SelectVoice(voices, "fr-FR")
	require.True(t, ok)
	assert.Equal(t, "Amélie", v.Name)
}

func TestSelectVoiceDefaultFallback(t *testing.T) {
	voices := []Voice{
		{Name: "Samantha", Lang: "en-US", Default: true},
		{Name: "Yuna", Lang: "ko-KR"},
	}

	v, ok := SelectVoice(voices, "fr-FR")
	require.True(t, ok)
	assert.Equal(t, "Samantha", v.Name)
}

func TestSelectVoiceNoneAvailable(t *testing.T) {
	_, ok := SelectVoice(nil, "fr-FR")
	assert.False(t, ok)

	_, ok = SelectVoice([]Voice{{Name: "Yuna", Lang: "ko-KR"}}, "fr-FR")
	assert.False(t, ok)
}

func TestSelectVoiceUnderscoreTags(t *testing.T) {
	// say reports tags with underscores.
	voices := []Voice{{Name: "Thomas", Lang: "fr_FR"}}

	v, ok := SelectVoice(voices, "fr-FR")
	require.True(t, ok)
	assert.Equal(t, "Thomas", v.Name)
}

func TestParseSayVoices(t *testing.T) {
	out := "Alex                en_US    # Most people recognize me by my voice.\n" +
		"Amélie              fr_CA    # Bonjour! Je m'appelle Amélie.\n" +
		"Thomas              fr_FR    # Bonjour, je m'appelle Thomas.\n"

	voices := parseSayVoices(out)
	require.Len(t, voices, 3)
	assert.Equal(t, Voice{Name: "Amélie", Lang: "fr_CA"}, voices[1])
	assert.Equal(t, Voice{Name: "Thomas", Lang: "fr_FR"}, voices[2])
}

func TestParseEspeakVoices(t *testing.T) {
	out := "Pty Language       Age/Gender VoiceName          File                 Other Languages\n" +
		" 5  fr-FR          --/M      french             fr                   (fr 5)\n" +
		" 5  en-US          --/M      english-us         en-us                (en 2)\n"

	voices := parseEspeakVoices(out)
	require.Len(t, voices, 2)
	assert.Equal(t, "fr-FR", voices[0].Lang)
	assert.Equal(t, "french", voices[0].Name)
}
