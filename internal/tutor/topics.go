// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

// TopicSelection is what the selector screen collects. Immutable once a
// session starts; a reset collects a fresh one.
type TopicSelection struct {
	Topic          string
	NativeLanguage string
}

// PredefinedTopics are the suggested interests on the selector screen. Free
// text is accepted too.
var PredefinedTopics = []string{
	"60's Yé-Yé Music",
	"French Cinema",
	"Parisian Architecture",
	"French Gastronomy",
	"Impressionist Painting",
	"French Literature",
	"French Politics",
	"Existential Philosophy",
	"French Fashion",
}

// Language pairs the identifier sent to the model with the native-script
// label shown in the picker.
type Language struct {
	Code string
	Name string
}

// Languages are the selectable mother tongues.
var Languages = []Language{
	{Code: "English", Name: "English"},
	{Code: "Spanish", Name: "Español"},
	{Code: "Chinese (Simplified)", Name: "中文 (简体)"},
	{Code: "Hindi", Name: "हिन्दी"},
	{Code: "Arabic", Name: "العربية"},
	{Code: "Portuguese", Name: "Português"},
	{Code: "Bengali", Name: "বাংলা"},
	{Code: "Russian", Name: "Русский"},
	{Code: "Japanese", Name: "日本語"},
	{Code: "Korean", Name: "한국어"},
	{Code: "German", Name: "Deutsch"},
}
