// aelis - a terminal French tutor.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/aelisapp/aelis-tui/internal/config"
	"github.com/aelisapp/aelis-tui/internal/speech"
	"github.com/aelisapp/aelis-tui/internal/tutor"
	"github.com/aelisapp/aelis-tui/internal/ui/chat"
	"github.com/aelisapp/aelis-tui/internal/ui/components"
	"github.com/aelisapp/aelis-tui/internal/ui/styles"
)

// Global program reference so stream goroutines can push events into the
// event loop.
var (
	programMu sync.Mutex
	program   *tea.Program
)

func setProgram(p *tea.Program) {
	programMu.Lock()
	defer programMu.Unlock()
	program = p
}

func sendMsg(msg tea.Msg) {
	programMu.Lock()
	p := program
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// appState is the top-level screen.
type appState int

const (
	stateSelector appState = iota
	stateChat
)

// configReloadedMsg carries a hot-reloaded config from the file watcher.
type configReloadedMsg struct {
	cfg *config.Config
}

// appModel wires the screens together and owns everything with a lifetime:
// the tutor session, the stream context, and the speech engines.
type appModel struct {
	cfg   *config.Config
	theme *styles.Theme
	state appState

	selector components.Selector
	chatView chat.Model
	practice components.PracticeOverlay
	help     components.HelpOverlay

	client  *tutor.Client
	session *tutor.Session

	synth      speech.Synthesizer
	recognizer speech.Recognizer

	// cancelStream aborts the in-flight turn; nil when idle.
	cancelStream context.CancelFunc
	// cancelListen aborts the live microphone capture; nil when idle.
	cancelListen context.CancelFunc

	// selectorNotice shows open-time failures on the selector screen.
	selectorNotice string
	// speechNoticeShown makes the missing-TTS notice one-time.
	speechNoticeShown bool

	width  int
	height int
}

func newAppModel(cfg *config.Config) *appModel {
	theme := styles.NewTheme(0, 0)

	a := &appModel{
		cfg:      cfg,
		theme:    theme,
		selector: components.NewSelector(theme),
		chatView: chat.New(theme),
		practice: components.NewPracticeOverlay(theme),
		help:     components.NewHelpOverlay(theme),
	}
	a.chatView.SetShowTimestamps(cfg.UI.ShowTimestamps)

	if cfg.IsConfigured() {
		client, err := tutor.NewClient(tutor.Config{
			APIKey:             cfg.APIKey,
			BaseURL:            cfg.BaseURL,
			Model:              cfg.Model,
			HistoryTokenBudget: cfg.HistoryTokenBudget,
		})
		if err != nil {
			log.Printf("tutor client: %v", err)
		} else {
			a.client = client
		}
	}

	if cfg.Speech.Playback {
		if synth, err := speech.NewCommandSynthesizer(); err == nil {
			a.synth = synth
		} else {
			log.Printf("speech output: %v", err)
		}
	}
	if cfg.Speech.Practice && a.client != nil {
		if rec, err := speech.NewCommandRecorder(); err == nil {
			a.recognizer = speech.NewTranscribeRecognizer(rec, a.client)
		} else {
			log.Printf("speech input: %v", err)
		}
	}

	return a
}

// Init implements tea.Model.
func (a *appModel) Init() tea.Cmd {
	return a.selector.Init()
}

// Update implements tea.Model.
func (a *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case configReloadedMsg:
		a.applyConfig(msg.cfg)
		return a, nil

	case components.TopicChosenMsg:
		return a.handleTopicChosen(msg)

	case chat.TurnRequestMsg:
		return a, a.startTurn(msg.MessageID, msg.Content)

	case chat.StreamCompleteMsg:
		if a.cancelStream != nil {
			a.cancelStream()
			a.cancelStream = nil
		}
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case chat.SpeakRequestMsg:
		return a, a.speak(msg.Phrase)

	case chat.PracticeRequestMsg:
		a.practice.Open(msg.Phrase)
		return a, nil

	case chat.TranscriptMsg:
		return a.handleTranscript(msg)

	case chat.FeedbackReadyMsg:
		a.practice.SetFeedback(msg.Feedback)
		return a, nil

	case chat.ResetRequestMsg:
		a.resetToSelector()
		return a, nil

	case chat.HelpRequestMsg:
		a.help.Show()
		return a, nil
	}

	// Everything else (stream tokens, ticks, spinner frames, blink) goes
	// to the active screen.
	return a.routeToScreen(msg)
}

func (a *appModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height
	a.theme.SetSize(msg.Width, msg.Height)
	a.selector.SetSize(msg.Width, msg.Height)
	a.practice.SetSize(msg.Width, msg.Height)
	a.help.SetSize(msg.Width, msg.Height)

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works, and always cancels whatever is in flight.
	if msg.String() == "ctrl+c" {
		a.teardown()
		return a, tea.Quit
	}

	// Overlay precedence: help, then practice, then the active screen.
	if a.help.IsVisible() {
		a.help.Hide()
		return a, nil
	}
	if a.practice.IsVisible() {
		return a.handlePracticeKey(msg)
	}

	return a.routeToScreen(msg)
}

// handlePracticeKey drives the practice overlay lifecycle.
func (a *appModel) handlePracticeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.stopListening()
		a.practice.Hide()
		return a, nil

	case " ":
		if a.practice.Phase() == components.PhraseReady {
			return a, a.startListening()
		}
	case "r":
		phase := a.practice.Phase()
		if phase == components.PhraseScored || phase == components.PhraseFailed {
			a.practice.Open(a.practice.Phrase())
			return a, a.startListening()
		}
	}
	return a, nil
}

func (a *appModel) handleTopicChosen(msg components.TopicChosenMsg) (tea.Model, tea.Cmd) {
	if a.client == nil {
		a.selectorNotice = "No API key found. Set AELIS_API_KEY (or OPENAI_API_KEY) and restart."
		return a, nil
	}
	if msg.Selection.Topic == "" {
		a.selectorNotice = "Pick or type an interest first."
		return a, nil
	}

	a.selectorNotice = ""
	a.session = a.client.Open(msg.Selection.Topic, msg.Selection.NativeLanguage)
	a.state = stateChat

	msgID, cmd := a.chatView.BeginLesson()
	return a, tea.Batch(cmd, a.chatView.Init(), a.startLesson(msgID))
}

// startLesson streams the opening lesson into the placeholder message.
func (a *appModel) startLesson(msgID string) tea.Cmd {
	ctx := a.newStreamContext()
	session := a.session
	return func() tea.Msg {
		err := session.StartLesson(ctx, func(chunk string) {
			sendMsg(chat.StreamTokenMsg{MessageID: msgID, Token: chunk})
		})
		return chat.StreamCompleteMsg{MessageID: msgID, Err: err}
	}
}

// startTurn streams one user turn.
func (a *appModel) startTurn(msgID, content string) tea.Cmd {
	if a.session == nil {
		return func() tea.Msg {
			return chat.StreamCompleteMsg{MessageID: msgID, Err: tutor.ErrSessionClosed}
		}
	}
	ctx := a.newStreamContext()
	session := a.session
	return func() tea.Msg {
		err := session.StreamTurn(ctx, content, func(chunk string) {
			sendMsg(chat.StreamTokenMsg{MessageID: msgID, Token: chunk})
		})
		if err != nil {
			log.Printf("stream turn: %v", err)
		}
		return chat.StreamCompleteMsg{MessageID: msgID, Err: err}
	}
}

// newStreamContext replaces the stream context, cancelling any prior one.
// Resetting mid-stream therefore stops the transport instead of letting it
// run to exhaustion against discarded state.
func (a *appModel) newStreamContext() context.Context {
	if a.cancelStream != nil {
		a.cancelStream()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelStream = cancel
	return ctx
}

// speak plays a phrase, or shows the one-time capability notice.
func (a *appModel) speak(phrase string) tea.Cmd {
	if a.synth == nil {
		if a.speechNoticeShown {
			return nil
		}
		a.speechNoticeShown = true
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(chat.NoticeMsg{
			Text: "Text-to-speech isn't available on this system.",
		})
		return cmd
	}
	if err := a.synth.Speak(context.Background(), phrase); err != nil {
		log.Printf("speak: %v", err)
	}
	return nil
}

// startListening kicks off one capture-and-transcribe attempt.
func (a *appModel) startListening() tea.Cmd {
	if a.recognizer == nil {
		a.practice.SetFailure("Speech recognition isn't available on this system.")
		return nil
	}

	a.practice.StartListening()
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelListen = cancel
	rec := a.recognizer
	return func() tea.Msg {
		transcript, err := rec.Listen(ctx)
		return chat.TranscriptMsg{Transcript: transcript, Err: err}
	}
}

func (a *appModel) stopListening() {
	if a.cancelListen != nil {
		a.cancelListen()
		a.cancelListen = nil
	}
}

func (a *appModel) handleTranscript(msg chat.TranscriptMsg) (tea.Model, tea.Cmd) {
	a.cancelListen = nil

	// The overlay may have been closed while the microphone was live.
	if !a.practice.IsVisible() {
		return a, nil
	}

	if msg.Err != nil {
		var recErr *speech.RecognitionError
		if errors.As(msg.Err, &recErr) {
			if recErr.Code == speech.CodeAborted {
				return a, nil
			}
			a.practice.SetFailure(recErr.Message())
		} else {
			a.practice.SetFailure("Something went wrong while listening. Please try again.")
		}
		return a, nil
	}

	a.practice.SetTranscript(msg.Transcript)
	return a, a.requestFeedback(a.practice.Phrase(), msg.Transcript)
}

// requestFeedback scores the attempt. The client guarantees a renderable
// result, so this command cannot fail.
func (a *appModel) requestFeedback(phrase, transcript string) tea.Cmd {
	client := a.client
	session := a.session
	return func() tea.Msg {
		lang := "English"
		if session != nil {
			lang = session.NativeLanguage
		}
		fb := client.RequestPronunciationFeedback(context.Background(), phrase, transcript, lang)
		return chat.FeedbackReadyMsg{Feedback: fb}
	}
}

// resetToSelector drops the session and returns to topic selection. Works
// regardless of in-flight streams: their context is cancelled and their
// late events carry stale message IDs.
func (a *appModel) resetToSelector() {
	if a.cancelStream != nil {
		a.cancelStream()
		a.cancelStream = nil
	}
	a.stopListening()
	if a.synth != nil {
		a.synth.Stop()
	}
	if a.session != nil {
		a.session.Close()
		a.session = nil
	}
	a.chatView.Reset()
	a.practice.Hide()
	a.selector.Reset()
	a.selectorNotice = ""
	a.state = stateSelector
}

// teardown cancels everything before quitting.
func (a *appModel) teardown() {
	if a.cancelStream != nil {
		a.cancelStream()
	}
	a.stopListening()
	if a.synth != nil {
		a.synth.Stop()
	}
}

// applyConfig applies a hot-reloaded config file.
func (a *appModel) applyConfig(cfg *config.Config) {
	a.cfg = cfg
	a.chatView.SetShowTimestamps(cfg.UI.ShowTimestamps)
	if a.client != nil {
		a.client.SetModel(cfg.Model)
	}
}

// routeToScreen forwards a message to the selector or the chat view.
func (a *appModel) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.state {
	case stateSelector:
		a.selector, cmd = a.selector.Update(msg)
	case stateChat:
		a.chatView, cmd = a.chatView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *appModel) View() string {
	if a.help.IsVisible() {
		return a.help.View()
	}
	if a.practice.IsVisible() {
		return a.practice.View()
	}

	switch a.state {
	case stateSelector:
		view := a.selector.View()
		if a.selectorNotice != "" {
			return view + "\n" + a.theme.Error.Render(a.selectorNotice)
		}
		return view
	default:
		return a.chatView.View()
	}
}

func main() {
	// A .env next to the binary is the easiest way to carry the key.
	_ = godotenv.Load()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "aelis needs an interactive terminal")
		os.Exit(1)
	}

	if os.Getenv("AELIS_DEBUG") != "" {
		f, err := tea.LogToFile("aelis-debug.log", "aelis")
		if err == nil {
			defer f.Close()
		}
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "aelis: %v\n", err)
		os.Exit(1)
	}

	app := newAppModel(cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	setProgram(p)

	// Hot-reload config edits while running.
	if path, err := config.Path(); err == nil {
		if watcher, werr := config.Watch(path); werr == nil {
			defer watcher.Close()
			go func() {
				for cfg := range watcher.Updates() {
					sendMsg(configReloadedMsg{cfg: cfg})
				}
			}()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "aelis: %v\n", err)
		os.Exit(1)
	}
}
